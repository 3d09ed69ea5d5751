// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/electiond/lifecycle"
	"github.com/danielhkuo/electiond/models"
	"github.com/danielhkuo/electiond/testutil"
)

func getResults(t *testing.T, handler *ResultsHandler, electionID string) (*httptest.ResponseRecorder, models.ResultsResponse) {
	t.Helper()

	req := httptest.NewRequest("GET", "/elections/"+electionID+"/results", nil)
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	handler.GetResults(w, req)

	var resp models.ResultsResponse
	if w.Code == http.StatusOK {
		testutil.AssertJSON(t, w, &resp)
	}
	return w, resp
}

func TestGetResults(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)
	clock := testutil.NewFakeClock(start.Add(time.Hour))

	env := newTestEnv(t, clock)
	handler := NewResultsHandler(env.store, env.svc)

	electionID := testutil.CreateTestElection(t, env.db, start, end)
	alice := testutil.AddTestCandidate(t, env.db, electionID, "Alice")
	bob := testutil.AddTestCandidate(t, env.db, electionID, "Bob")

	for i, candidate := range []string{alice, alice, bob} {
		voter := testutil.CreateTestVoter(t, env.db, "voter"+string(rune('a'+i)), electionID)
		if _, err := env.store.CastBallot(t.Context(), castInput(voter, electionID, candidate), clock.Now()); err != nil {
			t.Fatalf("Failed to cast ballot: %v", err)
		}
	}

	t.Run("ongoing shows tallies without a winner", func(t *testing.T) {
		w, resp := getResults(t, handler, electionID)
		testutil.AssertStatus(t, w, http.StatusOK)

		if resp.Phase != models.PhaseOngoing {
			t.Errorf("Expected phase ongoing, got %s", resp.Phase)
		}
		if resp.TotalVotes != 3 {
			t.Errorf("Expected total_votes 3, got %d", resp.TotalVotes)
		}
		if resp.WinnerReason != models.ReasonPending || resp.WinnerCandidateID != nil {
			t.Errorf("Expected pending with no winner, got %s %v", resp.WinnerReason, resp.WinnerCandidateID)
		}
		if len(resp.Candidates) != 2 || resp.Candidates[0].CandidateID != alice || resp.Candidates[0].VoteCount != 2 {
			t.Errorf("Expected Alice leading with 2 votes, got %+v", resp.Candidates)
		}
		if !strings.HasSuffix(resp.Closes, "from now") {
			t.Errorf("Expected closes in the future, got %q", resp.Closes)
		}
	})

	t.Run("window closed before scheduler ran", func(t *testing.T) {
		clock.Set(end.Add(time.Minute))

		w, resp := getResults(t, handler, electionID)
		testutil.AssertStatus(t, w, http.StatusOK)

		if resp.Phase != models.PhaseCompleted {
			t.Errorf("Expected phase completed, got %s", resp.Phase)
		}
		if resp.WinnerReason != models.ReasonClear || resp.WinnerCandidateID == nil || *resp.WinnerCandidateID != alice {
			t.Errorf("Expected Alice as clear winner, got %s %v", resp.WinnerReason, resp.WinnerCandidateID)
		}

		stored, _ := env.store.GetElection(t.Context(), electionID)
		if stored.Phase != models.PhaseUpcoming {
			t.Errorf("Expected read path to leave stored phase alone, got %s", stored.Phase)
		}
	})

	t.Run("frozen winner after scheduler", func(t *testing.T) {
		sched := lifecycle.NewScheduler(env.store, lifecycle.Options{Clock: clock})
		if _, err := sched.Tick(t.Context()); err != nil {
			t.Fatalf("Tick failed: %v", err)
		}

		w, resp := getResults(t, handler, electionID)
		testutil.AssertStatus(t, w, http.StatusOK)

		if resp.WinnerReason != models.ReasonClear || *resp.WinnerCandidateID != alice {
			t.Errorf("Expected frozen Alice win, got %s %v", resp.WinnerReason, resp.WinnerCandidateID)
		}
		if !strings.HasSuffix(resp.Closes, "ago") {
			t.Errorf("Expected closes in the past, got %q", resp.Closes)
		}
	})

	t.Run("unknown election", func(t *testing.T) {
		w, _ := getResults(t, handler, "missing")
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestReconcile(t *testing.T) {
	env := newTestEnv(t, nil)
	handler := NewResultsHandler(env.store, env.svc)

	electionID := testutil.CreateOngoingElection(t, env.db)
	alice := testutil.AddTestCandidate(t, env.db, electionID, "Alice")
	voter := testutil.CreateTestVoter(t, env.db, "voter", electionID)
	testutil.CastTestBallot(t, env.db, voter, electionID, alice)

	// Corrupt the counters behind the store's back
	if _, err := env.db.Exec("UPDATE candidate SET vote_count = 5 WHERE id = $1", alice); err != nil {
		t.Fatalf("Failed to corrupt candidate: %v", err)
	}
	if _, err := env.db.Exec("UPDATE election SET total_votes = 0 WHERE id = $1", electionID); err != nil {
		t.Fatalf("Failed to corrupt election: %v", err)
	}

	req := testutil.MakeRequest("POST", "/admin/reconcile", nil, testutil.AdminHeaders())
	w := httptest.NewRecorder()
	handler.Reconcile(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ReconcileResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.CandidatesRepaired != 1 || resp.ElectionsRepaired != 1 || resp.HistoryRepaired != 0 {
		t.Errorf("Unexpected repair report: %+v", resp)
	}

	c, _ := env.store.GetCandidate(t.Context(), alice)
	e, _ := env.store.GetElection(t.Context(), electionID)
	if c.VoteCount != 1 || e.TotalVotes != 1 {
		t.Errorf("Expected counters restored to 1, got candidate=%d election=%d", c.VoteCount, e.TotalVotes)
	}

	// A second pass finds nothing to repair
	w = httptest.NewRecorder()
	handler.Reconcile(w, testutil.MakeRequest("POST", "/admin/reconcile", nil, testutil.AdminHeaders()))
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &resp)
	if resp != (models.ReconcileResponse{}) {
		t.Errorf("Expected clean second pass, got %+v", resp)
	}
}
