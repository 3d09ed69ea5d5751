// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/electiond/models"
	"github.com/danielhkuo/electiond/testutil"
)

// TestConcurrentCastsFromDifferentVoters verifies that simultaneous casts
// from distinct voters are all counted with no lost updates
func TestConcurrentCastsFromDifferentVoters(t *testing.T) {
	env := newTestEnv(t, nil)
	votingHandler := NewVotingHandler(env.store, env.svc)

	electionID := testutil.CreateOngoingElection(t, env.db)
	candidates := []string{
		testutil.AddTestCandidate(t, env.db, electionID, "A"),
		testutil.AddTestCandidate(t, env.db, electionID, "B"),
		testutil.AddTestCandidate(t, env.db, electionID, "C"),
	}

	numVoters := 12
	voters := make([]string, numVoters)
	for i := range voters {
		voters[i] = testutil.CreateTestVoter(t, env.db, "concurrent", electionID)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/elections/"+electionID+"/votes",
				models.CastVoteRequest{CandidateID: candidates[voterIdx%len(candidates)]},
				testutil.VoterHeaders(voters[voterIdx]))
			req.SetPathValue("id", electionID)
			w := httptest.NewRecorder()

			votingHandler.CastVote(w, req)

			if w.Code == http.StatusCreated {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful casts, got %d", numVoters, successCount.Load())
	}

	e, err := env.store.GetElection(t.Context(), electionID)
	if err != nil {
		t.Fatalf("Failed to load election: %v", err)
	}
	if e.TotalVotes != numVoters {
		t.Errorf("Expected total_votes %d, got %d", numVoters, e.TotalVotes)
	}

	sum := 0
	for _, id := range candidates {
		c, err := env.store.GetCandidate(t.Context(), id)
		if err != nil {
			t.Fatalf("Failed to load candidate: %v", err)
		}
		if c.VoteCount != numVoters/len(candidates) {
			t.Errorf("Expected %d votes for %s, got %d", numVoters/len(candidates), c.Name, c.VoteCount)
		}
		sum += c.VoteCount
	}
	if sum != e.TotalVotes {
		t.Errorf("Candidate counts sum to %d but total_votes is %d", sum, e.TotalVotes)
	}
}

// TestConcurrentCastsFromSameVoter verifies that when one voter fires many
// casts at once exactly one is recorded
func TestConcurrentCastsFromSameVoter(t *testing.T) {
	env := newTestEnv(t, nil)
	votingHandler := NewVotingHandler(env.store, env.svc)

	electionID := testutil.CreateOngoingElection(t, env.db)
	alice := testutil.AddTestCandidate(t, env.db, electionID, "Alice")
	bob := testutil.AddTestCandidate(t, env.db, electionID, "Bob")
	voter := testutil.CreateTestVoter(t, env.db, "eager", electionID)

	numAttempts := 10
	var created, conflicts atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			candidate := alice
			if idx%2 == 1 {
				candidate = bob
			}
			req := testutil.MakeRequest("POST", "/elections/"+electionID+"/votes",
				models.CastVoteRequest{CandidateID: candidate}, testutil.VoterHeaders(voter))
			req.SetPathValue("id", electionID)
			w := httptest.NewRecorder()

			votingHandler.CastVote(w, req)

			switch w.Code {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("Expected exactly 1 recorded cast, got %d", created.Load())
	}
	if int(conflicts.Load()) != numAttempts-1 {
		t.Errorf("Expected %d conflicts, got %d", numAttempts-1, conflicts.Load())
	}

	var ballots int
	if err := env.db.QueryRow("SELECT COUNT(*) FROM ballot WHERE voter_id = $1", voter).Scan(&ballots); err != nil {
		t.Fatalf("Failed to count ballots: %v", err)
	}
	if ballots != 1 {
		t.Errorf("Expected 1 ballot in database, got %d", ballots)
	}

	e, _ := env.store.GetElection(t.Context(), electionID)
	a, _ := env.store.GetCandidate(t.Context(), alice)
	b, _ := env.store.GetCandidate(t.Context(), bob)
	if e.TotalVotes != 1 || a.VoteCount+b.VoteCount != 1 {
		t.Errorf("Expected one counted vote, got total=%d alice=%d bob=%d", e.TotalVotes, a.VoteCount, b.VoteCount)
	}

	history, _ := env.store.VotedElections(t.Context(), voter)
	if len(history) != 1 {
		t.Errorf("Expected 1 history entry, got %d", len(history))
	}
}
