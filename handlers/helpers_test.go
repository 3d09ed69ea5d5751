// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"testing"

	"github.com/danielhkuo/electiond/lifecycle"
	"github.com/danielhkuo/electiond/store"
	"github.com/danielhkuo/electiond/testutil"
	"github.com/danielhkuo/electiond/voting"
)

type testEnv struct {
	db    *sql.DB
	store *store.Store
	svc   *voting.Service
}

// newTestEnv wires a store and voting service over a fresh database.
// A nil clock means wall-clock time.
func newTestEnv(t *testing.T, clock lifecycle.Clock) testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	st := store.New(db)
	svc := voting.NewService(st, voting.Options{
		Clock:      clock,
		IPHashSalt: testutil.GetTestConfig().IPHashSalt,
	})
	return testEnv{db: db, store: st, svc: svc}
}

func castInput(voterID, electionID, candidateID string) store.BallotInput {
	return store.BallotInput{VoterID: voterID, ElectionID: electionID, CandidateID: candidateID}
}
