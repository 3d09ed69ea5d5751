// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/electiond/models"
)

var (
	ErrElectionNotFound       = errors.New("election not found")
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrVoterNotFound          = errors.New("voter not found")
	ErrBallotNotFound         = errors.New("ballot not found")
	ErrDuplicateBallot        = errors.New("voter has already voted in this election")
	ErrElectionNotOngoing     = errors.New("election is not ongoing")
	ErrVoterNotEligible       = errors.New("voter is not assigned to this election")
	ErrCandidateNotInElection = errors.New("candidate does not belong to this election")
	ErrInvalidWindow          = errors.New("election must end after it starts")
	ErrInvalidInput           = errors.New("invalid input")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrCandidateHasVotes      = errors.New("candidate already has votes")
	ErrElectionCompleted      = errors.New("election has already completed")
)

// PhaseError rejects a cast outside the ongoing phase and carries the phase
// the election was actually in.
type PhaseError struct {
	Phase models.Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("election is %s: voting is only allowed during ongoing elections", e.Phase)
}

func (e *PhaseError) Is(target error) bool {
	return target == ErrElectionNotOngoing
}

// isUniqueViolation recognises unique and primary key violations from both
// supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// Primary code only when extended codes are off.
			msg := liteErr.Error()
			return strings.Contains(msg, "UNIQUE constraint failed") ||
				strings.Contains(msg, "PRIMARY KEY constraint failed")
		}
	}

	return false
}
