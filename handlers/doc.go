// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the electiond API.

# Handler Types

Each handler is a struct over the store and the voting service:

  - ElectionHandler: elections, candidates, voters and eligibility
  - VotingHandler: vote casts, voter history, ballot corrections
  - ResultsHandler: results and tally reconciliation

	electionHandler := handlers.NewElectionHandler(st, svc)

# Election Lifecycle

Elections move upcoming → ongoing → completed as their window opens and
closes. The lifecycle scheduler persists those transitions; handlers only
display the phase as of now.

# Error Mapping

Domain errors from the store map to status codes:

	ErrInvalidInput, ErrInvalidWindow, ErrCandidateNotInElection → 400
	ErrVoterNotEligible                                          → 403
	Err*NotFound                                                 → 404
	ErrDuplicateBallot, ErrElectionNotOngoing, ErrDuplicateEmail,
	ErrCandidateHasVotes                                         → 409

Anything else is logged and reported as 500 without details.
*/
package handlers
