// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting orchestrates a single vote cast, the admin ballot correction
path, and result queries.

	svc := voting.NewService(st, voting.Options{IPHashSalt: cfg.IPHashSalt})
	ballot, err := svc.CastVote(ctx, voting.CastRequest{
		VoterID:     voterID,
		ElectionID:  electionID,
		CandidateID: candidateID,
	})

# Errors

Rejections are returned unwrapped so callers can match them:

  - store.ErrInvalidInput: a required identifier is missing
  - store.ErrElectionNotFound
  - *store.PhaseError (errors.Is store.ErrElectionNotOngoing): carries the phase
  - store.ErrVoterNotEligible
  - store.ErrCandidateNotInElection
  - store.ErrDuplicateBallot: the voter already has a ballot for this election

Everything else is wrapped in ErrInternal.
*/
package voting
