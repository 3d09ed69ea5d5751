// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared by the
store, the voting service, and the HTTP handlers.

# Request Types

  - CreateElectionRequest: name, description, start_time, end_time
  - AddCandidateRequest: name, description, photo
  - UpdateCandidateRequest: optional fields, optional election_id to reassign
  - CreateVoterRequest: name, email
  - AssignVoterRequest: election_id
  - CastVoteRequest: candidate_id

# Domain Types

  - Election: window, cached phase, total_votes, frozen winner
  - Candidate: belongs to one election, vote_count
  - Voter / VotedElection: eligibility and ballots already cast
  - Ballot: immutable record of one voter's choice in one election
  - Tally / Outcome / Results: the tallying read model

# Constants

Phases move one way only:

	PhaseUpcoming -> PhaseOngoing -> PhaseCompleted

Winner reasons:

	ReasonNoCandidates, ReasonNoVotes, ReasonTie, ReasonClear, ReasonPending
*/
package models
