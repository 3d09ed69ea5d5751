package models

import "time"

// Phase is the lifecycle state of an election, derived from its window.
type Phase string

// Election phase constants
const (
	PhaseUpcoming  Phase = "upcoming"
	PhaseOngoing   Phase = "ongoing"
	PhaseCompleted Phase = "completed"
)

// Rank orders phases along the one-way upcoming -> ongoing -> completed path.
func (p Phase) Rank() int {
	switch p {
	case PhaseUpcoming:
		return 0
	case PhaseOngoing:
		return 1
	case PhaseCompleted:
		return 2
	}
	return -1
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	return p.Rank() >= 0
}

// WinnerReason explains how a winner decision was reached.
type WinnerReason string

// Winner reason constants
const (
	ReasonNoCandidates WinnerReason = "no_candidates"
	ReasonNoVotes      WinnerReason = "no_votes"
	ReasonTie          WinnerReason = "tie"
	ReasonClear        WinnerReason = "clear"
	ReasonPending      WinnerReason = "pending" // election has not completed yet
)

// Request types

type CreateElectionRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Nil fields are left unchanged.
type UpdateElectionRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

type AddCandidateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
}

// Nil fields are left unchanged. ElectionID moves the candidate.
type UpdateCandidateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Photo       *string `json:"photo,omitempty"`
	ElectionID  *string `json:"election_id,omitempty"`
}

type CreateVoterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AssignVoterRequest struct {
	ElectionID string `json:"election_id"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
}

type AddCandidateResponse struct {
	CandidateID string `json:"candidate_id"`
}

type CreateVoterResponse struct {
	VoterID string `json:"voter_id"`
}

type CastVoteResponse struct {
	BallotID string    `json:"ballot_id"`
	CastAt   time.Time `json:"cast_at"`
	Message  string    `json:"message"`
}

type ReconcileResponse struct {
	CandidatesRepaired int `json:"candidates_repaired"`
	ElectionsRepaired  int `json:"elections_repaired"`
	HistoryRepaired    int `json:"history_repaired"`
}

// Domain types

type Election struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	StartTime         time.Time    `json:"start_time"`
	EndTime           time.Time    `json:"end_time"`
	Phase             Phase        `json:"phase"`
	TotalVotes        int          `json:"total_votes"`
	WinnerCandidateID *string      `json:"winner_candidate_id"`
	WinnerReason      WinnerReason `json:"winner_reason,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
}

type Candidate struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Photo       string    `json:"photo"`
	VoteCount   int       `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type ElectionWithCandidates struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

type Voter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignedElection is an election on a voter's eligibility list.
type AssignedElection struct {
	Election
	HasVoted bool `json:"has_voted"`
}

// VotedElection is one entry of a voter's votedElections set.
type VotedElection struct {
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	VotedAt     time.Time `json:"voted_at"`
}

type Ballot struct {
	ID          string    `json:"id"`
	VoterID     string    `json:"voter_id"`
	ElectionID  string    `json:"election_id"`
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

// Tally is a candidate's vote count at a point in time.
type Tally struct {
	CandidateID string `json:"candidate_id"`
	VoteCount   int    `json:"vote_count"`
}

// Outcome is the result of resolving a winner from tallies.
type Outcome struct {
	WinnerID *string      `json:"winner_candidate_id"`
	Reason   WinnerReason `json:"winner_reason"`
}

// Results is the read model for an election's tallies.
type Results struct {
	ElectionID        string       `json:"election_id"`
	Candidates        []Tally      `json:"candidates"`
	TotalVotes        int          `json:"total_votes"`
	Phase             Phase        `json:"phase"`
	WinnerCandidateID *string      `json:"winner_candidate_id"`
	WinnerReason      WinnerReason `json:"winner_reason"`
	StartTime         time.Time    `json:"start_time"`
	EndTime           time.Time    `json:"end_time"`
}

// ResultsResponse decorates Results for HTTP clients.
type ResultsResponse struct {
	Results
	Closes string `json:"closes"` // e.g. "3 days from now" or "2 hours ago"
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// PhaseChange reports a compare-and-set phase transition. Outcome is set only
// when the transition entered the completed phase.
type PhaseChange struct {
	Applied bool
	From    Phase
	To      Phase
	Outcome *Outcome
}
