// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/electiond/auth"
	"github.com/danielhkuo/electiond/lifecycle"
	"github.com/danielhkuo/electiond/models"
	"github.com/danielhkuo/electiond/store"
)

// ErrInternal marks storage or infrastructure failures. It never means the
// vote was rejected; retrying a cast is safe because a second ballot for the
// same voter and election is refused by the store.
var ErrInternal = errors.New("internal error")

const maxUserAgent = 512

// Store is the persistence the service drives.
type Store interface {
	CastBallot(ctx context.Context, in store.BallotInput, now time.Time) (models.Ballot, error)
	RemoveBallot(ctx context.Context, id string) (models.Ballot, error)
	ElectionTallies(ctx context.Context, electionID string) (models.Election, []models.Tally, error)
	ListElections(ctx context.Context) ([]models.Election, error)
	VotedElections(ctx context.Context, voterID string) ([]models.VotedElection, error)
}

type Options struct {
	Clock      lifecycle.Clock
	IPHashSalt string
	Logger     *slog.Logger
}

// Metadata is what the transport layer knows about the client.
type Metadata struct {
	IP        string
	UserAgent string
}

type CastRequest struct {
	VoterID     string
	ElectionID  string
	CandidateID string
	Metadata    Metadata
}

// Service handles vote casts, admin ballot corrections, and result queries.
type Service struct {
	store  Store
	clock  lifecycle.Clock
	ipSalt string
	logger *slog.Logger
}

func NewService(st Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		clock:  lifecycle.ResolveClock(opts.Clock),
		ipSalt: opts.IPHashSalt,
		logger: logger.With("component", "voting"),
	}
}

// CastVote validates the identifiers and records one ballot. Business
// rejections come back as the store's sentinel errors (or *store.PhaseError);
// anything else is wrapped in ErrInternal.
func (s *Service) CastVote(ctx context.Context, req CastRequest) (models.Ballot, error) {
	req.VoterID = strings.TrimSpace(req.VoterID)
	req.ElectionID = strings.TrimSpace(req.ElectionID)
	req.CandidateID = strings.TrimSpace(req.CandidateID)

	switch {
	case req.VoterID == "":
		return models.Ballot{}, fmt.Errorf("%w: voter_id is required", store.ErrInvalidInput)
	case req.ElectionID == "":
		return models.Ballot{}, fmt.Errorf("%w: election_id is required", store.ErrInvalidInput)
	case req.CandidateID == "":
		return models.Ballot{}, fmt.Errorf("%w: candidate_id is required", store.ErrInvalidInput)
	}

	userAgent := req.Metadata.UserAgent
	if len(userAgent) > maxUserAgent {
		userAgent = userAgent[:maxUserAgent]
	}

	ballot, err := s.store.CastBallot(ctx, store.BallotInput{
		VoterID:     req.VoterID,
		ElectionID:  req.ElectionID,
		CandidateID: req.CandidateID,
		IPHash:      auth.HashIP(req.Metadata.IP, s.ipSalt),
		UserAgent:   userAgent,
	}, s.clock.Now())
	if err != nil {
		if IsRejection(err) {
			s.logger.Info("vote rejected",
				"voter_id", req.VoterID,
				"election_id", req.ElectionID,
				"candidate_id", req.CandidateID,
				"reason", err.Error(),
			)
			return models.Ballot{}, err
		}
		s.logger.Error("failed to cast vote", "error", err,
			"voter_id", req.VoterID,
			"election_id", req.ElectionID,
		)
		return models.Ballot{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	s.logger.Info("vote cast",
		"ballot_id", ballot.ID,
		"election_id", ballot.ElectionID,
		"candidate_id", ballot.CandidateID,
	)
	return ballot, nil
}

// DeleteBallot is the admin correction path; tallies are decremented with
// the delete.
func (s *Service) DeleteBallot(ctx context.Context, ballotID string) error {
	ballotID = strings.TrimSpace(ballotID)
	if ballotID == "" {
		return fmt.Errorf("%w: ballot_id is required", store.ErrInvalidInput)
	}

	b, err := s.store.RemoveBallot(ctx, ballotID)
	if err != nil {
		if errors.Is(err, store.ErrBallotNotFound) {
			return err
		}
		s.logger.Error("failed to delete ballot", "error", err, "ballot_id", ballotID)
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}

	s.logger.Info("ballot deleted",
		"ballot_id", b.ID,
		"election_id", b.ElectionID,
		"candidate_id", b.CandidateID,
	)
	return nil
}

// Results reports tallies, the phase as of now, and the winner decision.
// The phase shown is recomputed from the window for display only; the
// scheduler remains the one that persists it. Once the stored phase is
// completed the frozen winner is returned. If the window has closed but the
// scheduler has not run yet, the winner is derived from the tallies without
// being written, which is safe because no vote can arrive any more.
func (s *Service) Results(ctx context.Context, electionID string) (models.Results, error) {
	electionID = strings.TrimSpace(electionID)
	if electionID == "" {
		return models.Results{}, fmt.Errorf("%w: election_id is required", store.ErrInvalidInput)
	}

	e, tallies, err := s.store.ElectionTallies(ctx, electionID)
	if err != nil {
		if errors.Is(err, store.ErrElectionNotFound) {
			return models.Results{}, err
		}
		return models.Results{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	res := models.Results{
		ElectionID: e.ID,
		Candidates: tallies,
		TotalVotes: e.TotalVotes,
		Phase:      s.livePhase(e, s.clock.Now()),
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
	}

	switch {
	case e.Phase == models.PhaseCompleted && e.WinnerReason != "":
		res.WinnerCandidateID = e.WinnerCandidateID
		res.WinnerReason = e.WinnerReason
	case res.Phase == models.PhaseCompleted:
		outcome := lifecycle.ResolveWinner(tallies)
		res.WinnerCandidateID = outcome.WinnerID
		res.WinnerReason = outcome.Reason
	default:
		res.WinnerReason = models.ReasonPending
	}

	return res, nil
}

// ListElections returns elections with their phase as of now, optionally
// filtered by that phase. Nothing is written back.
func (s *Service) ListElections(ctx context.Context, phase models.Phase) ([]models.Election, error) {
	if phase != "" && !phase.Valid() {
		return nil, fmt.Errorf("%w: unknown phase %q", store.ErrInvalidInput, phase)
	}

	elections, err := s.store.ListElections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	now := s.clock.Now()
	filtered := make([]models.Election, 0, len(elections))
	for _, e := range elections {
		e.Phase = s.livePhase(e, now)
		if phase == "" || e.Phase == phase {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// VoterHistory returns the elections a voter has already voted in.
func (s *Service) VoterHistory(ctx context.Context, voterID string) ([]models.VotedElection, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return nil, fmt.Errorf("%w: voter_id is required", store.ErrInvalidInput)
	}

	history, err := s.store.VotedElections(ctx, voterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return history, nil
}

// Now reads the service clock.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// CurrentPhase is the phase of e as of now, for display.
func (s *Service) CurrentPhase(e models.Election) models.Phase {
	return s.livePhase(e, s.clock.Now())
}

// livePhase never reports a phase behind the stored one.
func (s *Service) livePhase(e models.Election, now time.Time) models.Phase {
	live := lifecycle.ResolvePhase(e.StartTime, e.EndTime, now)
	if live.Rank() < e.Phase.Rank() {
		return e.Phase
	}
	return live
}

// IsRejection reports whether err is a business outcome rather than a fault.
func IsRejection(err error) bool {
	for _, target := range []error{
		store.ErrInvalidInput,
		store.ErrDuplicateBallot,
		store.ErrElectionNotOngoing,
		store.ErrVoterNotEligible,
		store.ErrCandidateNotInElection,
		store.ErrElectionNotFound,
		store.ErrBallotNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
