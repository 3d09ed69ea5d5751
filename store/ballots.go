// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/electiond/auth"
	"github.com/danielhkuo/electiond/lifecycle"
	"github.com/danielhkuo/electiond/models"
)

type BallotInput struct {
	VoterID     string
	ElectionID  string
	CandidateID string
	IPHash      string
	UserAgent   string
}

const ballotColumns = `id, voter_id, election_id, candidate_id, cast_at, ip_hash, user_agent`

func scanBallot(row rowScanner) (models.Ballot, error) {
	var b models.Ballot
	err := row.Scan(&b.ID, &b.VoterID, &b.ElectionID, &b.CandidateID, &b.CastAt, &b.IPHash, &b.UserAgent)
	return b, err
}

// CastBallot records one vote. Preconditions are checked in order inside the
// transaction: the election exists, it is not stored as completed and is
// ongoing at now, the voter is
// eligible, the candidate belongs to the election, and the voter has no
// ballot for it yet. The last check is backed by UNIQUE (voter_id,
// election_id), so of two concurrent casts for the same pair exactly one
// commits and the other gets ErrDuplicateBallot. The ballot, the voter's
// history entry, and both counters commit together or not at all.
func (s *Store) CastBallot(ctx context.Context, in BallotInput, now time.Time) (models.Ballot, error) {
	id, err := auth.GenerateID()
	if err != nil {
		return models.Ballot{}, err
	}

	ballot := models.Ballot{
		ID:          id,
		VoterID:     in.VoterID,
		ElectionID:  in.ElectionID,
		CandidateID: in.CandidateID,
		CastAt:      now.UTC(),
	}
	if in.IPHash != "" {
		ballot.IPHash = &in.IPHash
	}
	if in.UserAgent != "" {
		ballot.UserAgent = &in.UserAgent
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			start, end time.Time
			stored     models.Phase
		)
		err := tx.QueryRowContext(ctx, `
			SELECT start_time, end_time, phase FROM election WHERE id = $1
		`, in.ElectionID).Scan(&start, &end, &stored)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrElectionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query election: %w", err)
		}

		// now may have been read before the scheduler completed the election
		// and froze its winner; the stored phase wins.
		if stored == models.PhaseCompleted {
			return &PhaseError{Phase: stored}
		}
		if phase := lifecycle.ResolvePhase(start, end, now); phase != models.PhaseOngoing {
			return &PhaseError{Phase: phase}
		}

		eligible, err := exists(ctx, tx, `
			SELECT EXISTS(SELECT 1 FROM voter_election WHERE voter_id = $1 AND election_id = $2)
		`, in.VoterID, in.ElectionID)
		if err != nil {
			return fmt.Errorf("failed to check eligibility: %w", err)
		}
		if !eligible {
			return ErrVoterNotEligible
		}

		var candidateElection string
		err = tx.QueryRowContext(ctx, `
			SELECT election_id FROM candidate WHERE id = $1
		`, in.CandidateID).Scan(&candidateElection)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && candidateElection != in.ElectionID) {
			return ErrCandidateNotInElection
		}
		if err != nil {
			return fmt.Errorf("failed to query candidate: %w", err)
		}

		voted, err := exists(ctx, tx, `
			SELECT EXISTS(SELECT 1 FROM ballot WHERE voter_id = $1 AND election_id = $2)
		`, in.VoterID, in.ElectionID)
		if err != nil {
			return fmt.Errorf("failed to check existing ballot: %w", err)
		}
		if voted {
			return ErrDuplicateBallot
		}

		// The constraint, not the check above, decides races.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO ballot (id, voter_id, election_id, candidate_id, cast_at, ip_hash, user_agent)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, ballot.ID, ballot.VoterID, ballot.ElectionID, ballot.CandidateID, ballot.CastAt,
			nullString(ballot.IPHash), nullString(ballot.UserAgent))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateBallot
			}
			return fmt.Errorf("failed to insert ballot: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO voted_election (voter_id, election_id, candidate_id, voted_at)
			VALUES ($1, $2, $3, $4)
		`, ballot.VoterID, ballot.ElectionID, ballot.CandidateID, ballot.CastAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateBallot
			}
			return fmt.Errorf("failed to record voter history: %w", err)
		}

		return adjustTallies(ctx, tx, ballot.ElectionID, ballot.CandidateID, 1)
	})
	if err != nil {
		return models.Ballot{}, err
	}

	return ballot, nil
}

// RemoveBallot deletes a ballot and undoes everything CastBallot did, in one
// transaction. A completed election gets its winner re-derived.
func (s *Store) RemoveBallot(ctx context.Context, id string) (models.Ballot, error) {
	var removed models.Ballot

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := scanBallot(tx.QueryRowContext(ctx,
			`SELECT `+ballotColumns+` FROM ballot WHERE id = $1`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBallotNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query ballot: %w", err)
		}
		removed = b

		if _, err := tx.ExecContext(ctx, `DELETE FROM ballot WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete ballot: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			DELETE FROM voted_election WHERE voter_id = $1 AND election_id = $2
		`, b.VoterID, b.ElectionID)
		if err != nil {
			return fmt.Errorf("failed to delete voter history: %w", err)
		}

		if err := adjustTallies(ctx, tx, b.ElectionID, b.CandidateID, -1); err != nil {
			return err
		}
		return refreshWinner(ctx, tx, b.ElectionID)
	})
	if err != nil {
		return models.Ballot{}, err
	}

	return removed, nil
}

func (s *Store) GetBallot(ctx context.Context, id string) (models.Ballot, error) {
	b, err := scanBallot(s.db.QueryRowContext(ctx,
		`SELECT `+ballotColumns+` FROM ballot WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ballot{}, ErrBallotNotFound
	}
	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to query ballot: %w", err)
	}
	return b, nil
}

// ListBallots returns an election's ballots, newest first.
func (s *Store) ListBallots(ctx context.Context, electionID string) ([]models.Ballot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ballotColumns+`
		FROM ballot
		WHERE election_id = $1
		ORDER BY cast_at DESC, id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	ballots := []models.Ballot{}
	for rows.Next() {
		b, err := scanBallot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		ballots = append(ballots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ballots: %w", err)
	}

	return ballots, nil
}
