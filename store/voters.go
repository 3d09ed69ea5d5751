// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/danielhkuo/electiond/auth"
	"github.com/danielhkuo/electiond/models"
)

func (s *Store) CreateVoter(ctx context.Context, name, email string) (models.Voter, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return models.Voter{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Voter{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}

	id, err := auth.GenerateID()
	if err != nil {
		return models.Voter{}, err
	}

	v := models.Voter{ID: id, Name: name, Email: email, CreatedAt: time.Now().UTC()}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO voter (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`, v.ID, v.Name, v.Email, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Voter{}, ErrDuplicateEmail
		}
		return models.Voter{}, fmt.Errorf("failed to insert voter: %w", err)
	}

	return v, nil
}

func (s *Store) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, created_at FROM voter WHERE id = $1
	`, id).Scan(&v.ID, &v.Name, &v.Email, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, ErrVoterNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

// AssignVoter adds an election to a voter's eligibility set. Assigning twice
// is not an error.
func (s *Store) AssignVoter(ctx context.Context, voterID, electionID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM voter WHERE id = $1)`, voterID)
		if err != nil {
			return fmt.Errorf("failed to query voter: %w", err)
		}
		if !ok {
			return ErrVoterNotFound
		}
		if _, err := getElection(ctx, tx, electionID); err != nil {
			return err
		}

		ok, err = exists(ctx, tx, `
			SELECT EXISTS(SELECT 1 FROM voter_election WHERE voter_id = $1 AND election_id = $2)
		`, voterID, electionID)
		if err != nil {
			return fmt.Errorf("failed to query assignment: %w", err)
		}
		if ok {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO voter_election (voter_id, election_id) VALUES ($1, $2)
			ON CONFLICT (voter_id, election_id) DO NOTHING
		`, voterID, electionID)
		if err != nil {
			return fmt.Errorf("failed to assign voter: %w", err)
		}
		return nil
	})
}

// EligibleElections lists the elections a voter is assigned to, each
// flagged with whether the voter has already voted in it. Phases are as
// stored.
func (s *Store) EligibleElections(ctx context.Context, voterID string) ([]models.AssignedElection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.name, e.description, e.start_time, e.end_time, e.phase,
			e.total_votes, e.winner_candidate_id, e.winner_reason, e.created_at,
			EXISTS(SELECT 1 FROM voted_election v WHERE v.voter_id = ve.voter_id AND v.election_id = e.id)
		FROM voter_election ve
		JOIN election e ON e.id = ve.election_id
		WHERE ve.voter_id = $1
		ORDER BY e.start_time, e.id
	`, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	assigned := []models.AssignedElection{}
	for rows.Next() {
		var a models.AssignedElection
		e := &a.Election
		err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.StartTime, &e.EndTime, &e.Phase,
			&e.TotalVotes, &e.WinnerCandidateID, &e.WinnerReason, &e.CreatedAt,
			&a.HasVoted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assigned = append(assigned, a)
	}
	return assigned, rows.Err()
}

// DeleteVoter removes a voter along with their ballots, history and
// assignments. Each ballot is taken out of its election's tallies and any
// frozen winner it affected is re-derived, all in one transaction.
func (s *Store) DeleteVoter(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM voter WHERE id = $1)`, id)
		if err != nil {
			return fmt.Errorf("failed to query voter: %w", err)
		}
		if !ok {
			return ErrVoterNotFound
		}

		type vote struct{ election, candidate string }
		var votes []vote

		rows, err := tx.QueryContext(ctx, `
			SELECT election_id, candidate_id FROM ballot WHERE voter_id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("failed to query ballots: %w", err)
		}
		for rows.Next() {
			var v vote
			if err := rows.Scan(&v.election, &v.candidate); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan ballot: %w", err)
			}
			votes = append(votes, v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate ballots: %w", err)
		}

		for _, stmt := range []string{
			`DELETE FROM voted_election WHERE voter_id = $1`,
			`DELETE FROM ballot WHERE voter_id = $1`,
			`DELETE FROM voter_election WHERE voter_id = $1`,
			`DELETE FROM voter WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete voter: %w", err)
			}
		}

		for _, v := range votes {
			if err := adjustTallies(ctx, tx, v.election, v.candidate, -1); err != nil {
				return err
			}
			// One ballot per election, so each election is refreshed once.
			if err := refreshWinner(ctx, tx, v.election); err != nil {
				return err
			}
		}
		return nil
	})
}

// VotedElections returns the voter's votedElections set, newest first.
func (s *Store) VotedElections(ctx context.Context, voterID string) ([]models.VotedElection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT election_id, candidate_id, voted_at
		FROM voted_election
		WHERE voter_id = $1
		ORDER BY voted_at DESC, election_id
	`, voterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voter history: %w", err)
	}
	defer rows.Close()

	history := []models.VotedElection{}
	for rows.Next() {
		var v models.VotedElection
		if err := rows.Scan(&v.ElectionID, &v.CandidateID, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan voter history: %w", err)
		}
		history = append(history, v)
	}
	return history, rows.Err()
}
