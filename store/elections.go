// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/electiond/auth"
	"github.com/danielhkuo/electiond/lifecycle"
	"github.com/danielhkuo/electiond/models"
)

const electionColumns = `id, name, description, start_time, end_time, phase,
	total_votes, winner_candidate_id, winner_reason, created_at`

type ElectionInput struct {
	Name        string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

func scanElection(row rowScanner) (models.Election, error) {
	var e models.Election
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.StartTime, &e.EndTime, &e.Phase,
		&e.TotalVotes, &e.WinnerCandidateID, &e.WinnerReason, &e.CreatedAt,
	)
	return e, err
}

// CreateElection stores a new election in the upcoming phase. Only the
// scheduler moves it forward from there.
func (s *Store) CreateElection(ctx context.Context, in ElectionInput) (models.Election, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Election{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return models.Election{}, fmt.Errorf("%w: start_time and end_time are required", ErrInvalidInput)
	}
	if !in.StartTime.Before(in.EndTime) {
		return models.Election{}, ErrInvalidWindow
	}

	id, err := auth.GenerateID()
	if err != nil {
		return models.Election{}, err
	}

	e := models.Election{
		ID:          id,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Phase:       models.PhaseUpcoming,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO election (id, name, description, start_time, end_time, phase, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Name, e.Description, e.StartTime, e.EndTime, string(e.Phase), e.CreatedAt)
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to insert election: %w", err)
	}

	return e, nil
}

func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	return getElection(ctx, s.db, id)
}

func getElection(ctx context.Context, q queryer, id string) (models.Election, error) {
	e, err := scanElection(q.QueryRowContext(ctx,
		`SELECT `+electionColumns+` FROM election WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Election{}, ErrElectionNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}
	return e, nil
}

// ListElections returns every election, newest first.
func (s *Store) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+electionColumns+` FROM election ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate elections: %w", err)
	}

	return elections, nil
}

// DeleteElection removes an election after its ballots, voter history,
// assignments, and candidates.
func (s *Store) DeleteElection(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getElection(ctx, tx, id); err != nil {
			return err
		}

		for _, stmt := range []string{
			`DELETE FROM voted_election WHERE election_id = $1`,
			`DELETE FROM ballot WHERE election_id = $1`,
			`DELETE FROM voter_election WHERE election_id = $1`,
			`DELETE FROM candidate WHERE election_id = $1`,
			`DELETE FROM election WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete election: %w", err)
			}
		}
		return nil
	})
}

// ElectionPatch holds optional edits to an election.
type ElectionPatch struct {
	Name        *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// UpdateElection applies a patch. The merged window must still have start
// before end. The window of a completed election is fixed since its winner
// was derived from it; its name and description stay editable. The stored
// phase is left to the scheduler, which never moves it backwards.
func (s *Store) UpdateElection(ctx context.Context, id string, patch ElectionPatch) (models.Election, error) {
	var updated models.Election

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getElection(ctx, tx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			e.Name = strings.TrimSpace(*patch.Name)
			if e.Name == "" {
				return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
			}
		}
		if patch.Description != nil {
			e.Description = strings.TrimSpace(*patch.Description)
		}

		windowChanged := false
		if patch.StartTime != nil {
			if patch.StartTime.IsZero() {
				return fmt.Errorf("%w: start_time cannot be empty", ErrInvalidInput)
			}
			windowChanged = windowChanged || !patch.StartTime.Equal(e.StartTime)
			e.StartTime = patch.StartTime.UTC()
		}
		if patch.EndTime != nil {
			if patch.EndTime.IsZero() {
				return fmt.Errorf("%w: end_time cannot be empty", ErrInvalidInput)
			}
			windowChanged = windowChanged || !patch.EndTime.Equal(e.EndTime)
			e.EndTime = patch.EndTime.UTC()
		}
		if !e.StartTime.Before(e.EndTime) {
			return ErrInvalidWindow
		}

		// The window update is conditional on the phase so a scheduler
		// commit since the read above still blocks it.
		query := `UPDATE election SET name = $1, description = $2, start_time = $3, end_time = $4 WHERE id = $5`
		args := []any{e.Name, e.Description, e.StartTime, e.EndTime, id}
		if windowChanged {
			query += ` AND phase <> $6`
			args = append(args, string(models.PhaseCompleted))
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update election: %w", err)
		}
		n, err := affected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrElectionCompleted
		}

		updated, err = getElection(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Election{}, err
	}

	return updated, nil
}

// AdvancePhase moves an election from one phase to the next with a
// compare-and-set on the stored phase. When the transition enters the
// completed phase, decide is applied to the election's tallies and the
// outcome is stored in the same transaction. A lost compare-and-set returns
// Applied == false and writes nothing.
func (s *Store) AdvancePhase(
	ctx context.Context,
	electionID string,
	from, to models.Phase,
	decide func([]models.Tally) models.Outcome,
) (models.PhaseChange, error) {
	change := models.PhaseChange{From: from, To: to}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE election SET phase = $1 WHERE id = $2 AND phase = $3
		`, string(to), electionID, string(from))
		if err != nil {
			return fmt.Errorf("failed to update phase: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update phase: %w", err)
		}
		if n == 0 {
			return nil
		}
		change.Applied = true

		if to != models.PhaseCompleted {
			return nil
		}

		tallies, err := listTallies(ctx, tx, electionID)
		if err != nil {
			return err
		}
		outcome := decide(tallies)
		if err := storeOutcome(ctx, tx, electionID, outcome); err != nil {
			return err
		}
		change.Outcome = &outcome
		return nil
	})
	if err != nil {
		return models.PhaseChange{From: from, To: to}, err
	}

	return change, nil
}

func storeOutcome(ctx context.Context, tx *sql.Tx, electionID string, outcome models.Outcome) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE election SET winner_candidate_id = $1, winner_reason = $2 WHERE id = $3
	`, nullString(outcome.WinnerID), string(outcome.Reason), electionID)
	if err != nil {
		return fmt.Errorf("failed to store winner: %w", err)
	}
	return nil
}

// refreshWinner re-derives the frozen winner of a completed election after
// an admin correction changed its tallies. Elections in other phases have no
// winner to refresh.
func refreshWinner(ctx context.Context, tx *sql.Tx, electionID string) error {
	var phase models.Phase
	err := tx.QueryRowContext(ctx, `SELECT phase FROM election WHERE id = $1`, electionID).Scan(&phase)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query election phase: %w", err)
	}
	if phase != models.PhaseCompleted {
		return nil
	}

	tallies, err := listTallies(ctx, tx, electionID)
	if err != nil {
		return err
	}
	return storeOutcome(ctx, tx, electionID, lifecycle.ResolveWinner(tallies))
}
