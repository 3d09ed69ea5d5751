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
	"github.com/danielhkuo/electiond/models"
)

const candidateColumns = `id, election_id, name, description, photo, vote_count, created_at`

type CandidateInput struct {
	Name        string
	Description string
	Photo       string
}

// CandidatePatch holds optional edits. A non-nil ElectionID reassigns the
// candidate to another election.
type CandidatePatch struct {
	Name        *string
	Description *string
	Photo       *string
	ElectionID  *string
}

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Description, &c.Photo, &c.VoteCount, &c.CreatedAt)
	return c, err
}

func (s *Store) AddCandidate(ctx context.Context, electionID string, in CandidateInput) (models.Candidate, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Candidate{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	id, err := auth.GenerateID()
	if err != nil {
		return models.Candidate{}, err
	}

	c := models.Candidate{
		ID:          id,
		ElectionID:  electionID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Photo:       strings.TrimSpace(in.Photo),
		CreatedAt:   time.Now().UTC(),
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getElection(ctx, tx, electionID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO candidate (id, election_id, name, description, photo, vote_count, created_at)
			VALUES ($1, $2, $3, $4, $5, 0, $6)
		`, c.ID, c.ElectionID, c.Name, c.Description, c.Photo, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Candidate{}, err
	}

	return c, nil
}

func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	return getCandidate(ctx, s.db, id)
}

func getCandidate(ctx context.Context, q queryer, id string) (models.Candidate, error) {
	c, err := scanCandidate(q.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidate WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, ErrCandidateNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns an election's candidates, most votes first.
func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+candidateColumns+`
		FROM candidate
		WHERE election_id = $1
		ORDER BY vote_count DESC, id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return candidates, nil
}

// UpdateCandidate applies a patch with partial updates. Reassigning a
// candidate that already holds votes is refused: its ballots reference the
// old election and moving it would break both elections' tallies.
func (s *Store) UpdateCandidate(ctx context.Context, id string, patch CandidatePatch) (models.Candidate, error) {
	var updated models.Candidate

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getCandidate(ctx, tx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE candidate SET name = $1 WHERE id = $2`, name, id); err != nil {
				return fmt.Errorf("failed to update candidate: %w", err)
			}
		}
		if patch.Description != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE candidate SET description = $1 WHERE id = $2`,
				strings.TrimSpace(*patch.Description), id); err != nil {
				return fmt.Errorf("failed to update candidate: %w", err)
			}
		}
		if patch.Photo != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE candidate SET photo = $1 WHERE id = $2`,
				strings.TrimSpace(*patch.Photo), id); err != nil {
				return fmt.Errorf("failed to update candidate: %w", err)
			}
		}

		if patch.ElectionID != nil && *patch.ElectionID != c.ElectionID {
			if _, err := getElection(ctx, tx, *patch.ElectionID); err != nil {
				return err
			}

			// Conditional on zero votes so a ballot committed since the read
			// above still blocks the move.
			res, err := tx.ExecContext(ctx, `
				UPDATE candidate SET election_id = $1 WHERE id = $2 AND vote_count = 0
			`, *patch.ElectionID, id)
			if err != nil {
				return fmt.Errorf("failed to reassign candidate: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to reassign candidate: %w", err)
			}
			if n == 0 {
				return ErrCandidateHasVotes
			}
		}

		updated, err = getCandidate(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Candidate{}, err
	}

	return updated, nil
}

// DeleteCandidate removes a candidate together with the ballots cast for it,
// taking those ballots out of the election total and the voters' history.
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getCandidate(ctx, tx, id)
		if err != nil {
			return err
		}

		var ballots int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM ballot WHERE candidate_id = $1`, id).Scan(&ballots); err != nil {
			return fmt.Errorf("failed to count ballots: %w", err)
		}

		for _, stmt := range []string{
			`DELETE FROM voted_election WHERE candidate_id = $1`,
			`DELETE FROM ballot WHERE candidate_id = $1`,
			`DELETE FROM candidate WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete candidate: %w", err)
			}
		}

		if ballots > 0 {
			_, err := tx.ExecContext(ctx, `
				UPDATE election
				SET total_votes = CASE WHEN total_votes >= $1 THEN total_votes - $1 ELSE 0 END
				WHERE id = $2
			`, ballots, c.ElectionID)
			if err != nil {
				return fmt.Errorf("failed to update election total: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE election SET winner_candidate_id = NULL WHERE id = $1 AND winner_candidate_id = $2
		`, c.ElectionID, id)
		if err != nil {
			return fmt.Errorf("failed to clear winner: %w", err)
		}

		return refreshWinner(ctx, tx, c.ElectionID)
	})
}
