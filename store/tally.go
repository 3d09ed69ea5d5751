// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/electiond/models"
)

// ReconcileReport counts the rows a reconciliation pass had to repair.
type ReconcileReport struct {
	Candidates int
	Elections  int
	History    int
}

// Drifted reports whether anything needed repair.
func (r ReconcileReport) Drifted() bool {
	return r.Candidates+r.Elections+r.History > 0
}

// adjustTallies moves both counters by delta with in-place increments, so
// a concurrent phase update on the same election row is never overwritten.
// Increments are refused once the election is completed: the election row is
// updated first and its WHERE clause is re-checked against a scheduler commit
// that raced the cast. A decrement that would go below zero is skipped and
// logged as drift for Reconcile to repair.
func adjustTallies(ctx context.Context, tx *sql.Tx, electionID, candidateID string, delta int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE election SET total_votes = total_votes + $1
		WHERE id = $2 AND total_votes + $1 >= 0 AND ($1 < 0 OR phase <> $3)
	`, delta, electionID, string(models.PhaseCompleted))
	if err != nil {
		return fmt.Errorf("failed to update election total: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		if delta > 0 {
			return &PhaseError{Phase: models.PhaseCompleted}
		}
		slog.Warn("tally drift: election total already zero",
			"election_id", electionID, "delta", delta)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE candidate SET vote_count = vote_count + $1
		WHERE id = $2 AND vote_count + $1 >= 0
	`, delta, candidateID)
	if err != nil {
		return fmt.Errorf("failed to update candidate tally: %w", err)
	}
	if n, err = affected(res); err != nil {
		return err
	}
	if n == 0 {
		if delta > 0 {
			return ErrCandidateNotInElection
		}
		slog.Warn("tally drift: candidate count already zero",
			"election_id", electionID, "candidate_id", candidateID, "delta", delta)
	}
	return nil
}

// listTallies returns per-candidate counts ordered by votes then id.
func listTallies(ctx context.Context, q queryer, electionID string) ([]models.Tally, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, vote_count FROM candidate WHERE election_id = $1 ORDER BY vote_count DESC, id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tallies: %w", err)
	}
	defer rows.Close()

	tallies := []models.Tally{}
	for rows.Next() {
		var t models.Tally
		if err := rows.Scan(&t.CandidateID, &t.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tallies: %w", err)
	}
	return tallies, nil
}

// ElectionTallies reads an election and its candidate tallies from one
// snapshot.
func (s *Store) ElectionTallies(ctx context.Context, electionID string) (models.Election, []models.Tally, error) {
	var (
		election models.Election
		tallies  []models.Tally
	)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		election, err = getElection(ctx, tx, electionID)
		if err != nil {
			return err
		}
		tallies, err = listTallies(ctx, tx, electionID)
		return err
	})
	if err != nil {
		return models.Election{}, nil, err
	}

	return election, tallies, nil
}

// Reconcile recounts ballots and overwrites any counter or history row that
// drifted from the ballot table, then re-derives the winner of every
// completed election. It is a repair path; casts and deletes keep the
// counters exact on their own.
func (s *Store) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE candidate
			SET vote_count = (SELECT COUNT(*) FROM ballot b WHERE b.candidate_id = candidate.id)
			WHERE vote_count <> (SELECT COUNT(*) FROM ballot b WHERE b.candidate_id = candidate.id)
		`)
		if err != nil {
			return fmt.Errorf("failed to reconcile candidate tallies: %w", err)
		}
		if report.Candidates, err = affected(res); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `
			UPDATE election
			SET total_votes = (SELECT COUNT(*) FROM ballot b WHERE b.election_id = election.id)
			WHERE total_votes <> (SELECT COUNT(*) FROM ballot b WHERE b.election_id = election.id)
		`)
		if err != nil {
			return fmt.Errorf("failed to reconcile election totals: %w", err)
		}
		if report.Elections, err = affected(res); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `
			DELETE FROM voted_election
			WHERE NOT EXISTS (
				SELECT 1 FROM ballot b
				WHERE b.voter_id = voted_election.voter_id
				  AND b.election_id = voted_election.election_id
				  AND b.candidate_id = voted_election.candidate_id
			)
		`)
		if err != nil {
			return fmt.Errorf("failed to prune voter history: %w", err)
		}
		pruned, err := affected(res)
		if err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `
			INSERT INTO voted_election (voter_id, election_id, candidate_id, voted_at)
			SELECT b.voter_id, b.election_id, b.candidate_id, b.cast_at
			FROM ballot b
			WHERE NOT EXISTS (
				SELECT 1 FROM voted_election v
				WHERE v.voter_id = b.voter_id AND v.election_id = b.election_id
			)
		`)
		if err != nil {
			return fmt.Errorf("failed to restore voter history: %w", err)
		}
		restored, err := affected(res)
		if err != nil {
			return err
		}
		report.History = pruned + restored

		completed, err := completedElectionIDs(ctx, tx)
		if err != nil {
			return err
		}
		for _, id := range completed {
			if err := refreshWinner(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ReconcileReport{}, err
	}

	return report, nil
}

func completedElectionIDs(ctx context.Context, tx *sql.Tx) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM election WHERE phase = $1`, string(models.PhaseCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query completed elections: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan election id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}
