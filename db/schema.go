// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The statements are portable between PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP NOT NULL,
    phase TEXT NOT NULL DEFAULT 'upcoming' CHECK (phase IN ('upcoming', 'ongoing', 'completed')),
    total_votes INTEGER NOT NULL DEFAULT 0 CHECK (total_votes >= 0),
    winner_candidate_id TEXT,
    winner_reason TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_election_phase ON election(phase);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    photo TEXT NOT NULL DEFAULT '',
    vote_count INTEGER NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidate_election_id ON candidate(election_id);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Eligibility
CREATE TABLE IF NOT EXISTS voter_election (
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    PRIMARY KEY (voter_id, election_id)
);

CREATE INDEX IF NOT EXISTS idx_voter_election_election_id ON voter_election(election_id);

-- Ballots: at most one per (voter, election)
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
    cast_at TIMESTAMP NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (voter_id, election_id)
);

CREATE INDEX IF NOT EXISTS idx_ballot_election_id ON ballot(election_id);
CREATE INDEX IF NOT EXISTS idx_ballot_candidate_id ON ballot(candidate_id);

-- Voter history, mirrors ballot
CREATE TABLE IF NOT EXISTS voted_election (
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    candidate_id TEXT NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (voter_id, election_id)
);
`
