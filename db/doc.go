// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

	conn, err := db.Open(db.TypeSQLite, "file:electiond.db")

PostgreSQL (github.com/lib/pq) and SQLite (modernc.org/sqlite) are supported.
All queries in the codebase use $N placeholders, which both drivers accept.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - election: window, cached phase, total_votes, frozen winner
  - candidate: one election each, vote_count
  - voter: registered voters
  - voter_election: which elections a voter may vote in
  - ballot: one row per cast vote, UNIQUE (voter_id, election_id)
  - voted_election: per-voter history, kept in step with ballot

# Relationships

	election 1──* candidate
	election *──* voter (via voter_election)
	(voter, election) ──0..1 ballot ──1 candidate

The UNIQUE (voter_id, election_id) constraint on ballot is what guarantees a
voter casts at most one ballot per election, whatever the request concurrency.
Counters on election and candidate are derived from ballot and updated in the
same transaction as every ballot insert or delete.
*/
package db
