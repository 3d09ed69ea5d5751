// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"file:test.db", "file:test.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:test.db?mode=rwc", "file:test.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:test.db?_pragma=busy_timeout(100)", "file:test.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestOpenRejectsUnknownType(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorContains(t, err, "unsupported database type")
}

func TestCreateSchemaIsIdempotent(t *testing.T) {
	conn, err := Open(TypeSQLite, "file:"+filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, CreateSchema(conn))
	require.NoError(t, CreateSchema(conn))

	for _, table := range []string{"election", "candidate", "voter", "voter_election", "ballot", "voted_election"} {
		var n int
		err := conn.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestSchemaEnforcesOneBallotPerVoter(t *testing.T) {
	conn, err := Open(TypeSQLite, "file:"+filepath.Join(t.TempDir(), "unique.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, CreateSchema(conn))

	_, err = conn.Exec(`
		INSERT INTO election (id, name, start_time, end_time, phase) VALUES ('e', 'E', '2025-01-01 00:00:00', '2025-01-02 00:00:00', 'ongoing');
		INSERT INTO candidate (id, election_id, name) VALUES ('c', 'e', 'C');
		INSERT INTO voter (id, name, email) VALUES ('v', 'V', 'v@example.com');
		INSERT INTO ballot (id, voter_id, election_id, candidate_id, cast_at) VALUES ('b1', 'v', 'e', 'c', '2025-01-01 12:00:00');
	`)
	require.NoError(t, err)

	_, err = conn.Exec(`
		INSERT INTO ballot (id, voter_id, election_id, candidate_id, cast_at) VALUES ('b2', 'v', 'e', 'c', '2025-01-01 13:00:00')
	`)
	assert.Error(t, err)

	_, err = conn.Exec(`UPDATE candidate SET vote_count = -1 WHERE id = 'c'`)
	assert.Error(t, err, "negative tallies are rejected")

	_, err = conn.Exec(`UPDATE election SET phase = 'paused' WHERE id = 'e'`)
	assert.Error(t, err, "unknown phases are rejected")
}
