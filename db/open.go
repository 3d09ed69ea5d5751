// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open connects to the database and verifies the connection.
//
// SQLite runs with a single connection so writers are serialised, foreign
// keys switched on, and a busy timeout for the rare lock contention.
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case TypePostgres:
		conn, err := sql.Open("postgres", url)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ping postgres: %w", err)
		}
		return conn, nil

	case TypeSQLite:
		conn, err := sql.Open("sqlite", sqliteDSN(url))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		conn.SetMaxOpenConns(1)
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ping sqlite: %w", err)
		}
		return conn, nil
	}

	return nil, fmt.Errorf("unsupported database type %q", dbType)
}

func sqliteDSN(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	if !strings.Contains(url, "foreign_keys") {
		url += sep + "_pragma=foreign_keys(1)"
		sep = "&"
	}
	if !strings.Contains(url, "busy_timeout") {
		url += sep + "_pragma=busy_timeout(5000)"
	}
	return url
}
