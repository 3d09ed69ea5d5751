// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands built with cobra bind the same flags on their own flag set and call
Resolve once parsing is done:

	cliparse.BindFlags(rootCmd.PersistentFlags(), &cfg)
	cfg, err = cliparse.Resolve(cfg)

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: connection string (default: file:electiond.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKey: key required in X-Admin-Key (required)
  - IPHashSalt: salt for ballot IP hashes (required)
  - TickInterval: lifecycle scheduler interval (default: 30s)
  - LogLevel: debug, info, warn, error (default: info)

# CLI Flags

	-p, --port          Server port
	-d, --database-url  Database URL
	-t, --database-type Database type
	--admin-key         Admin API key
	--ip-salt           IP hash salt
	--tick-interval     Scheduler interval
	--log-level         Log level
	--env-file          Dotenv file (default: .env)

# Environment Variables

The dotenv file is loaded first; it never overrides variables already set.
Flags then fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	ADMIN_KEY     → --admin-key
	IP_HASH_SALT  → --ip-salt
	TICK_INTERVAL → --tick-interval
	LOG_LEVEL     → --log-level

CLI flags take precedence over environment variables.

# Validation

Resolve returns an error if ADMIN_KEY or IP_HASH_SALT is missing, the
database type is unknown, the tick interval is under a second, or the log
level cannot be parsed.
*/
package cliparse
