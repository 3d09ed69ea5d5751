// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the electiond command.

electiond runs time-windowed elections: each election opens and closes on a
schedule, eligible voters cast exactly one vote per election, and the winner
is frozen when the election completes.

# Commands

	electiond serve      # HTTP API plus the lifecycle scheduler
	electiond migrate    # create the schema and exit
	electiond tick       # one scheduler pass, for cron-style deployments
	electiond reconcile  # recount tallies from ballots

# Configuration

Flags win over environment variables, which win over defaults. A .env file
is loaded first when present (--env-file).

Required settings:

  - ADMIN_KEY (--admin-key): Key expected in X-Admin-Key on admin routes
  - IP_HASH_SALT (--ip-salt): Salt for hashing client IPs stored on ballots

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Connection string (default: file:electiond.db)
  - TICK_INTERVAL (--tick-interval): Scheduler interval (default: 30s)
  - LOG_LEVEL (--log-level): debug, info, warn or error (default: info)

# Architecture

  - lifecycle: Phase and winner resolution, the scheduler
  - store: Transactional persistence and tally bookkeeping
  - voting: Vote casting and result queries over the store
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin check, JSON helpers
  - models: Domain, request and response types
  - auth: IDs, admin key and voter header checks, IP hashing
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
