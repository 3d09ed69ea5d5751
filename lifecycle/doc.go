// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle decides when an election accepts votes and who won it.

# Phase

ResolvePhase is a pure function of the election window and one clock reading:

	now < start       -> upcoming
	start <= now <= end -> ongoing
	now > end         -> completed

# Winner

ResolveWinner inspects candidate tallies and reports one of no_candidates,
no_votes, tie, or clear. Only clear carries a winner.

# Scheduler

Scheduler owns the recurring pass over all elections:

	s := lifecycle.NewScheduler(st, lifecycle.Options{Interval: 30 * time.Second})
	s.Start(ctx)
	defer s.Stop()

Each tick reads the clock once, advances any election whose phase changed, and
freezes the winner exactly once when an election completes. A failing election
is logged and retried on the next tick without blocking the others.
*/
package lifecycle
