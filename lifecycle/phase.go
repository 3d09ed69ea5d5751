// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"time"

	"github.com/danielhkuo/electiond/models"
)

// ResolvePhase maps an election window and a single clock reading to a phase.
// The window is inclusive at both ends: now == start and now == end are ongoing.
func ResolvePhase(start, end, now time.Time) models.Phase {
	if now.Before(start) {
		return models.PhaseUpcoming
	}
	if now.After(end) {
		return models.PhaseCompleted
	}
	return models.PhaseOngoing
}

// Clock supplies the current time. Read it once per evaluation.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ResolveClock guarantees a non-nil clock.
func ResolveClock(c Clock) Clock {
	if c == nil {
		return SystemClock{}
	}
	return c
}
