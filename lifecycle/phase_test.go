// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/electiond/models"
)

func TestResolvePhase(t *testing.T) {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want models.Phase
	}{
		{"well before start", start.Add(-24 * time.Hour), models.PhaseUpcoming},
		{"just before start", start.Add(-time.Nanosecond), models.PhaseUpcoming},
		{"at start", start, models.PhaseOngoing},
		{"midway", start.Add(72 * time.Hour), models.PhaseOngoing},
		{"at end", end, models.PhaseOngoing},
		{"just after end", end.Add(time.Nanosecond), models.PhaseCompleted},
		{"long after end", end.Add(365 * 24 * time.Hour), models.PhaseCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePhase(start, end, tt.now))
		})
	}
}

func TestResolvePhaseIgnoresLocation(t *testing.T) {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tokyo := time.FixedZone("JST", 9*60*60)
	now := start.In(tokyo).Add(30 * time.Minute)

	assert.Equal(t, models.PhaseOngoing, ResolvePhase(start, end, now))
}

func TestPhaseRank(t *testing.T) {
	assert.Less(t, models.PhaseUpcoming.Rank(), models.PhaseOngoing.Rank())
	assert.Less(t, models.PhaseOngoing.Rank(), models.PhaseCompleted.Rank())
	assert.False(t, models.Phase("archived").Valid())
	assert.True(t, models.PhaseCompleted.Valid())
}

func TestResolveClock(t *testing.T) {
	assert.IsType(t, SystemClock{}, ResolveClock(nil))

	now := SystemClock{}.Now()
	assert.Equal(t, time.UTC, now.Location())
}
