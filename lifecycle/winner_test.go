// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/electiond/models"
)

func TestResolveWinner(t *testing.T) {
	tests := []struct {
		name       string
		tallies    []models.Tally
		wantReason models.WinnerReason
		wantWinner string
	}{
		{
			name:       "no candidates",
			tallies:    nil,
			wantReason: models.ReasonNoCandidates,
		},
		{
			name:       "no votes",
			tallies:    []models.Tally{{CandidateID: "a"}, {CandidateID: "b"}},
			wantReason: models.ReasonNoVotes,
		},
		{
			name:       "single candidate with votes",
			tallies:    []models.Tally{{CandidateID: "a", VoteCount: 1}},
			wantReason: models.ReasonClear,
			wantWinner: "a",
		},
		{
			name: "clear leader",
			tallies: []models.Tally{
				{CandidateID: "a", VoteCount: 3},
				{CandidateID: "b", VoteCount: 5},
				{CandidateID: "c", VoteCount: 1},
			},
			wantReason: models.ReasonClear,
			wantWinner: "b",
		},
		{
			name: "two-way tie at the top",
			tallies: []models.Tally{
				{CandidateID: "a", VoteCount: 4},
				{CandidateID: "b", VoteCount: 4},
				{CandidateID: "c", VoteCount: 2},
			},
			wantReason: models.ReasonTie,
		},
		{
			name: "tie below the leader does not matter",
			tallies: []models.Tally{
				{CandidateID: "a", VoteCount: 2},
				{CandidateID: "b", VoteCount: 2},
				{CandidateID: "c", VoteCount: 7},
			},
			wantReason: models.ReasonClear,
			wantWinner: "c",
		},
		{
			name: "everyone tied",
			tallies: []models.Tally{
				{CandidateID: "a", VoteCount: 1},
				{CandidateID: "b", VoteCount: 1},
				{CandidateID: "c", VoteCount: 1},
			},
			wantReason: models.ReasonTie,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveWinner(tt.tallies)

			assert.Equal(t, tt.wantReason, got.Reason)
			if tt.wantWinner == "" {
				assert.Nil(t, got.WinnerID)
				return
			}
			require.NotNil(t, got.WinnerID)
			assert.Equal(t, tt.wantWinner, *got.WinnerID)
		})
	}
}

func TestResolveWinnerIsOrderIndependent(t *testing.T) {
	forward := []models.Tally{
		{CandidateID: "a", VoteCount: 1},
		{CandidateID: "b", VoteCount: 9},
		{CandidateID: "c", VoteCount: 4},
	}
	reversed := []models.Tally{forward[2], forward[1], forward[0]}

	assert.Equal(t, ResolveWinner(forward), ResolveWinner(reversed))
}
