// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import "github.com/danielhkuo/electiond/models"

// ResolveWinner decides from tallies alone whether a clear winner exists.
// Tied leaders produce no winner; the function never picks between them.
func ResolveWinner(tallies []models.Tally) models.Outcome {
	if len(tallies) == 0 {
		return models.Outcome{Reason: models.ReasonNoCandidates}
	}

	top := tallies[0].VoteCount
	for _, t := range tallies[1:] {
		if t.VoteCount > top {
			top = t.VoteCount
		}
	}
	if top <= 0 {
		return models.Outcome{Reason: models.ReasonNoVotes}
	}

	var leader string
	leaders := 0
	for _, t := range tallies {
		if t.VoteCount == top {
			leaders++
			leader = t.CandidateID
		}
	}
	if leaders > 1 {
		return models.Outcome{Reason: models.ReasonTie}
	}

	return models.Outcome{WinnerID: &leader, Reason: models.ReasonClear}
}
