// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/electiond/models"
)

const (
	DefaultInterval   = 30 * time.Second
	DefaultMaxBackoff = 5 * time.Minute
)

// ElectionStore is the storage the scheduler needs. AdvancePhase must apply
// the transition only if the stored phase still equals from, and when to is
// completed it must call decide with the election's tallies and persist the
// outcome in the same unit of work.
type ElectionStore interface {
	ListElections(ctx context.Context) ([]models.Election, error)
	AdvancePhase(ctx context.Context, electionID string, from, to models.Phase,
		decide func([]models.Tally) models.Outcome) (models.PhaseChange, error)
}

type Options struct {
	Interval   time.Duration
	MaxBackoff time.Duration
	Clock      Clock
	Logger     *slog.Logger
}

// TickReport summarises one pass over all elections.
type TickReport struct {
	Scanned   int
	Advanced  int
	Completed int
	Failed    int
}

// Scheduler periodically moves elections along their lifecycle and freezes
// the winner when an election completes.
type Scheduler struct {
	store      ElectionStore
	interval   time.Duration
	maxBackoff time.Duration
	clock      Clock
	logger     *slog.Logger

	tickMu sync.Mutex // ticks never overlap

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(store ElectionStore, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxBackoff < opts.Interval {
		opts.MaxBackoff = max(DefaultMaxBackoff, opts.Interval)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:      store,
		interval:   opts.Interval,
		maxBackoff: opts.MaxBackoff,
		clock:      ResolveClock(opts.Clock),
		logger:     logger.With("component", "scheduler"),
	}
}

// Start runs the scheduler in a background goroutine until Stop is called or
// ctx is cancelled. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
}

// Stop cancels a running scheduler and waits for the in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Run ticks immediately, then once per interval until ctx is done. The timer
// is re-armed only after a tick returns. If the election list cannot be read
// the delay doubles up to MaxBackoff.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval.String())

	backoff := s.interval
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-timer.C:
		}

		next := s.interval
		report, err := s.Tick(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			continue
		case err != nil:
			next = backoff
			backoff = min(backoff*2, s.maxBackoff)
			s.logger.Error("scheduler tick failed", "error", err, "retry_in", next.String())
		default:
			backoff = s.interval
			if report.Advanced > 0 || report.Failed > 0 {
				s.logger.Info("scheduler tick completed",
					"scanned", report.Scanned,
					"advanced", report.Advanced,
					"completed", report.Completed,
					"failed", report.Failed,
				)
			}
		}
		timer.Reset(next)
	}
}

// Tick evaluates every election once against a single clock reading.
// It fails only when the election list cannot be read; per-election errors
// are logged, counted, and retried on the next tick.
func (s *Scheduler) Tick(ctx context.Context) (TickReport, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	now := s.clock.Now()

	elections, err := s.store.ListElections(ctx)
	if err != nil {
		return TickReport{}, fmt.Errorf("failed to list elections: %w", err)
	}

	report := TickReport{Scanned: len(elections)}
	for _, e := range elections {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		change, err := s.advance(ctx, e, now)
		if err != nil {
			report.Failed++
			s.logger.Error("failed to advance election", "error", err, "election_id", e.ID)
			continue
		}
		if !change.Applied {
			continue
		}

		report.Advanced++
		if change.To == models.PhaseCompleted {
			report.Completed++
		}
	}

	return report, nil
}

func (s *Scheduler) advance(ctx context.Context, e models.Election, now time.Time) (models.PhaseChange, error) {
	next := ResolvePhase(e.StartTime, e.EndTime, now)
	if next == e.Phase {
		return models.PhaseChange{}, nil
	}
	if next.Rank() < e.Phase.Rank() {
		// Phases never move backwards; a window edited after the fact or a
		// skewed clock must not reopen an election.
		s.logger.Warn("ignoring backwards phase transition",
			"election_id", e.ID, "stored", e.Phase, "computed", next)
		return models.PhaseChange{}, nil
	}

	change, err := s.store.AdvancePhase(ctx, e.ID, e.Phase, next, ResolveWinner)
	if err != nil {
		return models.PhaseChange{}, err
	}
	if !change.Applied {
		s.logger.Debug("phase already advanced elsewhere", "election_id", e.ID, "to", next)
		return change, nil
	}

	if change.Outcome != nil {
		winner := ""
		if change.Outcome.WinnerID != nil {
			winner = *change.Outcome.WinnerID
		}
		s.logger.Info("election completed",
			"election_id", e.ID,
			"ended", humanize.RelTime(e.EndTime, now, "ago", "from now"),
			"winner_candidate_id", winner,
			"reason", change.Outcome.Reason,
		)
	} else {
		s.logger.Info("election phase advanced", "election_id", e.ID, "from", e.Phase, "to", next)
	}
	return change, nil
}
