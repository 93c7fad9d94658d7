// Copyright 2025 The Dinebench Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

/*
Package deadline solves the dining-philosophers problem with bounded
acquisition: every fork grab carries a deadline, and a diner that times
out retreats, releases anything it holds, backs off, and retries.

Two mechanisms stack here. Forks are always grabbed in ascending index
order, a total order over resources that rules out the AB/BA deadlock
pattern outright. The deadlines then bound any residual held-and-blocked
state: whatever a diner is stuck on resolves within one patience
interval, after which it retreats and the holder it was competing with
can finish. The strategy trades bounded extra latency for freedom from
indefinite blocking.

Each diner's lifecycle is bounded by an attempt budget. Exhausting the
budget is a terminal, non-fatal outcome: the diner reports the meals it
actually ate. Under pathological scheduling a diner can therefore end
hungry — starvation is mitigated, not eliminated.
*/
package deadline

import (
	"context"
	"fmt"
	"time"

	"github.com/dinebench/dinebench/retry"
	"github.com/dinebench/dinebench/table"
	gr "github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// Config parameterizes a timeout/backoff run.
type Config struct {
	// Seats is the number of diners (and forks). Must be at least 2.
	Seats int
	// Meals is each diner's quota of successful consumptions. Must be
	// at least 1.
	Meals int
	// MaxAttempts bounds each diner's acquire cycles, successful or
	// not. Must be at least Meals or the quota is unreachable.
	MaxAttempts int
	// Patience bounds each single-fork acquisition. Defaults to one
	// second.
	Patience time.Duration
	// BackoffBase seeds the escalating backoff taken after a timeout
	// on the second fork; the retreat after a first-fork timeout uses
	// it as a constant delay. Defaults to 10ms.
	BackoffBase time.Duration
	// BackoffMax caps the escalating backoff. Defaults to 500ms.
	BackoffMax time.Duration
	// Jitter randomizes every backoff by up to +/- its value, breaking
	// retry synchronization between diners. Zero disables jitter.
	Jitter time.Duration
	// Think is the pause at the top of each acquire cycle.
	Think table.Delay
	// Eat is the pause while both forks are held.
	Eat table.Delay
	// Events receives optional progress notifications.
	Events *table.Events
}

func (c *Config) validate() error {
	if c.Seats < 2 {
		return fmt.Errorf("seats must be at least 2, have %d", c.Seats)
	}
	if c.Meals < 1 {
		return fmt.Errorf("meals must be at least 1, have %d", c.Meals)
	}
	if c.MaxAttempts < c.Meals {
		return fmt.Errorf("max attempts %d cannot satisfy a quota of %d meals",
			c.MaxAttempts, c.Meals)
	}
	if c.Patience < 0 || c.BackoffBase < 0 || c.BackoffMax < 0 || c.Jitter < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Patience == 0 {
		out.Patience = time.Second
	}
	if out.BackoffBase == 0 {
		out.BackoffBase = 10 * time.Millisecond
	}
	if out.BackoffMax == 0 {
		out.BackoffMax = 500 * time.Millisecond
	}
	if out.BackoffMax < out.BackoffBase {
		out.BackoffMax = out.BackoffBase
	}
	return out
}

// Strategy is the timeout/backoff solution. Construct with [New].
type Strategy struct {
	cfg Config
}

// New validates the configuration and returns a runnable strategy.
func New(cfg Config) (*Strategy, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Strategy{cfg: cfg.withDefaults()}, nil
}

// Run spawns one goroutine per diner and blocks until every diner has
// either eaten its quota or spent its attempt budget. Timeouts are
// recorded, never escalated; an exhausted diner is a reported outcome,
// not an error.
func (s *Strategy) Run(ctx context.Context) (*table.Result, error) {
	tab, err := table.New(s.cfg.Seats)
	if err != nil {
		return nil, err
	}
	board := table.NewScoreboard(s.cfg.Seats)

	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	for seat := 0; seat < s.cfg.Seats; seat++ {
		eg.Go(func() error {
			return s.dine(ctx, seat, tab, board)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return board.Result(time.Since(start)), nil
}

func (s *Strategy) dine(ctx context.Context, seat int, tab *table.Table, board *table.Scoreboard) error {
	events := s.cfg.Events
	lo, hi := tab.OrderedPair(seat)

	// The escalating backoff is per diner: each failed second-fork grab
	// advances it, so repeat offenders retreat for longer and longer.
	escalate, err := retry.NewExpBackoff(s.cfg.BackoffBase, s.cfg.BackoffMax, 0)
	if err != nil {
		return err
	}
	retreat := s.backoff(escalate)
	// First-fork timeouts retreat for a flat, jittered delay; there is
	// nothing held, so there is no contention worth escalating over.
	linger := s.backoff(gr.NewConstant(s.cfg.BackoffBase))

	meals, attempts := 0, 0
	for meals < s.cfg.Meals && attempts < s.cfg.MaxAttempts {
		attempts++
		board.AttemptStarted(seat)
		events.Thinking(seat, meals+1)
		if err := s.cfg.Think.Wait(ctx); err != nil {
			return err
		}

		if err := s.grab(ctx, tab.Fork(lo)); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			board.TimeoutRecorded()
			events.Timeout(seat, lo, attempts)
			if err := s.pause(ctx, linger); err != nil {
				return err
			}
			continue
		}
		events.ForkTaken(seat, lo)

		if err := s.grab(ctx, tab.Fork(hi)); err != nil {
			tab.Fork(lo).Release()
			events.ForkDropped(seat, lo)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			board.TimeoutRecorded()
			events.Timeout(seat, hi, attempts)
			if err := s.pause(ctx, retreat); err != nil {
				return err
			}
			continue
		}
		events.ForkTaken(seat, hi)

		meals++
		board.MealServed(seat)
		events.Eating(seat, meals)
		err := s.cfg.Eat.Wait(ctx)
		tab.Fork(hi).Release()
		events.ForkDropped(seat, hi)
		tab.Fork(lo).Release()
		events.ForkDropped(seat, lo)
		if err != nil {
			return err
		}
	}

	events.Done(seat, meals, attempts)
	return nil
}

// grab attempts a single bounded-time acquisition.
func (s *Strategy) grab(ctx context.Context, f *table.Fork) error {
	grabCtx, cancel := context.WithTimeout(ctx, s.cfg.Patience)
	defer cancel()
	return f.Acquire(grabCtx)
}

// pause sleeps for the strategy's next delay, honoring cancellation.
func (s *Strategy) pause(ctx context.Context, b retry.Backoff) error {
	d, stop := b.Next()
	if stop {
		return nil
	}
	return table.Fixed(d).Wait(ctx)
}

// backoff wraps a base strategy with the configured jitter.
func (s *Strategy) backoff(b retry.Backoff) retry.Backoff {
	if s.cfg.Jitter <= 0 {
		return b
	}
	return gr.WithJitter(s.cfg.Jitter, b)
}
