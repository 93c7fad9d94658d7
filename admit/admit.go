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
Package admit solves the dining-philosophers problem by bounding
admission: at most N-1 diners may hold a dining permit at once, so the
classic circular wait — all N diners each holding one fork and waiting
for the next — is structurally impossible. By pigeonhole, some diner
among any would-be cycle has no competitor for its second fork and
completes, releasing its forks and its permit.

Starvation is reduced, not eliminated: the permit pool bounds
contention but imposes no ordering among waiting diners. See the fifo
package for the strictly-ordered alternative.
*/
package admit

import (
	"context"
	"fmt"
	"time"

	"github.com/dinebench/dinebench/table"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Config parameterizes a bounded-admission run.
type Config struct {
	// Seats is the number of diners (and forks). Must be at least 2.
	Seats int
	// Meals is each diner's quota of successful consumptions. Must be
	// at least 1.
	Meals int
	// Think is the pause before each acquisition cycle.
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
	return nil
}

// Strategy is the bounded-concurrency solution. Construct with [New].
type Strategy struct {
	cfg Config
}

// New validates the configuration and returns a runnable strategy.
func New(cfg Config) (*Strategy, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Strategy{cfg: cfg}, nil
}

// Run spawns one goroutine per diner and blocks until every diner has
// eaten its quota. Each Run uses a fresh table, so a Strategy may be
// run repeatedly.
func (s *Strategy) Run(ctx context.Context) (*table.Result, error) {
	tab, err := table.New(s.cfg.Seats)
	if err != nil {
		return nil, err
	}
	board := table.NewScoreboard(s.cfg.Seats)
	permits := semaphore.NewWeighted(int64(s.cfg.Seats - 1))

	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	for seat := 0; seat < s.cfg.Seats; seat++ {
		eg.Go(func() error {
			return s.dine(ctx, seat, tab, board, permits)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return board.Result(time.Since(start)), nil
}

func (s *Strategy) dine(
	ctx context.Context,
	seat int,
	tab *table.Table,
	board *table.Scoreboard,
	permits *semaphore.Weighted,
) error {
	events := s.cfg.Events
	left, right := tab.Left(seat), tab.Right(seat)

	for meal := 1; meal <= s.cfg.Meals; meal++ {
		board.AttemptStarted(seat)
		events.Thinking(seat, meal)
		if err := s.cfg.Think.Wait(ctx); err != nil {
			return err
		}

		// The permit is what makes the fork order irrelevant: with at
		// most N-1 diners past this point, a full cycle cannot form.
		if err := permits.Acquire(ctx, 1); err != nil {
			return err
		}

		if err := tab.Fork(left).Acquire(ctx); err != nil {
			permits.Release(1)
			return err
		}
		events.ForkTaken(seat, left)
		if err := tab.Fork(right).Acquire(ctx); err != nil {
			tab.Fork(left).Release()
			permits.Release(1)
			return err
		}
		events.ForkTaken(seat, right)

		board.MealServed(seat)
		events.Eating(seat, meal)
		if err := s.cfg.Eat.Wait(ctx); err != nil {
			tab.Fork(right).Release()
			tab.Fork(left).Release()
			permits.Release(1)
			return err
		}

		tab.Fork(right).Release()
		events.ForkDropped(seat, right)
		tab.Fork(left).Release()
		events.ForkDropped(seat, left)
		permits.Release(1)
	}

	events.Done(seat, s.cfg.Meals, s.cfg.Meals)
	return nil
}
