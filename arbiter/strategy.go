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

package arbiter

import (
	"context"
	"fmt"
	"time"

	"github.com/dinebench/dinebench/table"
	"golang.org/x/sync/errgroup"
)

// Config parameterizes an arbitrated run.
type Config struct {
	// Seats is the number of diners (and forks). Must be at least 2.
	Seats int
	// Meals is each diner's quota of successful consumptions. Must be
	// at least 1.
	Meals int
	// Think is the pause before each request to the waiter.
	Think table.Delay
	// Eat is the pause while the pair is held.
	Eat table.Delay
	// Events receives optional progress notifications.
	Events *table.Events
	// WaiterEvents receives ledger-level notifications from inside the
	// waiter's critical section.
	WaiterEvents *Events
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

// Strategy is the single-authority solution. Construct with [New].
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
// eaten its quota. A fresh waiter is used per run.
func (s *Strategy) Run(ctx context.Context) (*table.Result, error) {
	w, err := NewWaiter(s.cfg.Seats, s.cfg.WaiterEvents)
	if err != nil {
		return nil, err
	}
	board := table.NewScoreboard(s.cfg.Seats)

	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	for seat := 0; seat < s.cfg.Seats; seat++ {
		eg.Go(func() error {
			return s.dine(ctx, seat, w, board)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return board.Result(time.Since(start)), nil
}

func (s *Strategy) dine(ctx context.Context, seat int, w *Waiter, board *table.Scoreboard) error {
	events := s.cfg.Events
	left, right := seat, (seat+1)%s.cfg.Seats

	for meal := 1; meal <= s.cfg.Meals; meal++ {
		board.AttemptStarted(seat)
		events.Thinking(seat, meal)
		if err := s.cfg.Think.Wait(ctx); err != nil {
			return err
		}

		w.Acquire(seat)
		events.ForkTaken(seat, left)
		events.ForkTaken(seat, right)

		board.MealServed(seat)
		events.Eating(seat, meal)
		if err := s.cfg.Eat.Wait(ctx); err != nil {
			w.Release(seat)
			return err
		}

		w.Release(seat)
		events.ForkDropped(seat, left)
		events.ForkDropped(seat, right)
	}

	events.Done(seat, s.cfg.Meals, s.cfg.Meals)
	return nil
}
