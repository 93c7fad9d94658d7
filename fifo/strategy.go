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

package fifo

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/field-eng-powertools/workgroup"
	"github.com/dinebench/dinebench/table"
	"golang.org/x/sync/errgroup"
)

// Config parameterizes a strict-FIFO run.
type Config struct {
	// Seats is the number of diners (and forks). Must be at least 2.
	Seats int
	// Meals is each diner's quota of successful consumptions. Must be
	// at least 1.
	Meals int
	// Think is the pause before each dinner is scheduled.
	Think table.Delay
	// Eat is the pause while the pair is held.
	Eat table.Delay
	// Events receives optional progress notifications.
	Events *table.Events
	// QueueEvents receives executor-level notifications.
	QueueEvents *Events
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

// Strategy is the strict-FIFO solution. Construct with [New].
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

// Run spawns one goroutine per diner; each schedules its dinners one
// at a time and awaits the outcome, so grants happen in request order.
// Dinner callbacks execute on a bounded worker pool.
func (s *Strategy) Run(ctx context.Context) (*table.Result, error) {
	tab, err := table.New(s.cfg.Seats)
	if err != nil {
		return nil, err
	}
	board := table.NewScoreboard(s.cfg.Seats)

	// At most one dinner per seat is ever in flight, so a pool of
	// Seats workers with a queue of the same depth can never reject.
	exec := NewExecutor(workgroup.WithSize(ctx, s.cfg.Seats, s.cfg.Seats))
	exec.SetEvents(s.cfg.QueueEvents)

	start := time.Now()
	eg, ctx := errgroup.WithContext(ctx)
	for seat := 0; seat < s.cfg.Seats; seat++ {
		eg.Go(func() error {
			return s.dine(ctx, seat, tab, board, exec)
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
	exec *Executor,
) error {
	events := s.cfg.Events
	left, right := tab.Left(seat), tab.Right(seat)

	for meal := 1; meal <= s.cfg.Meals; meal++ {
		board.AttemptStarted(seat)
		events.Thinking(seat, meal)
		if err := s.cfg.Think.Wait(ctx); err != nil {
			return err
		}

		outcome := exec.Schedule(seat, [2]int{left, right},
			func(ctx context.Context) error {
				events.ForkTaken(seat, left)
				events.ForkTaken(seat, right)
				board.MealServed(seat)
				events.Eating(seat, meal)
				err := s.cfg.Eat.Wait(ctx)
				events.ForkDropped(seat, right)
				events.ForkDropped(seat, left)
				return err
			})
		if err := Wait(ctx, []Outcome{outcome}); err != nil {
			return err
		}
	}

	events.Done(seat, s.cfg.Meals, s.cfg.Meals)
	return nil
}
