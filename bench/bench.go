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
Package bench drives every dining strategy to completion, one after
another, and prints a comparative summary.

The strategies are run strictly sequentially — full parallelism within
a run, no overlap between runs — so the summary numbers are directly
comparable and the runner has no shared-state hazards of its own.
Per-diner progress is logged while a run is in flight, throttled so
that a contentious configuration cannot flood the output; a diner that
ends its run hungry is a reported outcome, never a reason to abort.
*/
package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/field-eng-powertools/stopper"
	"github.com/dinebench/dinebench/admit"
	"github.com/dinebench/dinebench/arbiter"
	"github.com/dinebench/dinebench/deadline"
	"github.com/dinebench/dinebench/fifo"
	"github.com/dinebench/dinebench/table"
	"golang.org/x/time/rate"
)

// A strategy is anything the comparison can drive to completion.
type strategy interface {
	Run(ctx context.Context) (*table.Result, error)
}

// Comparison runs each strategy against the same problem parameters.
// Construct with [New].
type Comparison struct {
	cfg Config
	log *slog.Logger
	out io.Writer
}

// New validates the configuration and returns a Comparison writing
// human-readable progress and results to stdout.
func New(cfg Config) (*Comparison, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Comparison{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		out: os.Stdout,
	}, nil
}

// SetOutput redirects both progress logging and the summary. Call
// before [Comparison.Run].
func (c *Comparison) SetOutput(w io.Writer) {
	c.log = slog.New(slog.NewTextHandler(w, nil))
	c.out = w
}

type row struct {
	name string
	res  *table.Result
}

// Run executes every strategy sequentially and prints the comparative
// summary. It returns the first construction or cancellation error;
// individual diners' timeouts never fail the run.
func (c *Comparison) Run(ctx context.Context) error {
	stop := stopper.WithContext(ctx)

	think := table.Between(c.cfg.ThinkMin, c.cfg.ThinkMax)
	eat := table.Between(c.cfg.EatMin, c.cfg.EatMax)

	entries := []struct {
		name  string
		build func(events *table.Events) (strategy, error)
	}{
		{"admit", func(events *table.Events) (strategy, error) {
			return admit.New(admit.Config{
				Seats:  c.cfg.Seats,
				Meals:  c.cfg.Meals,
				Think:  think,
				Eat:    eat,
				Events: events,
			})
		}},
		{"arbiter", func(events *table.Events) (strategy, error) {
			return arbiter.New(arbiter.Config{
				Seats:  c.cfg.Seats,
				Meals:  c.cfg.Meals,
				Think:  think,
				Eat:    eat,
				Events: events,
			})
		}},
		{"deadline", func(events *table.Events) (strategy, error) {
			return deadline.New(deadline.Config{
				Seats:       c.cfg.Seats,
				Meals:       c.cfg.Meals,
				MaxAttempts: c.cfg.MaxAttempts,
				Patience:    c.cfg.Patience,
				BackoffBase: c.cfg.BackoffBase,
				BackoffMax:  c.cfg.BackoffMax,
				Jitter:      c.cfg.Jitter,
				Think:       think,
				Eat:         eat,
				Events:      events,
			})
		}},
		{"fifo", func(events *table.Events) (strategy, error) {
			return fifo.New(fifo.Config{
				Seats:  c.cfg.Seats,
				Meals:  c.cfg.Meals,
				Think:  think,
				Eat:    eat,
				Events: events,
			})
		}},
	}

	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		c.log.Info("starting strategy",
			"strategy", e.name,
			"seats", c.cfg.Seats,
			"meals", c.cfg.Meals)

		s, err := e.build(c.progress(e.name))
		if err != nil {
			return fmt.Errorf("building %s strategy: %w", e.name, err)
		}
		res, err := s.Run(stop)
		if err != nil {
			return fmt.Errorf("running %s strategy: %w", e.name, err)
		}

		c.log.Info("strategy finished",
			"strategy", e.name,
			"meals", res.TotalMeals(),
			"timeouts", res.Timeouts,
			"elapsed", res.Elapsed.Round(time.Millisecond))
		rows = append(rows, row{e.name, res})
	}

	c.summarize(rows)
	return nil
}

// progress adapts table events to throttled log lines. Diner
// lifecycle events always log; the chatty per-cycle events are
// rate-limited.
func (c *Comparison) progress(name string) *table.Events {
	lim := rate.NewLimiter(rate.Limit(c.cfg.LogRate), int(c.cfg.LogRate)+1)
	log := c.log.With("strategy", name)
	return &table.Events{
		OnThinking: func(seat, meal int) {
			if lim.Allow() {
				log.Info("thinking", "seat", seat, "meal", meal)
			}
		},
		OnEating: func(seat, meal int) {
			if lim.Allow() {
				log.Info("eating", "seat", seat, "meal", meal)
			}
		},
		OnTimeout: func(seat, fork, attempt int) {
			if lim.Allow() {
				log.Info("timed out", "seat", seat, "fork", fork, "attempt", attempt)
			}
		},
		OnDone: func(seat, meals, attempts int) {
			log.Info("left the table", "seat", seat, "meals", meals, "attempts", attempts)
		},
	}
}

func (c *Comparison) summarize(rows []row) {
	fmt.Fprintf(c.out, "\n%-10s %8s %10s %12s\n", "strategy", "meals", "timeouts", "elapsed")
	for _, r := range rows {
		fmt.Fprintf(c.out, "%-10s %8d %10d %12s\n",
			r.name, r.res.TotalMeals(), r.res.Timeouts,
			r.res.Elapsed.Round(time.Millisecond))
	}
}
