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

package table

import (
	"sync/atomic"
	"time"
)

// A Scoreboard accumulates run-wide outcome counters. All mutation is
// by atomic increment from diner goroutines; the aggregate [Result] is
// only read after every diner has terminated.
type Scoreboard struct {
	meals    atomic.Int64
	timeouts atomic.Int64
	perSeat  []seatTally
}

type seatTally struct {
	meals    atomic.Int32
	attempts atomic.Int32
}

// NewScoreboard constructs a scoreboard for the given number of seats.
func NewScoreboard(seats int) *Scoreboard {
	return &Scoreboard{perSeat: make([]seatTally, seats)}
}

// AttemptStarted records the start of an acquire cycle for the seat.
func (s *Scoreboard) AttemptStarted(seat int) {
	s.perSeat[seat].attempts.Add(1)
}

// MealServed records a successful consumption for the seat.
func (s *Scoreboard) MealServed(seat int) {
	s.meals.Add(1)
	s.perSeat[seat].meals.Add(1)
}

// TimeoutRecorded records one expired acquisition attempt.
func (s *Scoreboard) TimeoutRecorded() {
	s.timeouts.Add(1)
}

// Result snapshots the counters into an immutable summary. Call only
// after the run has fully completed.
func (s *Scoreboard) Result(elapsed time.Duration) *Result {
	r := &Result{
		Seats:    len(s.perSeat),
		Meals:    make([]int, len(s.perSeat)),
		Attempts: make([]int, len(s.perSeat)),
		Timeouts: s.timeouts.Load(),
		Elapsed:  elapsed,
	}
	for i := range s.perSeat {
		r.Meals[i] = int(s.perSeat[i].meals.Load())
		r.Attempts[i] = int(s.perSeat[i].attempts.Load())
	}
	return r
}

// Result is the outcome of one strategy run.
type Result struct {
	// Seats is the number of diners.
	Seats int
	// Meals holds the meals eaten by each seat.
	Meals []int
	// Attempts holds the acquire cycles spent by each seat.
	Attempts []int
	// Timeouts is the total number of expired acquisition attempts.
	// It is zero for strategies that block without bound.
	Timeouts int64
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// TotalMeals sums the meals eaten across all seats.
func (r *Result) TotalMeals() int {
	total := 0
	for _, m := range r.Meals {
		total += m
	}
	return total
}
