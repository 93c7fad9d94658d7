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
	"errors"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dinebench/dinebench/table"
	"github.com/stretchr/testify/require"
)

// Ensure serial ordering for requests that share a fork pair.
func TestSerial(t *testing.T) {
	const numRequests = 1024
	r := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// We want to verify that execution order for a pair matches the
	// scheduling order.
	var turn atomic.Int32
	checker := func(expect int) func(context.Context) error {
		return func(context.Context) error {
			current := turn.Add(1) - 1
			if expect != int(current) {
				return errors.New("out of order execution")
			}
			return nil
		}
	}

	e := NewExecutor(GoRunner(ctx))

	outcomes := make([]Outcome, numRequests)
	for i := 0; i < numRequests; i++ {
		outcomes[i] = e.Schedule(0, [2]int{0, 1}, checker(i))
	}

	r.NoError(Wait(ctx, outcomes))
}

// Random adjacent pairs must never collide on a fork, and per-fork
// execution order must match schedule order.
func TestNoCollisions(t *testing.T) {
	const numForks = 16
	const numRequests = 10 * numForks
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var mu sync.Mutex
	executionOrder := make([][]int, numForks)
	expectedOrder := make([][]int, numForks)

	// Toggle each fork between 0 and a nonce to detect overlapping
	// holders.
	var forks [numForks]atomic.Int64
	var fail atomic.Bool

	e := NewExecutor(GoRunner(ctx))

	outcomes := make([]Outcome, numRequests)
	for i := 0; i < numRequests; i++ {
		i := i
		seat := rand.Intn(numForks)
		pair := [2]int{seat, (seat + 1) % numForks}
		mu.Lock()
		for _, f := range pair {
			expectedOrder[f] = append(expectedOrder[f], i)
		}
		outcomes[i] = e.Schedule(seat, pair, func(context.Context) error {
			mu.Lock()
			for _, f := range pair {
				executionOrder[f] = append(executionOrder[f], i)
			}
			mu.Unlock()
			nonce := rand.Int63n(1<<62) + 1
			for _, f := range pair {
				if !forks[f].CompareAndSwap(0, nonce) {
					fail.Store(true)
				}
			}
			// Create goroutine scheduling jitter.
			runtime.Gosched()
			for _, f := range pair {
				if !forks[f].CompareAndSwap(nonce, 0) {
					fail.Store(true)
				}
			}
			return nil
		})
		mu.Unlock()
	}

	r.NoError(Wait(ctx, outcomes))
	r.False(fail.Load(), "collision detected")
	mu.Lock()
	defer mu.Unlock()
	for f := 0; f < numForks; f++ {
		r.Equalf(expectedOrder[f], executionOrder[f], "fork %d", f)
	}
}

// The package's namesake example: five diners scheduled in seat order
// complete in seat order, since each shares a fork with its
// predecessor.
func TestRoundOfDinners(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	e := NewExecutor(GoRunner(ctx))

	var mu sync.Mutex
	log := make([]int, 0, 5)
	e.SetEvents(&Events{
		OnComplete: func(seat int) {
			mu.Lock()
			defer mu.Unlock()
			log = append(log, seat)
		},
	})

	dine := func(context.Context) error { return nil }

	outcomes := make([]Outcome, 5)
	for seat := 0; seat < 5; seat++ {
		outcomes[seat] = e.Schedule(seat, [2]int{seat, (seat + 1) % 5}, dine)
	}

	r.NoError(Wait(ctx, outcomes))
	mu.Lock()
	defer mu.Unlock()
	r.Equal([]int{0, 1, 2, 3, 4}, log)
}

func TestDuplicateFork(t *testing.T) {
	r := require.New(t)

	e := NewExecutor(GoRunner(context.Background()))
	outcome := e.Schedule(0, [2]int{3, 3}, func(context.Context) error {
		r.Fail("should not execute")
		return nil
	})
	status, _ := outcome.Get()
	r.ErrorContains(status.Err(), "fork 3 twice")
}

func TestPanic(t *testing.T) {
	r := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e := NewExecutor(GoRunner(ctx))

	outcome := e.Schedule(0, [2]int{0, 1}, func(context.Context) error {
		panic("boom")
	})
	for {
		status, changed := outcome.Get()
		if status.Err() != nil {
			r.ErrorContains(status.Err(), "boom")
			break
		}
		<-changed
	}

	outcome = e.Schedule(0, [2]int{0, 1}, func(context.Context) error {
		panic(errors.New("boom"))
	})
	for {
		status, changed := outcome.Get()
		if status.Err() != nil {
			r.ErrorContains(status.Err(), "boom")
			break
		}
		<-changed
	}
}

func TestStatusFor(t *testing.T) {
	r := require.New(t)

	r.True(StatusFor(nil).Success())
	r.True(StatusFor(nil).Completed())
	r.False(StatusFor(context.Canceled).Success())
	r.ErrorIs(StatusFor(context.Canceled).Err(), context.Canceled)

	status, _ := NewOutcome().Get()
	r.True(status.Queued())
}

func TestFullService(t *testing.T) {
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var scheduled atomic.Int32
	s, err := New(Config{
		Seats: 5,
		Meals: 3,
		Think: table.Between(0, time.Millisecond),
		Eat:   table.Fixed(time.Millisecond),
		QueueEvents: &Events{
			OnSchedule: func(int, bool) { scheduled.Add(1) },
		},
	})
	r.NoError(err)

	res, err := s.Run(ctx)
	r.NoError(err)
	r.Equal(15, res.TotalMeals())
	r.Equal([]int{3, 3, 3, 3, 3}, res.Meals)
	r.Equal(int32(15), scheduled.Load())
}

func TestRerun(t *testing.T) {
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := New(Config{Seats: 2, Meals: 5})
	r.NoError(err)

	first, err := s.Run(ctx)
	r.NoError(err)
	second, err := s.Run(ctx)
	r.NoError(err)
	r.Equal(first.TotalMeals(), second.TotalMeals())
	r.Equal(10, second.TotalMeals())
}
