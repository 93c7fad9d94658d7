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
	"sync"
	"testing"
	"time"

	"github.com/dinebench/dinebench/table"
	"github.com/stretchr/testify/require"
)

func TestWaiterValidation(t *testing.T) {
	r := require.New(t)

	_, err := NewWaiter(1, nil)
	r.ErrorContains(err, "at least 2 seats")
	_, err = New(Config{Seats: 5, Meals: 0})
	r.ErrorContains(err, "meals")
}

func TestWaiterGrantIsAtomic(t *testing.T) {
	r := require.New(t)

	w, err := NewWaiter(5, nil)
	r.NoError(err)

	w.Acquire(2)
	snap := w.Snapshot()
	r.False(snap[2])
	r.False(snap[3])
	r.True(snap[0] && snap[1] && snap[4])

	w.Release(2)
	for i, free := range w.Snapshot() {
		r.Truef(free, "fork %d still reserved", i)
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	r := require.New(t)

	w, err := NewWaiter(3, nil)
	r.NoError(err)
	w.Acquire(0)
	w.Release(0)
	r.Panics(func() { w.Release(0) })
}

// Every grant snapshot must show both pair entries already flipped, and
// the ownership implied by grants/returns must never overlap: no two
// diners simultaneously owning one fork index.
func TestLedgerConsistency(t *testing.T) {
	const seats = 5
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var mu sync.Mutex
	owner := make(map[int]int, seats) // fork -> seat
	violations := 0

	waiterEvents := &Events{
		OnGrant: func(seat, left, right int, ledger []bool) {
			mu.Lock()
			defer mu.Unlock()
			// The snapshot is taken inside the critical section, so a
			// half-granted pair would be visible here.
			if ledger[left] || ledger[right] {
				violations++
			}
			for _, f := range []int{left, right} {
				if _, taken := owner[f]; taken {
					violations++
				}
				owner[f] = seat
			}
		},
		OnReturn: func(seat, left, right int, ledger []bool) {
			mu.Lock()
			defer mu.Unlock()
			if !ledger[left] || !ledger[right] {
				violations++
			}
			delete(owner, left)
			delete(owner, right)
		},
	}

	s, err := New(Config{
		Seats:        seats,
		Meals:        3,
		Think:        table.Between(0, time.Millisecond),
		Eat:          table.Fixed(time.Millisecond),
		WaiterEvents: waiterEvents,
	})
	r.NoError(err)

	res, err := s.Run(ctx)
	r.NoError(err)
	r.Equal(15, res.TotalMeals())

	mu.Lock()
	defer mu.Unlock()
	r.Zero(violations)
	r.Empty(owner)
}

func TestRerun(t *testing.T) {
	r := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := New(Config{Seats: 4, Meals: 2})
	r.NoError(err)

	first, err := s.Run(ctx)
	r.NoError(err)
	second, err := s.Run(ctx)
	r.NoError(err)
	r.Equal(first.TotalMeals(), second.TotalMeals())
	r.Equal(8, second.TotalMeals())
}
