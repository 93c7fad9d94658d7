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
Package arbiter solves the dining-philosophers problem with a single
coordinating authority, the Waiter. Fork pairs are granted and returned
only inside the waiter's one critical section, so a half-granted pair
is never observable and no cycle of waiting diners can form.

The waiter wakes every blocked diner whenever forks are returned and
each re-evaluates its own predicate. The wake must be a broadcast: the
waiters have heterogeneous predicates, and waking a single arbitrary
diner could wake one whose forks are still busy while the diner that
could proceed keeps sleeping.

The price of the design is that every grant and return funnels through
one lock, so throughput is bounded by that critical section no matter
how many seats the table has. The broadcast also gives no FIFO ordering
among waiting diners; each wake-up is a fresh race. That fairness gap
is inherent to the scheme and is left in place deliberately — the fifo
package is the variant that closes it with an explicit wait queue.
*/
package arbiter

import (
	"fmt"
	"sync"
)

// A Waiter grants and revokes fork pairs atomically. It maintains a
// ledger of fork availability that is only ever mutated while holding
// the waiter's lock.
type Waiter struct {
	events *Events
	seats  int

	mu struct {
		sync.Mutex
		cond      *sync.Cond
		available []bool
	}
}

// NewWaiter constructs a Waiter for a table with the given number of
// seats. All forks start on the table.
func NewWaiter(seats int, events *Events) (*Waiter, error) {
	if seats < 2 {
		return nil, fmt.Errorf("a waiter needs at least 2 seats, have %d", seats)
	}
	w := &Waiter{events: events, seats: seats}
	w.mu.cond = sync.NewCond(&w.mu.Mutex)
	w.mu.available = make([]bool, seats)
	for i := range w.mu.available {
		w.mu.available[i] = true
	}
	return w, nil
}

// Acquire blocks the calling diner until both of its forks are
// available, then marks both unavailable in the same critical section.
// On return the diner owns its pair; no caller ever observes a
// partially-granted state.
//
// Acquire deliberately has no deadline: the waiter cannot deadlock, so
// blocking until the pair frees up is safe. This is a design contrast
// with the deadline strategy, not an oversight.
func (w *Waiter) Acquire(seat int) {
	left, right := seat, (seat+1)%w.seats

	w.mu.Lock()
	defer w.mu.Unlock()
	for !w.mu.available[left] || !w.mu.available[right] {
		w.mu.cond.Wait()
	}
	w.mu.available[left] = false
	w.mu.available[right] = false
	w.events.grant(seat, left, right, w.snapshotLocked())
}

// Release returns the pair to the table and wakes every waiting diner
// so each can re-check its own predicate.
func (w *Waiter) Release(seat int) {
	left, right := seat, (seat+1)%w.seats

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mu.available[left] || w.mu.available[right] {
		// Only the owner may return a pair, so an available entry here
		// means the ledger has been corrupted. Not recoverable.
		panic(fmt.Sprintf("seat %d returned a fork it did not hold", seat))
	}
	w.mu.available[left] = true
	w.mu.available[right] = true
	w.events.ret(seat, left, right, w.snapshotLocked())
	w.mu.cond.Broadcast()
}

// Snapshot copies the availability ledger under the waiter's lock.
func (w *Waiter) Snapshot() []bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Waiter) snapshotLocked() []bool {
	return append([]bool(nil), w.mu.available...)
}

// Events provides optional callbacks fired inside the waiter's
// critical section, so the ledger snapshots they carry are exact.
// Callbacks therefore must not call back into the Waiter.
type Events struct {
	// OnGrant fires after both entries of the pair flip to unavailable.
	OnGrant func(seat, left, right int, ledger []bool)
	// OnReturn fires after both entries of the pair flip to available.
	OnReturn func(seat, left, right int, ledger []bool)
}

func (e *Events) grant(seat, left, right int, ledger []bool) {
	if e != nil && e.OnGrant != nil {
		e.OnGrant(seat, left, right, ledger)
	}
}

func (e *Events) ret(seat, left, right int, ledger []bool) {
	if e != nil && e.OnReturn != nil {
		e.OnReturn(seat, left, right, ledger)
	}
}
