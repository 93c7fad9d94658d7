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
Package table models the shared state of the dining-philosophers
problem: a ring of N mutually-exclusive forks where the diner in seat i
always needs forks i and (i+1) mod N. The fixed ring topology is what
makes a circular wait possible in the first place; every strategy
package in this module is a different way of defeating it.

The package also carries the pieces the strategies have in common: a
Scoreboard of atomic outcome counters, an Events hook for observing a
run without coupling the strategies to any particular logger, and a
Delay helper for the bounded random think/eat pauses.
*/
package table

import "fmt"

// A Table is a ring of forks. The zero value is not usable; call [New].
//
// A Table carries no synchronization of its own beyond the per-fork
// locks, so it may be shared by concurrent diners and reused across
// sequential runs: a run that releases everything it acquired leaves
// the table as it found it.
type Table struct {
	forks []*Fork
}

// New constructs a table with the given number of seats. The problem is
// only interesting with two or more diners.
func New(seats int) (*Table, error) {
	if seats < 2 {
		return nil, fmt.Errorf("a table needs at least 2 seats, have %d", seats)
	}
	forks := make([]*Fork, seats)
	for i := range forks {
		forks[i] = newFork()
	}
	return &Table{forks: forks}, nil
}

// Seats returns the number of seats (and forks) at the table.
func (t *Table) Seats() int { return len(t.forks) }

// Left returns the fork index to the left of the seat. It is always the
// seat's own index.
func (t *Table) Left(seat int) int { return seat }

// Right returns the fork index to the right of the seat, wrapping
// around the ring.
func (t *Table) Right(seat int) int { return (seat + 1) % len(t.forks) }

// OrderedPair returns the seat's two fork indices in ascending order.
// Acquiring in this total order, independent of seat identity, rules
// out the AB/BA deadlock pattern.
func (t *Table) OrderedPair(seat int) (lo, hi int) {
	lo, hi = t.Left(seat), t.Right(seat)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Fork returns the fork at the given index.
func (t *Table) Fork(i int) *Fork { return t.forks[i] }
