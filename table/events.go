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

// Events provides optional callbacks for observing the progress of a
// run. The runner uses it for progress output; tests use it to check
// invariants that are otherwise invisible from outside a strategy.
//
// Callbacks are invoked synchronously from diner goroutines, so they
// must be fast and internally synchronized. A nil *Events or a nil
// callback field disables the corresponding notification.
type Events struct {
	// OnThinking fires at the top of a cycle, before any acquisition.
	OnThinking func(seat, meal int)
	// OnForkTaken fires immediately after the fork is acquired.
	OnForkTaken func(seat, fork int)
	// OnForkDropped fires immediately after the fork is released.
	OnForkDropped func(seat, fork int)
	// OnEating fires once both forks are held. meal is 1-based.
	OnEating func(seat, meal int)
	// OnTimeout fires when a bounded acquisition attempt expires.
	OnTimeout func(seat, fork, attempt int)
	// OnDone fires when a diner's lifecycle ends, with the meals it
	// actually ate and the attempts it spent.
	OnDone func(seat, meals, attempts int)
}

// Thinking dispatches OnThinking. It is safe on a nil receiver, as are
// the other dispatch helpers.
func (e *Events) Thinking(seat, meal int) {
	if e != nil && e.OnThinking != nil {
		e.OnThinking(seat, meal)
	}
}

// ForkTaken dispatches OnForkTaken.
func (e *Events) ForkTaken(seat, fork int) {
	if e != nil && e.OnForkTaken != nil {
		e.OnForkTaken(seat, fork)
	}
}

// ForkDropped dispatches OnForkDropped.
func (e *Events) ForkDropped(seat, fork int) {
	if e != nil && e.OnForkDropped != nil {
		e.OnForkDropped(seat, fork)
	}
}

// Eating dispatches OnEating.
func (e *Events) Eating(seat, meal int) {
	if e != nil && e.OnEating != nil {
		e.OnEating(seat, meal)
	}
}

// Timeout dispatches OnTimeout.
func (e *Events) Timeout(seat, fork, attempt int) {
	if e != nil && e.OnTimeout != nil {
		e.OnTimeout(seat, fork, attempt)
	}
}

// Done dispatches OnDone.
func (e *Events) Done(seat, meals, attempts int) {
	if e != nil && e.OnDone != nil {
		e.OnDone(seat, meals, attempts)
	}
}
