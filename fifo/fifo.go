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
Package fifo solves the dining-philosophers problem with an explicit
wait queue: dinner requests join a per-fork FIFO line, and a request
runs once it reaches the head of both of its forks' lines.

Deadlocks between requests are avoided because their relative order is
maintained: if request A is enqueued before request B, A is ahead of B
in every line they share, so the hold-and-wait cycles of the classic
problem cannot form. The same property is what the arbiter strategy
gives up by waking all diners and letting them race — here, fork pairs
are granted in exactly the order they were requested, which closes the
arbiter's fairness gap at the cost of queue bookkeeping on every grant.
*/
package fifo

import (
	"context"
	"fmt"
	"sync"
)

// A request waits in line for its pair of forks. Fields other than the
// result are only accessed while holding the parent [Executor] lock.
type request struct {
	seat      int
	forks     [2]int
	headCount int                // lines this request is at the head of
	fn        func(context.Context) error
	result    Outcome
}

// Executor grants fork pairs in schedule order and runs the dinner
// callbacks on a [Runner].
//
// An Executor is internally synchronized and is safe for concurrent
// use. It should not be copied after it has been created.
type Executor struct {
	events *Events
	runner Runner

	mu struct {
		sync.Mutex
		lines map[int][]*request // fork index -> FIFO wait line
	}
}

// NewExecutor constructs an Executor that runs callbacks using the
// given [Runner]. If runner is nil, callbacks are run on new
// goroutines under [context.Background].
func NewExecutor(runner Runner) *Executor {
	if runner == nil {
		runner = GoRunner(context.Background())
	}
	e := &Executor{runner: runner}
	e.mu.lines = make(map[int][]*request)
	return e
}

// SetEvents allows monitoring callbacks to be injected into the
// Executor. Call before any call to [Executor.Schedule].
func (e *Executor) SetEvents(events *Events) {
	e.events = events
}

// Schedule enqueues a dinner for the seat's fork pair. The callback
// runs once the request reaches the head of both forks' wait lines;
// its result is available through the returned [Outcome].
//
// Callbacks must not schedule new dinners and proceed to wait upon
// them; that reintroduces the hold-and-wait the queue exists to
// prevent.
func (e *Executor) Schedule(seat int, forks [2]int, fn func(context.Context) error) Outcome {
	if forks[0] == forks[1] {
		return outcomeFor(fmt.Errorf("seat %d requested fork %d twice", seat, forks[0]))
	}
	w := &request{
		seat:   seat,
		forks:  forks,
		fn:     fn,
		result: NewOutcome(),
	}

	e.mu.Lock()
	for _, f := range forks {
		line := append(e.mu.lines[f], w)
		e.mu.lines[f] = line
		if len(line) == 1 {
			w.headCount++
		}
	}
	ready := w.headCount == len(w.forks)
	e.mu.Unlock()

	e.events.schedule(seat, !ready)
	if ready {
		e.dispatch(w)
	}
	return w.result
}

// dispatch hands a granted request to the runner. Completion dequeues
// the request, possibly cascading into further dispatches.
func (e *Executor) dispatch(w *request) {
	work := func(ctx context.Context) {
		w.result.Set(executing)
		e.events.started(w.seat)
		err := tryCall(ctx, w.fn)
		w.result.Set(StatusFor(err))
		e.events.complete(w.seat)

		for _, next := range e.dequeue(w) {
			e.dispatch(next)
		}
	}
	if err := e.runner.Go(work); err != nil {
		w.result.Set(StatusFor(err))
	}
}

// dequeue removes a completed request from its wait lines and returns
// any newly-unblocked requests.
func (e *Executor) dequeue(w *request) []*request {
	e.mu.Lock()
	defer e.mu.Unlock()

	var ret []*request
	for _, f := range w.forks {
		line := e.mu.lines[f]
		// A granted request is always at the head of both lines.
		if len(line) == 0 || line[0] != w {
			panic(fmt.Sprintf("request for seat %d not at head of fork %d", w.seat, f))
		}
		line = line[1:]
		if len(line) == 0 {
			delete(e.mu.lines, f)
			continue
		}
		// Promote the next request. If it is now at the head of both
		// of its lines, it can be started.
		head := line[0]
		head.headCount++
		if head.headCount == len(head.forks) {
			ret = append(ret, head)
		} else if head.headCount > len(head.forks) {
			panic("over counted")
		}
		e.mu.lines[f] = line
	}
	return ret
}

// tryCall invokes the callback with a panic handler.
func tryCall(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		x := recover()
		switch t := x.(type) {
		case nil:
		// Success.
		case error:
			err = t
		default:
			err = fmt.Errorf("panic in dinner callback: %v", t)
		}
	}()

	return fn(ctx)
}
