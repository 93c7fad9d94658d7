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

// Events provides an [Executor] with optional callbacks to monitor
// queueing behavior.
//
// See [Executor.SetEvents].
type Events struct {
	// OnSchedule fires for every scheduled dinner; deferred is true
	// when the request had to join a wait line.
	OnSchedule func(seat int, deferred bool)
	// OnStarted fires when a dinner callback begins executing.
	OnStarted func(seat int)
	// OnComplete fires when a dinner callback returns.
	OnComplete func(seat int)
}

func (e *Events) schedule(seat int, deferred bool) {
	if e != nil && e.OnSchedule != nil {
		e.OnSchedule(seat, deferred)
	}
}

func (e *Events) started(seat int) {
	if e != nil && e.OnStarted != nil {
		e.OnStarted(seat)
	}
}

func (e *Events) complete(seat int) {
	if e != nil && e.OnComplete != nil {
		e.OnComplete(seat)
	}
}
