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
	"context"

	"golang.org/x/sync/semaphore"
)

// A Fork is one mutually-exclusive slot in the ring. It is owned by at
// most one diner at a time and is only ever released by its current
// owner.
//
// A Fork is a weighted semaphore of capacity one rather than a
// sync.Mutex so that acquisition can be bounded by a context deadline.
// The timeout strategy depends on this; the blocking strategies simply
// pass a context without a deadline.
type Fork struct {
	sem *semaphore.Weighted
}

func newFork() *Fork {
	return &Fork{sem: semaphore.NewWeighted(1)}
}

// Acquire blocks until the fork is owned by the caller or the context
// is done. A non-nil error means the fork was not acquired.
func (f *Fork) Acquire(ctx context.Context) error {
	return f.sem.Acquire(ctx, 1)
}

// TryAcquire takes the fork without blocking, reporting whether it
// succeeded.
func (f *Fork) TryAcquire() bool {
	return f.sem.TryAcquire(1)
}

// Release returns the fork to the table. Only the current owner may
// call it.
func (f *Fork) Release() {
	f.sem.Release(1)
}
