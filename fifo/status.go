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
	"fmt"

	"github.com/cockroachdb/field-eng-powertools/notify"
)

// Outcome is a convenience type alias. Waiters can watch it for status
// changes.
type Outcome = *notify.Var[*Status]

// NewOutcome is a convenience method to allocate an Outcome.
func NewOutcome() Outcome {
	return notify.VarOf(queued)
}

func outcomeFor(err error) Outcome {
	out := NewOutcome()
	out.Set(StatusFor(err))
	return out
}

// Status is reported by [Executor.Schedule].
type Status struct {
	err error
}

// StatusFor constructs a successful status if err is nil. Otherwise,
// it returns a new Status object that returns the error.
func StatusFor(err error) *Status {
	if err == nil {
		return success
	}
	return &Status{err: err}
}

// Sentinel instances of Status.
var (
	executing = &Status{}
	queued    = &Status{}
	success   = &Status{}
)

// Completed returns true if the dinner callback has been called.
// See also [Status.Success].
func (s *Status) Completed() bool {
	return s == success || s.err != nil
}

// Err returns any error returned by the dinner callback.
func (s *Status) Err() error {
	return s.err
}

// Executing returns true if the dinner is currently executing.
func (s *Status) Executing() bool {
	return s == executing
}

// Queued returns true if the dinner is still waiting for its forks.
func (s *Status) Queued() bool {
	return s == queued
}

// Success returns true if the Status represents the successful
// completion of a scheduled dinner.
func (s *Status) Success() bool {
	return s == success
}

func (s *Status) String() string {
	switch s {
	case executing:
		return "executing"
	case queued:
		return "queued"
	case success:
		return "success"
	default:
		return fmt.Sprintf("error: %v", s.err)
	}
}

// Wait blocks until every outcome is successful, returning the first
// non-nil error.
func Wait(ctx context.Context, outcomes []Outcome) error {
outcome:
	for _, outcome := range outcomes {
		for {
			status, changed := outcome.Get()
			if status.Success() {
				continue outcome
			}
			if err := status.Err(); err != nil {
				return err
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
