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
	"math/rand/v2"
	"time"
)

// A Delay is a bounded random pause, used for the think and eat phases.
// The zero value waits for no time at all, which keeps tests fast.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// Fixed returns a delay with no jitter.
func Fixed(d time.Duration) Delay { return Delay{Min: d, Max: d} }

// Between returns a delay drawn uniformly from [min, max).
func Between(min, max time.Duration) Delay { return Delay{Min: min, Max: max} }

// Wait sleeps for a random duration within the delay's bounds,
// returning early with the context's error if it is canceled.
func (d Delay) Wait(ctx context.Context) error {
	dur := d.pick()
	if dur <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d Delay) pick() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + rand.N(d.Max-d.Min)
}
