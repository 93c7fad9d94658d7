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

package bench

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config parameterizes a comparison run. The defaults reproduce the
// classic demonstration: five diners, three meals each, one-second
// patience, ten attempts.
type Config struct {
	// Seats is the number of diners at the table.
	Seats int `koanf:"seats"`
	// Meals is each diner's quota.
	Meals int `koanf:"meals"`
	// MaxAttempts bounds each diner's acquire cycles in the deadline
	// strategy.
	MaxAttempts int `koanf:"max_attempts"`

	// ThinkMin and ThinkMax bound the random think pause.
	ThinkMin time.Duration `koanf:"think_min"`
	ThinkMax time.Duration `koanf:"think_max"`
	// EatMin and EatMax bound the random eat pause.
	EatMin time.Duration `koanf:"eat_min"`
	EatMax time.Duration `koanf:"eat_max"`

	// Patience bounds each single-fork grab in the deadline strategy.
	Patience time.Duration `koanf:"patience"`
	// BackoffBase and BackoffMax shape the deadline strategy's
	// escalating retreat.
	BackoffBase time.Duration `koanf:"backoff_base"`
	BackoffMax  time.Duration `koanf:"backoff_max"`
	// Jitter randomizes the retreats.
	Jitter time.Duration `koanf:"jitter"`

	// LogRate caps progress log lines per second so hot loops cannot
	// flood the output.
	LogRate float64 `koanf:"log_rate"`
}

// DefaultConfig returns the compiled-in demonstration parameters.
func DefaultConfig() Config {
	return Config{
		Seats:       5,
		Meals:       3,
		MaxAttempts: 10,
		ThinkMin:    300 * time.Millisecond,
		ThinkMax:    time.Second,
		EatMin:      600 * time.Millisecond,
		EatMax:      800 * time.Millisecond,
		Patience:    time.Second,
		BackoffBase: 100 * time.Millisecond,
		BackoffMax:  time.Second,
		Jitter:      50 * time.Millisecond,
		LogRate:     20,
	}
}

func (c *Config) validate() error {
	if c.Seats < 2 {
		return fmt.Errorf("seats must be at least 2, have %d", c.Seats)
	}
	if c.Meals < 1 {
		return fmt.Errorf("meals must be at least 1, have %d", c.Meals)
	}
	if c.MaxAttempts < c.Meals {
		return fmt.Errorf("max_attempts %d cannot satisfy %d meals", c.MaxAttempts, c.Meals)
	}
	if c.LogRate <= 0 {
		return fmt.Errorf("log_rate must be positive, have %v", c.LogRate)
	}
	return nil
}

// LoadConfig starts from [DefaultConfig] and overlays the JSON file at
// path, if any. Durations may be written as Go duration strings
// ("750ms") or as nanosecond integers.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return cfg, fmt.Errorf("loading defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return cfg, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, cfg.validate()
}
