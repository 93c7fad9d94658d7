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

// Command dinebench runs every dining-philosophers strategy against
// the same table and prints a comparative summary.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dinebench/dinebench/bench"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := &cli.Command{
		Name:  "dinebench",
		Usage: "compare deadlock-avoidance strategies for the dining-philosophers problem",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a JSON config overriding the built-in demonstration parameters",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := bench.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			c, err := bench.New(cfg)
			if err != nil {
				return err
			}
			return c.Run(ctx)
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "dinebench:", err)
		os.Exit(1)
	}
}
