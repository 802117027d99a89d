// Copyright (c) 2025, the fabricsnap authors. All rights reserved.
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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/netgrid/fabricsnap/pkg/collector"
	"github.com/netgrid/fabricsnap/pkg/credentials"
	"github.com/netgrid/fabricsnap/pkg/defaults"
	"github.com/netgrid/fabricsnap/pkg/device"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/render"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
	"github.com/netgrid/fabricsnap/pkg/store"
)

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		EnableShellCompletion: true,
		Usage:                 "Collect a fabric snapshot from all inventory devices",
		Description: `Query every device in the inventory for its current state and seal
the results into a snapshot stored under the snapshots directory.

Devices are collected concurrently with retries and timeouts. A device
failure never aborts the run: the snapshot records the failure and the
remaining devices are still collected.

# Examples

Collect with defaults:
  fabricsnap collect --inventory fabric.yaml

Collect a labeled baseline, switches only:
  fabricsnap collect --inventory fabric.yaml --label pre-change --baseline --skip-controller

Dry run against scripted devices:
  fabricsnap collect --inventory fabric.yaml --mock`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "inventory",
				Aliases:  []string{"i"},
				Usage:    "Inventory file (YAML list of devices)",
				Sources:  cli.EnvVars("FABRICSNAP_INVENTORY"),
				Required: true,
			},
			&cli.StringFlag{
				Name:  "label",
				Usage: "Label recorded in the snapshot header",
			},
			&cli.BoolFlag{
				Name:  "baseline",
				Usage: "Mark this snapshot as the comparison baseline",
			},
			&cli.BoolFlag{
				Name:  "skip-controller",
				Usage: "Skip controller devices",
			},
			&cli.BoolFlag{
				Name:  "skip-leaf",
				Usage: "Skip leaf switches",
			},
			&cli.BoolFlag{
				Name:  "skip-spine",
				Usage: "Skip spine switches",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Maximum devices queried at once",
				Value: defaults.MaxConcurrentDevices,
			},
			&cli.DurationFlag{
				Name:  "device-timeout",
				Usage: "Timeout per fetch attempt",
				Value: defaults.PerDeviceTimeout,
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "Attempts per query class, including the first",
				Value: defaults.RetryAttempts,
			},
			&cli.DurationFlag{
				Name:  "backoff",
				Usage: "Base delay before the first retry (doubles each retry)",
				Value: defaults.BackoffBase,
			},
			&cli.DurationFlag{
				Name:  "deadline",
				Usage: "Wall-clock bound for the whole run",
				Value: defaults.OverallDeadline,
			},
			&cli.IntFlag{
				Name:  "rate",
				Usage: "Device requests per second across the run (0 = unlimited)",
				Value: defaults.RequestsPerSecond,
			},
			&cli.BoolFlag{
				Name:  "mock",
				Usage: "Collect from scripted mock devices instead of the network",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Env file with device credentials",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "insecure",
				Usage: "Skip TLS and host key verification",
			},
			snapshotsDirFlag,
			outputFlag,
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"t"},
				Usage:   "Output format for --output: json, yaml",
				Value:   "json",
			},
		},
		Action: runCollect,
	}
}

func runCollect(ctx context.Context, cmd *cli.Command) error {
	inv, err := inventory.Load(cmd.String("inventory"))
	if err != nil {
		return err
	}
	inv = inv.Filter(map[inventory.Role]bool{
		inventory.RoleController: cmd.Bool("skip-controller"),
		inventory.RoleLeaf:       cmd.Bool("skip-leaf"),
		inventory.RoleSpine:      cmd.Bool("skip-spine"),
	})
	if len(inv.Devices) == 0 {
		return fmt.Errorf("no devices left to collect after applying skip flags")
	}
	slog.Info("loaded inventory", slog.String("summary", inv.Summary()))

	factory, err := buildFactory(cmd)
	if err != nil {
		return err
	}

	cfg := collector.CollectionConfig{
		MaxConcurrentDevices: int(cmd.Int("concurrency")),
		PerDeviceTimeout:     cmd.Duration("device-timeout"),
		RetryAttempts:        int(cmd.Int("retries")),
		BackoffBase:          cmd.Duration("backoff"),
		OverallDeadline:      cmd.Duration("deadline"),
		RequestsPerSecond:    int(cmd.Int("rate")),
	}
	orch, err := collector.New(cfg, factory, version)
	if err != nil {
		return err
	}

	snap, err := orch.Collect(ctx, inv, cmd.String("label"))
	if err != nil {
		return err
	}
	snap.Baseline = cmd.Bool("baseline")

	st, err := store.New(cmd.String("snapshots-dir"))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	path, err := st.Save(snap)
	if err != nil {
		return err
	}
	fmt.Printf("Snapshot %s saved to %s (%s)\n", shortRef(snap.ID), path, snap.Summary())

	if out := cmd.String("output"); out != "" {
		w := render.NewFileWriterOrStdout(render.Format(cmd.String("format")), out)
		defer func() { _ = w.Close() }()
		if err := w.Write(ctx, snap); err != nil {
			return err
		}
	}

	return requiredDeviceFailure(snap)
}

// requiredDeviceFailure maps controller failures to a nonzero exit.
// The snapshot is already saved at this point; the error only reflects
// that the capture cannot be trusted as a comparison reference.
func requiredDeviceFailure(snap *snapshot.Snapshot) error {
	for i := range snap.Devices {
		d := &snap.Devices[i]
		if d.Role == inventory.RoleController && d.Status == snapshot.StatusFailure {
			return fmt.Errorf("required device %s failed: %s", d.DeviceID, d.Failure.Message)
		}
	}
	return nil
}

func buildFactory(cmd *cli.Command) (device.Factory, error) {
	if cmd.Bool("mock") {
		return &device.MockFactory{Client: &device.MockClient{Latency: 10 * time.Millisecond}}, nil
	}
	creds, err := credentials.NewResolver(cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	return device.NewDefaultFactory(
		device.WithCredentials(creds),
		device.WithInsecureSkipVerify(cmd.Bool("insecure")),
	), nil
}

func shortRef(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
