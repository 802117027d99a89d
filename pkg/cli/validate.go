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

	"github.com/urfave/cli/v3"

	"github.com/netgrid/fabricsnap/pkg/header"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/render"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
	"github.com/netgrid/fabricsnap/pkg/store"
)

// validationResult is the serialized outcome of validating one target.
type validationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Target string `json:"target" yaml:"target"`
	Valid  bool   `json:"valid" yaml:"valid"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Validate snapshots or an inventory file structurally",
		Description: `Check stored snapshots (all of them, or the references given as
arguments) for structural defects: duplicate device ids, missing
records, unknown statuses. With --inventory, validates an inventory
file instead.

Exits nonzero when any target fails validation.`,
		ArgsUsage: "[snapshot-ref ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "inventory",
				Aliases: []string{"i"},
				Usage:   "Validate this inventory file instead of snapshots",
			},
			snapshotsDirFlag,
			outputFlag,
			formatFlag,
		},
		Action: runValidate,
	}
}

func runValidate(ctx context.Context, cmd *cli.Command) error {
	var results []validationResult

	if invPath := cmd.String("inventory"); invPath != "" {
		results = append(results, validateTarget(invPath, func() error {
			_, err := inventory.Load(invPath)
			return err
		}))
	} else {
		st, err := store.New(cmd.String("snapshots-dir"))
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		refs := cmd.Args().Slice()
		if len(refs) == 0 {
			entries, err := st.List()
			if err != nil {
				return err
			}
			for _, e := range entries {
				refs = append(refs, e.Path)
			}
		}
		if len(refs) == 0 {
			return fmt.Errorf("no snapshots to validate")
		}
		for _, ref := range refs {
			results = append(results, validateTarget(ref, func() error {
				_, err := st.Load(ref)
				return err
			}))
		}
	}

	w := render.NewFileWriterOrStdout(render.Format(cmd.String("format")), cmd.String("output"))
	defer func() { _ = w.Close() }()
	if err := w.Write(ctx, results); err != nil {
		return err
	}

	for _, r := range results {
		if !r.Valid {
			return fmt.Errorf("%d of %d targets failed validation", countInvalid(results), len(results))
		}
	}
	return nil
}

func validateTarget(target string, check func() error) validationResult {
	r := validationResult{Target: target, Valid: true}
	r.Header.Init(header.KindValidationResult, snapshot.APIVersion, version)
	if err := check(); err != nil {
		r.Valid = false
		r.Error = err.Error()
	}
	return r
}

func countInvalid(results []validationResult) int {
	n := 0
	for _, r := range results {
		if !r.Valid {
			n++
		}
	}
	return n
}
