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
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/netgrid/fabricsnap/pkg/diff"
	"github.com/netgrid/fabricsnap/pkg/render"
	"github.com/netgrid/fabricsnap/pkg/store"
)

func compareCmd() *cli.Command {
	return &cli.Command{
		Name:                  "compare",
		EnableShellCompletion: true,
		Usage:                 "Compare two snapshots and report the changes",
		Description: `Compare two stored snapshots (or snapshot files) structurally and
emit an ordered change report.

Snapshot references can be an id, an id prefix, a label, a file path,
or the literal "baseline" for the most recent baseline snapshot.

# Examples

Compare the baseline against the latest labeled capture:
  fabricsnap compare --before baseline --after post-change

Ignore volatile attributes and raise endpoint moves to critical:
  fabricsnap compare --before baseline --after post-change \
    --ignore '*.uptime' --severity '*.endpoints.*=critical'`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "before",
				Aliases: []string{"b"},
				Usage:   "Reference snapshot (id, label, path, or \"baseline\")",
				Value:   "baseline",
			},
			&cli.StringFlag{
				Name:     "after",
				Aliases:  []string{"a"},
				Usage:    "Snapshot to compare against the reference",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "ignore",
				Usage: "Path pattern to exclude from the report (can be repeated)",
			},
			&cli.StringSliceFlag{
				Name:  "severity",
				Usage: "Severity override, pattern=level (can be repeated)",
			},
			snapshotsDirFlag,
			outputFlag,
			formatFlag,
		},
		Action: runCompare,
	}
}

func runCompare(ctx context.Context, cmd *cli.Command) error {
	st, err := store.New(cmd.String("snapshots-dir"))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	before, err := st.Load(cmd.String("before"))
	if err != nil {
		return err
	}
	after, err := st.Load(cmd.String("after"))
	if err != nil {
		return err
	}

	overrides, err := parseSeverityOverrides(cmd.StringSlice("severity"))
	if err != nil {
		return err
	}

	report, err := diff.Compare(before, after, diff.Options{
		Ignore:            cmd.StringSlice("ignore"),
		SeverityOverrides: overrides,
		Version:           version,
	})
	if err != nil {
		return err
	}

	w := render.NewFileWriterOrStdout(render.Format(cmd.String("format")), cmd.String("output"))
	defer func() { _ = w.Close() }()
	if err := w.Write(ctx, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return fmt.Errorf("comparison finished with structural errors, see the report")
	}
	return nil
}

// parseSeverityOverrides turns pattern=level pairs into diff options.
func parseSeverityOverrides(pairs []string) (map[string]diff.Severity, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]diff.Severity, len(pairs))
	for _, pair := range pairs {
		pattern, level, ok := strings.Cut(pair, "=")
		if !ok || pattern == "" {
			return nil, fmt.Errorf("invalid severity override %q, expected pattern=level", pair)
		}
		sev, ok := diff.ParseSeverity(level)
		if !ok {
			return nil, fmt.Errorf("unknown severity %q in override %q", level, pair)
		}
		overrides[pattern] = sev
	}
	return overrides, nil
}
