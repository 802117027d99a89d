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

	"github.com/urfave/cli/v3"

	"github.com/netgrid/fabricsnap/pkg/render"
	"github.com/netgrid/fabricsnap/pkg/store"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:                  "list",
		EnableShellCompletion: true,
		Usage:                 "List stored snapshots, most recent first",
		Flags: []cli.Flag{
			snapshotsDirFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, err := store.New(cmd.String("snapshots-dir"))
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			entries, err := st.List()
			if err != nil {
				return err
			}

			w := render.NewFileWriterOrStdout(render.Format(cmd.String("format")), cmd.String("output"))
			defer func() { _ = w.Close() }()
			return w.Write(ctx, entries)
		},
	}
}
