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

package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/netgrid/fabricsnap/pkg/diff"
	"github.com/netgrid/fabricsnap/pkg/store"
)

var titleCaser = cases.Title(language.English)

// writeReportTable renders a change report grouped by category, in the
// order the report already carries.
func writeReportTable(out io.Writer, r *diff.Report) error {
	fmt.Fprintf(out, "Comparing %s -> %s\n", refLabel(r.BeforeID, r.BeforeLabel), refLabel(r.AfterID, r.AfterLabel))
	if !r.HasChanges() {
		fmt.Fprintln(out, "No changes.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	var current diff.Category
	for i := range r.Changes {
		c := &r.Changes[i]
		if c.Category != current {
			if current != "" {
				fmt.Fprintln(tw)
			}
			current = c.Category
			fmt.Fprintf(tw, "%s\n", titleCaser.String(string(current)))
		}
		fmt.Fprintf(tw, "  %s %s\t%s\t%s\t%s\n",
			severityGlyph(c.Severity), c.Path, c.Kind, c.Severity, describeChange(c))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := r.CountBySeverity()
	fmt.Fprintf(out, "\n%d changes (%d critical, %d warning, %d info)\n",
		len(r.Changes),
		counts[diff.SeverityCritical],
		counts[diff.SeverityWarning],
		counts[diff.SeverityInfo])
	return nil
}

func severityGlyph(s diff.Severity) string {
	switch s {
	case diff.SeverityCritical:
		return "!!"
	case diff.SeverityWarning:
		return " !"
	default:
		return " ."
	}
}

func describeChange(c *diff.Change) string {
	switch c.Kind {
	case diff.KindChanged:
		return fmt.Sprintf("%v -> %v", c.Before, c.After)
	case diff.KindAdded:
		return fmt.Sprintf("+ %v", c.After)
	case diff.KindRemoved:
		return fmt.Sprintf("- %v", c.Before)
	case diff.KindError:
		return c.Note
	default:
		return ""
	}
}

func refLabel(id, label string) string {
	if label != "" {
		return fmt.Sprintf("%s (%s)", label, shortID(id))
	}
	return shortID(id)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// writeEntryTable renders a snapshot listing.
func writeEntryTable(out io.Writer, entries []store.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No snapshots.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tFABRIC\tTAKEN\tHEALTH\tDEVICES\tFLAGS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(e.ID), e.Label, e.Fabric,
			e.TakenAt.UTC().Format(time.RFC3339),
			e.Health, e.Devices, entryFlags(e))
	}
	return tw.Flush()
}

func entryFlags(e store.Entry) string {
	flags := ""
	if e.Baseline {
		flags += "baseline"
	}
	if e.Incomplete {
		if flags != "" {
			flags += ","
		}
		flags += "incomplete"
	}
	return flags
}

func writeReportCSV(out io.Writer, r *diff.Report) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"path", "category", "kind", "severity", "before", "after", "note"}); err != nil {
		return err
	}
	for i := range r.Changes {
		c := &r.Changes[i]
		row := []string{
			c.Path, string(c.Category), string(c.Kind), string(c.Severity),
			csvValue(c.Before), csvValue(c.After), c.Note,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeEntryCSV(out io.Writer, entries []store.Entry) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"id", "label", "fabric", "taken_at", "health", "devices", "baseline", "incomplete"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.ID, e.Label, e.Fabric,
			e.TakenAt.UTC().Format(time.RFC3339),
			e.Health, strconv.Itoa(e.Devices),
			strconv.FormatBool(e.Baseline), strconv.FormatBool(e.Incomplete),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func csvValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
