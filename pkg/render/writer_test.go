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
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgrid/fabricsnap/pkg/diff"
	"github.com/netgrid/fabricsnap/pkg/store"
)

func sampleReport() *diff.Report {
	return &diff.Report{
		BeforeID: "11111111-aaaa",
		AfterID:  "22222222-bbbb",
		Changes: []diff.Change{
			{
				Path:     "leaf3.interfaces.eth1/1.state",
				Category: diff.CategoryInterfaces,
				Kind:     diff.KindChanged,
				Severity: diff.SeverityCritical,
				Before:   "up",
				After:    "down",
			},
			{
				Path:     "leaf5.version",
				Category: diff.CategoryInventory,
				Kind:     diff.KindChanged,
				Severity: diff.SeverityWarning,
				Before:   "15.2(7)",
				After:    "15.2(8)",
			},
		},
	}
}

func TestWriteJSONReport(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)
	require.NoError(t, w.Write(context.Background(), sampleReport()))

	var got diff.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Changes, 2)
	assert.Equal(t, "leaf3.interfaces.eth1/1.state", got.Changes[0].Path)
}

func TestWriteTableReportGroupsByCategory(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	require.NoError(t, w.Write(context.Background(), sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Interfaces")
	assert.Contains(t, out, "Inventory")
	assert.Contains(t, out, "up -> down")
	assert.Contains(t, out, "2 changes (1 critical, 1 warning, 0 info)")
	// Interfaces section comes before inventory.
	assert.Less(t, strings.Index(out, "Interfaces"), strings.Index(out, "Inventory"))
}

func TestWriteTableEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	require.NoError(t, w.Write(context.Background(), &diff.Report{BeforeID: "a", AfterID: "b"}))
	assert.Contains(t, buf.String(), "No changes.")
}

func TestWriteCSVReport(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatCSV, &buf)
	require.NoError(t, w.Write(context.Background(), sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "path,category,kind,severity,before,after,note", lines[0])
	assert.Contains(t, lines[1], "leaf3.interfaces.eth1/1.state")
}

func TestWriteEntryTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)
	entries := []store.Entry{{
		ID:       "33333333-cccc",
		Label:    "nightly",
		Fabric:   "dc1",
		TakenAt:  time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC),
		Health:   "healthy",
		Devices:  4,
		Baseline: true,
	}}
	require.NoError(t, w.Write(context.Background(), entries))

	out := buf.String()
	assert.Contains(t, out, "nightly")
	assert.Contains(t, out, "33333333")
	assert.Contains(t, out, "baseline")
}

func TestWriteCSVUnsupportedDoc(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatCSV, &buf)
	require.Error(t, w.Write(context.Background(), map[string]string{"a": "b"}))
}

func TestUnknownFormatDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	require.NoError(t, w.Write(context.Background(), map[string]string{"a": "b"}))
	assert.True(t, json.Valid(buf.Bytes()))
}
