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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/netgrid/fabricsnap/pkg/diff"
	"github.com/netgrid/fabricsnap/pkg/store"
)

// Format represents the output format type.
type Format string

const (
	// FormatJSON outputs documents as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML outputs documents as YAML.
	FormatYAML Format = "yaml"
	// FormatTable outputs a human-readable table.
	FormatTable Format = "table"
	// FormatCSV outputs change reports and listings as CSV rows.
	FormatCSV Format = "csv"
)

func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable, FormatCSV:
		return false
	default:
		return true
	}
}

// SupportedFormats returns all accepted output format names.
func SupportedFormats() []string {
	return []string{
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTable),
		string(FormatCSV),
	}
}

// Writer renders documents in the configured format. Close must be
// called when the writer was created over a file.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer for the given format and destination.
// A nil output writes to stdout; an unknown format falls back to JSON.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		format = FormatJSON
	}
	return &Writer{format: format, output: output}
}

// NewFileWriterOrStdout writes to the given path, falling back to
// stdout when the path is empty or cannot be created.
func NewFileWriterOrStdout(format Format, path string) *Writer {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewWriter(format, os.Stdout)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		slog.Error("failed to create output file, falling back to stdout",
			"error", err, "path", trimmed)
		return NewWriter(format, os.Stdout)
	}
	w := NewWriter(format, file)
	w.closer = file
	return w
}

// Close releases the underlying file handle, if any. Safe to call on
// stdout-backed writers.
func (w *Writer) Close() error {
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Write renders one document. Comparison reports and store listings
// get dedicated table and CSV layouts; every other document type falls
// back to the generic encoders.
func (w *Writer) Write(ctx context.Context, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch w.format {
	case FormatJSON:
		return w.writeJSON(doc)
	case FormatYAML:
		return w.writeYAML(doc)
	case FormatTable:
		return w.writeTable(doc)
	case FormatCSV:
		return w.writeCSV(doc)
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}

func (w *Writer) writeJSON(doc any) error {
	encoder := json.NewEncoder(w.output)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to render JSON: %w", err)
	}
	return nil
}

func (w *Writer) writeYAML(doc any) error {
	encoder := yaml.NewEncoder(w.output)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to render YAML: %w", err)
	}
	return encoder.Close()
}

func (w *Writer) writeTable(doc any) error {
	switch d := doc.(type) {
	case *diff.Report:
		return writeReportTable(w.output, d)
	case []store.Entry:
		return writeEntryTable(w.output, d)
	default:
		// Structured documents without a table layout still render,
		// just as YAML, which reads well enough on a terminal.
		return w.writeYAML(doc)
	}
}

func (w *Writer) writeCSV(doc any) error {
	switch d := doc.(type) {
	case *diff.Report:
		return writeReportCSV(w.output, d)
	case []store.Entry:
		return writeEntryCSV(w.output, d)
	default:
		return fmt.Errorf("format csv is only supported for reports and listings")
	}
}
