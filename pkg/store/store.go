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

package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
)

// Entry is one catalog row describing a stored snapshot.
type Entry struct {
	ID         string    `json:"id"`
	Label      string    `json:"label,omitempty"`
	Fabric     string    `json:"fabric,omitempty"`
	TakenAt    time.Time `json:"takenAt"`
	Health     string    `json:"health,omitempty"`
	Baseline   bool      `json:"baseline,omitempty"`
	Incomplete bool      `json:"incomplete,omitempty"`
	Devices    int       `json:"devices"`
	Path       string    `json:"path"`
}

// Store keeps snapshots as one JSON document per file under a
// directory, with a sqlite catalog for fast lookup. The catalog is an
// index only: when it cannot be opened the store degrades to scanning
// the directory, and every document remains fully self-describing.
type Store struct {
	dir     string
	catalog *catalog
}

// New opens (or creates) a snapshot store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("cannot create snapshot directory %s", dir), err)
	}
	s := &Store{dir: dir}
	cat, err := openCatalog(filepath.Join(dir, "catalog.db"))
	if err != nil {
		slog.Warn("snapshot catalog unavailable, falling back to directory scan",
			slog.String("dir", dir), slog.String("error", err.Error()))
	} else {
		s.catalog = cat
	}
	return s, nil
}

// Close releases the catalog handle.
func (s *Store) Close() error {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.close()
}

// Save writes the snapshot document and indexes it. When the snapshot
// is marked as baseline, any previous baseline for the same fabric is
// demoted in the catalog.
func (s *Store) Save(snap *snapshot.Snapshot) (string, error) {
	if err := snap.Validate(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s.json", snap.TakenAt.UTC().Format("20060102T150405"), shortID(snap.ID))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMalformedSnapshot, "cannot encode snapshot", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeConnection,
			fmt.Sprintf("cannot write snapshot file %s", path), err)
	}

	if s.catalog != nil {
		if err := s.catalog.index(entryOf(snap, path)); err != nil {
			slog.Warn("failed to index snapshot", slog.String("id", snap.ID), slog.String("error", err.Error()))
		}
	}
	return path, nil
}

// Load reads one snapshot by reference. A reference can be a file
// path, a snapshot id or id prefix, a label, or the literal "baseline"
// for the most recent baseline snapshot. A document that fails
// structural validation is rejected outright.
func (s *Store) Load(ref string) (*snapshot.Snapshot, error) {
	if looksLikePath(ref) {
		return loadFile(ref)
	}
	e, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return loadFile(e.Path)
}

// List returns catalog entries, most recent first.
func (s *Store) List() ([]Entry, error) {
	if s.catalog != nil {
		entries, err := s.catalog.list()
		if err == nil {
			return entries, nil
		}
		slog.Warn("catalog list failed, scanning directory", slog.String("error", err.Error()))
	}
	return s.scan()
}

// Baseline returns the most recent snapshot marked as baseline.
func (s *Store) Baseline() (*snapshot.Snapshot, error) {
	return s.Load("baseline")
}

func (s *Store) resolve(ref string) (*Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if ref == "baseline" {
		for i := range entries {
			if entries[i].Baseline {
				return &entries[i], nil
			}
		}
		return nil, errors.New(errors.ErrCodeNotFound, "no baseline snapshot recorded")
	}

	var matches []*Entry
	for i := range entries {
		e := &entries[i]
		if e.ID == ref || e.Label == ref {
			return e, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, errors.NewWithContext(errors.ErrCodeNotFound,
			"no snapshot matches reference", map[string]any{"ref": ref})
	default:
		return nil, errors.NewWithContext(errors.ErrCodeNotFound,
			"snapshot reference is ambiguous", map[string]any{"ref": ref, "matches": len(matches)})
	}
}

// scan rebuilds the entry list from the snapshot files themselves.
func (s *Store) scan() ([]Entry, error) {
	glob := filepath.Join(s.dir, "*.json")
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConnection, "cannot scan snapshot directory", err)
	}
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		snap, err := loadFile(f)
		if err != nil {
			slog.Warn("skipping unreadable snapshot file",
				slog.String("path", f), slog.String("error", err.Error()))
			continue
		}
		entries = append(entries, entryOf(snap, f))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TakenAt.After(entries[j].TakenAt)
	})
	return entries, nil
}

func loadFile(path string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound,
			fmt.Sprintf("cannot read snapshot file %s", path), err)
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedSnapshot,
			fmt.Sprintf("snapshot file %s is not valid JSON", path), err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func entryOf(snap *snapshot.Snapshot, path string) Entry {
	return Entry{
		ID:         snap.ID,
		Label:      snap.Label,
		Fabric:     snap.Fabric,
		TakenAt:    snap.TakenAt,
		Health:     string(snap.Health),
		Baseline:   snap.Baseline,
		Incomplete: snap.Incomplete,
		Devices:    len(snap.Devices),
		Path:       path,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func looksLikePath(ref string) bool {
	if strings.ContainsRune(ref, os.PathSeparator) || strings.HasSuffix(ref, ".json") {
		return true
	}
	_, err := os.Stat(ref)
	return err == nil
}
