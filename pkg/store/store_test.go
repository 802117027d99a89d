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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fserrors "github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
	"github.com/netgrid/fabricsnap/pkg/state"
)

func testSnapshot(label string, takenAt time.Time) *snapshot.Snapshot {
	s := snapshot.New(label, "dc1", "test")
	s.TakenAt = takenAt
	rec := state.NewRecord()
	rec.SetAttr(state.KeyHostname, state.Str("leaf1"))
	s.Seal([]snapshot.DeviceResult{{
		DeviceID: "leaf1",
		Role:     inventory.RoleLeaf,
		Status:   snapshot.StatusSuccess,
		Attempts: 1,
		Record:   rec,
	}}, nil, false)
	s.Health = snapshot.TierHealthy
	return s
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	snap := testSnapshot("nightly", time.Now().UTC())

	path, err := s.Save(snap)
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, err := s.Load(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.Equal(t, "nightly", got.Label)
	require.NotNil(t, got.Device("leaf1"))
}

func TestLoadByLabelAndPrefix(t *testing.T) {
	s := newTestStore(t)
	snap := testSnapshot("pre-change", time.Now().UTC())
	_, err := s.Save(snap)
	require.NoError(t, err)

	byLabel, err := s.Load("pre-change")
	require.NoError(t, err)
	assert.Equal(t, snap.ID, byLabel.ID)

	byPrefix, err := s.Load(snap.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, snap.ID, byPrefix.ID)
}

func TestLoadByPath(t *testing.T) {
	s := newTestStore(t)
	snap := testSnapshot("x", time.Now().UTC())
	path, err := s.Save(snap)
	require.NoError(t, err)

	got, err := s.Load(path)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
}

func TestLoadUnknownRef(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("nope")
	require.Error(t, err)
	assert.Equal(t, fserrors.ErrCodeNotFound, fserrors.CodeOf(err))
}

func TestBaselineDemotion(t *testing.T) {
	s := newTestStore(t)

	first := testSnapshot("b1", time.Now().Add(-time.Hour).UTC())
	first.Baseline = true
	_, err := s.Save(first)
	require.NoError(t, err)

	second := testSnapshot("b2", time.Now().UTC())
	second.Baseline = true
	_, err = s.Save(second)
	require.NoError(t, err)

	got, err := s.Baseline()
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	entries, err := s.List()
	require.NoError(t, err)
	baselines := 0
	for _, e := range entries {
		if e.Baseline {
			baselines++
		}
	}
	assert.Equal(t, 1, baselines)
}

func TestListOrder(t *testing.T) {
	s := newTestStore(t)
	old := testSnapshot("old", time.Now().Add(-2*time.Hour).UTC())
	newer := testSnapshot("newer", time.Now().UTC())
	_, err := s.Save(old)
	require.NoError(t, err)
	_, err = s.Save(newer)
	require.NoError(t, err)

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].Label)
	assert.Equal(t, "old", entries[1].Label)
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"kind":"Snapshot"}`), 0o644))

	_, err := s.Load(path)
	require.Error(t, err)
	assert.Equal(t, fserrors.ErrCodeMalformedSnapshot, fserrors.CodeOf(err))
}

func TestScanFallbackWithoutCatalog(t *testing.T) {
	s := newTestStore(t)
	snap := testSnapshot("no-catalog", time.Now().UTC())
	_, err := s.Save(snap)
	require.NoError(t, err)

	// Simulate a broken catalog.
	require.NoError(t, s.Close())
	s.catalog = nil

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, snap.ID, entries[0].ID)

	got, err := s.Load(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
}
