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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgrid/fabricsnap/pkg/diff"
	fserrors "github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
	"github.com/netgrid/fabricsnap/pkg/store"
)

const testInventoryYAML = `fabric: dc1
devices:
  - id: apic1
    role: controller
    address: 10.0.0.1
    credentialRef: apic
  - id: leaf1
    role: leaf
    address: 10.0.0.11
    credentialRef: switch
  - id: spine1
    role: spine
    address: 10.0.0.21
    credentialRef: switch
`

func writeInventory(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fabric.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testInventoryYAML), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	return Root().Run(context.Background(), append([]string{name}, args...))
}

func TestCollectMockEndToEnd(t *testing.T) {
	invPath := writeInventory(t)
	snapDir := t.TempDir()

	err := runCLI(t,
		"collect", "--inventory", invPath, "--mock",
		"--label", "first", "--baseline",
		"--snapshots-dir", snapDir)
	require.NoError(t, err)

	st, err := store.New(snapDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	entries, err := st.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Baseline)
	assert.Equal(t, "first", entries[0].Label)
	assert.Equal(t, 3, entries[0].Devices)

	snap, err := st.Baseline()
	require.NoError(t, err)
	assert.Equal(t, snapshot.TierHealthy, snap.Health)
}

func TestCollectSkipFlags(t *testing.T) {
	invPath := writeInventory(t)
	snapDir := t.TempDir()

	err := runCLI(t,
		"collect", "--inventory", invPath, "--mock",
		"--skip-controller", "--skip-spine",
		"--snapshots-dir", snapDir)
	require.NoError(t, err)

	st, err := store.New(snapDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	entries, err := st.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Devices)
}

func TestCollectAllRolesSkipped(t *testing.T) {
	invPath := writeInventory(t)
	err := runCLI(t,
		"collect", "--inventory", invPath, "--mock",
		"--skip-controller", "--skip-leaf", "--skip-spine",
		"--snapshots-dir", t.TempDir())
	require.Error(t, err)
}

func TestCompareIdenticalMockSnapshots(t *testing.T) {
	invPath := writeInventory(t)
	snapDir := t.TempDir()

	require.NoError(t, runCLI(t,
		"collect", "--inventory", invPath, "--mock",
		"--label", "a", "--baseline", "--snapshots-dir", snapDir))
	require.NoError(t, runCLI(t,
		"collect", "--inventory", invPath, "--mock",
		"--label", "b", "--snapshots-dir", snapDir))

	out := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, runCLI(t,
		"compare", "--before", "baseline", "--after", "b",
		"--snapshots-dir", snapDir,
		"--format", "json", "--output", out))
	assert.FileExists(t, out)
}

func TestValidateStoredSnapshots(t *testing.T) {
	invPath := writeInventory(t)
	snapDir := t.TempDir()

	require.NoError(t, runCLI(t,
		"collect", "--inventory", invPath, "--mock", "--snapshots-dir", snapDir))
	require.NoError(t, runCLI(t, "validate", "--snapshots-dir", snapDir))
}

func TestValidateRejectsBrokenSnapshot(t *testing.T) {
	snapDir := t.TempDir()
	bad := filepath.Join(snapDir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"kind":"Snapshot"}`), 0o644))

	err := runCLI(t, "validate", "--snapshots-dir", snapDir, bad)
	require.Error(t, err)
}

func TestValidateInventory(t *testing.T) {
	invPath := writeInventory(t)
	require.NoError(t, runCLI(t, "validate", "--inventory", invPath))

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("devices: [{id: x, role: router, address: 1.2.3.4}]"), 0o644))
	require.Error(t, runCLI(t, "validate", "--inventory", badPath))
}

func TestParseSeverityOverrides(t *testing.T) {
	got, err := parseSeverityOverrides([]string{"*.uptime=info", "leaf1.*=critical"})
	require.NoError(t, err)
	assert.Equal(t, map[string]diff.Severity{
		"*.uptime": diff.SeverityInfo,
		"leaf1.*":  diff.SeverityCritical,
	}, got)

	_, err = parseSeverityOverrides([]string{"nolevel"})
	require.Error(t, err)
	_, err = parseSeverityOverrides([]string{"a=fatal"})
	require.Error(t, err)
}

func TestRequiredDeviceFailure(t *testing.T) {
	s := snapshot.New("", "dc1", "test")
	s.Seal([]snapshot.DeviceResult{{
		DeviceID: "apic1",
		Role:     inventory.RoleController,
		Status:   snapshot.StatusFailure,
		Failure:  &snapshot.FailureInfo{Kind: fserrors.ErrCodeConnection, Message: "refused"},
	}}, nil, false)

	err := requiredDeviceFailure(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apic1")

	s2 := snapshot.New("", "dc1", "test")
	s2.Seal(nil, nil, false)
	assert.NoError(t, requiredDeviceFailure(s2))
}
