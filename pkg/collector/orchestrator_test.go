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

package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgrid/fabricsnap/pkg/device"
	fserrors "github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
)

func testInventory(ids ...string) *inventory.Inventory {
	inv := &inventory.Inventory{FabricName: "dc1"}
	for i, id := range ids {
		role := inventory.RoleLeaf
		switch {
		case i == 0:
			role = inventory.RoleController
		case i == len(ids)-1 && len(ids) > 2:
			role = inventory.RoleSpine
		}
		inv.Devices = append(inv.Devices, inventory.DeviceDescriptor{
			ID:      id,
			Role:    role,
			Address: "10.0.0." + id,
		})
	}
	return inv
}

func fastConfig() CollectionConfig {
	return CollectionConfig{
		MaxConcurrentDevices: 4,
		PerDeviceTimeout:     time.Second,
		RetryAttempts:        3,
		BackoffBase:          time.Millisecond,
		OverallDeadline:      time.Minute,
		RequestsPerSecond:    1000,
	}
}

func TestCollectAllSuccess(t *testing.T) {
	mock := &device.MockClient{}
	o, err := New(fastConfig(), &device.MockFactory{Client: mock}, "test")
	require.NoError(t, err)

	snap, err := o.Collect(context.Background(), testInventory("apic1", "leaf1", "leaf2", "spine1"), "nightly")
	require.NoError(t, err)
	require.NoError(t, snap.Validate())

	assert.Equal(t, []string{"apic1", "leaf1", "leaf2", "spine1"}, snap.DeviceIDs())
	assert.False(t, snap.Incomplete)
	assert.Empty(t, snap.Unattempted)
	assert.Equal(t, snapshot.TierHealthy, snap.Health)
	for _, id := range snap.DeviceIDs() {
		d := snap.Device(id)
		assert.Equal(t, snapshot.StatusSuccess, d.Status)
		assert.Equal(t, 1, d.Attempts)
		require.NotNil(t, d.Record)
	}
}

func TestCollectSomeDevicesFail(t *testing.T) {
	mock := &device.MockClient{
		FailConnect: map[string]bool{"leaf2": true, "leaf3": true},
	}
	o, err := New(fastConfig(), &device.MockFactory{Client: mock}, "test")
	require.NoError(t, err)

	snap, err := o.Collect(context.Background(), testInventory("apic1", "leaf1", "leaf2", "leaf3", "spine1"), "")
	require.NoError(t, err)
	require.NoError(t, snap.Validate())

	// All devices resolved within the deadline, so the snapshot is
	// complete even though two of them failed.
	assert.False(t, snap.Incomplete)
	assert.Empty(t, snap.Unattempted)

	for _, id := range []string{"apic1", "leaf1", "spine1"} {
		assert.Equal(t, snapshot.StatusSuccess, snap.Device(id).Status, id)
	}
	for _, id := range []string{"leaf2", "leaf3"} {
		d := snap.Device(id)
		assert.Equal(t, snapshot.StatusFailure, d.Status, id)
		require.NotNil(t, d.Failure, id)
		assert.Equal(t, fserrors.ErrCodeConnection, d.Failure.Kind, id)
		assert.Equal(t, 3, d.Attempts, id)
	}
}

func TestCollectRetryThenSucceed(t *testing.T) {
	mock := &device.MockClient{
		SucceedAfter: map[string]int{"leaf1": 3},
	}
	o, err := New(fastConfig(), &device.MockFactory{Client: mock}, "test")
	require.NoError(t, err)

	snap, err := o.Collect(context.Background(), testInventory("apic1", "leaf1"), "")
	require.NoError(t, err)

	d := snap.Device("leaf1")
	require.NotNil(t, d)
	assert.Equal(t, snapshot.StatusSuccess, d.Status)
	assert.Equal(t, 3, d.Attempts)
}

func TestCollectSecondaryQueryFailureIsPartial(t *testing.T) {
	mock := &device.MockClient{
		FailQuery: map[string]error{
			"leaf1/" + string(device.QueryVlans): fserrors.New(fserrors.ErrCodePartialData, "vlan table unreadable"),
		},
	}
	o, err := New(fastConfig(), &device.MockFactory{Client: mock}, "test")
	require.NoError(t, err)

	snap, err := o.Collect(context.Background(), testInventory("apic1", "leaf1"), "")
	require.NoError(t, err)

	d := snap.Device("leaf1")
	require.NotNil(t, d)
	assert.Equal(t, snapshot.StatusPartial, d.Status)
	require.NotNil(t, d.Record)
	require.Len(t, d.FailedQueries, 1)
	assert.Equal(t, device.QueryVlans, d.FailedQueries[0].Query)
	assert.Equal(t, 3, d.FailedQueries[0].Attempts)
	assert.False(t, snap.Incomplete)
}

func TestCollectCancellation(t *testing.T) {
	mock := &device.MockClient{Latency: 200 * time.Millisecond}
	o, err := New(fastConfig(), &device.MockFactory{Client: mock}, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = o.Collect(ctx, testInventory("apic1", "leaf1", "leaf2", "spine1"), "")
	require.Error(t, err)
	assert.Equal(t, fserrors.ErrCodeTimeout, fserrors.CodeOf(err))
}

func TestCollectDeadlineMarksUnattempted(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxConcurrentDevices = 1
	cfg.OverallDeadline = 100 * time.Millisecond
	mock := &device.MockClient{Latency: 60 * time.Millisecond}
	o, err := New(cfg, &device.MockFactory{Client: mock}, "test")
	require.NoError(t, err)

	snap, err := o.Collect(context.Background(), testInventory("apic1", "leaf1", "leaf2"), "")
	require.NoError(t, err)
	require.NoError(t, snap.Validate())

	assert.True(t, snap.Incomplete)
	assert.NotEmpty(t, snap.Unattempted)
	// Admission is in inventory order, so the devices cut off by the
	// deadline are a suffix of the inventory.
	assert.Contains(t, snap.Unattempted, "leaf2")
}

func TestCollectZeroRateIsUnlimited(t *testing.T) {
	cfg := fastConfig()
	cfg.RequestsPerSecond = 0
	o, err := New(cfg, &device.MockFactory{Client: &device.MockClient{}}, "test")
	require.NoError(t, err)

	snap, err := o.Collect(context.Background(), testInventory("apic1", "leaf1", "leaf2", "spine1"), "")
	require.NoError(t, err)
	assert.False(t, snap.Incomplete)
	for _, id := range snap.DeviceIDs() {
		assert.Equal(t, snapshot.StatusSuccess, snap.Device(id).Status)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryAttempts = -1
	_, err := New(cfg, &device.MockFactory{Client: &device.MockClient{}}, "test")
	require.Error(t, err)
	assert.Equal(t, fserrors.ErrCodeInvalidConfig, fserrors.CodeOf(err))
}
