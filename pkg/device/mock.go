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

package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// MockClient is a scripted device client used by dry-run mode and tests.
// All behavior maps are optional; the zero value succeeds on every fetch
// with deterministic seeded fabric data.
type MockClient struct {
	// Latency is applied to every fetch before the outcome is decided.
	Latency time.Duration

	// FailConnect lists device ids whose every fetch fails with a
	// connection error.
	FailConnect map[string]bool

	// FailQuery maps "<device>/<query>" to an error, producing partial
	// results when only secondary query classes are listed.
	FailQuery map[string]error

	// SucceedAfter maps a device id to the attempt number (1-based, counted
	// per query class) from which its fetches start succeeding.
	SucceedAfter map[string]int

	// Records overrides the seeded record for "<device>/<query>" keys.
	Records map[string]*state.Record

	mu       sync.Mutex
	attempts map[string]int
}

// Attempts returns the number of fetches observed for a device and query class.
func (m *MockClient) Attempts(deviceID string, qc QueryClass) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[deviceID+"/"+qc.String()]
}

// Fetch implements Client with scripted outcomes.
func (m *MockClient) Fetch(ctx context.Context, dev inventory.DeviceDescriptor, qc QueryClass) (*state.Record, error) {
	key := dev.ID + "/" + qc.String()

	m.mu.Lock()
	if m.attempts == nil {
		m.attempts = make(map[string]int)
	}
	m.attempts[key]++
	attempt := m.attempts[key]
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeTimeout, "mock fetch cancelled", ctx.Err())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "mock fetch cancelled", err)
	}

	if m.FailConnect[dev.ID] {
		return nil, errors.New(errors.ErrCodeConnection,
			fmt.Sprintf("connection to %s refused", dev.Address))
	}
	if n, ok := m.SucceedAfter[dev.ID]; ok && attempt < n {
		return nil, errors.New(errors.ErrCodeConnection,
			fmt.Sprintf("connection to %s reset (attempt %d)", dev.Address, attempt))
	}
	if err, ok := m.FailQuery[key]; ok {
		return nil, err
	}

	if r, ok := m.Records[key]; ok {
		return r, nil
	}
	return SeedRecord(dev, qc), nil
}

// SeedRecord produces a deterministic record for a device and query class.
// The content is stable across invocations so mock snapshots diff cleanly.
func SeedRecord(dev inventory.DeviceDescriptor, qc QueryClass) *state.Record {
	r := state.NewRecord()

	switch qc {
	case QueryTopology:
		c := r.AddCollection(state.CollNodes, "name")
		for i, name := range []string{"leaf1", "leaf2", "spine1"} {
			c.AddElement(name, map[string]state.Reading{
				state.KeyNodeID: state.Int(101 + i),
				state.KeyState:  state.Str("active"),
				state.KeyModel:  state.Str("N9K-C93180YC-FX"),
			})
		}
	case QueryFaults:
		// Healthy fabric by default: no fault instances.
		r.AddCollection(state.CollFaults, "code")
	case QueryHealth:
		c := r.AddCollection(state.CollHealth, "dn")
		c.AddElement("fabric", map[string]state.Reading{"score": state.Int(98)})
	case QueryControllers:
		c := r.AddCollection(state.CollControllers, "name")
		c.AddElement(dev.ID, map[string]state.Reading{
			state.KeyVersion: state.Str("6.0(3e)"),
			state.KeyState:   state.Str("fully-fit"),
		})
	case QueryInterfaces:
		c := r.AddCollection(state.CollInterfaces, "name")
		for i := 1; i <= 4; i++ {
			c.AddElement(fmt.Sprintf("eth1/%d", i), map[string]state.Reading{
				state.KeyState: state.Str("up"),
				state.KeySpeed: state.Str("100G"),
				state.KeyVlan:  state.Str("routed"),
			})
		}
	case QueryPortChannels:
		c := r.AddCollection(state.CollPortChannels, "name")
		c.AddElement("po1", map[string]state.Reading{
			state.KeyState: state.Str("up"),
			"protocol":     state.Str("lacp"),
		})
	case QueryVlans:
		c := r.AddCollection(state.CollVlans, "id")
		c.AddElement("10", map[string]state.Reading{state.KeyState: state.Str("active")})
		c.AddElement("20", map[string]state.Reading{state.KeyState: state.Str("active")})
	case QueryEndpoints:
		c := r.AddCollection(state.CollEndpoints, "mac")
		c.AddElement("00:50:56:aa:bb:01", map[string]state.Reading{
			"vlan": state.Str("10"), "iface": state.Str("eth1/3"),
		})
	case QueryRouting:
		c := r.AddCollection(state.CollIsisAdj, "system-id")
		c.AddElement("leaf1.dc1", map[string]state.Reading{state.KeyState: state.Str("up")})
		c.AddElement("leaf2.dc1", map[string]state.Reading{state.KeyState: state.Str("up")})
	}

	r.SetAttr(state.KeyHostname, state.Str(dev.ID))
	return r
}
