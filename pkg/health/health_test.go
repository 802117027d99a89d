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

package health

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	fserrors "github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// buildSnapshot assembles a snapshot with one controller, one leaf, and
// the requested number of open faults spread over the leaf record.
func buildSnapshot(controllerStatus snapshot.Status, openFaults int) *snapshot.Snapshot {
	s := snapshot.New("t", "dc1", "test")

	ctrl := snapshot.DeviceResult{
		DeviceID: "apic1",
		Role:     inventory.RoleController,
		Status:   controllerStatus,
		Attempts: 1,
	}
	if controllerStatus == snapshot.StatusFailure {
		ctrl.Failure = &snapshot.FailureInfo{Kind: fserrors.ErrCodeConnection}
	} else {
		ctrl.Record = state.NewRecord()
	}

	leafRec := state.NewRecord()
	faults := leafRec.AddCollection(state.CollFaults, "id")
	for i := 0; i < openFaults; i++ {
		faults.AddElement(fmt.Sprintf("F%04d", i), map[string]state.Reading{
			state.KeySeverity: state.Str(state.SeverityMinor),
		})
	}
	// Noise that must not count toward the tier.
	faults.AddElement("F-info", map[string]state.Reading{
		state.KeySeverity: state.Str(state.SeverityInfo),
	})
	faults.AddElement("F-cleared", map[string]state.Reading{
		state.KeySeverity: state.Str(state.SeverityCleared),
	})

	leaf := snapshot.DeviceResult{
		DeviceID: "leaf1",
		Role:     inventory.RoleLeaf,
		Status:   snapshot.StatusSuccess,
		Attempts: 1,
		Record:   leafRec,
	}

	s.Seal([]snapshot.DeviceResult{ctrl, leaf}, nil, false)
	return s
}

func TestClassifyTiers(t *testing.T) {
	tests := []struct {
		name             string
		controllerStatus snapshot.Status
		openFaults       int
		want             snapshot.HealthTier
	}{
		{"no issues", snapshot.StatusSuccess, 0, snapshot.TierHealthy},
		{"one issue", snapshot.StatusSuccess, 1, snapshot.TierWarning},
		{"three issues", snapshot.StatusSuccess, 3, snapshot.TierWarning},
		{"four issues", snapshot.StatusSuccess, 4, snapshot.TierCritical},
		{"controller down trumps clean fabric", snapshot.StatusFailure, 0, snapshot.TierCritical},
		{"controller down trumps issue count", snapshot.StatusFailure, 2, snapshot.TierCritical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := buildSnapshot(tc.controllerStatus, tc.openFaults)
			assert.Equal(t, tc.want, Classify(s))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	s := buildSnapshot(snapshot.StatusSuccess, 2)
	first := Classify(s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(s))
	}
}

func TestCountIssuesSkipsInfoAndCleared(t *testing.T) {
	s := buildSnapshot(snapshot.StatusSuccess, 2)
	assert.Equal(t, 2, CountIssues(s))
}

func TestCountIssuesCountsUnreadableSeverity(t *testing.T) {
	s := buildSnapshot(snapshot.StatusSuccess, 0)
	rec := s.Device("leaf1").Record
	rec.Collection(state.CollFaults).AddElement("F-odd", map[string]state.Reading{
		state.KeyCause: state.Str("unknown"),
	})
	assert.Equal(t, 1, CountIssues(s))
}
