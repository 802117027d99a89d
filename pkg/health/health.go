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
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// Issue count boundaries between the tiers. A snapshot with more than
// warningMaxIssues open issues is critical even when every device
// responded.
const (
	healthyMaxIssues = 0
	warningMaxIssues = 3
)

// Classify derives the overall health tier of a snapshot. It is a pure
// function of the snapshot contents: the same snapshot always yields
// the same tier.
//
// A failed controller makes the whole snapshot critical regardless of
// anything else, since without the controller the rest of the capture
// cannot be trusted to be current.
func Classify(s *snapshot.Snapshot) snapshot.HealthTier {
	for i := range s.Devices {
		d := &s.Devices[i]
		if d.Role == inventory.RoleController && d.Status == snapshot.StatusFailure {
			return snapshot.TierCritical
		}
	}

	issues := CountIssues(s)
	switch {
	case issues <= healthyMaxIssues:
		return snapshot.TierHealthy
	case issues <= warningMaxIssues:
		return snapshot.TierWarning
	default:
		return snapshot.TierCritical
	}
}

// CountIssues totals the open fault instances across all device
// records. Informational and already-cleared faults do not count.
func CountIssues(s *snapshot.Snapshot) int {
	total := 0
	for i := range s.Devices {
		rec := s.Devices[i].Record
		if rec == nil {
			continue
		}
		faults := rec.Collection(state.CollFaults)
		if faults == nil {
			continue
		}
		for j := range faults.Elements {
			sev, err := faults.Elements[j].GetString(state.KeySeverity)
			if err != nil {
				// A fault without a readable severity still counts.
				total++
				continue
			}
			if sev == state.SeverityInfo || sev == state.SeverityCleared {
				continue
			}
			total++
		}
	}
	return total
}
