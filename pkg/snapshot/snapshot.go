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

package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/netgrid/fabricsnap/pkg/device"
	"github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/header"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// APIVersion identifies the snapshot document schema.
const APIVersion = "netgrid.io/v1"

// Status describes the outcome of collecting one device.
type Status string

const (
	// StatusSuccess means every query class for the device returned data.
	StatusSuccess Status = "success"
	// StatusPartial means the primary query succeeded but at least one
	// secondary query failed.
	StatusPartial Status = "partial"
	// StatusFailure means no usable state was collected from the device.
	StatusFailure Status = "failure"
)

// ParseStatus converts a serialized status back to its typed form.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusSuccess, StatusPartial, StatusFailure:
		return Status(s), nil
	}
	return "", errors.New(errors.ErrCodeMalformedSnapshot, fmt.Sprintf("unknown device status: %q", s))
}

// HealthTier is the coarse classification of a whole snapshot.
type HealthTier string

const (
	TierHealthy  HealthTier = "healthy"
	TierWarning  HealthTier = "warning"
	TierCritical HealthTier = "critical"
)

// FailureInfo captures why a device (or one of its queries) failed.
type FailureInfo struct {
	Kind    errors.ErrorCode `json:"kind" yaml:"kind"`
	Message string           `json:"message,omitempty" yaml:"message,omitempty"`
}

// FailedQuery records a secondary query that did not complete.
type FailedQuery struct {
	Query    device.QueryClass `json:"query" yaml:"query"`
	Kind     errors.ErrorCode  `json:"kind" yaml:"kind"`
	Message  string            `json:"message,omitempty" yaml:"message,omitempty"`
	Attempts int               `json:"attempts" yaml:"attempts"`
}

// DeviceResult is the per-device slice of a snapshot.
type DeviceResult struct {
	DeviceID      string         `json:"deviceId" yaml:"deviceId"`
	Role          inventory.Role `json:"role" yaml:"role"`
	Status        Status         `json:"status" yaml:"status"`
	Attempts      int            `json:"attempts" yaml:"attempts"`
	Record        *state.Record  `json:"record,omitempty" yaml:"record,omitempty"`
	FailedQueries []FailedQuery  `json:"failedQueries,omitempty" yaml:"failedQueries,omitempty"`
	Failure       *FailureInfo   `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Snapshot is a point-in-time capture of fabric state across devices.
// Device results are kept sorted by device id so that serialized
// snapshots and their diffs are deterministic.
type Snapshot struct {
	header.Header `json:",inline" yaml:",inline"`

	ID          string         `json:"id" yaml:"id"`
	Label       string         `json:"label,omitempty" yaml:"label,omitempty"`
	Fabric      string         `json:"fabric,omitempty" yaml:"fabric,omitempty"`
	Baseline    bool           `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	TakenAt     time.Time      `json:"takenAt" yaml:"takenAt"`
	Health      HealthTier     `json:"health,omitempty" yaml:"health,omitempty"`
	Incomplete  bool           `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
	Unattempted []string       `json:"unattempted,omitempty" yaml:"unattempted,omitempty"`
	Devices     []DeviceResult `json:"devices" yaml:"devices"`
}

// New returns an empty snapshot stamped with a fresh id and the
// standard document header.
func New(label, fabric, version string) *Snapshot {
	s := &Snapshot{
		ID:      uuid.NewString(),
		Label:   label,
		Fabric:  fabric,
		TakenAt: time.Now().UTC(),
	}
	s.Header.Init(header.KindSnapshot, APIVersion, version)
	return s
}

// Seal attaches the collected results. Results are sorted by device id;
// unattempted device ids are recorded so a reader can tell deadline
// truncation apart from per-device failure. Incomplete marks deadline
// truncation only; a fully resolved run with failed devices is still
// complete, the failures speak for themselves in the results.
func (s *Snapshot) Seal(results []DeviceResult, unattempted []string, truncated bool) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].DeviceID < results[j].DeviceID
	})
	sort.Strings(unattempted)
	s.Devices = results
	s.Unattempted = unattempted
	s.Incomplete = truncated || len(unattempted) > 0
}

// Device returns the result for the given device id, or nil.
func (s *Snapshot) Device(id string) *DeviceResult {
	for i := range s.Devices {
		if s.Devices[i].DeviceID == id {
			return &s.Devices[i]
		}
	}
	return nil
}

// DeviceIDs returns the ids of all device results in order.
func (s *Snapshot) DeviceIDs() []string {
	ids := make([]string, 0, len(s.Devices))
	for i := range s.Devices {
		ids = append(ids, s.Devices[i].DeviceID)
	}
	return ids
}

// Validate checks the structural integrity of a snapshot document.
// Duplicate element keys inside a record are deliberately not rejected
// here; the comparison engine reports those as localized errors instead
// of refusing the whole document.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeMalformedSnapshot, "snapshot is nil")
	}
	if s.Kind != header.KindSnapshot {
		return errors.New(errors.ErrCodeMalformedSnapshot, fmt.Sprintf("unexpected document kind: %q", s.Kind))
	}
	if s.ID == "" {
		return errors.New(errors.ErrCodeMalformedSnapshot, "snapshot id is empty")
	}
	seen := make(map[string]bool, len(s.Devices))
	prev := ""
	for i := range s.Devices {
		d := &s.Devices[i]
		if d.DeviceID == "" {
			return errors.New(errors.ErrCodeMalformedSnapshot, "device result with empty id")
		}
		if seen[d.DeviceID] {
			return errors.NewWithContext(errors.ErrCodeMalformedSnapshot,
				"duplicate device id in snapshot", map[string]any{"device": d.DeviceID})
		}
		seen[d.DeviceID] = true
		if d.DeviceID < prev {
			return errors.New(errors.ErrCodeMalformedSnapshot, "device results are not sorted by id")
		}
		prev = d.DeviceID
		if _, err := ParseStatus(string(d.Status)); err != nil {
			return err
		}
		if d.Status == StatusSuccess && d.Record == nil {
			return errors.NewWithContext(errors.ErrCodeMalformedSnapshot,
				"successful device result has no record", map[string]any{"device": d.DeviceID})
		}
		if d.Status == StatusFailure && d.Failure == nil {
			return errors.NewWithContext(errors.ErrCodeMalformedSnapshot,
				"failed device result has no failure info", map[string]any{"device": d.DeviceID})
		}
	}
	return nil
}

// Summary renders a short human line for list output.
func (s *Snapshot) Summary() string {
	ok := 0
	for i := range s.Devices {
		if s.Devices[i].Status == StatusSuccess {
			ok++
		}
	}
	return fmt.Sprintf("%d/%d devices ok, health=%s", ok, len(s.Devices), s.Health)
}
