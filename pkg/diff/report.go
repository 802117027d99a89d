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

package diff

import (
	"time"

	"github.com/netgrid/fabricsnap/pkg/header"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
)

// Report is the serialized outcome of comparing two snapshots.
type Report struct {
	header.Header `json:",inline" yaml:",inline"`

	BeforeID    string    `json:"beforeId" yaml:"beforeId"`
	BeforeLabel string    `json:"beforeLabel,omitempty" yaml:"beforeLabel,omitempty"`
	AfterID     string    `json:"afterId" yaml:"afterId"`
	AfterLabel  string    `json:"afterLabel,omitempty" yaml:"afterLabel,omitempty"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Changes     []Change  `json:"changes" yaml:"changes"`
}

// NewReport builds an empty report for the given snapshot pair.
func NewReport(before, after *snapshot.Snapshot, version string) *Report {
	r := &Report{
		BeforeID:    before.ID,
		BeforeLabel: before.Label,
		AfterID:     after.ID,
		AfterLabel:  after.Label,
		GeneratedAt: time.Now().UTC(),
	}
	r.Header.Init(header.KindComparisonReport, snapshot.APIVersion, version)
	return r
}

// HasChanges reports whether the comparison found any difference.
func (r *Report) HasChanges() bool {
	return len(r.Changes) > 0
}

// HasErrors reports whether any subtree could not be compared.
func (r *Report) HasErrors() bool {
	for i := range r.Changes {
		if r.Changes[i].Kind == KindError {
			return true
		}
	}
	return false
}

// CountBySeverity tallies changes per severity for summary output.
func (r *Report) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, 3)
	for i := range r.Changes {
		counts[r.Changes[i].Severity]++
	}
	return counts
}
