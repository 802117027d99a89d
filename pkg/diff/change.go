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

import "sort"

// Category groups changes by the fabric concern they touch. Report
// output is ordered by category first, in the order declared here.
type Category string

const (
	CategoryTopology   Category = "topology"
	CategoryHealth     Category = "health"
	CategoryInterfaces Category = "interfaces"
	CategoryProtocol   Category = "protocol"
	CategoryPolicy     Category = "policy"
	CategoryInventory  Category = "inventory"
)

// categoryOrder fixes the report ordering of categories.
var categoryOrder = map[Category]int{
	CategoryTopology:   0,
	CategoryHealth:     1,
	CategoryInterfaces: 2,
	CategoryProtocol:   3,
	CategoryPolicy:     4,
	CategoryInventory:  5,
}

// Severity ranks how much a change matters. Within a category, more
// severe changes sort first.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

var severityOrder = map[Severity]int{
	SeverityCritical: 0,
	SeverityWarning:  1,
	SeverityInfo:     2,
}

// ParseSeverity converts a string to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return Severity(s), true
	}
	return "", false
}

// Kind describes what happened at a path.
type Kind string

const (
	KindAdded   Kind = "added"
	KindRemoved Kind = "removed"
	KindChanged Kind = "changed"

	// KindError marks a subtree that could not be compared, for
	// example because an identity key appeared twice. The rest of the
	// report is unaffected.
	KindError Kind = "error"
)

// Change is one observed difference between two snapshots. Paths are
// dotted: device, collection, element id, attribute. Snapshot-wide
// changes such as the health tier use a bare path segment.
type Change struct {
	Path     string   `json:"path" yaml:"path"`
	Category Category `json:"category" yaml:"category"`
	Kind     Kind     `json:"kind" yaml:"kind"`
	Severity Severity `json:"severity" yaml:"severity"`
	Before   any      `json:"before,omitempty" yaml:"before,omitempty"`
	After    any      `json:"after,omitempty" yaml:"after,omitempty"`
	Note     string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// sortChanges orders a change list deterministically: category in the
// fixed report order, then severity from critical down, then path.
func sortChanges(changes []Change) {
	sort.SliceStable(changes, func(i, j int) bool {
		ci, cj := categoryOrder[changes[i].Category], categoryOrder[changes[j].Category]
		if ci != cj {
			return ci < cj
		}
		si, sj := severityOrder[changes[i].Severity], severityOrder[changes[j].Severity]
		if si != sj {
			return si < sj
		}
		return changes[i].Path < changes[j].Path
	})
}

// categoryForCollection maps a collection name to its report category.
// Unknown collections land in inventory so they still get reported.
func categoryForCollection(name string) Category {
	switch name {
	case "nodes", "controllers", "topology":
		return CategoryTopology
	case "faults", "health":
		return CategoryHealth
	case "interfaces", "port-channels", "vlans":
		return CategoryInterfaces
	case "routes", "endpoints", "isis-adjacencies", "bgp-peers":
		return CategoryProtocol
	case "policies", "contracts":
		return CategoryPolicy
	default:
		return CategoryInventory
	}
}
