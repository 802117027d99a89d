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

import "strings"

// Options tunes a comparison without changing its semantics.
type Options struct {
	// Ignore lists path patterns whose changes are dropped from the
	// report. Patterns support "*" wildcards, e.g. "*.uptime" or
	// "leaf1.endpoints.*".
	Ignore []string

	// SeverityOverrides maps a path pattern to the severity its
	// changes should carry, replacing the built-in classification.
	SeverityOverrides map[string]Severity

	// Version is stamped into the report header.
	Version string
}

// ignored reports whether a path matches any ignore pattern.
func (o *Options) ignored(path string) bool {
	for _, pattern := range o.Ignore {
		if matchesPattern(path, pattern) {
			return true
		}
	}
	return false
}

// override returns the severity for a path when an override pattern
// matches it. With multiple matching patterns the most specific win
// would be ambiguous, so the strongest severity is used.
func (o *Options) override(path string) (Severity, bool) {
	best := Severity("")
	found := false
	for pattern, sev := range o.SeverityOverrides {
		if !matchesPattern(path, pattern) {
			continue
		}
		if !found || severityOrder[sev] < severityOrder[best] {
			best = sev
		}
		found = true
	}
	return best, found
}

// severityFor classifies a change path from the built-in table:
// operational-state attributes are critical, cosmetic or counter-like
// attributes informational, and everything else a warning.
func (o *Options) severityFor(path string) Severity {
	leaf := path
	if i := strings.LastIndex(path, "."); i >= 0 {
		leaf = path[i+1:]
	}
	switch leaf {
	case "state", "oper-state", "admin-state", "peer-state", "status", "health":
		return SeverityCritical
	case "uptime", "descr", "last-transition", "counters", "pkts", "bytes":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// matchesPattern checks if a path matches a wildcard pattern.
// Supports multiple wildcard segments, e.g. "a*b*c" matches "aXbYc".
func matchesPattern(path, pattern string) bool {
	// No wildcard, exact match only.
	if !strings.Contains(pattern, "*") {
		return path == pattern
	}

	segments := strings.Split(pattern, "*")
	if len(segments) == 0 {
		return true
	}

	pos := 0
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if i == 0 && pattern[0] != '*' {
			if !strings.HasPrefix(path, segment) {
				return false
			}
			pos = len(segment)
			continue
		}
		if i == len(segments)-1 && pattern[len(pattern)-1] != '*' {
			return strings.HasSuffix(path[pos:], segment)
		}
		idx := strings.Index(path[pos:], segment)
		if idx == -1 {
			return false
		}
		pos += idx + len(segment)
	}

	return true
}
