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
	"fmt"
	"reflect"
	"sort"

	"github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// Compare computes the structural difference between two snapshots.
// Matching is always by identity (device id, collection name, element
// identity key), never by position, so reordered input produces an
// empty report. The result is deterministic: the same pair of
// snapshots always yields the same ordered change list.
func Compare(before, after *snapshot.Snapshot, opts Options) (*Report, error) {
	if before == nil || after == nil {
		return nil, errors.New(errors.ErrCodeMalformedSnapshot, "cannot compare nil snapshots")
	}

	d := differ{opts: &opts}

	d.compareHealth(before, after)
	d.compareDevices(before, after)

	sortChanges(d.changes)

	r := NewReport(before, after, opts.Version)
	r.Changes = d.changes
	return r, nil
}

type differ struct {
	opts    *Options
	changes []Change
}

func (d *differ) add(c Change) {
	if d.opts.ignored(c.Path) {
		return
	}
	if sev, ok := d.opts.override(c.Path); ok {
		c.Severity = sev
	}
	d.changes = append(d.changes, c)
}

func (d *differ) compareHealth(before, after *snapshot.Snapshot) {
	if before.Health == after.Health {
		return
	}
	sev := SeverityWarning
	if before.Health == snapshot.TierCritical || after.Health == snapshot.TierCritical {
		sev = SeverityCritical
	}
	d.add(Change{
		Path:     "health",
		Category: CategoryHealth,
		Kind:     KindChanged,
		Severity: sev,
		Before:   string(before.Health),
		After:    string(after.Health),
	})
}

func (d *differ) compareDevices(before, after *snapshot.Snapshot) {
	b := make(map[string]*snapshot.DeviceResult, len(before.Devices))
	for i := range before.Devices {
		b[before.Devices[i].DeviceID] = &before.Devices[i]
	}
	a := make(map[string]*snapshot.DeviceResult, len(after.Devices))
	for i := range after.Devices {
		a[after.Devices[i].DeviceID] = &after.Devices[i]
	}

	for id, bd := range b {
		ad, ok := a[id]
		if !ok {
			// A removed device is reported once; its contents are not
			// walked.
			d.add(Change{
				Path:     id,
				Category: CategoryTopology,
				Kind:     KindRemoved,
				Severity: SeverityCritical,
				Before:   string(bd.Role),
			})
			continue
		}
		d.compareDevice(id, bd, ad)
	}
	for id, ad := range a {
		if _, ok := b[id]; !ok {
			d.add(Change{
				Path:     id,
				Category: CategoryTopology,
				Kind:     KindAdded,
				Severity: SeverityCritical,
				After:    string(ad.Role),
			})
		}
	}
}

func (d *differ) compareDevice(id string, before, after *snapshot.DeviceResult) {
	if before.Status != after.Status {
		d.add(Change{
			Path:     id + ".status",
			Category: CategoryTopology,
			Kind:     KindChanged,
			Severity: SeverityCritical,
			Before:   string(before.Status),
			After:    string(after.Status),
		})
	}

	// A side without a record contributes nothing below device level.
	if before.Record == nil || after.Record == nil {
		return
	}

	d.compareAttrs(id, CategoryInventory, before.Record.Attrs, after.Record.Attrs)

	names := map[string]bool{}
	for _, n := range before.Record.CollectionNames() {
		names[n] = true
	}
	for _, n := range after.Record.CollectionNames() {
		names[n] = true
	}
	for name := range names {
		d.compareCollection(id, name, before.Record.Collection(name), after.Record.Collection(name))
	}
}

// compareAttrs diffs two scalar attribute maps under the given prefix.
func (d *differ) compareAttrs(prefix string, cat Category, before, after map[string]state.Reading) {
	keys := map[string]bool{}
	for k := range before {
		keys[k] = true
	}
	for k := range after {
		keys[k] = true
	}
	for k := range keys {
		path := prefix + "." + k
		bv, inB := before[k]
		av, inA := after[k]
		switch {
		case !inB:
			d.add(Change{Path: path, Category: cat, Kind: KindAdded,
				Severity: d.opts.severityFor(path), After: av.Any()})
		case !inA:
			d.add(Change{Path: path, Category: cat, Kind: KindRemoved,
				Severity: d.opts.severityFor(path), Before: bv.Any()})
		case !equalValues(bv.Any(), av.Any()):
			d.add(Change{Path: path, Category: cat, Kind: KindChanged,
				Severity: d.opts.severityFor(path), Before: bv.Any(), After: av.Any()})
		}
	}
}

func (d *differ) compareCollection(deviceID, name string, before, after *state.Collection) {
	cat := categoryForCollection(name)
	collPath := deviceID + "." + name

	bEls, dup := elementIndex(before)
	if dup != "" {
		d.add(Change{
			Path:     collPath,
			Category: cat,
			Kind:     KindError,
			Severity: SeverityWarning,
			Note:     fmt.Sprintf("identity key %q appears more than once in the before snapshot", dup),
		})
		return
	}
	aEls, dup := elementIndex(after)
	if dup != "" {
		d.add(Change{
			Path:     collPath,
			Category: cat,
			Kind:     KindError,
			Severity: SeverityWarning,
			Note:     fmt.Sprintf("identity key %q appears more than once in the after snapshot", dup),
		})
		return
	}

	for id, bEl := range bEls {
		path := collPath + "." + id
		aEl, ok := aEls[id]
		if !ok {
			d.add(Change{Path: path, Category: cat, Kind: KindRemoved,
				Severity: d.elementSeverity(path, name, bEl), Before: attrsToAny(bEl.Attrs)})
			continue
		}
		d.compareAttrs(path, cat, bEl.Attrs, aEl.Attrs)
	}
	for id, aEl := range aEls {
		if _, ok := bEls[id]; !ok {
			path := collPath + "." + id
			d.add(Change{Path: path, Category: cat, Kind: KindAdded,
				Severity: d.elementSeverity(path, name, aEl), After: attrsToAny(aEl.Attrs)})
		}
	}
}

// elementSeverity grades an element appearing or disappearing. Faults
// inherit the severity recorded on the fault itself; other elements
// default to warning.
func (d *differ) elementSeverity(path, collection string, el *state.Element) Severity {
	if collection != state.CollFaults {
		return SeverityWarning
	}
	sev, err := el.GetString(state.KeySeverity)
	if err != nil {
		return SeverityWarning
	}
	switch sev {
	case state.SeverityCritical, state.SeverityMajor:
		return SeverityCritical
	case state.SeverityInfo, state.SeverityCleared:
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// elementIndex builds an id lookup for a collection. The second return
// is the first duplicated identity key, or empty when all keys are
// unique. A nil collection yields an empty index.
func elementIndex(c *state.Collection) (map[string]*state.Element, string) {
	if c == nil {
		return map[string]*state.Element{}, ""
	}
	idx := make(map[string]*state.Element, len(c.Elements))
	ids := make([]string, 0, len(c.Elements))
	for i := range c.Elements {
		ids = append(ids, c.Elements[i].ID)
	}
	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return nil, ids[i]
		}
	}
	for i := range c.Elements {
		idx[c.Elements[i].ID] = &c.Elements[i]
	}
	return idx, ""
}

func attrsToAny(attrs map[string]state.Reading) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v.Any()
	}
	return out
}

// equalValues compares two scalar values. Numbers are compared by
// value regardless of their Go type, since a decoded snapshot carries
// float64 where a freshly collected one carries int64.
func equalValues(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
