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

package state

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/netgrid/fabricsnap/pkg/errors"
)

// Record holds the state collected from one device: top-level scalar
// attributes plus named keyed sub-collections (interfaces, faults, routes,
// policy entries). Collections keep insertion order for stable encoding.
type Record struct {
	Attrs       map[string]Reading `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Collections []*Collection      `json:"collections,omitempty" yaml:"collections,omitempty"`
}

// Collection is a keyed sub-collection of a device record. Elements are
// matched across snapshots by their identity key, never by position.
type Collection struct {
	// Name is the collection name, e.g. "interfaces" or "faults".
	Name string `json:"name" yaml:"name"`

	// KeyAttr declares which attribute supplies element identity,
	// e.g. "name" for interfaces or "code" for faults.
	KeyAttr string `json:"key" yaml:"key"`

	// Elements are the keyed members of the collection.
	Elements []Element `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// Element is a single keyed member of a Collection with scalar attributes.
type Element struct {
	ID    string             `json:"id" yaml:"id"`
	Attrs map[string]Reading `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{
		Attrs: make(map[string]Reading),
	}
}

// SetAttr sets a top-level attribute on the record.
func (r *Record) SetAttr(key string, value Reading) {
	if r.Attrs == nil {
		r.Attrs = make(map[string]Reading)
	}
	r.Attrs[key] = value
}

// Collection retrieves a collection by name, returning nil if not found.
func (r *Record) Collection(name string) *Collection {
	for _, c := range r.Collections {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// AddCollection appends a new named collection with the given identity key
// attribute and returns it. If a collection with the name already exists,
// the existing one is returned.
func (r *Record) AddCollection(name, keyAttr string) *Collection {
	if c := r.Collection(name); c != nil {
		return c
	}
	c := &Collection{Name: name, KeyAttr: keyAttr}
	r.Collections = append(r.Collections, c)
	return c
}

// CollectionNames returns the collection names in insertion order.
func (r *Record) CollectionNames() []string {
	names := make([]string, len(r.Collections))
	for i, c := range r.Collections {
		names[i] = c.Name
	}
	return names
}

// Merge folds the state collected for another query class into r.
// Top-level attributes from other win on conflicts; collections with the
// same name have their elements appended (duplicate identities are caught
// by Validate, not silently overwritten).
func (r *Record) Merge(other *Record) {
	if other == nil {
		return
	}
	for k, v := range other.Attrs {
		r.SetAttr(k, v)
	}
	for _, oc := range other.Collections {
		c := r.Collection(oc.Name)
		if c == nil {
			r.Collections = append(r.Collections, &Collection{
				Name:     oc.Name,
				KeyAttr:  oc.KeyAttr,
				Elements: append([]Element(nil), oc.Elements...),
			})
			continue
		}
		c.Elements = append(c.Elements, oc.Elements...)
	}
}

// Validate checks structural integrity of the record. A duplicate identity
// key within one collection is a structural defect surfaced as an error.
func (r *Record) Validate() error {
	for _, c := range r.Collections {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the collection for empty or duplicate element identities.
func (c *Collection) Validate() error {
	if c.Name == "" {
		return errors.New(errors.ErrCodeMalformedSnapshot, "collection name cannot be empty")
	}
	seen := make(map[string]struct{}, len(c.Elements))
	for _, e := range c.Elements {
		if e.ID == "" {
			return errors.NewWithContext(errors.ErrCodeMalformedSnapshot,
				"element with empty identity key",
				map[string]any{"collection": c.Name})
		}
		if _, dup := seen[e.ID]; dup {
			return errors.NewWithContext(errors.ErrCodeDuplicateKey,
				fmt.Sprintf("duplicate identity key %q in collection %q", e.ID, c.Name),
				map[string]any{"collection": c.Name, "id": e.ID})
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// AddElement appends an element to the collection.
func (c *Collection) AddElement(id string, attrs map[string]Reading) *Element {
	c.Elements = append(c.Elements, Element{ID: id, Attrs: attrs})
	return &c.Elements[len(c.Elements)-1]
}

// Element retrieves an element by identity key, returning nil if not found.
func (c *Collection) Element(id string) *Element {
	for i := range c.Elements {
		if c.Elements[i].ID == id {
			return &c.Elements[i]
		}
	}
	return nil
}

// IDs returns the element identity keys sorted lexicographically.
func (c *Collection) IDs() []string {
	ids := make([]string, len(c.Elements))
	for i, e := range c.Elements {
		ids[i] = e.ID
	}
	sort.Strings(ids)
	return ids
}

// Has checks if a key exists in the element attributes.
func (e *Element) Has(key string) bool {
	_, exists := e.Attrs[key]
	return exists
}

// Get retrieves a reading by key, returning nil if not found.
func (e *Element) Get(key string) Reading {
	return e.Attrs[key]
}

// GetString attempts to retrieve a string value, returning an error if not
// found or the wrong type.
func (e *Element) GetString(key string) (string, error) {
	reading := e.Attrs[key]
	if reading == nil {
		return "", fmt.Errorf("key %q not found", key)
	}
	v, ok := reading.Any().(string)
	if !ok {
		return "", fmt.Errorf("key %q is not a string", key)
	}
	return v, nil
}

// GetInt64 attempts to retrieve an integer value, returning an error if not
// found or the wrong type.
func (e *Element) GetInt64(key string) (int64, error) {
	reading := e.Attrs[key]
	if reading == nil {
		return 0, fmt.Errorf("key %q not found", key)
	}
	switch v := reading.Any().(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("key %q is not an integer", key)
	}
}

// UnmarshalJSON custom unmarshaler for Record to handle the Reading interface.
func (r *Record) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Attrs       map[string]any `json:"attributes"`
		Collections []*Collection  `json:"collections"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	r.Attrs = toRawReadings(tmp.Attrs)
	r.Collections = tmp.Collections
	return nil
}

// UnmarshalYAML custom unmarshaler for Record to handle the Reading interface.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	var tmp struct {
		Attrs       map[string]any `yaml:"attributes"`
		Collections []*Collection  `yaml:"collections"`
	}
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	r.Attrs = toRawReadings(tmp.Attrs)
	r.Collections = tmp.Collections
	return nil
}

// UnmarshalJSON custom unmarshaler for Element to handle the Reading interface.
func (e *Element) UnmarshalJSON(data []byte) error {
	var tmp struct {
		ID    string         `json:"id"`
		Attrs map[string]any `json:"attributes"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	e.ID = tmp.ID
	e.Attrs = toRawReadings(tmp.Attrs)
	return nil
}

// UnmarshalYAML custom unmarshaler for Element to handle the Reading interface.
func (e *Element) UnmarshalYAML(node *yaml.Node) error {
	var tmp struct {
		ID    string         `yaml:"id"`
		Attrs map[string]any `yaml:"attributes"`
	}
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	e.ID = tmp.ID
	e.Attrs = toRawReadings(tmp.Attrs)
	return nil
}
