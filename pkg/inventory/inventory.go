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

package inventory

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/netgrid/fabricsnap/pkg/errors"
)

// Role identifies the device family within the fabric.
type Role string

const (
	RoleController Role = "controller"
	RoleLeaf       Role = "leaf"
	RoleSpine      Role = "spine"
)

// Roles is the list of all supported device roles.
var Roles = []Role{RoleController, RoleLeaf, RoleSpine}

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role.
// Returns the Role and true if parsing succeeds, or empty Role and false otherwise.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == strings.ToLower(strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// DeviceDescriptor describes one fabric device. Descriptors are immutable,
// supplied by the caller, and ordered: collection admission follows
// inventory order.
type DeviceDescriptor struct {
	// ID is the unique device identifier within the fabric, e.g. "leaf3".
	ID string `json:"id" yaml:"id"`

	// Role is the device family: controller, leaf, or spine.
	Role Role `json:"role" yaml:"role"`

	// Address is the management address the device client dials.
	Address string `json:"address" yaml:"address"`

	// CredentialRef names the credential set used to authenticate;
	// resolution happens outside the core (see pkg/credentials).
	CredentialRef string `json:"credentialRef" yaml:"credentialRef"`

	// NodeID is the fabric node id, when known.
	NodeID int `json:"nodeId,omitempty" yaml:"nodeId,omitempty"`

	// Priority orders devices within a role for reporting; it does not
	// affect collection admission.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Inventory is an ordered list of fabric devices.
type Inventory struct {
	// FabricName labels the fabric the devices belong to.
	FabricName string `json:"fabric,omitempty" yaml:"fabric,omitempty"`

	Devices []DeviceDescriptor `json:"devices" yaml:"devices"`
}

// Load reads and validates an inventory from a YAML file.
func Load(path string) (*Inventory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to read inventory file", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(raw, &inv); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, "failed to parse inventory file", err)
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Validate checks that the inventory is well formed: non-empty, unique
// device ids, known roles, and addresses present.
func (inv *Inventory) Validate() error {
	if len(inv.Devices) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "inventory has no devices")
	}

	seen := make(map[string]struct{}, len(inv.Devices))
	for i, d := range inv.Devices {
		if d.ID == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				"device id cannot be empty", map[string]any{"index": i})
		}
		if _, dup := seen[d.ID]; dup {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("duplicate device id %q", d.ID), map[string]any{"id": d.ID})
		}
		seen[d.ID] = struct{}{}

		if _, ok := ParseRole(string(d.Role)); !ok {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("unknown role %q for device %q", d.Role, d.ID),
				map[string]any{"id": d.ID, "role": string(d.Role)})
		}
		if d.Address == "" {
			return errors.NewWithContext(errors.ErrCodeInvalidConfig,
				fmt.Sprintf("device %q has no address", d.ID), map[string]any{"id": d.ID})
		}
	}
	return nil
}

// Filter returns a new Inventory containing only devices whose role is not
// in the skip set, preserving inventory order.
func (inv *Inventory) Filter(skip map[Role]bool) *Inventory {
	out := &Inventory{FabricName: inv.FabricName}
	for _, d := range inv.Devices {
		if skip[d.Role] {
			continue
		}
		out.Devices = append(out.Devices, d)
	}
	return out
}

// ByRole returns the devices of the given role in inventory order.
func (inv *Inventory) ByRole(role Role) []DeviceDescriptor {
	var out []DeviceDescriptor
	for _, d := range inv.Devices {
		if d.Role == role {
			out = append(out, d)
		}
	}
	return out
}

// Summary returns a short human-readable count summary, e.g.
// "7 devices (1 controller, 4 leaf, 2 spine)".
func (inv *Inventory) Summary() string {
	counts := make(map[Role]int, len(Roles))
	for _, d := range inv.Devices {
		counts[d.Role]++
	}
	parts := make([]string, 0, len(Roles))
	for _, r := range Roles {
		parts = append(parts, fmt.Sprintf("%d %s", counts[r], r))
	}
	return fmt.Sprintf("%d devices (%s)", len(inv.Devices), strings.Join(parts, ", "))
}
