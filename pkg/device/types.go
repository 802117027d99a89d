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

	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// QueryClass identifies one class of data fetched from a device.
type QueryClass string

const (
	// Controller query classes (APIC REST).
	QueryTopology    QueryClass = "topology"
	QueryFaults      QueryClass = "faults"
	QueryHealth      QueryClass = "health"
	QueryControllers QueryClass = "controllers"

	// Switch query classes (NX-OS CLI).
	QueryInterfaces   QueryClass = "interfaces"
	QueryPortChannels QueryClass = "port-channels"
	QueryVlans        QueryClass = "vlans"
	QueryEndpoints    QueryClass = "endpoints"
	QueryRouting      QueryClass = "routing"
)

// String returns the string representation of the QueryClass.
func (q QueryClass) String() string {
	return string(q)
}

// QuerySet returns the ordered query classes for a device role. The first
// entry is the role's primary query class: a device result is only a
// failure when its primary class never succeeds.
func QuerySet(role inventory.Role) []QueryClass {
	switch role {
	case inventory.RoleController:
		return []QueryClass{QueryTopology, QueryFaults, QueryHealth, QueryControllers}
	case inventory.RoleLeaf:
		return []QueryClass{QueryInterfaces, QueryPortChannels, QueryVlans, QueryEndpoints}
	case inventory.RoleSpine:
		return []QueryClass{QueryInterfaces, QueryRouting}
	default:
		return nil
	}
}

// PrimaryQuery returns the required query class for a role.
func PrimaryQuery(role inventory.Role) QueryClass {
	qs := QuerySet(role)
	if len(qs) == 0 {
		return ""
	}
	return qs[0]
}

// Client is the device fetch capability consumed by the collection
// orchestrator. One implementation exists per device family; implementations
// must be safe for concurrent use, and each orchestrator task performs its
// fetches through its own session.
type Client interface {
	// Fetch retrieves one query class worth of state from a device.
	// Errors are classified with pkg/errors codes (connection, auth,
	// timeout); the orchestrator recovers them via its retry policy.
	Fetch(ctx context.Context, dev inventory.DeviceDescriptor, qc QueryClass) (*state.Record, error)
}

// Factory creates device clients per role.
// This interface enables dependency injection for testing and mock mode.
type Factory interface {
	ClientFor(role inventory.Role) (Client, error)
}
