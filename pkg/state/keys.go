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

// Well-known collection names exported for consistency across device
// clients, the health classifier, and the comparison engine.
const (
	CollInterfaces   = "interfaces"
	CollPortChannels = "port-channels"
	CollFaults       = "faults"
	CollHealth       = "health"
	CollRoutes       = "routes"
	CollEndpoints    = "endpoints"
	CollVlans        = "vlans"
	CollPolicies     = "policies"
	CollContracts    = "contracts"
	CollNodes        = "nodes"
	CollControllers  = "controllers"
	CollModules      = "modules"
	CollIsisAdj      = "isis-adjacencies"
	CollBgpPeers     = "bgp-peers"
)

// Well-known attribute keys.
const (
	// Interface attribute keys
	KeyState      = "state"
	KeyAdminState = "admin-state"
	KeyOperState  = "oper-state"
	KeySpeed      = "speed"
	KeyVlan       = "vlan"
	KeyDescr      = "descr"

	// Fault attribute keys
	KeySeverity = "severity"
	KeyCause    = "cause"
	KeyAcked    = "acked"

	// Device attribute keys
	KeyVersion  = "version"
	KeySerial   = "serial"
	KeyModel    = "model"
	KeyUptime   = "uptime"
	KeyNodeID   = "node-id"
	KeyHostname = "hostname"
)

// Fault severities considered issues by the health classifier.
// Cleared and informational faults do not count against fabric health.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
	SeverityCleared  = "cleared"
)
