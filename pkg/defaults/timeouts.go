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

package defaults

import "time"

// Collection defaults for the orchestrator.
const (
	// MaxConcurrentDevices bounds how many devices are queried in parallel.
	MaxConcurrentDevices = 8

	// PerDeviceTimeout is the per-attempt timeout for one device fetch.
	PerDeviceTimeout = 30 * time.Second

	// RetryAttempts is how many times a query class is attempted per device.
	RetryAttempts = 3

	// BackoffBase seeds the exponential backoff between retry attempts.
	BackoffBase = 500 * time.Millisecond

	// OverallDeadline bounds total wall-clock time for one collection run.
	OverallDeadline = 10 * time.Minute

	// RequestsPerSecond limits aggregate fetch rate across all device
	// tasks. Zero disables the limiter.
	RequestsPerSecond = 20
)

// HTTP client timeouts for controller REST sessions.
const (
	// HTTPConnectTimeout is the timeout for establishing connections.
	HTTPConnectTimeout = 5 * time.Second

	// HTTPTLSHandshakeTimeout is the timeout for TLS handshake.
	HTTPTLSHandshakeTimeout = 5 * time.Second

	// HTTPResponseHeaderTimeout is the timeout for reading response headers.
	HTTPResponseHeaderTimeout = 10 * time.Second

	// HTTPIdleConnTimeout is the timeout for idle connections in the pool.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPKeepAlive is the keep-alive duration for connections.
	HTTPKeepAlive = 30 * time.Second
)

// Store defaults.
const (
	// CatalogBusyTimeout is the sqlite busy timeout for the snapshot catalog.
	CatalogBusyTimeout = 5 * time.Second
)
