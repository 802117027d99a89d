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

package collector

import (
	"fmt"
	"time"

	"github.com/netgrid/fabricsnap/pkg/defaults"
	"github.com/netgrid/fabricsnap/pkg/errors"
)

// CollectionConfig bounds a collection run. Zero values are filled in
// from defaults by Normalize; Validate rejects values that would make
// the run degenerate.
type CollectionConfig struct {
	// MaxConcurrentDevices caps how many devices are queried at once.
	MaxConcurrentDevices int

	// PerDeviceTimeout bounds each individual fetch attempt.
	PerDeviceTimeout time.Duration

	// RetryAttempts is the total number of attempts per query class,
	// including the first one.
	RetryAttempts int

	// BackoffBase is the delay before the second attempt. Each further
	// retry doubles it.
	BackoffBase time.Duration

	// OverallDeadline bounds the whole run. When it expires, devices
	// not yet started are recorded as unattempted and the snapshot is
	// marked incomplete.
	OverallDeadline time.Duration

	// RequestsPerSecond throttles fetches across all devices.
	// Zero disables the limiter.
	RequestsPerSecond int
}

// NewCollectionConfig returns a config populated with the package
// defaults.
func NewCollectionConfig() CollectionConfig {
	return CollectionConfig{
		MaxConcurrentDevices: defaults.MaxConcurrentDevices,
		PerDeviceTimeout:     defaults.PerDeviceTimeout,
		RetryAttempts:        defaults.RetryAttempts,
		BackoffBase:          defaults.BackoffBase,
		OverallDeadline:      defaults.OverallDeadline,
		RequestsPerSecond:    defaults.RequestsPerSecond,
	}
}

// Normalize fills zero fields with defaults without touching values the
// caller set explicitly. RequestsPerSecond is left alone: zero is a
// meaningful value there (no rate limit), not an unset one.
func (c *CollectionConfig) Normalize() {
	d := NewCollectionConfig()
	if c.MaxConcurrentDevices == 0 {
		c.MaxConcurrentDevices = d.MaxConcurrentDevices
	}
	if c.PerDeviceTimeout == 0 {
		c.PerDeviceTimeout = d.PerDeviceTimeout
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = d.RetryAttempts
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = d.BackoffBase
	}
	if c.OverallDeadline == 0 {
		c.OverallDeadline = d.OverallDeadline
	}
}

// Validate reports the first invalid field.
func (c *CollectionConfig) Validate() error {
	if c.MaxConcurrentDevices < 1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("max concurrent devices must be positive, got %d", c.MaxConcurrentDevices))
	}
	if c.PerDeviceTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("per-device timeout must be positive, got %s", c.PerDeviceTimeout))
	}
	if c.RetryAttempts < 1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("retry attempts must be at least 1, got %d", c.RetryAttempts))
	}
	if c.BackoffBase < 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("backoff base must not be negative, got %s", c.BackoffBase))
	}
	if c.OverallDeadline <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("overall deadline must be positive, got %s", c.OverallDeadline))
	}
	if c.RequestsPerSecond < 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("requests per second must not be negative, got %d", c.RequestsPerSecond))
	}
	return nil
}

// RetryPolicy returns the retry schedule derived from this config.
func (c *CollectionConfig) RetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: c.RetryAttempts, BackoffBase: c.BackoffBase}
}
