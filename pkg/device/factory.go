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
	"fmt"

	"github.com/netgrid/fabricsnap/pkg/credentials"
	"github.com/netgrid/fabricsnap/pkg/inventory"
)

// DefaultFactory creates production device clients: the APIC REST client for
// controllers and the NX-OS SSH client for leaf and spine switches.
type DefaultFactory struct {
	// Credentials resolves inventory credential refs.
	Credentials *credentials.Resolver

	// InsecureSkipVerify disables TLS verification on controller sessions.
	// Lab fabrics commonly run self-signed APIC certificates.
	InsecureSkipVerify bool
}

// Option is a functional option for configuring the DefaultFactory.
type Option func(*DefaultFactory)

// WithCredentials sets the credential resolver.
func WithCredentials(r *credentials.Resolver) Option {
	return func(f *DefaultFactory) {
		f.Credentials = r
	}
}

// WithInsecureSkipVerify disables TLS verification for controller sessions.
func WithInsecureSkipVerify(skip bool) Option {
	return func(f *DefaultFactory) {
		f.InsecureSkipVerify = skip
	}
}

// NewDefaultFactory creates a factory with default settings.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{
		Credentials: &credentials.Resolver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ClientFor returns the client implementation for a device role.
func (f *DefaultFactory) ClientFor(role inventory.Role) (Client, error) {
	switch role {
	case inventory.RoleController:
		return NewAPICClient(f.Credentials, f.InsecureSkipVerify), nil
	case inventory.RoleLeaf, inventory.RoleSpine:
		return NewNXOSClient(f.Credentials), nil
	default:
		return nil, fmt.Errorf("no client for role %q", role)
	}
}

// MockFactory returns the same scripted client for every role.
// Used by dry-run mode and tests.
type MockFactory struct {
	Client Client
}

// ClientFor returns the configured mock client regardless of role.
func (f *MockFactory) ClientFor(_ inventory.Role) (Client, error) {
	return f.Client, nil
}
