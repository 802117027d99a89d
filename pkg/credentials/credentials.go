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

// Package credentials resolves device credential references to secrets held
// in the environment. References come from the inventory; values come from
// FABRICSNAP_<REF>_USERNAME / FABRICSNAP_<REF>_PASSWORD variables, optionally
// seeded from a .env file.
package credentials

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/netgrid/fabricsnap/pkg/errors"
)

const envPrefix = "FABRICSNAP"

// Credentials is one resolved username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Resolver resolves credential references. The zero value reads from the
// process environment only.
type Resolver struct {
	loaded bool
}

// NewResolver returns a Resolver that first loads variables from the given
// .env file. A missing file is not an error; a file that exists but cannot
// be parsed is.
func NewResolver(envFile string) (*Resolver, error) {
	r := &Resolver{}
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		return r, nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("loading env file %s", envFile), err)
	}
	r.loaded = true
	return r, nil
}

// Resolve returns the credentials for the given reference, e.g. ref "apic"
// reads FABRICSNAP_APIC_USERNAME and FABRICSNAP_APIC_PASSWORD.
func (r *Resolver) Resolve(ref string) (Credentials, error) {
	if ref == "" {
		return Credentials{}, errors.New(errors.ErrCodeInvalidConfig, "empty credential reference")
	}

	key := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(ref))
	user := os.Getenv(fmt.Sprintf("%s_%s_USERNAME", envPrefix, key))
	pass := os.Getenv(fmt.Sprintf("%s_%s_PASSWORD", envPrefix, key))

	if user == "" || pass == "" {
		return Credentials{}, errors.NewWithContext(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("credentials for ref %q not found in environment", ref),
			map[string]any{"ref": ref})
	}
	return Credentials{Username: user, Password: pass}, nil
}
