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
	"errors"
	"testing"

	fserrors "github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLeaf = inventory.DeviceDescriptor{
	ID: "leaf1", Role: inventory.RoleLeaf, Address: "10.0.0.11", CredentialRef: "switch",
}

func TestMockFetchSeeded(t *testing.T) {
	m := &MockClient{}

	rec, err := m.Fetch(context.Background(), testLeaf, QueryInterfaces)
	require.NoError(t, err)
	require.NoError(t, rec.Validate())

	c := rec.Collection(state.CollInterfaces)
	require.NotNil(t, c)
	assert.Len(t, c.Elements, 4)
	assert.Equal(t, 1, m.Attempts("leaf1", QueryInterfaces))

	// Seeded data is deterministic.
	again, err := m.Fetch(context.Background(), testLeaf, QueryInterfaces)
	require.NoError(t, err)
	assert.Equal(t, rec.Collection(state.CollInterfaces).IDs(), again.Collection(state.CollInterfaces).IDs())
}

func TestMockFetchFailConnect(t *testing.T) {
	m := &MockClient{FailConnect: map[string]bool{"leaf1": true}}

	_, err := m.Fetch(context.Background(), testLeaf, QueryInterfaces)
	require.Error(t, err)

	var se *fserrors.StructuredError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, fserrors.ErrCodeConnection, se.Code)
}

func TestMockFetchSucceedAfter(t *testing.T) {
	m := &MockClient{SucceedAfter: map[string]int{"leaf1": 3}}

	_, err := m.Fetch(context.Background(), testLeaf, QueryInterfaces)
	require.Error(t, err)
	_, err = m.Fetch(context.Background(), testLeaf, QueryInterfaces)
	require.Error(t, err)
	_, err = m.Fetch(context.Background(), testLeaf, QueryInterfaces)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Attempts("leaf1", QueryInterfaces))
}

func TestQuerySet(t *testing.T) {
	for _, role := range inventory.Roles {
		qs := QuerySet(role)
		require.NotEmpty(t, qs, "role %s", role)
		assert.Equal(t, qs[0], PrimaryQuery(role))
	}
	assert.Nil(t, QuerySet(inventory.Role("border")))
}
