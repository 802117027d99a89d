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

package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "snapshot not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "snapshot not found" {
		t.Errorf("expected message 'snapshot not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeConnection, "device unreachable", cause)

	if err.Code != ErrCodeConnection {
		t.Errorf("expected code %s, got %s", ErrCodeConnection, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("timeout")
	ctx := map[string]interface{}{
		"device": "leaf1",
		"query":  "interfaces",
	}

	err := WrapWithContext(ErrCodeTimeout, "collection failed", cause, ctx)

	if err.Code != ErrCodeTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeTimeout, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["device"] != "leaf1" {
		t.Errorf("expected device to be leaf1")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(ErrCodeAuth, "login rejected"),
			expected: "[AUTH_FAILED] login rejected",
		},
		{
			name:     "with cause",
			err:      Wrap(ErrCodeTimeout, "fetch timed out", errors.New("context deadline exceeded")),
			expected: "[TIMEOUT] fetch timed out: context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(ErrCodeAuth, "nope")); got != ErrCodeAuth {
		t.Errorf("expected %s, got %s", ErrCodeAuth, got)
	}
	// Wrapped structured errors are still classified by their code.
	wrapped := Wrap(ErrCodeTimeout, "outer", New(ErrCodeAuth, "inner"))
	if got := CodeOf(wrapped); got != ErrCodeTimeout {
		t.Errorf("expected %s, got %s", ErrCodeTimeout, got)
	}
	if got := CodeOf(errors.New("dial tcp: refused")); got != ErrCodeConnection {
		t.Errorf("expected %s for plain error, got %s", ErrCodeConnection, got)
	}
}
