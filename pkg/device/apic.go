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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/netgrid/fabricsnap/pkg/credentials"
	"github.com/netgrid/fabricsnap/pkg/defaults"
	"github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// apicQuery maps a query class to the APIC managed object class it reads and
// how the response rows become a keyed collection.
type apicQuery struct {
	class      string
	collection string
	keyAttr    string
	// attrs are the scalar attributes copied into each element.
	attrs []string
	// filter is an optional query-target-filter parameter.
	filter string
}

var apicQueries = map[QueryClass]apicQuery{
	QueryTopology: {
		class:      "fabricNode",
		collection: state.CollNodes,
		keyAttr:    "name",
		attrs:      []string{"id", "role", "model", "serial", "fabricSt", "version"},
	},
	QueryFaults: {
		class:      "faultInst",
		collection: state.CollFaults,
		keyAttr:    "dn",
		attrs:      []string{"code", "severity", "cause", "ack", "type"},
		filter:     `ne(faultInst.severity,"cleared")`,
	},
	QueryHealth: {
		class:      "healthInst",
		collection: state.CollHealth,
		keyAttr:    "dn",
		attrs:      []string{"cur", "maxSev", "prev"},
	},
	QueryControllers: {
		class:      "topSystem",
		collection: state.CollControllers,
		keyAttr:    "name",
		attrs:      []string{"state", "version", "address", "systemUpTime"},
		filter:     `eq(topSystem.role,"controller")`,
	},
}

// APICClient fetches controller state over the APIC REST API. Sessions are
// authenticated per controller address with aaaLogin and the token is cached
// for subsequent fetches to the same address.
type APICClient struct {
	creds *credentials.Resolver
	http  *http.Client

	mu     sync.Mutex
	tokens map[string]string
}

// NewAPICClient creates a controller client.
func NewAPICClient(creds *credentials.Resolver, insecureSkipVerify bool) *APICClient {
	transport := &http.Transport{
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: insecureSkipVerify}, //nolint:gosec
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		DialContext: (&net.Dialer{
			Timeout:   defaults.HTTPConnectTimeout,
			KeepAlive: defaults.HTTPKeepAlive,
		}).DialContext,
	}
	return &APICClient{
		creds:  creds,
		http:   &http.Client{Transport: transport},
		tokens: make(map[string]string),
	}
}

// Fetch implements Client for controller devices.
func (c *APICClient) Fetch(ctx context.Context, dev inventory.DeviceDescriptor, qc QueryClass) (*state.Record, error) {
	q, ok := apicQueries[qc]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("query class %q not supported by the controller client", qc))
	}

	token, err := c.token(ctx, dev)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://%s/api/class/%s.json", dev.Address, q.class)
	if q.filter != "" {
		url += "?query-target-filter=" + q.filter
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConnection, "failed to build request", err)
	}
	req.AddCookie(&http.Cookie{Name: "APIC-cookie", Value: token})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Stale token; drop it so the next attempt re-authenticates.
		c.dropToken(dev.Address)
		return nil, errors.New(errors.ErrCodeAuth,
			fmt.Sprintf("controller %s rejected session (%d)", dev.ID, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.ErrCodeConnection,
			fmt.Sprintf("controller %s returned %d for class %s", dev.ID, resp.StatusCode, q.class))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportErr(ctx, err)
	}
	return parseIMData(body, q)
}

// token returns a cached session token for the controller, authenticating
// when none is held.
func (c *APICClient) token(ctx context.Context, dev inventory.DeviceDescriptor) (string, error) {
	c.mu.Lock()
	if t, ok := c.tokens[dev.Address]; ok {
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	creds, err := c.creds.Resolve(dev.CredentialRef)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeAuth, "credential resolution failed", err)
	}

	payload, _ := json.Marshal(map[string]any{
		"aaaUser": map[string]any{
			"attributes": map[string]string{
				"name": creds.Username,
				"pwd":  creds.Password,
			},
		},
	})

	url := fmt.Sprintf("https://%s/api/aaaLogin.json", dev.Address)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConnection, "failed to build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classifyTransportErr(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.New(errors.ErrCodeAuth,
			fmt.Sprintf("authentication to %s failed (%d)", dev.Address, resp.StatusCode))
	}

	var login struct {
		IMData []struct {
			AAALogin struct {
				Attributes struct {
					Token string `json:"token"`
				} `json:"attributes"`
			} `json:"aaaLogin"`
		} `json:"imdata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil || len(login.IMData) == 0 {
		return "", errors.Wrap(errors.ErrCodeAuth, "unexpected login response", err)
	}

	token := login.IMData[0].AAALogin.Attributes.Token
	c.mu.Lock()
	c.tokens[dev.Address] = token
	c.mu.Unlock()

	slog.Debug("authenticated to controller", "address", dev.Address)
	return token, nil
}

func (c *APICClient) dropToken(address string) {
	c.mu.Lock()
	delete(c.tokens, address)
	c.mu.Unlock()
}

// parseIMData converts an APIC class query response into a keyed collection.
func parseIMData(body []byte, q apicQuery) (*state.Record, error) {
	var payload struct {
		IMData []map[string]struct {
			Attributes map[string]any `json:"attributes"`
		} `json:"imdata"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConnection, "failed to decode class response", err)
	}

	r := state.NewRecord()
	coll := r.AddCollection(q.collection, q.keyAttr)

	for _, item := range payload.IMData {
		mo, ok := item[q.class]
		if !ok {
			continue
		}
		id, _ := mo.Attributes[q.keyAttr].(string)
		if id == "" {
			id, _ = mo.Attributes["dn"].(string)
		}
		attrs := make(map[string]state.Reading, len(q.attrs))
		for _, a := range q.attrs {
			if v, ok := mo.Attributes[a]; ok {
				attrs[a] = state.ToReading(v)
			}
		}
		coll.AddElement(id, attrs)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// classifyTransportErr maps transport failures onto the error taxonomy.
func classifyTransportErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "fetch deadline exceeded", err)
	}
	return errors.Wrap(errors.ErrCodeConnection, "transport failure", err)
}
