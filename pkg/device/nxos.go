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
	"fmt"
	"net"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/netgrid/fabricsnap/pkg/credentials"
	"github.com/netgrid/fabricsnap/pkg/defaults"
	"github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// nxosCommands maps switch query classes to the show commands that produce
// them. Each command output is parsed into one keyed collection.
var nxosCommands = map[QueryClass]string{
	QueryInterfaces:   "show interface status",
	QueryPortChannels: "show port-channel summary",
	QueryVlans:        "show vlan brief",
	QueryEndpoints:    "show mac address-table",
	QueryRouting:      "show isis adjacency",
}

// NXOSClient fetches switch state by running show commands over SSH.
// Each fetch opens its own connection; sessions are never shared across
// concurrent collection tasks.
type NXOSClient struct {
	creds *credentials.Resolver

	// dial is swappable for tests.
	dial func(ctx context.Context, addr string, cfg *ssh.ClientConfig) (sshRunner, error)
}

// sshRunner is the slice of an SSH connection the client needs.
type sshRunner interface {
	Run(cmd string) (string, error)
	Close() error
}

// NewNXOSClient creates a switch client.
func NewNXOSClient(creds *credentials.Resolver) *NXOSClient {
	return &NXOSClient{
		creds: creds,
		dial:  dialSSH,
	}
}

// Fetch implements Client for leaf and spine devices.
func (c *NXOSClient) Fetch(ctx context.Context, dev inventory.DeviceDescriptor, qc QueryClass) (*state.Record, error) {
	cmd, ok := nxosCommands[qc]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("query class %q not supported by the switch client", qc))
	}

	creds, err := c.creds.Resolve(dev.CredentialRef)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuth, "credential resolution failed", err)
	}

	addr := dev.Address
	if _, _, splitErr := net.SplitHostPort(addr); splitErr != nil {
		addr = net.JoinHostPort(addr, "22")
	}

	cfg := &ssh.ClientConfig{
		User:            creds.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(creds.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         defaults.HTTPConnectTimeout,
	}

	conn, err := c.dial(ctx, addr, cfg)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, errors.Wrap(errors.ErrCodeAuth,
				fmt.Sprintf("authentication to %s failed", dev.ID), err)
		}
		return nil, classifyTransportErr(ctx, err)
	}
	defer conn.Close()

	type runResult struct {
		out string
		err error
	}
	done := make(chan runResult, 1)
	go func() {
		out, runErr := conn.Run(cmd)
		done <- runResult{out, runErr}
	}()

	select {
	case <-ctx.Done():
		// Closing the connection unblocks the Run goroutine.
		return nil, errors.Wrap(errors.ErrCodeTimeout, "command deadline exceeded", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, classifyTransportErr(ctx, res.err)
		}
		return parseShowOutput(qc, res.out)
	}
}

// dialSSH is the production dialer.
func dialSSH(ctx context.Context, addr string, cfg *ssh.ClientConfig) (sshRunner, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	conn, chans, reqs, err := ssh.NewClientConn(raw, addr, cfg)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return &sshConn{client: ssh.NewClient(conn, chans, reqs)}, nil
}

type sshConn struct {
	client *ssh.Client
}

func (c *sshConn) Run(cmd string) (string, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return "", err
	}
	defer session.Close()
	out, err := session.Output(cmd)
	return string(out), err
}

func (c *sshConn) Close() error {
	return c.client.Close()
}

// parseShowOutput converts raw show-command output into a keyed collection.
func parseShowOutput(qc QueryClass, out string) (*state.Record, error) {
	r := state.NewRecord()

	switch qc {
	case QueryInterfaces:
		parseInterfaceStatus(r, out)
	case QueryPortChannels:
		parsePortChannelSummary(r, out)
	case QueryVlans:
		parseVlanBrief(r, out)
	case QueryEndpoints:
		parseMacTable(r, out)
	case QueryRouting:
		parseIsisAdjacency(r, out)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// parseInterfaceStatus parses "show interface status" output.
// Columns: Port Name Status Vlan Duplex Speed Type. The Name column may be
// empty or hold several words, so the Status column is located by its known
// vocabulary rather than by position.
func parseInterfaceStatus(r *state.Record, out string) {
	c := r.AddCollection(state.CollInterfaces, "name")
	for _, line := range dataLines(out, "Port", "----") {
		parts := strings.Fields(line)
		if len(parts) < 4 || !strings.HasPrefix(strings.ToLower(parts[0]), "eth") {
			continue
		}
		si := -1
		for i := 1; i < len(parts)-1; i++ {
			if isIfStatusWord(parts[i]) {
				si = i
				break
			}
		}
		if si < 0 {
			continue
		}
		attrs := map[string]state.Reading{
			state.KeyState: state.Str(normalizeIfState(parts[si])),
			state.KeyVlan:  state.Str(parts[si+1]),
		}
		// Vlan, Duplex, then Speed follow the Status column.
		if si+3 < len(parts) {
			attrs[state.KeySpeed] = state.Str(parts[si+3])
		}
		c.AddElement(strings.ToLower(parts[0]), attrs)
	}
}

// isIfStatusWord reports whether a token belongs to the NX-OS interface
// Status vocabulary.
func isIfStatusWord(s string) bool {
	switch strings.ToLower(s) {
	case "connected", "up", "down", "notconnec", "notconnect", "disabled",
		"err-disabled", "sfpabsent", "xcvrabsen", "noopermem", "suspnd":
		return true
	}
	return false
}

// normalizeIfState collapses NX-OS status words to up/down.
func normalizeIfState(s string) string {
	switch strings.ToLower(s) {
	case "connected", "up":
		return "up"
	case "notconnec", "notconnect", "disabled", "down", "sfpabsent", "err-disabled":
		return "down"
	default:
		return strings.ToLower(s)
	}
}

// parsePortChannelSummary parses "show port-channel summary" output.
func parsePortChannelSummary(r *state.Record, out string) {
	c := r.AddCollection(state.CollPortChannels, "name")
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Po") {
			continue
		}
		up := strings.Contains(line, "(SU)") || strings.Contains(line, "(RU)")
		down := strings.Contains(line, "(SD)") || strings.Contains(line, "(RD)")
		if !up && !down {
			continue
		}
		parts := strings.Fields(line)
		name := parts[0]
		if i := strings.IndexAny(name, "("); i > 0 {
			name = name[:i]
		}
		// Skip the leading group number column when present.
		if len(parts) > 1 && !strings.HasPrefix(name, "Po") {
			name = parts[1]
			if i := strings.IndexAny(name, "("); i > 0 {
				name = name[:i]
			}
		}
		st := "down"
		if up {
			st = "up"
		}
		c.AddElement(strings.ToLower(name), map[string]state.Reading{
			state.KeyState: state.Str(st),
		})
	}
}

// parseVlanBrief parses "show vlan brief" output.
func parseVlanBrief(r *state.Record, out string) {
	c := r.AddCollection(state.CollVlans, "id")
	for _, line := range dataLines(out, "VLAN", "----") {
		parts := strings.Fields(line)
		if len(parts) < 3 || !isDigits(parts[0]) {
			continue
		}
		c.AddElement(parts[0], map[string]state.Reading{
			"name":         state.Str(parts[1]),
			state.KeyState: state.Str(strings.ToLower(parts[2])),
		})
	}
}

// parseMacTable parses "show mac address-table" output into endpoint entries
// keyed by MAC address.
func parseMacTable(r *state.Record, out string) {
	c := r.AddCollection(state.CollEndpoints, "mac")
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "* "))
		if len(parts) < 3 || !looksLikeMac(parts[1]) {
			continue
		}
		attrs := map[string]state.Reading{"vlan": state.Str(parts[0])}
		if len(parts) >= 4 {
			attrs["iface"] = state.Str(strings.ToLower(parts[len(parts)-1]))
		}
		if c.Element(parts[1]) != nil {
			// MAC moves show up twice in some dumps; keep the first entry.
			continue
		}
		c.AddElement(parts[1], attrs)
	}
}

// parseIsisAdjacency parses "show isis adjacency" output.
func parseIsisAdjacency(r *state.Record, out string) {
	c := r.AddCollection(state.CollIsisAdj, "system-id")
	for _, line := range dataLines(out, "System", "----", "IS-IS") {
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		st := "down"
		for _, p := range parts[1:] {
			if strings.EqualFold(p, "UP") {
				st = "up"
			}
		}
		if c.Element(parts[0]) != nil {
			continue
		}
		c.AddElement(parts[0], map[string]state.Reading{
			state.KeyState: state.Str(st),
		})
	}
}

// dataLines strips blank lines and lines starting with any of the prefixes.
func dataLines(out string, skipPrefixes ...string) []string {
	var lines []string
outer:
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, p := range skipPrefixes {
			if strings.HasPrefix(trimmed, p) {
				continue outer
			}
		}
		lines = append(lines, trimmed)
	}
	return lines
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func looksLikeMac(s string) bool {
	// NX-OS dotted format: 0050.56aa.bb01, or colon separated.
	dots := strings.Count(s, ".")
	colons := strings.Count(s, ":")
	if dots != 2 && colons != 5 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
