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
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/netgrid/fabricsnap/pkg/device"
	"github.com/netgrid/fabricsnap/pkg/errors"
	"github.com/netgrid/fabricsnap/pkg/health"
	"github.com/netgrid/fabricsnap/pkg/inventory"
	"github.com/netgrid/fabricsnap/pkg/snapshot"
	"github.com/netgrid/fabricsnap/pkg/state"
)

// Orchestrator runs one bounded collection pass over an inventory and
// produces a sealed snapshot. Devices are admitted in inventory order;
// at most MaxConcurrentDevices are in flight at a time.
type Orchestrator struct {
	// Version is stamped into snapshot headers.
	Version string

	// Factory resolves a device client per role. If nil, the default
	// factory is used.
	Factory device.Factory

	cfg   CollectionConfig
	retry RetryPolicy
}

// New builds an orchestrator from the given config. The config is
// normalized and validated; an invalid config is rejected up front so
// a run never starts with degenerate bounds.
func New(cfg CollectionConfig, factory device.Factory, version string) (*Orchestrator, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		Version: version,
		Factory: factory,
		cfg:     cfg,
		retry:   cfg.RetryPolicy(),
	}, nil
}

// Collect queries every device in the inventory and returns a sealed,
// health-classified snapshot. It returns an error only when the parent
// context is canceled or no client can be built; hitting the overall
// deadline instead yields an incomplete snapshot with the devices that
// never started listed as unattempted.
func (o *Orchestrator) Collect(ctx context.Context, inv *inventory.Inventory, label string) (*snapshot.Snapshot, error) {
	if o.Factory == nil {
		o.Factory = device.NewDefaultFactory()
	}

	devices := inv.Devices
	slog.Info("starting collection",
		slog.String("fabric", inv.FabricName),
		slog.Int("devices", len(devices)),
		slog.Int("concurrency", o.cfg.MaxConcurrentDevices))

	start := time.Now()
	defer func() {
		collectionDuration.Observe(time.Since(start).Seconds())
	}()

	dctx, cancel := context.WithTimeout(ctx, o.cfg.OverallDeadline)
	defer cancel()

	limit, burst := rate.Limit(o.cfg.RequestsPerSecond), o.cfg.RequestsPerSecond
	if o.cfg.RequestsPerSecond <= 0 {
		// Zero means no rate limit.
		limit, burst = rate.Inf, 0
	}
	limiter := rate.NewLimiter(limit, burst)
	sem := semaphore.NewWeighted(int64(o.cfg.MaxConcurrentDevices))

	results := make([]snapshot.DeviceResult, len(devices))
	launched := make([]bool, len(devices))

	var g errgroup.Group
	for i := range devices {
		// Admission is strictly in inventory order: the next device
		// does not start until a slot frees up.
		if err := sem.Acquire(dctx, 1); err != nil {
			break
		}
		launched[i] = true
		dev := devices[i]
		idx := i
		g.Go(func() error {
			defer sem.Release(1)
			results[idx] = o.collectDevice(dctx, dev, limiter)
			return nil
		})
	}

	// Individual device failures are recorded in results, never
	// returned, so Wait only joins the goroutines.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "collection canceled", err)
	}

	attempted := make([]snapshot.DeviceResult, 0, len(devices))
	unattempted := make([]string, 0)
	for i := range devices {
		if launched[i] {
			attempted = append(attempted, results[i])
			deviceCollectionTotal.WithLabelValues(string(results[i].Status)).Inc()
		} else {
			unattempted = append(unattempted, devices[i].ID)
		}
	}

	// The parent context was checked above, so a dead dctx here means
	// the overall deadline fired and truncated the run.
	truncated := dctx.Err() != nil

	snap := snapshot.New(label, inv.FabricName, o.Version)
	snap.Seal(attempted, unattempted, truncated)
	snap.Health = health.Classify(snap)
	snapshotDeviceCount.Set(float64(len(snap.Devices)))

	slog.Info("collection complete",
		slog.String("snapshot", snap.ID),
		slog.String("health", string(snap.Health)),
		slog.Bool("incomplete", snap.Incomplete),
		slog.Duration("elapsed", time.Since(start)))

	return snap, nil
}

// collectDevice runs every query class for one device. The primary
// query decides the device outcome: if it fails after all retries the
// device is a failure and the secondary queries are not attempted.
func (o *Orchestrator) collectDevice(ctx context.Context, dev inventory.DeviceDescriptor, limiter *rate.Limiter) snapshot.DeviceResult {
	res := snapshot.DeviceResult{DeviceID: dev.ID, Role: dev.Role}

	client, err := o.Factory.ClientFor(dev.Role)
	if err != nil {
		res.Status = snapshot.StatusFailure
		res.Failure = &snapshot.FailureInfo{Kind: errors.CodeOf(err), Message: err.Error()}
		return res
	}

	rec := state.NewRecord()
	for qi, qc := range device.QuerySet(dev.Role) {
		qrec, attempts, err := o.fetchWithRetry(ctx, client, dev, qc, limiter)
		if qi == 0 {
			res.Attempts = attempts
		}
		if err != nil {
			kind := errors.CodeOf(err)
			slog.Warn("device query failed",
				slog.String("device", dev.ID),
				slog.String("query", string(qc)),
				slog.Int("attempts", attempts),
				slog.String("error", err.Error()))
			if qi == 0 {
				res.Status = snapshot.StatusFailure
				res.Failure = &snapshot.FailureInfo{Kind: kind, Message: err.Error()}
				return res
			}
			res.FailedQueries = append(res.FailedQueries, snapshot.FailedQuery{
				Query:    qc,
				Kind:     kind,
				Message:  err.Error(),
				Attempts: attempts,
			})
			continue
		}
		rec.Merge(qrec)
	}

	res.Record = rec
	if len(res.FailedQueries) > 0 {
		res.Status = snapshot.StatusPartial
	} else {
		res.Status = snapshot.StatusSuccess
	}
	slog.Debug("device collected",
		slog.String("device", dev.ID),
		slog.String("status", string(res.Status)),
		slog.Int("attempts", res.Attempts))
	return res
}

// fetchWithRetry runs one query class with per-attempt timeout and
// exponential backoff between attempts. It returns the number of
// attempts actually made.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, client device.Client, dev inventory.DeviceDescriptor, qc device.QueryClass, limiter *rate.Limiter) (*state.Record, int, error) {
	qStart := time.Now()
	defer func() {
		queryDuration.WithLabelValues(string(qc)).Observe(time.Since(qStart).Seconds())
	}()

	var lastErr error
	for attempt := 1; attempt <= o.retry.Attempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, attempt, errors.Wrap(errors.ErrCodeTimeout, "deadline reached while rate limited", err)
		}

		actx, cancel := context.WithTimeout(ctx, o.cfg.PerDeviceTimeout)
		rec, err := client.Fetch(actx, dev, qc)
		cancel()
		if err == nil {
			return rec, attempt, nil
		}
		lastErr = err

		// The run deadline or a cancellation ends retries immediately.
		if ctx.Err() != nil {
			return nil, attempt, errors.Wrap(errors.ErrCodeTimeout,
				fmt.Sprintf("gave up on %s after %d attempts", qc, attempt), err)
		}
		if attempt < o.retry.Attempts {
			wait := o.retry.Backoff(attempt)
			slog.Debug("retrying query",
				slog.String("device", dev.ID),
				slog.String("query", string(qc)),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", wait))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, attempt, errors.Wrap(errors.ErrCodeTimeout,
					fmt.Sprintf("gave up on %s after %d attempts", qc, attempt), err)
			}
		}
	}
	return nil, o.retry.Attempts, lastErr
}
