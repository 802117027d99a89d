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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Snapshot collection metrics
	collectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fabricsnap_collection_duration_seconds",
			Help:    "Time taken to collect a complete fabric snapshot",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	deviceCollectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fabricsnap_device_collection_total",
			Help: "Total number of per-device collection outcomes",
		},
		[]string{"status"}, // success, partial, or failure
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fabricsnap_query_duration_seconds",
			Help:    "Time taken by individual device queries, including retries",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"query"},
	)

	snapshotDeviceCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fabricsnap_snapshot_devices",
			Help: "Number of device results in the last collected snapshot",
		},
	)
)
