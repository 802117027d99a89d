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

import "time"

// maxBackoffExponent keeps the doubling from overflowing a Duration
// with absurd attempt numbers.
const maxBackoffExponent = 16

// RetryPolicy is an immutable retry schedule. Attempts counts the
// initial try, so Attempts=3 means one try plus up to two retries.
type RetryPolicy struct {
	Attempts    int
	BackoffBase time.Duration
}

// Backoff returns the delay to wait after the given attempt number
// (1-based) before trying again. The first retry waits BackoffBase,
// and every further retry doubles the previous wait.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	exp := attempt - 1
	if exp > maxBackoffExponent {
		exp = maxBackoffExponent
	}
	return p.BackoffBase << exp
}
