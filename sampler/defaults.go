// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package sampler

import "time"

// =============================================================================
// Latency source defaults
// =============================================================================

const (
	// DefaultPassword is the password hashed by every PBKDF2 sample.
	// Override via config: password
	DefaultPassword = "mysecretpassword"

	// DefaultSalt is the salt of every PBKDF2 sample.
	// Override via config: salt
	DefaultSalt = "somesalt"

	// DefaultIterations is the PBKDF2 iteration count. The measured latency
	// grows linearly with it.
	// Override via config: iterations
	DefaultIterations = 1000

	// DefaultKeySize is the derived key length in bytes.
	// Override via config: key-size
	DefaultKeySize = 32
)

// =============================================================================
// Driver defaults
// =============================================================================

const (
	// DefaultInterval is the pause between two samples.
	// Override via config: interval
	DefaultInterval = 15 * time.Second

	// DefaultSaveEvery is the number of observations between two compressed
	// snapshot saves. A final save also happens on shutdown.
	// Override via config: save-every
	DefaultSaveEvery = 1000
)

// DefaultSummaryQuantiles are the quantiles exported by the Prometheus
// collector.
var DefaultSummaryQuantiles = []float64{0.25, 0.5, 0.75, 0.95, 0.99}
