// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package tdigest

import (
	"math"

	"github.com/DataDog/hashmeter/tdigest/scale"
)

// Option configures a TDigest.
type Option func(*TDigest) error

// Compression sets δ, the compression factor.
//
// δ bounds the number of centroids retained after a compression pass: a higher
// value keeps more, smaller clusters, which means better accuracy, a bigger
// snapshot and slower insertion. 100 is a good default for latency data.
func Compression(compression float64) Option {
	return func(d *TDigest) error {
		if math.IsNaN(compression) || math.IsInf(compression, 0) || compression < 1 {
			return ErrInvalidCompression
		}
		d.compression = compression
		return nil
	}
}

// Scale sets the size-bias schedule used to bound cluster sizes.
func Scale(f scale.Function) Option {
	return func(d *TDigest) error {
		if f == nil {
			return ErrInvalidScale
		}
		d.scale = f
		return nil
	}
}
