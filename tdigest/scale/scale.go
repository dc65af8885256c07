// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

// Package scale provides the size-bias schedules that bound how much weight a
// t-digest centroid may hold depending on where it sits in the distribution.
//
// A scale function maps a cumulative weight fraction q in [0, 1] to a k value.
// Adjacent centroids may be merged as long as the merged cluster spans at most
// one unit of k. Steep functions near q=0 and q=1 keep tail clusters small.
package scale

import (
	"fmt"
	"strings"
)

// Function is a size-bias schedule. Q must be the inverse of K for a given
// compression.
type Function interface {
	K(q, compression float64) float64
	Q(k, compression float64) float64
	String() string
}

// Default is the schedule used by digests that are not configured otherwise.
var Default Function = ArcSine{}

// FromName resolves a schedule from its configuration name.
func FromName(name string) (Function, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "k1", "arcsine":
		return ArcSine{}, nil
	case "k0", "linear":
		return Linear{}, nil
	case "k2", "logistic":
		return Logistic{}, nil
	default:
		return nil, fmt.Errorf("unknown scale function %q", name)
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
