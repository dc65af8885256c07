// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package scale

// Linear is the k0 schedule, k = δ·q/2. Every cluster may hold the same share
// of the total weight, so tails get no extra resolution.
type Linear struct{}

func (Linear) K(q, compression float64) float64 {
	return compression * clamp(q, 0, 1) / 2
}

func (Linear) Q(k, compression float64) float64 {
	return clamp(2*k/compression, 0, 1)
}

func (Linear) String() string {
	return "k0-linear"
}
