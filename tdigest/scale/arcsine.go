// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package scale

import "math"

// ArcSine is the k1 schedule, k = δ/(2π)·asin(2q-1). Clusters near the median
// may hold roughly δ/π times more weight than the ones at the extremes.
type ArcSine struct{}

func (ArcSine) K(q, compression float64) float64 {
	return compression / (2 * math.Pi) * math.Asin(2*clamp(q, 0, 1)-1)
}

func (ArcSine) Q(k, compression float64) float64 {
	x := clamp(k*2*math.Pi/compression, -math.Pi/2, math.Pi/2)
	return (math.Sin(x) + 1) / 2
}

func (ArcSine) String() string {
	return "k1-arcsine"
}
