// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package scale

import "math"

// Smallest distance to 0 and 1 that the logit is evaluated at.
const logisticEpsilon = 1e-12

// Logistic is the k2 schedule, k = δ/Z·ln(q/(1-q)) with Z = 4·ln(δ)+24. It is
// steeper than ArcSine at the extremes.
type Logistic struct{}

func (Logistic) K(q, compression float64) float64 {
	q = clamp(q, logisticEpsilon, 1-logisticEpsilon)
	return compression / logisticNormalizer(compression) * math.Log(q/(1-q))
}

func (Logistic) Q(k, compression float64) float64 {
	return 1 / (1 + math.Exp(-k*logisticNormalizer(compression)/compression))
}

func (Logistic) String() string {
	return "k2-logistic"
}

func logisticNormalizer(compression float64) float64 {
	return 4*math.Log(compression) + 24
}
