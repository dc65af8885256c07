// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package tdigest

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDistribution is returned by queries on a digest without any weight.
	ErrEmptyDistribution = errors.New("tdigest: empty distribution")
	// ErrInvalidQuantile is returned when a quantile outside [0, 1] is requested.
	ErrInvalidQuantile = errors.New("tdigest: quantile must be between 0 and 1")
	// ErrMalformedCentroid is matched by every *MalformedCentroidError.
	ErrMalformedCentroid = errors.New("tdigest: malformed centroid")
	// ErrMalformedSnapshot is returned when a snapshot does not have the expected shape.
	ErrMalformedSnapshot = errors.New("tdigest: malformed snapshot")

	ErrInvalidValue       = errors.New("tdigest: value must be finite")
	ErrInvalidWeight      = errors.New("tdigest: weight must be positive and finite")
	ErrInvalidCompression = errors.New("tdigest: compression must be finite and at least 1")
	ErrInvalidScale       = errors.New("tdigest: scale function must not be nil")
)

// MalformedCentroidError reports a snapshot record with a non-finite mean or a
// non-positive weight.
type MalformedCentroidError struct {
	Index    int
	Centroid Centroid
}

func (e *MalformedCentroidError) Error() string {
	return fmt.Sprintf("tdigest: malformed centroid at index %d: mean=%v weight=%v",
		e.Index, e.Centroid.Mean, e.Centroid.Weight)
}

func (e *MalformedCentroidError) Is(target error) bool {
	return target == ErrMalformedCentroid
}

// IsEmptyDistribution returns true if err reports a query on an empty digest.
func IsEmptyDistribution(err error) bool {
	return errors.Is(err, ErrEmptyDistribution)
}

// IsMalformed returns true if err reports a snapshot that cannot be decoded.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedCentroid) || errors.Is(err, ErrMalformedSnapshot)
}
