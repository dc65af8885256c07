// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package tdigest

import (
	"encoding/json"
	"fmt"
	"math"
)

// Centroid summarizes a cluster of nearby observations by their mean and their
// total weight. Individual observations cannot be recovered once merged.
type Centroid struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// add merges a weighted value into the centroid. The mean is left untouched when
// value equals it, so duplicates of an extreme keep it exact.
func (c *Centroid) add(value, weight float64) {
	c.Weight += weight
	if value != c.Mean {
		c.Mean += (value - c.Mean) * weight / c.Weight
	}
}

func (c Centroid) String() string {
	return fmt.Sprintf("{%g, %g}", c.Mean, c.Weight)
}

// UnmarshalJSON accepts both {"mean", "weight"} records and the {"m", "c"}
// records written by python tdigest. A missing field decodes to a value that
// Decode rejects.
func (c *Centroid) UnmarshalJSON(data []byte) error {
	var record struct {
		Mean   *float64 `json:"mean"`
		Weight *float64 `json:"weight"`
		M      *float64 `json:"m"`
		C      *float64 `json:"c"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}
	c.Mean = firstOf(math.NaN(), record.Mean, record.M)
	c.Weight = firstOf(0, record.Weight, record.C)
	return nil
}

func firstOf(fallback float64, values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return fallback
}

// Centroids is a slice of Centroid ordered by mean.
type Centroids []Centroid

func (slice Centroids) Len() int           { return len(slice) }
func (slice Centroids) Less(i, j int) bool { return slice[i].Mean < slice[j].Mean }
func (slice Centroids) Swap(i, j int)      { slice[i], slice[j] = slice[j], slice[i] }
