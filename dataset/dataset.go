// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

// Package dataset keeps every value of a stream so that digest estimates can be
// checked against exact ranks and quantiles.
package dataset

import (
	"math"
	"sort"
)

type Dataset struct {
	Values []float64
	Count  float64
	sorted bool
}

func NewDataset() *Dataset { return &Dataset{} }

func (d *Dataset) Add(v float64) {
	d.Values = append(d.Values, v)
	d.Count++
	d.sorted = false
}

// Quantile returns the exact quantile, interpolated between the two closest
// ranks.
func (d *Dataset) Quantile(q float64) float64 {
	if q < 0 || q > 1 || d.Count == 0 {
		return math.NaN()
	}
	d.sort()
	rank := q * (d.Count - 1)
	lower, upper := d.Values[int(math.Floor(rank))], d.Values[int(math.Ceil(rank))]
	return lower + (rank-math.Floor(rank))*(upper-lower)
}

func (d *Dataset) LowerQuantile(q float64) float64 {
	if q < 0 || q > 1 || d.Count == 0 {
		return math.NaN()
	}
	d.sort()
	return d.Values[int(math.Floor(q*(d.Count-1)))]
}

func (d *Dataset) UpperQuantile(q float64) float64 {
	if q < 0 || q > 1 || d.Count == 0 {
		return math.NaN()
	}
	d.sort()
	return d.Values[int(math.Ceil(q*(d.Count-1)))]
}

// MinRank returns the number of values strictly lower than v.
func (d *Dataset) MinRank(v float64) int64 {
	d.sort()
	return int64(sort.SearchFloat64s(d.Values, v))
}

// MaxRank returns the number of values lower than or equal to v.
func (d *Dataset) MaxRank(v float64) int64 {
	d.sort()
	return int64(sort.Search(len(d.Values), func(i int) bool { return d.Values[i] > v }))
}

func (d *Dataset) Min() float64 {
	d.sort()
	return d.Values[0]
}

func (d *Dataset) Max() float64 {
	d.sort()
	return d.Values[len(d.Values)-1]
}

func (d *Dataset) Sum() float64 {
	var sum float64
	for _, v := range d.Values {
		sum += v
	}
	return sum
}

func (d *Dataset) Merge(o *Dataset) {
	for _, v := range o.Values {
		d.Add(v)
	}
}

func (d *Dataset) sort() {
	if d.sorted {
		return
	}
	sort.Float64s(d.Values)
	d.sorted = true
}
