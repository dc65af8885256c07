// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

// Package tdigest implements a t-digest: a memory-bounded summary of a stream
// of values that answers arbitrary quantile queries with small rank error,
// especially at the tails of the distribution.
//
// A TDigest is meant to be owned by a single writer. Readers that run
// concurrently with the writer should work on a copy, for instance one obtained
// through an Encode/Decode round trip.
package tdigest

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/DataDog/hashmeter/tdigest/scale"
)

const (
	DefaultCompression = 100

	// Insertion compresses the digest once it holds more than
	// bufferFactor*compression centroids.
	bufferFactor = 5
)

// TDigest is an ordered sequence of weighted centroids approximating the
// distribution of every value added to it.
type TDigest struct {
	compression float64
	scale       scale.Function
	// sorted by mean; equal means only until the next Compress
	centroids Centroids
	weights   weightTree
	count     float64
}

// New returns an empty digest.
func New(opts ...Option) (*TDigest, error) {
	d := &TDigest{
		compression: DefaultCompression,
		scale:       scale.Default,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// NewWithCompression returns an empty digest with the default scale function.
func NewWithCompression(compression float64) (*TDigest, error) {
	return New(Compression(compression))
}

// Add adds a value with a weight of 1.
func (d *TDigest) Add(value float64) error {
	return d.AddWeighted(value, 1)
}

// AddWeighted adds a value with the given weight. The value is merged into the
// nearest centroid that can take the extra weight without outgrowing the size
// allowed at its position, or becomes a new centroid otherwise.
func (d *TDigest) AddWeighted(value, weight float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidValue
	}
	if !(weight > 0) || math.IsInf(weight, 1) {
		return ErrInvalidWeight
	}
	d.count += weight

	idx := sort.Search(len(d.centroids), func(i int) bool { return d.centroids[i].Mean >= value })
	if i := d.nearestAbsorber(idx, value, weight); i >= 0 {
		d.centroids[i].add(value, weight)
		d.weights.add(i, weight)
		return nil
	}

	d.centroids = append(d.centroids, Centroid{})
	copy(d.centroids[idx+1:], d.centroids[idx:])
	d.centroids[idx] = Centroid{Mean: value, Weight: weight}
	d.weights.rebuild(d.centroids)

	if float64(len(d.centroids)) > bufferFactor*d.compression {
		d.Compress()
	}
	return nil
}

// nearestAbsorber returns the index of the closest centroid among the two that
// surround value that can absorb weight, or -1. The first and last centroids
// only absorb exact duplicates so that they keep the observed extremes.
func (d *TDigest) nearestAbsorber(idx int, value, weight float64) int {
	last := len(d.centroids) - 1
	best, bestDistance := -1, math.Inf(1)
	for _, i := range [2]int{idx, idx - 1} {
		if i < 0 || i > last {
			continue
		}
		c := d.centroids[i]
		if (i == 0 || i == last) && c.Mean != value {
			continue
		}
		distance := math.Abs(c.Mean - value)
		if distance < bestDistance && d.canAbsorb(i, weight) {
			best, bestDistance = i, distance
		}
	}
	return best
}

func (d *TDigest) canAbsorb(i int, weight float64) bool {
	before := d.weights.prefix(i)
	kLeft := d.scale.K(before/d.count, d.compression)
	kRight := d.scale.K((before+d.centroids[i].Weight+weight)/d.count, d.compression)
	return kRight-kLeft <= 1
}

// Compress re-clusters the digest: adjacent centroids are greedily merged as
// long as each cluster spans at most one unit of the scale function. Centroids
// sharing a mean are always merged, and the first and last centroids are never
// merged with their neighbours. Compressing twice gives the same digest.
func (d *TDigest) Compress() {
	if len(d.centroids) == 0 {
		return
	}
	sort.Stable(d.centroids)

	var total float64
	last := -1
	for i, c := range d.centroids {
		if c.Weight > 0 {
			total += c.Weight
			last = i
		}
	}

	merged := make(Centroids, 0, len(d.centroids))
	var (
		current Centroid
		started bool
		before  float64 // weight of the clusters already in merged
		kLeft   float64
	)
	for i, c := range d.centroids {
		if c.Weight <= 0 {
			continue
		}
		if !started {
			current, started = c, true
			continue
		}
		switch {
		case c.Mean == current.Mean:
			current.add(c.Mean, c.Weight)
		case len(merged) > 0 && i != last &&
			d.scale.K((before+current.Weight+c.Weight)/total, d.compression)-kLeft <= 1:
			current.add(c.Mean, c.Weight)
		default:
			merged = append(merged, current)
			before += current.Weight
			kLeft = d.scale.K(before/total, d.compression)
			current = c
		}
	}
	if started {
		merged = append(merged, current)
	}

	d.centroids = merged
	d.count = total
	d.weights.rebuild(d.centroids)
}

// Quantile returns an estimate of the value at cumulative probability p. Each
// centroid stands at the middle of its weight, and values between two
// centroids are linearly interpolated.
func (d *TDigest) Quantile(p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return math.NaN(), ErrInvalidQuantile
	}
	if d.count == 0 || len(d.centroids) == 0 {
		return math.NaN(), ErrEmptyDistribution
	}

	target := p * d.count
	left := d.centroids[0].Weight / 2
	if target <= left {
		return d.centroids[0].Mean, nil
	}
	cumulative := d.centroids[0].Weight
	for i := 1; i < len(d.centroids); i++ {
		right := cumulative + d.centroids[i].Weight/2
		if target < right {
			lower, upper := d.centroids[i-1].Mean, d.centroids[i].Mean
			fraction := (target - left) / (right - left)
			return math.Min(lower+fraction*(upper-lower), upper), nil
		}
		cumulative += d.centroids[i].Weight
		left = right
	}
	return d.centroids[len(d.centroids)-1].Mean, nil
}

// Quantiles returns the estimates for several cumulative probabilities.
func (d *TDigest) Quantiles(ps ...float64) ([]float64, error) {
	values := make([]float64, len(ps))
	for i, p := range ps {
		v, err := d.Quantile(p)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// CDF returns the estimated fraction of the weight at or below value. It is the
// inverse of Quantile and is non-decreasing in value.
func (d *TDigest) CDF(value float64) (float64, error) {
	if math.IsNaN(value) {
		return math.NaN(), ErrInvalidValue
	}
	if d.count == 0 || len(d.centroids) == 0 {
		return math.NaN(), ErrEmptyDistribution
	}

	n := len(d.centroids)
	if value < d.centroids[0].Mean {
		return 0, nil
	}
	if value > d.centroids[n-1].Mean {
		return 1, nil
	}
	j := sort.Search(n, func(i int) bool { return d.centroids[i].Mean >= value })
	var position float64
	if d.centroids[j].Mean == value {
		k := j
		for k+1 < n && d.centroids[k+1].Mean == value {
			k++
		}
		position = (d.center(j) + d.center(k)) / 2
	} else {
		lower, upper := d.centroids[j-1], d.centroids[j]
		fraction := (value - lower.Mean) / (upper.Mean - lower.Mean)
		lo, hi := d.center(j-1), d.center(j)
		position = lo + fraction*(hi-lo)
	}
	return math.Max(0, math.Min(1, position/d.count)), nil
}

// center returns the cumulative weight at the middle of centroid i.
func (d *TDigest) center(i int) float64 {
	return d.weights.prefix(i) + d.centroids[i].Weight/2
}

// Merge returns a new digest summarizing the values of both d and o. The result
// uses the compression and scale function of d. Neither input is modified.
func (d *TDigest) Merge(o *TDigest) *TDigest {
	merged := &TDigest{
		compression: d.compression,
		scale:       d.scale,
		centroids:   make(Centroids, 0, len(d.centroids)+len(o.centroids)),
		count:       d.count + o.count,
	}
	merged.centroids = append(merged.centroids, d.centroids...)
	merged.centroids = append(merged.centroids, o.centroids...)
	merged.Compress()
	return merged
}

// Count returns the total weight, which is the number of added values when
// they all have a weight of 1.
func (d *TDigest) Count() float64 {
	return d.count
}

// Sum returns the weighted sum of the centroid means.
func (d *TDigest) Sum() float64 {
	var sum float64
	for _, c := range d.centroids {
		sum += c.Mean * c.Weight
	}
	return sum
}

func (d *TDigest) Min() (float64, error) {
	return d.Quantile(0)
}

func (d *TDigest) Max() (float64, error) {
	return d.Quantile(1)
}

func (d *TDigest) IsEmpty() bool {
	return d.count == 0
}

// Len returns the number of centroids.
func (d *TDigest) Len() int {
	return len(d.centroids)
}

func (d *TDigest) Compression() float64 {
	return d.compression
}

func (d *TDigest) ScaleFunction() scale.Function {
	return d.scale
}

// Centroids returns a copy of the centroids, ordered by mean.
func (d *TDigest) Centroids() Centroids {
	centroids := make(Centroids, len(d.centroids))
	copy(centroids, d.centroids)
	return centroids
}

// ForEachCentroid calls f for each centroid in ascending mean order until f
// returns false.
func (d *TDigest) ForEachCentroid(f func(mean, weight float64) bool) {
	for _, c := range d.centroids {
		if !f(c.Mean, c.Weight) {
			return
		}
	}
}

func (d *TDigest) Copy() *TDigest {
	c := &TDigest{
		compression: d.compression,
		scale:       d.scale,
		centroids:   d.Centroids(),
		count:       d.count,
	}
	c.weights.rebuild(c.centroids)
	return c
}

func (d *TDigest) String() string {
	var buffer bytes.Buffer
	buffer.WriteString(fmt.Sprintf("compression: %g ", d.compression))
	buffer.WriteString(fmt.Sprintf("scale: %s ", d.scale))
	buffer.WriteString(fmt.Sprintf("count: %g ", d.count))
	buffer.WriteString("centroids: {")
	for _, c := range d.centroids {
		buffer.WriteString(c.String())
		buffer.WriteString(", ")
	}
	buffer.WriteString("}")
	return buffer.String()
}

func (d *TDigest) MemorySize() int {
	return int(reflect.TypeOf(*d).Size()) +
		cap(d.centroids)*int(reflect.TypeOf(d.centroids).Elem().Size()) +
		cap(d.weights.tree)*int(reflect.TypeOf(d.weights.tree).Elem().Size())
}
