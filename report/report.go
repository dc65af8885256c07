// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

// Package report derives stability statistics from a latency distribution and
// renders them for humans and machines.
package report

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/DataDog/hashmeter/tdigest"
)

const (
	// DefaultStabilityThreshold is the IQR/median ratio under which timings
	// are considered stable.
	DefaultStabilityThreshold = 0.5
	// DefaultOutlierThreshold is the (max-p99)/IQR ratio above which outliers
	// are considered to have a high impact.
	DefaultOutlierThreshold = 2.0
	// DefaultMinSampleSize is the total weight above which the sample is
	// considered large enough.
	DefaultMinSampleSize = 1000
	// DefaultStdDevDivisor converts the p10-p90 range into a standard
	// deviation estimate, assuming a near-Gaussian body.
	DefaultStdDevDivisor = 2.56
)

// Distribution is the read-only view of a digest the reporter needs.
type Distribution interface {
	Quantile(p float64) (float64, error)
	Count() float64
}

// Thresholds are the classification boundaries of a report.
type Thresholds struct {
	Stability     float64 `json:"stability" yaml:"stability" mapstructure:"stability-threshold"`
	Outlier       float64 `json:"outlier" yaml:"outlier" mapstructure:"outlier-threshold"`
	MinSampleSize float64 `json:"min_sample_size" yaml:"min_sample_size" mapstructure:"min-sample-size"`
	StdDevDivisor float64 `json:"std_dev_divisor" yaml:"std_dev_divisor" mapstructure:"std-dev-divisor"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Stability:     DefaultStabilityThreshold,
		Outlier:       DefaultOutlierThreshold,
		MinSampleSize: DefaultMinSampleSize,
		StdDevDivisor: DefaultStdDevDivisor,
	}
}

func (t Thresholds) Validate() error {
	var result *multierror.Error
	if !(t.Stability > 0) {
		result = multierror.Append(result, fmt.Errorf("stability threshold must be positive, got %v", t.Stability))
	}
	if !(t.Outlier > 0) {
		result = multierror.Append(result, fmt.Errorf("outlier threshold must be positive, got %v", t.Outlier))
	}
	if !(t.MinSampleSize >= 0) {
		result = multierror.Append(result, fmt.Errorf("minimum sample size must not be negative, got %v", t.MinSampleSize))
	}
	if !(t.StdDevDivisor > 0) {
		result = multierror.Append(result, fmt.Errorf("standard deviation divisor must be positive, got %v", t.StdDevDivisor))
	}
	return result.ErrorOrNil()
}

type Consistency string

const (
	Stable   Consistency = "Stable"
	Variable Consistency = "Variable"
)

type OutlierPresence string

const (
	HighOutliers   OutlierPresence = "High"
	NormalOutliers OutlierPresence = "Normal"
)

type SampleSize string

const (
	GoodSampleSize  SampleSize = "Good"
	SmallSampleSize SampleSize = "Need more samples"
)

// Ratio is a derived ratio. It is +Inf when a non-zero value is divided by
// zero, which JSON renders as the string "+Inf".
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(r), 0) {
		return []byte(strconv.Quote(strconv.FormatFloat(float64(r), 'g', -1, 64))), nil
	}
	return []byte(strconv.FormatFloat(float64(r), 'g', -1, 64)), nil
}

// Report holds the statistics derived from a distribution. All values are in
// the unit of the distribution, microseconds for hashmeter.
type Report struct {
	Count           float64         `json:"count" yaml:"count"`
	Min             float64         `json:"min" yaml:"min"`
	Max             float64         `json:"max" yaml:"max"`
	Median          float64         `json:"median" yaml:"median"`
	P10             float64         `json:"p10" yaml:"p10"`
	P25             float64         `json:"p25" yaml:"p25"`
	P75             float64         `json:"p75" yaml:"p75"`
	P90             float64         `json:"p90" yaml:"p90"`
	P95             float64         `json:"p95" yaml:"p95"`
	P99             float64         `json:"p99" yaml:"p99"`
	IQR             float64         `json:"iqr" yaml:"iqr"`
	Range           float64         `json:"range" yaml:"range"`
	EstimatedStdDev float64         `json:"estimated_std_dev" yaml:"estimated_std_dev"`
	StabilityRatio  Ratio           `json:"stability_ratio" yaml:"stability_ratio"`
	OutlierRatio    Ratio           `json:"outlier_ratio" yaml:"outlier_ratio"`
	Consistency     Consistency     `json:"timing_consistency" yaml:"timing_consistency"`
	OutlierPresence OutlierPresence `json:"outlier_presence" yaml:"outlier_presence"`
	SampleSize      SampleSize      `json:"sample_size_adequacy" yaml:"sample_size_adequacy"`
	Thresholds      Thresholds      `json:"thresholds" yaml:"thresholds"`
}

// Analyze computes the report of d. It fails with tdigest.ErrEmptyDistribution
// when d holds no weight.
func Analyze(d Distribution, thresholds Thresholds) (*Report, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if d.Count() <= 0 {
		return nil, tdigest.ErrEmptyDistribution
	}

	ps := []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 0.99, 1}
	qs := make([]float64, len(ps))
	for i, p := range ps {
		q, err := d.Quantile(p)
		if err != nil {
			return nil, err
		}
		qs[i] = q
	}

	r := &Report{
		Count:      d.Count(),
		Min:        qs[0],
		P10:        qs[1],
		P25:        qs[2],
		Median:     qs[3],
		P75:        qs[4],
		P90:        qs[5],
		P95:        qs[6],
		P99:        qs[7],
		Max:        qs[8],
		Thresholds: thresholds,
	}
	r.IQR = r.P75 - r.P25
	r.Range = r.Max - r.Min
	r.EstimatedStdDev = (r.P90 - r.P10) / thresholds.StdDevDivisor
	r.StabilityRatio = ratio(r.IQR, r.Median)
	r.OutlierRatio = ratio(r.Max-r.P99, r.IQR)

	r.Consistency = Variable
	if float64(r.StabilityRatio) < thresholds.Stability {
		r.Consistency = Stable
	}
	r.OutlierPresence = NormalOutliers
	if float64(r.OutlierRatio) > thresholds.Outlier {
		r.OutlierPresence = HighOutliers
	}
	r.SampleSize = SmallSampleSize
	if r.Count > thresholds.MinSampleSize {
		r.SampleSize = GoodSampleSize
	}
	return r, nil
}

// ratio returns num/den, 0 for 0/0 and +Inf for any other division by zero.
func ratio(num, den float64) Ratio {
	if den == 0 {
		if num == 0 {
			return 0
		}
		return Ratio(math.Inf(1))
	}
	return Ratio(num / den)
}
