// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, JSON, YAML:
		return f, nil
	case "":
		return Text, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q, expected one of text, json, yaml", s)
	}
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case Text:
		return r.WriteText(w)
	case JSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	case YAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

const textTemplate = `
Hashmeter Analysis:
==================
Total Measurements: %.0f

Basic Statistics:
-----------------
Minimum Time: %.2fμs
Maximum Time: %.2fμs
Median Time: %.2fμs
IQR: %.2fμs

Stability Metrics:
------------------
Timing Range: %.2fμs
Estimated Std Dev: %.2fμs
Stability Ratio (IQR/Median): %.3f
Outlier Impact Ratio: %.3f

Timing Consistency: %s
Outlier Presence: %s
Sample Size Adequacy: %s

Key Percentiles:
----------------
25th Percentile: %.2fμs
75th Percentile: %.2fμs
95th Percentile: %.2fμs
99th Percentile: %.2fμs
`

// WriteText renders the human readable analysis.
func (r *Report) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, textTemplate,
		r.Count,
		r.Min, r.Max, r.Median, r.IQR,
		r.Range, r.EstimatedStdDev, float64(r.StabilityRatio), float64(r.OutlierRatio),
		r.Consistency, r.OutlierPresence, r.SampleSize,
		r.P25, r.P75, r.P95, r.P99,
	)
	return err
}
