// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/DataDog/hashmeter/persist"
	"github.com/DataDog/hashmeter/report"
	"github.com/DataDog/hashmeter/tdigest"
	"github.com/DataDog/hashmeter/tdigest/encoding"
)

func (a *app) analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Reports stability metrics of a saved snapshot",
		Long: `Reports stability metrics of a saved snapshot.

The report covers the basic statistics of the measured latencies, their
stability (IQR/median) and outlier impact ((max-p99)/IQR) ratios, whether the
sample is large enough, and the key percentiles.`,
		Args: cobra.NoArgs,
		RunE: a.analyze,
	}

	flags := cmd.Flags()
	flags.StringP("file", "f", filepath.Join(DefaultDataDir, DefaultSnapshot), "snapshot to analyze")
	flags.String("format", string(report.Text), "output format (text, json, yaml)")
	flags.Float64("stability-threshold", report.DefaultStabilityThreshold, "IQR/median ratio under which timings are stable")
	flags.Float64("outlier-threshold", report.DefaultOutlierThreshold, "(max-p99)/IQR ratio above which outliers are high")
	flags.Float64("min-sample-size", report.DefaultMinSampleSize, "observations needed for an adequate sample")
	flags.Float64("std-dev-divisor", report.DefaultStdDevDivisor, "divisor of the p10-p90 range estimating the standard deviation")
	return cmd
}

func (a *app) analyze(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(a.config.GetString("format"))
	if err != nil {
		return err
	}
	var thresholds report.Thresholds
	if err := a.config.Unmarshal(&thresholds); err != nil {
		return errors.Wrap(err, "reading thresholds")
	}

	path := a.config.GetString("file")
	digest, err := loadExisting(path)
	if err != nil {
		return err
	}
	r, err := report.Analyze(digest, thresholds)
	if tdigest.IsEmptyDistribution(err) {
		return errors.Errorf("no measurements found in %s", path)
	}
	if err != nil {
		return err
	}
	return r.Write(cmd.OutOrStdout(), format)
}

// loadExisting loads a snapshot that must exist.
func loadExisting(path string, opts ...tdigest.Option) (*tdigest.TDigest, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "reading snapshot %s", path)
	}
	return persist.NewFileStore(path, encoding.ForPath(path), opts...).Load()
}
