// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hashmeter/persist"
	"github.com/DataDog/hashmeter/tdigest"
	"github.com/DataDog/hashmeter/tdigest/encoding"
)

func writeSnapshot(t *testing.T, path string, from, to int) {
	d, err := tdigest.New()
	require.NoError(t, err)
	for i := from; i <= to; i++ {
		require.NoError(t, d.Add(float64(i)))
	}
	require.NoError(t, persist.NewFileStore(path, encoding.ForPath(path)).Save(d))
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	root := RootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestAnalyzeText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hashmeter.json")
	writeSnapshot(t, path, 1, 2000)

	out, err := execute(t, context.Background(), "analyze", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Measurements: 2000\n")
	assert.Contains(t, out, "Minimum Time: 1.00μs\n")
	assert.Contains(t, out, "Maximum Time: 2000.00μs\n")
	assert.Contains(t, out, "Sample Size Adequacy: Good\n")
}

func TestAnalyzeStructuredWithOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hashmeter.pb")
	writeSnapshot(t, path, 1, 500)

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("format: json\nmin-sample-size: 100\n"), 0o644))
	t.Setenv("HASHMETER_STABILITY_THRESHOLD", "2")

	out, err := execute(t, context.Background(), "analyze", "--config", configPath, "-f", path)
	require.NoError(t, err)
	var r map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 500.0, r["count"])
	assert.Equal(t, "Good", r["sample_size_adequacy"])
	assert.Equal(t, "Stable", r["timing_consistency"])
	thresholds := r["thresholds"].(map[string]interface{})
	assert.Equal(t, 2.0, thresholds["stability"])
	assert.Equal(t, 100.0, thresholds["min_sample_size"])
}

func TestAnalyzeErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, context.Background(), "analyze", "--file", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"centroids":[]}`), 0o644))
	_, err = execute(t, context.Background(), "analyze", "--file", empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no measurements")

	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte(`{"centroids":[{"mean":1,"weight":0}]}`), 0o644))
	_, err = execute(t, context.Background(), "analyze", "--file", malformed)
	assert.ErrorIs(t, err, tdigest.ErrMalformedCentroid)

	_, err = execute(t, context.Background(), "analyze", "--file", empty, "--format", "csv")
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.bin")
	writeSnapshot(t, first, 1, 1000)
	writeSnapshot(t, second, 1001, 3000)
	out := filepath.Join(dir, "merged.json")

	stdout, err := execute(t, context.Background(), "merge", "--out", out, first, second)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Merged 2 snapshots")

	merged, err := persist.NewFileStore(out, encoding.JSON).Load()
	require.NoError(t, err)
	assert.Equal(t, 3000.0, merged.Count())
	min, err := merged.Min()
	require.NoError(t, err)
	assert.Equal(t, 1.0, min)
	max, err := merged.Max()
	require.NoError(t, err)
	assert.Equal(t, 3000.0, max)

	_, err = execute(t, context.Background(), "merge", "--out", out, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
	_, err = execute(t, context.Background(), "merge", first)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := execute(t, ctx, "run",
		"--data-dir", dir,
		"--interval", "1ms",
		"--iterations", "1",
		"--save-every", "1000000",
		"--log-level", "warn",
	)
	require.NoError(t, err)

	saved, err := persist.NewFileStore(filepath.Join(dir, DefaultSnapshot), encoding.JSON).Load()
	require.NoError(t, err)
	assert.Greater(t, saved.Count(), 0.0)

	logs, err := filepath.Glob(filepath.Join(dir, "timing_values_*.log"))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	content, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Equal(t, int(saved.Count()), bytes.Count(content, []byte("\n")))
}

func TestRunRejectsInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, context.Background(), "run", "--data-dir", dir, "--save-every", "0")
	assert.Error(t, err)
	_, err = execute(t, context.Background(), "run", "--data-dir", dir, "--scale", "k9")
	assert.Error(t, err)
	_, err = execute(t, context.Background(), "run", "--data-dir", dir, "--log-format", "xml")
	assert.Error(t, err)
}
