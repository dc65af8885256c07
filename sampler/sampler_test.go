// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package sampler

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/hashmeter/tdigest"
)

type memoryStore struct {
	mu       sync.Mutex
	snapshot tdigest.Snapshot
	saves    int
	err      error
}

func (s *memoryStore) Load() (*tdigest.TDigest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tdigest.Decode(s.snapshot)
}

func (s *memoryStore) Save(d *tdigest.TDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.snapshot = d.Encode()
	s.saves++
	return nil
}

func (s *memoryStore) failWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

type memoryRecorder struct {
	values []float64
}

func (r *memoryRecorder) Record(_ time.Time, value float64) error {
	r.values = append(r.values, value)
	return nil
}

// countingSource returns 1, 2, 3... and cancels the run after n samples.
func countingSource(n int, cancel context.CancelFunc) Source {
	i := 0
	return SourceFunc(func(ctx context.Context) (float64, error) {
		i++
		if i == n {
			cancel()
		}
		return float64(i), nil
	})
}

func newTestLogger() (*log.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	return log.NewEntry(logger), hook
}

func newTestDriver(t *testing.T, config Config, source Source, store *memoryStore, recorder Recorder) *Driver {
	digest, err := store.Load()
	require.NoError(t, err)
	logger, _ := newTestLogger()
	driver, err := NewDriver(config, source, store, digest, recorder, logger)
	require.NoError(t, err)
	return driver
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, DefaultPBKDF2Config().Validate())

	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
	assert.Contains(t, err.Error(), "save-every")

	err = PBKDF2Config{Iterations: -1}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 errors occurred")

	_, err = NewDriver(Config{}, nil, &memoryStore{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestPBKDF2Source(t *testing.T) {
	source, err := NewPBKDF2Source(DefaultPBKDF2Config())
	require.NoError(t, err)
	v, err := source.Sample(context.Background())
	require.NoError(t, err)
	assert.Greater(t, v, 0.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = source.Sample(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewPBKDF2Source(PBKDF2Config{Iterations: 1})
	assert.Error(t, err)
}

func TestObservationLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	startedAt := time.Date(2024, 3, 9, 17, 4, 5, 0, time.UTC)
	l, err := OpenObservationLog(dir, startedAt)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "timing_values_20240309_170405.log"), l.Path())

	require.NoError(t, l.Record(startedAt, 1234.567))
	require.NoError(t, l.Record(startedAt.Add(time.Second), 42))
	require.NoError(t, l.Close())

	file, err := os.Open(l.Path())
	require.NoError(t, err)
	defer file.Close()
	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	assert.Equal(t, []string{
		"2024-03-09T17:04:05Z,1234.57",
		"2024-03-09T17:04:06Z,42.00",
	}, lines)
}

func TestRunSavesPeriodicallyAndOnShutdown(t *testing.T) {
	defer leaktest.Check(t)()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &memoryStore{}
	recorder := &memoryRecorder{}
	driver := newTestDriver(t, Config{Interval: time.Millisecond, SaveEvery: 10}, countingSource(25, cancel), store, recorder)

	require.NoError(t, driver.Run(ctx))

	assert.Equal(t, uint64(25), driver.Samples())
	assert.Equal(t, 3, store.saves)
	assert.Equal(t, uint64(3), driver.Saves())
	assert.Len(t, recorder.values, 25)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 25.0, saved.Count())
	max, err := saved.Max()
	require.NoError(t, err)
	assert.Equal(t, 25.0, max)

	published := driver.Published()
	assert.Equal(t, saved.Centroids(), published.Centroids())
}

func TestRunResumesFromStoredDigest(t *testing.T) {
	defer leaktest.Check(t)()

	store := &memoryStore{snapshot: tdigest.Snapshot{Centroids: []tdigest.Centroid{{Mean: 100, Weight: 40}}}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	driver := newTestDriver(t, Config{Interval: time.Millisecond, SaveEvery: 1000}, countingSource(5, cancel), store, nil)
	assert.Equal(t, 40.0, driver.Published().Count())

	require.NoError(t, driver.Run(ctx))
	assert.Equal(t, 1, store.saves)
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 45.0, saved.Count())
}

func TestCancellationStopsBeforeNextTick(t *testing.T) {
	defer leaktest.Check(t)()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &memoryStore{}
	driver := newTestDriver(t, Config{Interval: time.Hour, SaveEvery: 1000}, countingSource(1, cancel), store, nil)

	done := make(chan error, 1)
	go func() { done <- driver.Run(ctx) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
	assert.Equal(t, uint64(1), driver.Samples())
	assert.Equal(t, 1, store.saves)
}

func TestNoSaveWithoutNewObservations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &memoryStore{}
	source := SourceFunc(func(ctx context.Context) (float64, error) { return 0, ctx.Err() })
	driver := newTestDriver(t, Config{Interval: time.Millisecond, SaveEvery: 10}, source, store, nil)

	require.NoError(t, driver.Run(ctx))
	assert.Equal(t, 0, store.saves)
}

func TestSampleErrorStopsAfterFinalSave(t *testing.T) {
	defer leaktest.Check(t)()

	i := 0
	source := SourceFunc(func(ctx context.Context) (float64, error) {
		i++
		if i == 5 {
			return 0, errors.New("boom")
		}
		return float64(i), nil
	})
	store := &memoryStore{}
	driver := newTestDriver(t, Config{Interval: time.Millisecond, SaveEvery: 100}, source, store, nil)

	err := driver.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, store.saves)
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 4.0, saved.Count())
}

func TestSaveErrorsAreCountedAndRetried(t *testing.T) {
	defer leaktest.Check(t)()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &memoryStore{}
	store.failWith(errors.New("disk full"))
	i := 0
	source := SourceFunc(func(ctx context.Context) (float64, error) {
		i++
		if i == 4 {
			store.failWith(nil)
		}
		if i == 6 {
			cancel()
		}
		return float64(i), nil
	})
	driver := newTestDriver(t, Config{Interval: time.Millisecond, SaveEvery: 2}, source, store, nil)

	require.NoError(t, driver.Run(ctx))
	// samples 2 and 3 fail to save, 4 and 6 succeed
	assert.Equal(t, uint64(2), driver.SaveErrors())
	assert.Equal(t, 2, store.saves)
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 6.0, saved.Count())
}

func TestLiveLogLine(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger, hook := newTestLogger()
	logger.Logger.SetLevel(log.InfoLevel)
	store := &memoryStore{}
	digest, err := tdigest.New()
	require.NoError(t, err)
	driver, err := NewDriver(Config{Interval: time.Millisecond, SaveEvery: 100, LogPercentiles: true},
		countingSource(3, cancel), store, digest, nil, logger)
	require.NoError(t, err)

	require.NoError(t, driver.Run(ctx))
	var samples []*log.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "Sample" {
			samples = append(samples, e)
		}
	}
	require.Len(t, samples, 3)
	last := samples[2]
	assert.Equal(t, "3.00μs", last.Data["current"])
	assert.Equal(t, 3.0, last.Data["count"])
	assert.Equal(t, "1.00μs", last.Data["min"])
	assert.Equal(t, "3.00μs", last.Data["max"])
}

func TestCollector(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &memoryStore{}
	driver := newTestDriver(t, Config{Interval: time.Millisecond, SaveEvery: 50}, countingSource(100, cancel), store, nil)
	logger, _ := newTestLogger()
	collector := NewCollector(driver, nil, logger)

	// nothing published yet: only the counters
	assert.Equal(t, 3, testutil.CollectAndCount(collector))

	require.NoError(t, driver.Run(ctx))
	assert.Equal(t, 4, testutil.CollectAndCount(collector))

	expected := `
# HELP hashmeter_samples_total Number of samples taken since start
# TYPE hashmeter_samples_total counter
hashmeter_samples_total 100
`
	assert.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected), "hashmeter_samples_total"))

	registry := prometheus.NewPedanticRegistry()
	require.NoError(t, registry.Register(collector))
	families, err := registry.Gather()
	require.NoError(t, err)
	var found bool
	for _, family := range families {
		if family.GetName() != "hashmeter_latency_microseconds" {
			continue
		}
		found = true
		summary := family.GetMetric()[0].GetSummary()
		assert.Equal(t, uint64(100), summary.GetSampleCount())
		assert.InEpsilon(t, 5050.0, summary.GetSampleSum(), 1e-9)
		assert.Len(t, summary.GetQuantile(), len(DefaultSummaryQuantiles))
		for _, q := range summary.GetQuantile() {
			if q.GetQuantile() == 0.5 {
				assert.InDelta(t, 50.5, q.GetValue(), 5, strconv.FormatFloat(q.GetValue(), 'f', 2, 64))
			}
		}
	}
	assert.True(t, found)
}
