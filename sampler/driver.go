// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

// Package sampler drives the measurement loop: it samples a latency source at
// a fixed interval, feeds the live digest and periodically persists it.
package sampler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/DataDog/hashmeter/persist"
	"github.com/DataDog/hashmeter/tdigest"
)

var livePercentiles = []float64{0, 0.25, 0.5, 0.75, 0.95, 0.99, 1}

// Driver is the only writer of its digest. Readers use Published.
type Driver struct {
	config       Config
	source       Source
	store        persist.Store
	digest       *tdigest.TDigest
	observations Recorder
	logger       *log.Entry
	now          func() time.Time

	// observations inserted since the last save
	pending int

	published  atomic.Pointer[tdigest.TDigest]
	samples    atomic.Uint64
	saves      atomic.Uint64
	saveErrors atomic.Uint64
}

// NewDriver returns a driver feeding digest, usually the one loaded from
// store. observations may be nil.
func NewDriver(
	config Config,
	source Source,
	store persist.Store,
	digest *tdigest.TDigest,
	observations Recorder,
	logger *log.Entry,
) (*Driver, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid sampler configuration")
	}
	d := &Driver{
		config:       config,
		source:       source,
		store:        store,
		digest:       digest,
		observations: observations,
		logger:       logger,
		now:          time.Now,
	}
	if err := d.publish(); err != nil {
		return nil, err
	}
	return d, nil
}

// Run samples until ctx is cancelled or the source fails. Cancellation is only
// observed between iterations, so an insert or a save is never interrupted.
// The digest is compressed and saved one last time before Run returns.
func (d *Driver) Run(ctx context.Context) (err error) {
	ticker := time.NewTicker(d.config.Interval)
	defer ticker.Stop()
	defer func() {
		if d.pending == 0 {
			return
		}
		if saveErr := d.save(); saveErr != nil {
			err = multierror.Append(err, saveErr).ErrorOrNil()
		}
	}()

	d.logger.WithFields(log.Fields{
		"interval":   d.config.Interval,
		"save_every": d.config.SaveEvery,
		"count":      d.digest.Count(),
	}).Info("Starting sampling loop")
loop:
	for {
		if err := d.step(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
		}
	}
	d.logger.Info("Sampling loop stopped")
	return nil
}

func (d *Driver) step(ctx context.Context) error {
	value, err := d.source.Sample(ctx)
	if err != nil {
		return errors.Wrap(err, "sampling latency")
	}
	if err := d.digest.Add(value); err != nil {
		return errors.Wrapf(err, "inserting sample %v", value)
	}
	d.pending++
	d.samples.Add(1)

	if d.observations != nil {
		if err := d.observations.Record(d.now(), value); err != nil {
			d.logger.WithError(err).Warn("Could not record observation")
		}
	}
	d.logSample(value)

	if d.pending >= d.config.SaveEvery {
		if err := d.save(); err != nil {
			d.logger.WithError(err).Error("Could not save snapshot, keeping the previous one")
		}
	}
	return nil
}

// save compresses the digest, persists it and publishes a copy.
func (d *Driver) save() error {
	d.digest.Compress()
	if err := d.store.Save(d.digest); err != nil {
		d.saveErrors.Add(1)
		return errors.Wrap(err, "saving snapshot")
	}
	d.saves.Add(1)
	d.pending = 0
	d.logger.WithFields(log.Fields{
		"count":     d.digest.Count(),
		"centroids": d.digest.Len(),
	}).Info("Compressed and saved snapshot")
	return d.publish()
}

// publish replaces the published digest with a decoded copy of the live one.
func (d *Driver) publish() error {
	published, err := tdigest.Decode(d.digest.Encode(),
		tdigest.Compression(d.digest.Compression()),
		tdigest.Scale(d.digest.ScaleFunction()))
	if err != nil {
		return errors.Wrap(err, "publishing snapshot")
	}
	d.published.Store(published)
	return nil
}

func (d *Driver) logSample(value float64) {
	level := log.DebugLevel
	if d.config.LogPercentiles {
		level = log.InfoLevel
	}
	if !d.logger.Logger.IsLevelEnabled(level) {
		return
	}
	qs, err := d.digest.Quantiles(livePercentiles...)
	if err != nil {
		d.logger.WithError(err).Warn("Could not compute live percentiles")
		return
	}
	d.logger.WithFields(log.Fields{
		"current": formatMicros(value),
		"count":   d.digest.Count(),
		"min":     formatMicros(qs[0]),
		"p25":     formatMicros(qs[1]),
		"p50":     formatMicros(qs[2]),
		"p75":     formatMicros(qs[3]),
		"p95":     formatMicros(qs[4]),
		"p99":     formatMicros(qs[5]),
		"max":     formatMicros(qs[6]),
	}).Log(level, "Sample")
}

func formatMicros(v float64) string {
	return fmt.Sprintf("%.2fμs", v)
}

// Published returns the digest as of the last save. It is never modified and
// can be read concurrently with Run.
func (d *Driver) Published() *tdigest.TDigest {
	return d.published.Load()
}

func (d *Driver) Samples() uint64 {
	return d.samples.Load()
}

func (d *Driver) Saves() uint64 {
	return d.saves.Load()
}

func (d *Driver) SaveErrors() uint64 {
	return d.saveErrors.Load()
}
