// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package sampler

import (
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const MetricPrefix = "hashmeter_"

var latencyDesc = prometheus.NewDesc(
	MetricPrefix+"latency_microseconds",
	"Latency distribution as of the last saved snapshot",
	nil,
	nil,
)

var samplesDesc = prometheus.NewDesc(
	MetricPrefix+"samples_total",
	"Number of samples taken since start",
	nil,
	nil,
)

var savesDesc = prometheus.NewDesc(
	MetricPrefix+"snapshot_saves_total",
	"Number of snapshots saved since start",
	nil,
	nil,
)

var saveErrorsDesc = prometheus.NewDesc(
	MetricPrefix+"snapshot_save_errors_total",
	"Number of failed snapshot saves since start",
	nil,
	nil,
)

// Collector exports the published digest of a driver as a summary.
type Collector struct {
	driver    *Driver
	quantiles []float64
	logger    *log.Entry
}

func NewCollector(driver *Driver, quantiles []float64, logger *log.Entry) *Collector {
	if len(quantiles) == 0 {
		quantiles = DefaultSummaryQuantiles
	}
	return &Collector{driver: driver, quantiles: quantiles, logger: logger}
}

func (c *Collector) Describe(desc chan<- *prometheus.Desc) {
	desc <- latencyDesc
	desc <- samplesDesc
	desc <- savesDesc
	desc <- saveErrorsDesc
}

func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	metrics <- prometheus.MustNewConstMetric(samplesDesc, prometheus.CounterValue, float64(c.driver.Samples()))
	metrics <- prometheus.MustNewConstMetric(savesDesc, prometheus.CounterValue, float64(c.driver.Saves()))
	metrics <- prometheus.MustNewConstMetric(saveErrorsDesc, prometheus.CounterValue, float64(c.driver.SaveErrors()))

	digest := c.driver.Published()
	if digest == nil || digest.IsEmpty() {
		return
	}
	values, err := digest.Quantiles(c.quantiles...)
	if err != nil {
		c.logger.WithError(err).Error("Error while computing latency quantiles")
		return
	}
	quantiles := make(map[float64]float64, len(c.quantiles))
	for i, q := range c.quantiles {
		quantiles[q] = values[i]
	}
	metrics <- prometheus.MustNewConstSummary(latencyDesc, uint64(digest.Count()), digest.Sum(), quantiles)
}
