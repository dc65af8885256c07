// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package sampler

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Recorder keeps an audit trail of raw observations.
type Recorder interface {
	Record(at time.Time, value float64) error
}

// ObservationLog appends one "timestamp,value" line per observation to a file.
// It is not read back by hashmeter.
type ObservationLog struct {
	file *os.File
}

// ObservationLogName returns the name of the log file of a run started at t.
func ObservationLogName(t time.Time) string {
	return fmt.Sprintf("timing_values_%s.log", t.Format("20060102_150405"))
}

// OpenObservationLog opens, creating it if needed, the log of a run started at
// startedAt in dir.
func OpenObservationLog(dir string, startedAt time.Time) (*ObservationLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating directory %s", dir)
	}
	path := filepath.Join(dir, ObservationLogName(startedAt))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening observation log %s", path)
	}
	return &ObservationLog{file: file}, nil
}

func (l *ObservationLog) Record(at time.Time, value float64) error {
	if _, err := fmt.Fprintf(l.file, "%s,%.2f\n", at.Format(time.RFC3339Nano), value); err != nil {
		return errors.Wrapf(err, "writing to %s", l.file.Name())
	}
	return nil
}

func (l *ObservationLog) Path() string {
	return l.file.Name()
}

func (l *ObservationLog) Close() error {
	return l.file.Close()
}
