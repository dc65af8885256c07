// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package sampler

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Config controls the sampling loop.
type Config struct {
	Interval  time.Duration `mapstructure:"interval"`
	SaveEvery int           `mapstructure:"save-every"`
	// LogPercentiles logs the live percentile line of every sample at info
	// level instead of debug.
	LogPercentiles bool `mapstructure:"log-percentiles"`
}

func DefaultConfig() Config {
	return Config{
		Interval:  DefaultInterval,
		SaveEvery: DefaultSaveEvery,
	}
}

func (c Config) Validate() error {
	var result *multierror.Error
	if c.Interval <= 0 {
		result = multierror.Append(result, errors.Errorf("interval must be positive, got %s", c.Interval))
	}
	if c.SaveEvery <= 0 {
		result = multierror.Append(result, errors.Errorf("save-every must be positive, got %d", c.SaveEvery))
	}
	return result.ErrorOrNil()
}

// PBKDF2Config describes the key derivation timed by PBKDF2Source.
type PBKDF2Config struct {
	Password   string `mapstructure:"password"`
	Salt       string `mapstructure:"salt"`
	Iterations int    `mapstructure:"iterations"`
	KeySize    int    `mapstructure:"key-size"`
}

func DefaultPBKDF2Config() PBKDF2Config {
	return PBKDF2Config{
		Password:   DefaultPassword,
		Salt:       DefaultSalt,
		Iterations: DefaultIterations,
		KeySize:    DefaultKeySize,
	}
}

func (c PBKDF2Config) Validate() error {
	var result *multierror.Error
	if c.Iterations <= 0 {
		result = multierror.Append(result, errors.Errorf("iterations must be positive, got %d", c.Iterations))
	}
	if c.KeySize <= 0 {
		result = multierror.Append(result, errors.Errorf("key-size must be positive, got %d", c.KeySize))
	}
	return result.ErrorOrNil()
}
