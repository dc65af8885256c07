// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package sampler

import (
	"context"
	"crypto/sha256"
	"runtime"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// Source produces one latency observation per call.
type Source interface {
	Sample(ctx context.Context) (float64, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) (float64, error)

func (f SourceFunc) Sample(ctx context.Context) (float64, error) {
	return f(ctx)
}

// PBKDF2Source measures, in microseconds, how long one PBKDF2-HMAC-SHA256 key
// derivation takes.
type PBKDF2Source struct {
	password   []byte
	salt       []byte
	iterations int
	keySize    int
}

func NewPBKDF2Source(config PBKDF2Config) (*PBKDF2Source, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PBKDF2Source{
		password:   []byte(config.Password),
		salt:       []byte(config.Salt),
		iterations: config.Iterations,
		keySize:    config.KeySize,
	}, nil
}

func (s *PBKDF2Source) Sample(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	start := time.Now()
	key := pbkdf2.Key(s.password, s.salt, s.iterations, s.keySize, sha256.New)
	elapsed := time.Since(start)
	runtime.KeepAlive(key)
	return float64(elapsed) / float64(time.Microsecond), nil
}
