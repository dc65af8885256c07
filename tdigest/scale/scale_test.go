// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floatingPointAcceptableError = 1e-9

var (
	testCompressions = []float64{1, 10, 100, 1000}
	testFunctions    = []Function{ArcSine{}, Linear{}, Logistic{}}
)

func EvaluateInverse(t *testing.T, f Function, compression float64) {
	for q := 0.001; q < 1; q += 0.001 {
		k := f.K(q, compression)
		assert.InDelta(t, q, f.Q(k, compression), floatingPointAcceptableError, "%s q=%v", f, q)
	}
}

func EvaluateMonotonic(t *testing.T, f Function, compression float64) {
	previous := f.K(0, compression)
	for q := 0.01; q <= 1; q += 0.01 {
		k := f.K(q, compression)
		assert.True(t, k > previous, "%s is not increasing at q=%v", f, q)
		previous = k
	}
}

func TestInverse(t *testing.T) {
	for _, f := range testFunctions {
		for _, compression := range testCompressions {
			EvaluateInverse(t, f, compression)
		}
	}
}

func TestMonotonic(t *testing.T) {
	for _, f := range testFunctions {
		for _, compression := range testCompressions {
			EvaluateMonotonic(t, f, compression)
		}
	}
}

// The width in q of a one-unit k interval must be narrower at the tails than at
// the median for the tail-biased schedules.
func TestTailBias(t *testing.T) {
	for _, f := range []Function{ArcSine{}, Logistic{}} {
		compression := 100.0
		tail := f.Q(f.K(0.001, compression)+1, compression) - 0.001
		body := f.Q(f.K(0.5, compression)+1, compression) - 0.5
		assert.Less(t, tail, body, f.String())
	}
	linear := Linear{}
	tail := linear.Q(linear.K(0.001, 100)+1, 100) - 0.001
	body := linear.Q(linear.K(0.5, 100)+1, 100) - 0.5
	assert.InDelta(t, tail, body, floatingPointAcceptableError)
}

func TestClampedOutsideUnitInterval(t *testing.T) {
	for _, f := range testFunctions {
		assert.Equal(t, f.K(0, 100), f.K(-1, 100), f.String())
		assert.Equal(t, f.K(1, 100), f.K(2, 100), f.String())
	}
	assert.Equal(t, 0.0, ArcSine{}.Q(-1000, 100))
	assert.Equal(t, 1.0, ArcSine{}.Q(1000, 100))
}

func TestFromName(t *testing.T) {
	for name, expected := range map[string]Function{
		"":         ArcSine{},
		"k1":       ArcSine{},
		"ArcSine":  ArcSine{},
		"k0":       Linear{},
		"linear":   Linear{},
		" k2 ":     Logistic{},
		"logistic": Logistic{},
	} {
		f, err := FromName(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, f, name)
	}
	_, err := FromName("k9")
	assert.Error(t, err)
}
