// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package dataset

import (
	"math"
	"math/rand"
)

type Generator interface {
	Generate() float64
}

// Constant stream
type Constant struct{ constant float64 }

func NewConstant(constant float64) *Constant { return &Constant{constant: constant} }

func (g *Constant) Generate() float64 { return g.constant }

// Linearly increasing stream
type Linear struct{ currentVal float64 }

func NewLinear() *Linear { return &Linear{0} }

func (g *Linear) Generate() float64 {
	value := g.currentVal
	g.currentVal++
	return value
}

// Uniform distribution over [min, max)
type Uniform struct {
	rng      *rand.Rand
	min, max float64
}

func NewUniform(rng *rand.Rand, min, max float64) *Uniform {
	return &Uniform{rng: rng, min: min, max: max}
}

func (g *Uniform) Generate() float64 { return g.min + g.rng.Float64()*(g.max-g.min) }

// Normal distribution
type Normal struct {
	rng          *rand.Rand
	mean, stddev float64
}

func NewNormal(rng *rand.Rand, mean, stddev float64) *Normal {
	return &Normal{rng: rng, mean: mean, stddev: stddev}
}

func (g *Normal) Generate() float64 { return g.rng.NormFloat64()*g.stddev + g.mean }

// Lognormal distribution, the usual shape of request latencies
type Lognormal struct {
	rng       *rand.Rand
	mu, sigma float64
}

func NewLognormal(rng *rand.Rand, mu, sigma float64) *Lognormal {
	return &Lognormal{rng: rng, mu: mu, sigma: sigma}
}

func (g *Lognormal) Generate() float64 {
	return math.Exp(g.rng.NormFloat64()*g.sigma + g.mu)
}

// Exponential distribution
type Exponential struct {
	rng  *rand.Rand
	rate float64
}

func NewExponential(rng *rand.Rand, rate float64) *Exponential {
	return &Exponential{rng: rng, rate: rate}
}

func (g *Exponential) Generate() float64 { return g.rng.ExpFloat64() / g.rate }

// Pareto distribution, for heavy latency tails
type Pareto struct {
	rng          *rand.Rand
	shape, scale float64
}

func NewPareto(rng *rand.Rand, shape, scale float64) *Pareto {
	return &Pareto{rng: rng, shape: shape, scale: scale}
}

func (g *Pareto) Generate() float64 {
	r := g.rng.ExpFloat64() / g.shape
	return math.Exp(math.Log(g.scale) + r)
}
