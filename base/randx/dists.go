// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package randx

// GaussianGen returns gaussian (normal) random number with given
// mean and sigma standard deviation.
// Optionally can pass a single Rand interface to use --
// otherwise uses system global Rand source.
func GaussianGen(mean, sigma float64, randOpt ...Rand) float64 {
	return mean + sigma*pick(randOpt).NormFloat64()
}

// ClampedGaussian returns [GaussianGen] clamped into the closed range [lo, hi].
// Optionally can pass a single Rand interface to use --
// otherwise uses system global Rand source.
func ClampedGaussian(mean, sigma, lo, hi float64, randOpt ...Rand) float64 {
	return min(max(GaussianGen(mean, sigma, randOpt...), lo), hi)
}

// Gaussian is a normal distribution clamped into [Min, Max],
// as used for randomizing parameters.
type Gaussian struct {
	// Mean is the center of the distribution.
	Mean float64 `default:"0.5"`

	// StdDev is the standard deviation.
	StdDev float64 `default:"0.2"`

	// Min is the lower clamp.
	Min float64 `default:"0"`

	// Max is the upper clamp.
	Max float64 `default:"1"`
}

// Defaults sets the parameter randomization defaults:
// mean 0.5, standard deviation 0.2, clamped to [0, 1].
func (g *Gaussian) Defaults() {
	g.Mean = 0.5
	g.StdDev = 0.2
	g.Min = 0
	g.Max = 1
}

// Gen draws one value.
func (g *Gaussian) Gen(randOpt ...Rand) float64 {
	return ClampedGaussian(g.Mean, g.StdDev, g.Min, g.Max, randOpt...)
}

func pick(randOpt []Rand) Rand {
	if len(randOpt) == 0 || randOpt[0] == nil {
		return NewGlobalRand()
	}
	return randOpt[0]
}
