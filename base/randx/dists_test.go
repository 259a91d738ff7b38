// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package randx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGaussianGen(t *testing.T) {
	nsamp := 100000
	mean := 0.5
	sig := 0.2
	rnd := NewSysRand(1)
	sum, sum2 := 0.0, 0.0
	for i := 0; i < nsamp; i++ {
		v := GaussianGen(mean, sig, rnd)
		sum += v
		sum2 += v * v
	}
	m := sum / float64(nsamp)
	sd := math.Sqrt(sum2/float64(nsamp) - m*m)
	assert.InDelta(t, mean, m, 0.01)
	assert.InDelta(t, sig, sd, 0.01)
}

func TestClampedGaussian(t *testing.T) {
	rnd := NewSysRand(2)
	lo, hi := 0, 0
	for i := 0; i < 10000; i++ {
		v := ClampedGaussian(0.5, 1, 0, 1, rnd)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		switch v {
		case 0:
			lo++
		case 1:
			hi++
		}
	}
	// a wide distribution must hit both clamps
	assert.Greater(t, lo, 0)
	assert.Greater(t, hi, 0)
}

func TestGaussianSeeded(t *testing.T) {
	var g Gaussian
	g.Defaults()
	a := NewSysRand(42)
	b := NewSysRand(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, g.Gen(a), g.Gen(b))
	}
	v := g.Gen()
	assert.True(t, v >= 0 && v <= 1)
}
