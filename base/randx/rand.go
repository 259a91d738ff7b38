// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package randx provides the random number source used for randomizing
// parameters, with support for either the global source or a separate
// seeded source for reproducible sessions.
package randx

import (
	"math/rand"
	"sync"
)

// Rand provides the subset of the standard rand.Rand methods
// needed for drawing parameter values, to support the use of either
// the global rand generator or a separate Rand source.
type Rand interface {
	// Float64 returns, as a float64, a pseudo-random number in the half-open interval [0.0,1.0).
	Float64() float64

	// NormFloat64 returns a normally distributed float64 with
	// standard normal distribution (mean = 0, stddev = 1).
	// To produce a different normal distribution, callers can
	// adjust the output using:
	//
	//	sample = NormFloat64() * desiredStdDev + desiredMean
	NormFloat64() float64
}

// SysRand supports the system random number generator
// for either a separate rand.Rand source, or, if that
// is nil, the global rand stream. A separate source is
// guarded by a mutex so that SysRand is safe for concurrent use.
type SysRand struct {
	mu sync.Mutex

	// if non-nil, use this random number source instead of the global default one
	Rand *rand.Rand
}

// NewGlobalRand returns a new SysRand that implements the
// randx.Rand interface, with the system global rand source.
func NewGlobalRand() *SysRand {
	return &SysRand{}
}

// NewSysRand returns a new SysRand with a new
// rand.Rand random source with given initial seed.
func NewSysRand(seed int64) *SysRand {
	r := &SysRand{}
	r.NewRand(seed)
	return r
}

// NewRand sets Rand to a new rand.Rand source using given seed.
func (r *SysRand) NewRand(seed int64) {
	r.mu.Lock()
	r.Rand = rand.New(rand.NewSource(seed))
	r.mu.Unlock()
}

// Float64 returns, as a float64, a pseudo-random number in the half-open interval [0.0,1.0).
func (r *SysRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Rand == nil {
		return rand.Float64()
	}
	return r.Rand.Float64()
}

// NormFloat64 returns a normally distributed float64
// with mean = 0 and stddev = 1.
func (r *SysRand) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Rand == nil {
		return rand.NormFloat64()
	}
	return r.Rand.NormFloat64()
}
