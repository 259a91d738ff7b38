// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package params holds the current value in [0, 1] of every label
// in a [labels.Schema], and projects them into the model input vector
// in schema order.
package params

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"cogentcore.org/morph"
	"cogentcore.org/morph/base/randx"
	"cogentcore.org/morph/labels"
)

// Neutral is the value every parameter starts at and is reset to.
const Neutral = 0.5

var (
	// ErrAlreadyInitialized is returned by a second call to [Store.Initialize].
	ErrAlreadyInitialized = errors.New("params: store already initialized")

	// ErrNotInitialized is returned by writes before [Store.Initialize].
	ErrNotInitialized = errors.New("params: store not initialized")

	// ErrUnknownLabel is returned when setting a label not in the schema.
	ErrUnknownLabel = errors.New("params: unknown label")
)

// Snapshot is an immutable copy of the parameter values at one version.
type Snapshot struct {
	// Version increases by one with every mutation of the store.
	Version uint64

	// Values are the parameter values in schema order.
	Values []float32
}

// Store is the parameter set for one session. It is safe for concurrent
// use: control handlers write it while the inference worker reads it.
type Store struct {
	mu      sync.RWMutex
	schema  *labels.Schema
	values  []float64
	version uint64

	// Random is the distribution used by [Store.Randomize].
	Random randx.Gaussian

	// Rand is the random source for [Store.Randomize];
	// nil uses the global source.
	Rand randx.Rand
}

// New returns a new uninitialized store with the default randomization.
func New() *Store {
	st := &Store{}
	st.Random.Defaults()
	return st
}

// Initialize creates one entry per schema label at [Neutral].
// The schema is loaded once per session, so a second call fails with
// [ErrAlreadyInitialized].
func (st *Store) Initialize(schema *labels.Schema) error {
	if schema.Len() == 0 {
		return fmt.Errorf("params: initializing with empty schema")
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.schema != nil {
		return ErrAlreadyInitialized
	}
	st.schema = schema
	st.values = make([]float64, schema.Len())
	for i := range st.values {
		st.values[i] = Neutral
	}
	st.version++
	return nil
}

// Schema returns the schema, or nil before [Store.Initialize].
func (st *Store) Schema() *labels.Schema {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.schema
}

// Len returns the number of parameters, which always equals the schema length.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.values)
}

// Set sets the value of the given label. Values outside [0, 1]
// (and NaN) are rejected with an error matching [morph.ErrOutOfRange],
// leaving the store unchanged.
func (st *Store) Set(label string, value float64) error {
	if math.IsNaN(value) || value < 0 || value > 1 {
		return fmt.Errorf("%w: %s = %v", morph.ErrOutOfRange, label, value)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.schema == nil {
		return ErrNotInitialized
	}
	i, ok := st.schema.Index(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	st.values[i] = value
	st.version++
	return nil
}

// SetMap sets every given label, all or nothing: if any label or value is
// invalid, no value is changed. It counts as a single mutation.
func (st *Store) SetMap(vals map[string]float64) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.schema == nil {
		return ErrNotInitialized
	}
	idx := make(map[int]float64, len(vals))
	for label, value := range vals {
		if math.IsNaN(value) || value < 0 || value > 1 {
			return fmt.Errorf("%w: %s = %v", morph.ErrOutOfRange, label, value)
		}
		i, ok := st.schema.Index(label)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownLabel, label)
		}
		idx[i] = value
	}
	for i, v := range idx {
		st.values[i] = v
	}
	st.version++
	return nil
}

// Value returns the value of the given label and whether it exists.
func (st *Store) Value(label string) (float64, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.schema == nil {
		return 0, false
	}
	i, ok := st.schema.Index(label)
	if !ok {
		return 0, false
	}
	return st.values[i], true
}

// Reset sets every entry back to [Neutral].
func (st *Store) Reset() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.schema == nil {
		return ErrNotInitialized
	}
	for i := range st.values {
		st.values[i] = Neutral
	}
	st.version++
	return nil
}

// Randomize draws every entry independently from [Store.Random].
func (st *Store) Randomize() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.schema == nil {
		return ErrNotInitialized
	}
	for i := range st.values {
		st.values[i] = st.Random.Gen(st.Rand)
	}
	st.version++
	return nil
}

// Values returns the model input vector: the values in schema order.
// It has no side effects.
func (st *Store) Values() []float32 {
	return st.Snapshot().Values
}

// Map returns the values keyed by label.
func (st *Store) Map() map[string]float64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	m := make(map[string]float64, len(st.values))
	for i, v := range st.values {
		m[st.schema.Label(i).String()] = v
	}
	return m
}

// Version returns the current mutation count.
func (st *Store) Version() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.version
}

// Snapshot returns the current values together with their version.
func (st *Store) Snapshot() Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	vals := make([]float32, len(st.values))
	for i, v := range st.values {
		vals[i] = float32(v)
	}
	return Snapshot{Version: st.version, Values: vals}
}
