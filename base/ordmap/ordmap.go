// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ordmap implements an ordered map that keeps items in the order
they were added, with fast key lookup of their position.

The slice holds each key and value in order, and the map holds the index
of each key into the slice. Only adding and lookup are supported, which
is all that fixed-order tables such as a label schema need.
*/
package ordmap

import "fmt"

// KeyValue is a key-value pair.
type KeyValue[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is a generic ordered map.
type Map[K comparable, V any] struct {
	order []KeyValue[K, V]
	index map[K]int
}

// New returns a new ordered map with room for n items.
func New[K comparable, V any](n int) *Map[K, V] {
	return &Map[K, V]{
		order: make([]KeyValue[K, V], 0, n),
		index: make(map[K]int, n),
	}
}

// Add adds the value for the given key at the end. If the key is
// already present, its value is replaced in place.
func (om *Map[K, V]) Add(key K, val V) {
	if om.index == nil {
		om.index = make(map[K]int)
	}
	if i, has := om.index[key]; has {
		om.order[i].Value = val
		return
	}
	om.index[key] = len(om.order)
	om.order = append(om.order, KeyValue[K, V]{Key: key, Value: val})
}

// AddNew adds the value for a key that must not already be present,
// returning an error with the existing index if it is.
func (om *Map[K, V]) AddNew(key K, val V) error {
	if i, has := om.index[key]; has {
		return fmt.Errorf("ordmap: key %v already present at index %d", key, i)
	}
	om.Add(key, val)
	return nil
}

// IndexByKey returns the index of the given key, and false if it is missing.
func (om *Map[K, V]) IndexByKey(key K) (int, bool) {
	if om == nil {
		return 0, false
	}
	i, ok := om.index[key]
	return i, ok
}

// ValueByKey returns the value for the given key, and false if it is missing.
func (om *Map[K, V]) ValueByKey(key K) (V, bool) {
	i, ok := om.IndexByKey(key)
	if !ok {
		var zero V
		return zero, false
	}
	return om.order[i].Value, true
}

// ValueByIndex returns the value at the given index.
func (om *Map[K, V]) ValueByIndex(i int) V {
	return om.order[i].Value
}

// KeyByIndex returns the key at the given index.
func (om *Map[K, V]) KeyByIndex(i int) K {
	return om.order[i].Key
}

// Len returns the number of items.
func (om *Map[K, V]) Len() int {
	if om == nil {
		return 0
	}
	return len(om.order)
}

// Keys returns the keys in order.
func (om *Map[K, V]) Keys() []K {
	ks := make([]K, om.Len())
	for i, kv := range om.order {
		ks[i] = kv.Key
	}
	return ks
}

// Values returns the values in order.
func (om *Map[K, V]) Values() []V {
	vs := make([]V, om.Len())
	for i, kv := range om.order {
		vs[i] = kv.Value
	}
	return vs
}
