// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"slices"
	"sync"

	"cogentcore.org/morph"
	"cogentcore.org/morph/math32"
)

// ChangeEvent is sent to [Display] listeners after the vertices change,
// so that derived rendering state (normals, bounding volumes) can be
// recomputed on the next frame.
type ChangeEvent struct {
	// Version is the parameter snapshot version the vertices were computed from.
	Version uint64

	// NumVertex is the number of vertices.
	NumVertex int
}

// Display is the mesh that is rendered. Its vertices are replaced
// wholesale by [Display.Update]; writes carrying an older snapshot version
// than the last accepted one are discarded, so the displayed state always
// reflects the most recently requested parameters.
type Display struct {
	mu          sync.RWMutex
	mesh        *Mesh
	version     uint64
	needsUpdate bool
	listeners   []func(ChangeEvent)
}

// NewDisplay returns a display over a private copy of the given mesh.
func NewDisplay(ms *Mesh) (*Display, error) {
	if err := ms.Validate(); err != nil {
		return nil, err
	}
	return &Display{mesh: ms.Clone()}, nil
}

// OnChange adds a function called after every accepted update.
// Listeners are called synchronously, outside the display lock.
func (d *Display) OnChange(fun func(ev ChangeEvent)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fun)
	d.mu.Unlock()
}

// Update replaces the vertices with the given positions computed from the
// parameter snapshot of the given version. It returns false without
// changing anything if a newer version has already been applied.
// The vertex array must match the mesh size.
func (d *Display) Update(version uint64, vertex []float32) (bool, error) {
	d.mu.Lock()
	if err := morph.CheckShape("display vertices", len(d.mesh.Vertex), len(vertex)); err != nil {
		d.mu.Unlock()
		return false, err
	}
	if version < d.version {
		d.mu.Unlock()
		return false, nil
	}
	copy(d.mesh.Vertex, vertex)
	d.version = version
	d.needsUpdate = true
	ev := ChangeEvent{Version: version, NumVertex: d.mesh.NumVertex()}
	ls := slices.Clone(d.listeners)
	d.mu.Unlock()
	for _, fun := range ls {
		fun(ev)
	}
	return true, nil
}

// Version returns the snapshot version of the current vertices.
func (d *Display) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// NeedsUpdate returns whether the vertices changed since the last
// [Display.ClearUpdate].
func (d *Display) NeedsUpdate() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.needsUpdate
}

// ClearUpdate clears the needs-update flag, returning its previous value.
// The presentation layer calls it when it picks up the new vertices.
func (d *Display) ClearUpdate() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	nu := d.needsUpdate
	d.needsUpdate = false
	return nu
}

// NumVertex returns the number of vertices.
func (d *Display) NumVertex() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mesh.NumVertex()
}

// Vertex returns the position of vertex i.
func (d *Display) Vertex(i int) math32.Vector3 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return math32.Vector3FromArray(d.mesh.Vertex, i)
}

// Vertices returns a copy of the flat vertex positions.
func (d *Display) Vertices() []float32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.mesh.Vertex)
}

// Mesh returns a copy of the current mesh.
func (d *Display) Mesh() *Mesh {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mesh.Clone()
}

// BBox computes the bounding box of the current vertices.
func (d *Display) BBox() math32.Box3 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.mesh.BBox()
}
