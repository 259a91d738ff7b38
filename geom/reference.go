// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"slices"

	"cogentcore.org/morph/math32"
)

// Reference is the unmodified base mesh. It is frozen at construction and
// never mutated afterwards, so it is shared between goroutines without locking.
type Reference struct {
	mesh *Mesh
}

// NewReference freezes a private copy of the given mesh.
func NewReference(ms *Mesh) (*Reference, error) {
	if err := ms.Validate(); err != nil {
		return nil, err
	}
	return &Reference{mesh: ms.Clone()}, nil
}

// Name returns the mesh name.
func (r *Reference) Name() string {
	return r.mesh.Name
}

// NumVertex returns the number of vertices.
func (r *Reference) NumVertex() int {
	return r.mesh.NumVertex()
}

// Vertex returns the position of vertex i.
func (r *Reference) Vertex(i int) math32.Vector3 {
	return math32.Vector3FromArray(r.mesh.Vertex, i)
}

// Vertices returns a copy of the flat vertex positions.
func (r *Reference) Vertices() []float32 {
	return slices.Clone(r.mesh.Vertex)
}

// Mesh returns a copy of the reference mesh.
func (r *Reference) Mesh() *Mesh {
	return r.mesh.Clone()
}
