// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom provides the body mesh in its two roles:
// the immutable [Reference] used as the additive baseline, and
// the mutable [Display] that is rendered and rewritten on every update.
package geom

import (
	"fmt"
	"slices"

	"cogentcore.org/morph/math32"
)

// Mesh is an indexed triangle mesh with flat vertex data.
// Only vertex positions are deformed; the index is shared as is.
type Mesh struct {
	// Name is the name of the mesh.
	Name string

	// Vertex has the x, y, z position of each vertex.
	Vertex []float32

	// Index has three vertex indexes per triangle.
	Index []uint32
}

// NumVertex returns the number of vertices.
func (ms *Mesh) NumVertex() int {
	return len(ms.Vertex) / 3
}

// NumTriangle returns the number of triangles.
func (ms *Mesh) NumTriangle() int {
	return len(ms.Index) / 3
}

// Validate returns an error if the vertex or index data are malformed.
func (ms *Mesh) Validate() error {
	if len(ms.Vertex) == 0 {
		return fmt.Errorf("geom: mesh %q has no vertices", ms.Name)
	}
	if len(ms.Vertex)%3 != 0 {
		return fmt.Errorf("geom: mesh %q vertex array length %d is not a multiple of 3", ms.Name, len(ms.Vertex))
	}
	if len(ms.Index)%3 != 0 {
		return fmt.Errorf("geom: mesh %q index array length %d is not a multiple of 3", ms.Name, len(ms.Index))
	}
	nv := uint32(ms.NumVertex())
	for i, ix := range ms.Index {
		if ix >= nv {
			return fmt.Errorf("geom: mesh %q index %d refers to vertex %d of %d", ms.Name, i, ix, nv)
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (ms *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:   ms.Name,
		Vertex: slices.Clone(ms.Vertex),
		Index:  slices.Clone(ms.Index),
	}
}

// BBox returns the bounding box of the vertices.
func (ms *Mesh) BBox() math32.Box3 {
	return math32.B3FromArray(ms.Vertex)
}
