// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"encoding/json"
	"fmt"
	"io"
)

// threeJSON is the legacy three.js JSON model format (format version 3),
// as produced by the three.js Blender and OBJ converters.
type threeJSON struct {
	Metadata struct {
		FormatVersion float64 `json:"formatVersion"`
	} `json:"metadata"`
	Scale    float32     `json:"scale"`
	Vertices []float32   `json:"vertices"`
	UVs      [][]float32 `json:"uvs"`
	Faces    []int       `json:"faces"`
}

// face type bit flags
const (
	faceQuad = 1 << iota
	faceMaterial
	faceUV // unused by the three.js loader
	faceVertexUV
	faceNormal
	faceVertexNormal
	faceColor
	faceVertexColor
)

// ReadThreeJSON reads a mesh in the legacy three.js JSON model format.
// Quads are split into two triangles the same way the three.js loader does.
func ReadThreeJSON(r io.Reader, name string) (*Mesh, error) {
	var tj threeJSON
	if err := json.NewDecoder(r).Decode(&tj); err != nil {
		return nil, fmt.Errorf("geom: decoding three.js JSON %q: %w", name, err)
	}
	if fv := tj.Metadata.FormatVersion; fv != 0 && fv < 3 {
		return nil, fmt.Errorf("geom: three.js JSON %q has unsupported format version %g", name, fv)
	}
	ms := &Mesh{Name: name, Vertex: tj.Vertices}
	if tj.Scale != 0 && tj.Scale != 1 {
		s := 1 / tj.Scale
		for i := range ms.Vertex {
			ms.Vertex[i] *= s
		}
	}
	nuv := 0
	for _, l := range tj.UVs {
		if len(l) > 0 {
			nuv++
		}
	}
	idx, err := parseThreeFaces(tj.Faces, nuv)
	if err != nil {
		return nil, fmt.Errorf("geom: three.js JSON %q: %w", name, err)
	}
	ms.Index = idx
	if err := ms.Validate(); err != nil {
		return nil, err
	}
	return ms, nil
}

func parseThreeFaces(faces []int, nuv int) ([]uint32, error) {
	var idx []uint32
	off := 0
	take := func(n int) ([]int, error) {
		if off+n > len(faces) {
			return nil, fmt.Errorf("faces array truncated at offset %d", off)
		}
		s := faces[off : off+n]
		off += n
		return s, nil
	}
	for off < len(faces) {
		tp := faces[off]
		off++
		nvert := 3
		if tp&faceQuad != 0 {
			nvert = 4
		}
		vs, err := take(nvert)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			if v < 0 {
				return nil, fmt.Errorf("negative vertex index %d", v)
			}
		}
		if nvert == 4 {
			idx = append(idx, uint32(vs[0]), uint32(vs[1]), uint32(vs[3]),
				uint32(vs[1]), uint32(vs[2]), uint32(vs[3]))
		} else {
			idx = append(idx, uint32(vs[0]), uint32(vs[1]), uint32(vs[2]))
		}
		skip := 0
		if tp&faceMaterial != 0 {
			skip++
		}
		if tp&faceVertexUV != 0 {
			skip += nuv * nvert
		}
		if tp&faceNormal != 0 {
			skip++
		}
		if tp&faceVertexNormal != 0 {
			skip += nvert
		}
		if tp&faceColor != 0 {
			skip++
		}
		if tp&faceVertexColor != 0 {
			skip += nvert
		}
		if _, err := take(skip); err != nil {
			return nil, err
		}
	}
	return idx, nil
}
