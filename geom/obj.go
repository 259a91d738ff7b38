// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadOBJ reads the vertex positions and faces of a Wavefront OBJ file.
// Polygons are triangulated as fans; texture and normal references are ignored.
// The first object name, if any, replaces the given name.
func ReadOBJ(r io.Reader, name string) (*Mesh, error) {
	ms := &Mesh{Name: name}
	named := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fs := strings.Fields(line)
		switch fs[0] {
		case "o":
			if !named && len(fs) > 1 {
				ms.Name = fs[1]
				named = true
			}
		case "v":
			if len(fs) < 4 {
				return nil, fmt.Errorf("geom: OBJ %q line %d: vertex needs 3 coordinates", name, ln)
			}
			for _, f := range fs[1:4] {
				v, err := strconv.ParseFloat(f, 32)
				if err != nil {
					return nil, fmt.Errorf("geom: OBJ %q line %d: %w", name, ln, err)
				}
				ms.Vertex = append(ms.Vertex, float32(v))
			}
		case "f":
			if len(fs) < 4 {
				return nil, fmt.Errorf("geom: OBJ %q line %d: face needs at least 3 vertices", name, ln)
			}
			nv := ms.NumVertex()
			poly := make([]uint32, len(fs)-1)
			for i, f := range fs[1:] {
				ref, _, _ := strings.Cut(f, "/")
				ix, err := strconv.Atoi(ref)
				if err != nil {
					return nil, fmt.Errorf("geom: OBJ %q line %d: %w", name, ln, err)
				}
				switch {
				case ix < 0:
					ix += nv
				case ix > 0:
					ix--
				default:
					return nil, fmt.Errorf("geom: OBJ %q line %d: vertex index 0", name, ln)
				}
				if ix < 0 || ix >= nv {
					return nil, fmt.Errorf("geom: OBJ %q line %d: vertex index out of range", name, ln)
				}
				poly[i] = uint32(ix)
			}
			for i := 1; i+1 < len(poly); i++ {
				ms.Index = append(ms.Index, poly[0], poly[i], poly[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("geom: reading OBJ %q: %w", name, err)
	}
	if err := ms.Validate(); err != nil {
		return nil, err
	}
	return ms, nil
}

// WriteOBJ writes the mesh as a Wavefront OBJ file.
func WriteOBJ(w io.Writer, ms *Mesh) error {
	bw := bufio.NewWriter(w)
	if ms.Name != "" {
		fmt.Fprintf(bw, "o %s\n", ms.Name)
	}
	nv := ms.NumVertex()
	for i := 0; i < nv; i++ {
		o := 3 * i
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(ms.Vertex[o]), ftoa(ms.Vertex[o+1]), ftoa(ms.Vertex[o+2]))
	}
	nt := ms.NumTriangle()
	for i := 0; i < nt; i++ {
		o := 3 * i
		fmt.Fprintf(bw, "f %d %d %d\n", ms.Index[o]+1, ms.Index[o+1]+1, ms.Index[o+2]+1)
	}
	return bw.Flush()
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
