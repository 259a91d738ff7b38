// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package deform applies model output onto the body mesh: the flat output
// vector is read as one x,y,z offset per vertex, which is added to the
// reference position of that vertex.
package deform

import (
	"runtime"

	"cogentcore.org/morph"
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/math32"
	"golang.org/x/sync/errgroup"
)

// MinChunk is the minimum number of vertices handled by one goroutine.
const MinChunk = 4096

// Applier computes deformed vertex positions. The zero value uses
// [runtime.GOMAXPROCS] workers.
type Applier struct {
	// Workers is the maximum number of goroutines used per apply;
	// 0 means [runtime.GOMAXPROCS], and 1 disables parallelism.
	Workers int
}

// Apply returns the deformed vertex positions for the given output
// vector: vertex i is reference[i] + (output[3i], output[3i+1], output[3i+2]).
// It is a pure function of its inputs. The output length must be
// three times the reference vertex count.
func (ap *Applier) Apply(output []float32, ref *geom.Reference) ([]float32, error) {
	nv := ref.NumVertex()
	if err := morph.CheckShape("model output", 3*nv, len(output)); err != nil {
		return nil, err
	}
	vtx := make([]float32, 3*nv)
	workers := ap.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	nchunk := min(workers, (nv+MinChunk-1)/MinChunk)
	if nchunk <= 1 {
		offsetRange(vtx, output, ref, 0, nv)
		return vtx, nil
	}
	var eg errgroup.Group
	per := (nv + nchunk - 1) / nchunk
	for st := 0; st < nv; st += per {
		ed := min(st+per, nv)
		eg.Go(func() error {
			offsetRange(vtx, output, ref, st, ed)
			return nil
		})
	}
	eg.Wait()
	return vtx, nil
}

// ApplyTo computes the deformed positions and writes them to the display,
// tagged with the parameter snapshot version they were computed from.
// It returns false if the display already holds a newer version, in which
// case the result is discarded. On error the display is left untouched.
func (ap *Applier) ApplyTo(disp *geom.Display, version uint64, output []float32, ref *geom.Reference) (bool, error) {
	vtx, err := ap.Apply(output, ref)
	if err != nil {
		return false, err
	}
	return disp.Update(version, vtx)
}

// Apply is [Applier.Apply] with default settings.
func Apply(output []float32, ref *geom.Reference) ([]float32, error) {
	var ap Applier
	return ap.Apply(output, ref)
}

func offsetRange(vtx, output []float32, ref *geom.Reference, st, ed int) {
	for i := st; i < ed; i++ {
		ref.Vertex(i).Add(math32.Vector3FromArray(output, i)).ToArray(vtx, i)
	}
}
