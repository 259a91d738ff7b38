// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model provides the trained regression model that maps a
// parameter vector to a per-vertex offset vector, including a loader for
// Keras.js model bundles of sequential dense networks.
package model

import (
	"context"
)

// Model is a trained regression model with fixed input and output widths.
type Model interface {
	// InputWidth is the required length of the input vector.
	InputWidth() int

	// OutputWidth is the length of the output vector.
	OutputWidth() int

	// Predict runs one forward pass. Implementations may assume that the
	// input has length InputWidth; callers check this.
	Predict(ctx context.Context, input []float32) ([]float32, error)
}

// Func adapts a function to the [Model] interface, mainly for tests
// and for models computed outside of this package.
type Func struct {
	In, Out int
	Fun     func(ctx context.Context, input []float32) ([]float32, error)
}

func (f *Func) InputWidth() int  { return f.In }
func (f *Func) OutputWidth() int { return f.Out }

func (f *Func) Predict(ctx context.Context, input []float32) ([]float32, error) {
	return f.Fun(ctx, input)
}
