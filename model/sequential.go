// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"context"
	"fmt"

	"cogentcore.org/morph"
)

// Layer is one stage of a [Sequential] network.
type Layer interface {
	// Name is the layer name from the architecture.
	Name() string

	// OutputWidth returns the output width for the given input width,
	// or an error if the layer does not accept that input width.
	OutputWidth(in int) (int, error)

	// Forward computes the layer output.
	Forward(x []float32) []float32
}

// Dense is a fully connected layer: y = activation(x·W + b).
type Dense struct {
	LayerName string

	// In and Out are the input and output widths.
	In, Out int

	// Kernel is the In x Out weight matrix in row-major order,
	// as stored by Keras.
	Kernel []float32

	// Bias has Out values, or is nil for no bias.
	Bias []float32

	Activation Activation
}

func (d *Dense) Name() string { return d.LayerName }

func (d *Dense) OutputWidth(in int) (int, error) {
	if in != d.In {
		return 0, &morph.ShapeError{What: "dense layer " + d.LayerName + " input", Want: d.In, Got: in}
	}
	return d.Out, nil
}

func (d *Dense) Forward(x []float32) []float32 {
	y := make([]float32, d.Out)
	if d.Bias != nil {
		copy(y, d.Bias)
	}
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		row := d.Kernel[i*d.Out : (i+1)*d.Out]
		for j, w := range row {
			y[j] += xi * w
		}
	}
	d.Activation.Apply(y)
	return y
}

// validate checks the weight sizes.
func (d *Dense) validate() error {
	if d.In <= 0 || d.Out <= 0 {
		return fmt.Errorf("model: dense layer %s has invalid shape %dx%d", d.LayerName, d.In, d.Out)
	}
	if err := morph.CheckShape("dense layer "+d.LayerName+" kernel", d.In*d.Out, len(d.Kernel)); err != nil {
		return err
	}
	if d.Bias != nil {
		if err := morph.CheckShape("dense layer "+d.LayerName+" bias", d.Out, len(d.Bias)); err != nil {
			return err
		}
	}
	return d.Activation.Validate()
}

// ActivationLayer is a standalone activation layer.
type ActivationLayer struct {
	LayerName  string
	Activation Activation
}

func (a *ActivationLayer) Name() string                     { return a.LayerName }
func (a *ActivationLayer) OutputWidth(in int) (int, error) { return in, nil }

func (a *ActivationLayer) Forward(x []float32) []float32 {
	y := append([]float32(nil), x...)
	a.Activation.Apply(y)
	return y
}

// Sequential is a feed-forward stack of layers.
// It is read-only after construction and safe for concurrent use.
type Sequential struct {
	Name   string
	Layers []Layer
	in     int
	out    int
}

// NewSequential checks that the layers chain from the given input width
// and returns the network.
func NewSequential(name string, in int, layers ...Layer) (*Sequential, error) {
	if in <= 0 {
		return nil, fmt.Errorf("model: %s has invalid input width %d", name, in)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("model: %s has no layers", name)
	}
	w := in
	for _, l := range layers {
		if d, ok := l.(*Dense); ok {
			if err := d.validate(); err != nil {
				return nil, err
			}
		}
		nw, err := l.OutputWidth(w)
		if err != nil {
			return nil, err
		}
		w = nw
	}
	return &Sequential{Name: name, Layers: layers, in: in, out: w}, nil
}

func (sq *Sequential) InputWidth() int  { return sq.in }
func (sq *Sequential) OutputWidth() int { return sq.out }

// Predict runs the layers in order, checking for cancellation between layers.
func (sq *Sequential) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if err := morph.CheckShape("model input", sq.in, len(input)); err != nil {
		return nil, err
	}
	x := input
	for _, l := range sq.Layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x = l.Forward(x)
	}
	return x, nil
}
