// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"cogentcore.org/morph/math32"
)

// Activation is an element-wise activation function, named as in Keras.
type Activation string

const (
	Linear      Activation = "linear"
	ReLU        Activation = "relu"
	Tanh        Activation = "tanh"
	Sigmoid     Activation = "sigmoid"
	HardSigmoid Activation = "hard_sigmoid"
	ELU         Activation = "elu"
	SELU        Activation = "selu"
	Softplus    Activation = "softplus"
	Softsign    Activation = "softsign"
)

// selu constants from Klambauer et al. 2017
const (
	seluAlpha = 1.6732632423543772848170429916717
	seluScale = 1.0507009873554804934193349852946
)

// Validate returns an error for an unknown activation name.
// The empty name is the same as [Linear].
func (a Activation) Validate() error {
	switch a {
	case "", Linear, ReLU, Tanh, Sigmoid, HardSigmoid, ELU, SELU, Softplus, Softsign:
		return nil
	}
	return fmt.Errorf("model: unsupported activation %q", string(a))
}

// Apply applies the activation in place.
func (a Activation) Apply(x []float32) {
	switch a {
	case "", Linear:
	case ReLU:
		for i, v := range x {
			x[i] = math32.Max(v, 0)
		}
	case Tanh:
		for i, v := range x {
			x[i] = math32.Tanh(v)
		}
	case Sigmoid:
		for i, v := range x {
			x[i] = 1 / (1 + math32.Exp(-v))
		}
	case HardSigmoid:
		for i, v := range x {
			x[i] = math32.Min(math32.Max(0.2*v+0.5, 0), 1)
		}
	case ELU:
		for i, v := range x {
			if v < 0 {
				x[i] = math32.Exp(v) - 1
			}
		}
	case SELU:
		for i, v := range x {
			if v < 0 {
				x[i] = seluScale * seluAlpha * (math32.Exp(v) - 1)
			} else {
				x[i] = seluScale * v
			}
		}
	case Softplus:
		for i, v := range x {
			x[i] = math32.Log1p(math32.Exp(v))
		}
	case Softsign:
		for i, v := range x {
			x[i] = v / (1 + math32.Abs(v))
		}
	}
}
