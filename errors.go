// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package morph

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetLoad is the kind of all asset loading failures.
	// It is fatal to session initialization.
	ErrAssetLoad = errors.New("morph: asset load failure")

	// ErrShapeMismatch is the kind of all vector length disagreements
	// between parameters, model and geometry. It is fatal to one request only.
	ErrShapeMismatch = errors.New("morph: shape mismatch")

	// ErrInference is the kind of failures inside the model computation,
	// including non-finite output values.
	ErrInference = errors.New("morph: inference failure")

	// ErrOutOfRange is returned when a parameter write is outside [0, 1].
	ErrOutOfRange = errors.New("morph: parameter out of range")
)

// ShapeError reports a vector of the wrong length.
// It matches [ErrShapeMismatch] with [errors.Is].
type ShapeError struct {
	// What names the vector that was checked, e.g. "model input".
	What string

	// Want is the required length.
	Want int

	// Got is the actual length.
	Got int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("morph: shape mismatch: %s has length %d, want %d", e.What, e.Got, e.Want)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

// CheckShape returns a [*ShapeError] if got != want.
func CheckShape(what string, want, got int) error {
	if want == got {
		return nil
	}
	return &ShapeError{What: what, Want: want, Got: got}
}

// AssetError reports a failed asset load for a named readiness slot.
// It matches [ErrAssetLoad] with [errors.Is], and also the underlying cause.
type AssetError struct {
	// Slot is the readiness slot that failed, e.g. "geometry.reference".
	Slot string

	// URI is the location that was loaded.
	URI string

	Err error
}

func (e *AssetError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("morph: loading %s: %v", e.Slot, e.Err)
	}
	return fmt.Sprintf("morph: loading %s from %q: %v", e.Slot, e.URI, e.Err)
}

func (e *AssetError) Unwrap() []error {
	return []error{ErrAssetLoad, e.Err}
}
