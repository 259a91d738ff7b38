// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/labels"
)

// Listener receives the outputs of a [Session] for presentation.
// Methods may be called from any goroutine.
type Listener interface {

	// Ready is called exactly once, when all required assets have
	// loaded, with the label schema used to populate the controls.
	Ready(schema *labels.Schema)

	// GeometryChanged is called after the display vertices change.
	GeometryChanged(ev geom.ChangeEvent)

	// Error is called for load failures and for failed inference runs.
	Error(err error)
}

// Funcs adapts functions to the [Listener] interface;
// nil functions are skipped.
type Funcs struct {
	OnReady    func(schema *labels.Schema)
	OnGeometry func(ev geom.ChangeEvent)
	OnError    func(err error)
}

func (f *Funcs) Ready(schema *labels.Schema) {
	if f.OnReady != nil {
		f.OnReady(schema)
	}
}

func (f *Funcs) GeometryChanged(ev geom.ChangeEvent) {
	if f.OnGeometry != nil {
		f.OnGeometry(ev)
	}
}

func (f *Funcs) Error(err error) {
	if f.OnError != nil {
		f.OnError(err)
	}
}
