// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

// Message types sent to clients.
const (
	TypeInit     = "init"
	TypeGeometry = "geometry"
	TypeError    = "error"
)

// Operations accepted from clients.
const (
	OpSet       = "set"
	OpReset     = "reset"
	OpRandomize = "randomize"
	OpSkin      = "skin"
)

// Group is one group of controls in an init message.
type Group struct {
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
	Open   bool     `json:"open"`
}

// Message is sent from the server to clients.
type Message struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`

	// init
	Labels []string  `json:"labels,omitempty"`
	Groups []Group   `json:"groups,omitempty"`
	Values []float32 `json:"values,omitempty"`
	Skins  []string  `json:"skins,omitempty"`

	// geometry
	Version  uint64    `json:"version,omitempty"`
	Vertices []float32 `json:"vertices,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// Request is sent from clients to the server. A request with a label
// and no op is a set.
type Request struct {
	Op    string   `json:"op,omitempty"`
	Label string   `json:"label,omitempty"`
	Value *float64 `json:"value,omitempty"`
	Name  string   `json:"name,omitempty"`
}
