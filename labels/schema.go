// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package labels

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"cogentcore.org/morph/base/ordmap"
	"gopkg.in/yaml.v3"
)

// OpenPrefix is the group name prefix of groups that a presentation
// layer shows expanded by default.
const OpenPrefix = "macro"

// Group is a named set of labels sharing the same prefix, in schema order.
type Group struct {
	// Name is the shared prefix.
	Name string

	// Labels are the members of the group, in schema order.
	Labels []Label

	// Open is whether the group is shown expanded by default.
	Open bool
}

// Schema is the ordered list of model input labels. It is immutable
// after construction and safe for concurrent use.
type Schema struct {
	labels *ordmap.Map[string, Label]
	groups []Group
}

// NewSchema returns a schema for the given raw labels, in order.
// Every label must parse and be unique. An empty schema is an error,
// since a model needs at least one input.
func NewSchema(raw []string) (*Schema, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("labels: schema is empty")
	}
	sc := &Schema{labels: ordmap.New[string, Label](len(raw))}
	groups := ordmap.New[string, *Group](0)
	for i, r := range raw {
		l, err := Parse(r)
		if err != nil {
			return nil, err
		}
		if err := sc.labels.AddNew(r, l); err != nil {
			return nil, fmt.Errorf("labels: label %q at index %d duplicates an earlier label: %w", r, i, err)
		}
		g, has := groups.ValueByKey(l.Group())
		if !has {
			g = &Group{Name: l.Group(), Open: strings.HasPrefix(l.Group(), OpenPrefix)}
			groups.Add(g.Name, g)
		}
		g.Labels = append(g.Labels, l)
	}
	for _, g := range groups.Values() {
		sc.groups = append(sc.groups, *g)
	}
	return sc, nil
}

// Len returns the number of labels.
func (sc *Schema) Len() int {
	if sc == nil {
		return 0
	}
	return sc.labels.Len()
}

// Label returns the label at the given index.
func (sc *Schema) Label(i int) Label {
	return sc.labels.ValueByIndex(i)
}

// Labels returns the labels in order.
func (sc *Schema) Labels() []Label {
	return sc.labels.Values()
}

// Strings returns the raw labels in order.
func (sc *Schema) Strings() []string {
	return sc.labels.Keys()
}

// Index returns the index of the given raw label, and false if it is not in the schema.
func (sc *Schema) Index(raw string) (int, bool) {
	return sc.labels.IndexByKey(raw)
}

// Groups returns the groups in order of first appearance.
// The returned slice must not be modified.
func (sc *Schema) Groups() []Group {
	return sc.groups
}

// Format is the encoding of a schema document.
type Format int

const (
	// JSON is a JSON array of strings.
	JSON Format = iota

	// YAML is a YAML sequence of strings.
	YAML
)

// FormatFor returns the schema format implied by the given file name,
// defaulting to [JSON].
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Read reads a schema document of the given format.
func Read(r io.Reader, f Format) (*Schema, error) {
	var raw []string
	switch f {
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("labels: decoding YAML schema: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, fmt.Errorf("labels: decoding JSON schema: %w", err)
		}
	}
	return NewSchema(raw)
}

// ReadBytes reads a schema document of the given format from bytes.
func ReadBytes(b []byte, f Format) (*Schema, error) {
	return Read(bytes.NewReader(b), f)
}
