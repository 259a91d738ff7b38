// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package labels provides the ordered label schema that names every
// model input. A label has the form group/name, e.g. macrodetails/age-old;
// the position of a label in the [Schema] is its index in every input
// vector passed to the model.
package labels

import (
	"fmt"
	"strings"
)

// Label is a parsed parameter name of the form group/name.
// The zero value is not a valid label; use [Parse].
type Label struct {
	raw   string
	slash int
}

// Parse parses the given raw label string. The group is the substring
// before the first '/', and both the group and the remainder must be non-empty.
func Parse(raw string) (Label, error) {
	if strings.TrimSpace(raw) != raw {
		return Label{}, fmt.Errorf("labels: label %q has surrounding whitespace", raw)
	}
	i := strings.IndexByte(raw, '/')
	if i <= 0 || i == len(raw)-1 {
		return Label{}, fmt.Errorf("labels: label %q is not of the form group/name", raw)
	}
	return Label{raw: raw, slash: i}, nil
}

// MustParse is like [Parse] but panics on an invalid label.
// It is intended for tests and fixed tables.
func MustParse(raw string) Label {
	l, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the raw label.
func (l Label) String() string {
	return l.raw
}

// Group returns the label group (the part before the first '/').
func (l Label) Group() string {
	return l.raw[:l.slash]
}

// Name returns the part after the first '/'.
func (l Label) Name() string {
	return l.raw[l.slash+1:]
}

// IsValid returns whether the label was produced by [Parse].
func (l Label) IsValid() bool {
	return l.raw != ""
}
