// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	l, err := Parse("macrodetails/age-old")
	require.NoError(t, err)
	assert.Equal(t, "macrodetails", l.Group())
	assert.Equal(t, "age-old", l.Name())
	assert.Equal(t, "macrodetails/age-old", l.String())
	assert.True(t, l.IsValid())

	l = MustParse("armslegs/r-foot/scale-depth")
	assert.Equal(t, "armslegs", l.Group())
	assert.Equal(t, "r-foot/scale-depth", l.Name())

	for _, bad := range []string{"", "nogroup", "/name", "group/", " a/b"} {
		_, err := Parse(bad)
		assert.Error(t, err, bad)
	}
	assert.False(t, Label{}.IsValid())
}

func TestSchema(t *testing.T) {
	sc, err := NewSchema([]string{
		"macrodetails/age-old",
		"torso/waist-up",
		"macrodetails/age-young",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sc.Len())
	assert.Equal(t, []string{"macrodetails/age-old", "torso/waist-up", "macrodetails/age-young"}, sc.Strings())

	i, ok := sc.Index("macrodetails/age-young")
	assert.True(t, ok)
	assert.Equal(t, 2, i)
	_, ok = sc.Index("nope/nope")
	assert.False(t, ok)

	gs := sc.Groups()
	require.Len(t, gs, 2)
	assert.Equal(t, "macrodetails", gs[0].Name)
	assert.True(t, gs[0].Open)
	assert.Len(t, gs[0].Labels, 2)
	assert.Equal(t, "torso", gs[1].Name)
	assert.False(t, gs[1].Open)

	ls := sc.Labels()
	ls[0] = MustParse("x/y")
	assert.Equal(t, "macrodetails/age-old", sc.Label(0).String())
}

func TestSchemaErrors(t *testing.T) {
	_, err := NewSchema(nil)
	assert.Error(t, err)
	_, err = NewSchema([]string{"a/b", "a/b"})
	assert.ErrorContains(t, err, "duplicates")
	_, err = NewSchema([]string{"a/b", "c"})
	assert.Error(t, err)
	var nilSchema *Schema
	assert.Equal(t, 0, nilSchema.Len())
}

func TestRead(t *testing.T) {
	sc, err := ReadBytes([]byte(`["macrodetails/age-old", "macrodetails/age-young"]`), JSON)
	require.NoError(t, err)
	assert.Equal(t, 2, sc.Len())

	sc, err = ReadBytes([]byte("- macrodetails/gender\n- head/head-round\n"), YAML)
	require.NoError(t, err)
	assert.Equal(t, []string{"macrodetails/gender", "head/head-round"}, sc.Strings())

	_, err = ReadBytes([]byte(`{"not": "a list"}`), JSON)
	assert.Error(t, err)

	assert.Equal(t, YAML, FormatFor("data/labels.YML"))
	assert.Equal(t, JSON, FormatFor("data/labels.json"))
	assert.Equal(t, JSON, FormatFor("labels"))
}
