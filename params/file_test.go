// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	want := map[string]float64{"macrodetails/age-old": 0.8, "torso/chest": 0.25}
	docs := map[string]string{
		"p.toml": "\"macrodetails/age-old\" = 0.8\n\"torso/chest\" = 0.25\n",
		"p.yaml": "macrodetails/age-old: 0.8\ntorso/chest: 0.25\n",
		"p.json": `{"macrodetails/age-old": 0.8, "torso/chest": 0.25}`,
	}
	for name, doc := range docs {
		vals, err := Decode([]byte(doc), name)
		require.NoError(t, err, name)
		assert.Equal(t, want, vals, name)

		b, err := Encode(vals, name)
		require.NoError(t, err, name)
		back, err := Decode(b, name)
		require.NoError(t, err, name)
		assert.Equal(t, want, back, name)
	}
	_, err := Decode([]byte("{"), "p.json")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "body.yml")
	require.NoError(t, os.WriteFile(fn, []byte("a/b: 1\n"), 0o644))
	vals, err := ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a/b": 1}, vals)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
