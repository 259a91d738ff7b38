// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Decode decodes a parameter document mapping labels to values. The
// format is chosen from the file name extension: .toml, .yaml / .yml,
// or JSON otherwise. In TOML, labels contain a slash and so must be
// quoted keys, e.g. "macrodetails/age-old" = 0.8.
func Decode(b []byte, filename string) (map[string]float64, error) {
	vals := map[string]float64{}
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(b)).Decode(&vals)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &vals)
	default:
		err = json.Unmarshal(b, &vals)
	}
	if err != nil {
		return nil, fmt.Errorf("params: decoding %s: %w", filename, err)
	}
	return vals, nil
}

// ReadFile reads a parameter document; see [Decode].
func ReadFile(filename string) (map[string]float64, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Decode(b, filename)
}

// Encode encodes values in the format chosen from the file name, as for [Decode].
func Encode(vals map[string]float64, filename string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return toml.Marshal(vals)
	case ".yaml", ".yml":
		return yaml.Marshal(vals)
	}
	return json.MarshalIndent(vals, "", "  ")
}
