// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"fmt"
	"io"
	"path"
	"strings"
)

// Read reads a mesh, choosing the format from the file name extension:
// .obj is Wavefront OBJ, and .json (or anything else) is three.js JSON.
func Read(r io.Reader, filename string) (*Mesh, error) {
	name := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	switch strings.ToLower(path.Ext(filename)) {
	case ".obj":
		return ReadOBJ(r, name)
	case ".json", ".js", "":
		return ReadThreeJSON(r, name)
	}
	return nil, fmt.Errorf("geom: unsupported mesh format %q", filename)
}
