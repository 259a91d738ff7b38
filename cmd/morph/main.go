// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command morph loads a morphing model, reference geometry and label
// schema, and applies parameter values to produce deformed meshes.
package main

import "cogentcore.org/morph/cmd/morph/cmd"

func main() {
	cmd.Execute()
}
