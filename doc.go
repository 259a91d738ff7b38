// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package morph drives a parametric 3D body model: a set of named slider
values in [0, 1] is fed to a trained regression model whose output is a
per-vertex displacement field, which is added to an immutable reference
mesh to produce the mesh that is displayed.

The pipeline is split across packages:

  - [cogentcore.org/morph/labels] parses the ordered label schema.
  - [cogentcore.org/morph/params] holds the current slider values.
  - [cogentcore.org/morph/assets] loads the model, geometry, labels and
    textures and gates interactivity behind a readiness barrier.
  - [cogentcore.org/morph/infer] serializes model invocations and
    coalesces control changes into latest-wins requests.
  - [cogentcore.org/morph/deform] applies model output onto the mesh.
  - [cogentcore.org/morph/session] owns all of the above for one session.

This package defines the error kinds shared by those packages.
*/
package morph
