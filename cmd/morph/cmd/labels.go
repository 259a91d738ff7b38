// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"

	"cogentcore.org/morph/assets"
	"cogentcore.org/morph/config"
	"gopkg.in/yaml.v3"
)

// Labels prints the label schema of the config to w, grouped, or as
// a YAML list if asYAML is set.
func Labels(ctx context.Context, c *config.Config, w io.Writer, asYAML bool) error {
	rt, err := Router(ctx, c)
	if err != nil {
		return err
	}
	sc, err := assets.NewLoader(rt, nil).LoadLabels(ctx, c.Manifest().Labels)
	if err != nil {
		return err
	}
	if asYAML {
		return yaml.NewEncoder(w).Encode(sc.Strings())
	}
	for _, g := range sc.Groups() {
		open := ""
		if g.Open {
			open = " (open)"
		}
		fmt.Fprintf(w, "%s%s\n", g.Name, open)
		for _, l := range g.Labels {
			fmt.Fprintf(w, "  %s\n", l.Name())
		}
	}
	return nil
}
