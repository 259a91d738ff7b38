// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cogentcore.org/morph/config"
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/params"
	"cogentcore.org/morph/session"
)

// Apply applies the parameter file to a new session for the config and
// writes the deformed mesh as OBJ to the output file, or to w if output
// is empty.
func Apply(ctx context.Context, c *config.Config, paramsFile, output string, w io.Writer) error {
	s, err := Open(ctx, c, nil)
	if err != nil {
		return err
	}
	defer s.Close()
	return applyFile(ctx, s, paramsFile, output, w)
}

func applyFile(ctx context.Context, s *session.Session, paramsFile, output string, w io.Writer) error {
	vals, err := params.ReadFile(paramsFile)
	if err != nil {
		return err
	}
	if err := s.Params.Reset(); err != nil {
		return err
	}
	if err := s.SetMap(vals); err != nil {
		return err
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	if d := s.Display(); d.Version() != s.Params.Version() {
		if err := s.LastError(); err != nil {
			return err
		}
		return fmt.Errorf("parameters %s were not applied", paramsFile)
	}
	ms := s.Display().Mesh()
	if output == "" {
		return geom.WriteOBJ(w, ms)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := geom.WriteOBJ(f, ms); err != nil {
		f.Close()
		return err
	}
	slog.Info("wrote mesh", "file", output, "vertices", ms.NumVertex(), "params", len(vals))
	return f.Close()
}
