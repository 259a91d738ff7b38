// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"cogentcore.org/morph/config"
	"cogentcore.org/morph/logx"
	"github.com/fsnotify/fsnotify"
)

// Watch applies the parameter file, then re-applies it every time it
// changes, writing the mesh to output each time, until ctx is done.
// If applied is non-nil, it receives the number of applications so far
// after each one.
func Watch(ctx context.Context, c *config.Config, paramsFile, output string, applied chan<- int) error {
	if output == "" {
		output = "morph.obj"
	}
	s, err := Open(ctx, c, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	// watch the directory, since editors often replace the file
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(paramsFile)); err != nil {
		return err
	}
	target := filepath.Clean(paramsFile)

	n := 0
	apply := func() {
		if err := applyFile(ctx, s, paramsFile, output, nil); err != nil {
			logx.PrintlnWarn("morph: ", err)
			return
		}
		n++
		if applied != nil {
			select {
			case applied <- n:
			case <-ctx.Done():
			}
		}
	}
	apply()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			slog.Debug("parameter file changed", "file", ev.Name, "op", ev.Op)
			apply()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch", "err", err)
		}
	}
}
