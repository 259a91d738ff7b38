// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cmd implements the morph commands.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cogentcore.org/morph/assets"
	"cogentcore.org/morph/base/randx"
	"cogentcore.org/morph/config"
	"cogentcore.org/morph/logx"
	"cogentcore.org/morph/metrics"
	"cogentcore.org/morph/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type flags struct {
	config      string
	vv, v, q    bool
	output      string
	labelsYAML  bool
	addr string
}

// NewRoot returns the root command with all subcommands.
func NewRoot() *cobra.Command {
	f := &flags{}
	var cfg *config.Config
	root := &cobra.Command{
		Use:          "morph",
		Short:        "Apply parameter values to a learned body shape model",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logx.SetUserLevel(logx.LevelFromFlags(f.vv, f.v, f.q))
			logx.SetOutput(cmd.ErrOrStderr())
			logx.SetDefault()
			c, err := config.Open(f.config)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", os.Getenv("MORPH_CONFIG"), "TOML config file")
	root.PersistentFlags().BoolVar(&f.vv, "vv", false, "debug output")
	root.PersistentFlags().BoolVarP(&f.v, "verbose", "v", false, "informational output")
	root.PersistentFlags().BoolVarP(&f.q, "quiet", "q", false, "only show errors")

	labelsCmd := &cobra.Command{
		Use:   "labels",
		Short: "Print the label schema, grouped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Labels(cmd.Context(), cfg, cmd.OutOrStdout(), f.labelsYAML)
		},
	}
	labelsCmd.Flags().BoolVar(&f.labelsYAML, "yaml", false, "print the schema as YAML")

	applyCmd := &cobra.Command{
		Use:   "apply <params-file>",
		Short: "Apply a parameter file and write the deformed mesh as OBJ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Apply(cmd.Context(), cfg, args[0], f.output, cmd.OutOrStdout())
		},
	}
	applyCmd.Flags().StringVarP(&f.output, "output", "o", "", "output OBJ file (default stdout)")

	watchCmd := &cobra.Command{
		Use:   "watch <params-file>",
		Short: "Re-apply a parameter file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Watch(cmd.Context(), cfg, args[0], f.output, nil)
		},
	}
	watchCmd.Flags().StringVarP(&f.output, "output", "o", "morph.obj", "output OBJ file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a session over WebSocket, with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.addr != "" {
				cfg.Server.Addr = f.addr
			}
			return Serve(cmd.Context(), cfg, nil)
		},
	}
	serveCmd.Flags().StringVar(&f.addr, "addr", "", "listen address (overrides config)")

	root.AddCommand(labelsCmd, applyCmd, watchCmd, serveCmd)
	return root
}

// Execute runs the root command, canceling on interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRoot().ExecuteContext(ctx)
	stop()
	if err != nil {
		logx.PrintlnError(err)
		os.Exit(1)
	}
}

// Router returns the asset source for the config,
// including S3 if any asset is stored there.
func Router(ctx context.Context, c *config.Config) (*assets.Router, error) {
	rt := assets.NewRouter(c.Assets.Dir)
	if c.UsesS3() {
		src, err := assets.NewS3Source(ctx, c.S3Config())
		if err != nil {
			return nil, err
		}
		rt.Handle("s3", src)
	}
	return rt, nil
}

// Open loads all assets for the config and returns the started session.
// reg may be nil.
func Open(ctx context.Context, c *config.Config, reg prometheus.Registerer) (*session.Session, error) {
	rt, err := Router(ctx, c)
	if err != nil {
		return nil, err
	}
	var mx *metrics.Metrics
	if reg != nil {
		mx = metrics.New(reg)
	}
	loads, err := assets.NewLoader(rt, mx).Start(ctx, c.Manifest())
	if err != nil {
		return nil, err
	}
	s := session.FromLoads(loads, session.Options{
		Workers: c.Inference.Workers,
		Timeout: time.Duration(c.Inference.Timeout),
		Metrics: mx,
	})
	s.Params.Random.Mean = c.Random.Mean
	s.Params.Random.StdDev = c.Random.StdDev
	if c.Random.Seed != 0 {
		s.Params.Rand = randx.NewSysRand(c.Random.Seed)
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
