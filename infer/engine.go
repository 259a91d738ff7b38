// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package infer runs the regression model for parameter changes.
// The [Engine] guarantees at most one model invocation in flight, and the
// [Scheduler] coalesces control changes into latest-wins requests that
// read the parameters only when they are actually run.
package infer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cogentcore.org/morph"
	"cogentcore.org/morph/math32"
	"cogentcore.org/morph/metrics"
	"cogentcore.org/morph/model"
)

// Engine wraps a [model.Model], serializing calls so that at most one
// prediction is in flight at any time, and checking input and output shapes.
type Engine struct {
	model model.Model
	sem   chan struct{}

	// Timeout bounds each prediction; 0 means no limit.
	Timeout time.Duration

	// Metrics records predictions; may be nil.
	Metrics *metrics.Metrics
}

// NewEngine returns a new engine for the given model.
func NewEngine(m model.Model) *Engine {
	return &Engine{model: m, sem: make(chan struct{}, 1)}
}

// Model returns the wrapped model.
func (en *Engine) Model() model.Model {
	return en.model
}

// Predict runs the model on the given input, waiting for any prediction
// already in flight to finish first. The input length must equal the
// model input width, or an error matching [morph.ErrShapeMismatch] is
// returned without invoking the model. Failures inside the model, and
// non-finite output values, match [morph.ErrInference].
func (en *Engine) Predict(ctx context.Context, input []float32) ([]float32, error) {
	if err := morph.CheckShape("model input", en.model.InputWidth(), len(input)); err != nil {
		en.Metrics.ObservePredict(0, err)
		return nil, err
	}
	select {
	case en.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-en.sem }()

	if en.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, en.Timeout)
		defer cancel()
	}
	st := time.Now()
	out, err := en.predict(ctx, input)
	d := time.Since(st)
	en.Metrics.ObservePredict(d, err)
	if err != nil {
		return nil, err
	}
	slog.Debug("infer: prediction", "inputs", len(input), "outputs", len(out), "duration", d)
	return out, nil
}

func (en *Engine) predict(ctx context.Context, input []float32) ([]float32, error) {
	out, err := en.model.Predict(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, morph.ErrShapeMismatch), errors.Is(err, morph.ErrInference),
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", morph.ErrInference, err)
	}
	if err := morph.CheckShape("model output", en.model.OutputWidth(), len(out)); err != nil {
		return nil, err
	}
	if i := math32.AllFinite(out); i >= 0 {
		return nil, fmt.Errorf("%w: output value %d is %v", morph.ErrInference, i, out[i])
	}
	return out, nil
}
