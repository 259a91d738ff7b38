// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package session owns all of the state of one interactive morphing
// session: the parameters, the reference and display geometry, and the
// asset readiness. Control changes go through a [Session], which runs
// the model for the latest parameters and applies the result.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"cogentcore.org/morph"
	"cogentcore.org/morph/assets"
	"cogentcore.org/morph/deform"
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/infer"
	"cogentcore.org/morph/labels"
	"cogentcore.org/morph/metrics"
	"cogentcore.org/morph/params"
	"github.com/google/uuid"
)

var (
	// ErrNotReady is returned by controls used before the assets are ready.
	ErrNotReady = errors.New("session: not ready")

	// ErrStarted is returned by a second call to [Session.Start].
	ErrStarted = errors.New("session: already started")

	// ErrUnknownSkin is returned by [Session.SetSkin] for a skin that
	// has not been loaded.
	ErrUnknownSkin = errors.New("session: unknown skin")
)

// Options configure a [Session].
type Options struct {

	// Workers is the parallelism of applying the output to the geometry.
	Workers int

	// Timeout bounds each prediction; 0 means no limit.
	Timeout time.Duration

	// Metrics records the session; may be nil.
	Metrics *metrics.Metrics
}

// Session is one interactive morphing session.
type Session struct {
	// ID identifies the session in logs and over the bridge.
	ID uuid.UUID

	// Params are the parameter values. Write them through the session
	// controls so that the model is run for changes.
	Params *params.Store

	opts     Options
	barrier  *assets.Barrier
	textures *assets.Future[[]*assets.Skin]
	log      *slog.Logger

	started sync.Once
	ready   chan struct{}

	// set by Start before ready is closed; read-only afterwards
	reference *geom.Reference
	display   *geom.Display
	engine    *infer.Engine
	sched     *infer.Scheduler
	applier   deform.Applier

	mu        sync.Mutex
	listeners []Listener
	skins     []*assets.Skin
	skin      int
	lastErr   error
}

// New returns a new session waiting on the given loads.
// Textures may be nil.
func New(barrier *assets.Barrier, textures *assets.Future[[]*assets.Skin], opts Options) *Session {
	id := uuid.New()
	return &Session{
		ID:       id,
		Params:   params.New(),
		opts:     opts,
		barrier:  barrier,
		textures: textures,
		log:      slog.With("session", id.String()),
		ready:    make(chan struct{}),
		skin:     -1,
		applier:  deform.Applier{Workers: opts.Workers},
	}
}

// FromLoads returns a new session for the given asset loads.
func FromLoads(loads *assets.Loads, opts Options) *Session {
	return New(loads.Barrier, loads.Textures, opts)
}

// AddListener adds a listener for the session outputs.
func (s *Session) AddListener(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Session) each(fun func(l Listener)) {
	s.mu.Lock()
	ls := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, l := range ls {
		fun(l)
	}
}

// report logs and records a per-request error and sends it to listeners.
func (s *Session) report(err error) {
	s.log.Warn("session: request failed", "err", err)
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.each(func(l Listener) { l.Error(err) })
}

// Start waits for all required assets to load, then initializes the
// parameters, signals Ready to the listeners, and runs the model once
// for the neutral parameters. A load failure is returned, and sent to
// the listeners, and the session never becomes ready. The inference
// worker runs until ctx is done or [Session.Close] is called.
func (s *Session) Start(ctx context.Context) error {
	err := ErrStarted
	s.started.Do(func() {
		err = s.start(ctx)
		if err != nil {
			s.log.Error("session: initialization failed", "err", err)
			s.each(func(l Listener) { l.Error(err) })
		}
	})
	return err
}

func (s *Session) start(ctx context.Context) error {
	r, err := s.barrier.Wait(ctx)
	if err != nil {
		return err
	}
	if w, n := r.Model.InputWidth(), r.Schema.Len(); w != n {
		return fmt.Errorf("session: schema labels do not match the model: %w",
			&morph.ShapeError{What: "model input", Want: n, Got: w})
	}
	if w, n := r.Model.OutputWidth(), 3*r.Reference.NumVertex(); w != n {
		return fmt.Errorf("session: geometry does not match the model: %w",
			&morph.ShapeError{What: "model output", Want: n, Got: w})
	}
	if s.reference, err = geom.NewReference(r.Reference); err != nil {
		return err
	}
	if s.display, err = geom.NewDisplay(r.Display); err != nil {
		return err
	}
	if err := s.Params.Initialize(r.Schema); err != nil {
		return err
	}
	s.display.OnChange(func(ev geom.ChangeEvent) {
		s.each(func(l Listener) { l.GeometryChanged(ev) })
	})
	s.engine = infer.NewEngine(r.Model)
	s.engine.Timeout = s.opts.Timeout
	s.engine.Metrics = s.opts.Metrics
	s.sched = infer.NewScheduler(s.run)
	s.sched.Metrics = s.opts.Metrics
	if err := s.sched.Start(ctx); err != nil {
		return err
	}
	if s.textures != nil {
		go s.waitTextures(ctx)
	}
	close(s.ready)
	s.log.Info("session: ready", "labels", r.Schema.Len(), "vertices", s.reference.NumVertex())
	s.each(func(l Listener) { l.Ready(r.Schema) })
	s.sched.Request()
	return nil
}

// run is the inference job: it reads the newest parameters, runs the
// model on them and applies the result to the display.
func (s *Session) run(ctx context.Context) {
	snap := s.Params.Snapshot()
	out, err := s.engine.Predict(ctx, snap.Values)
	if err != nil {
		if ctx.Err() == nil {
			s.report(err)
		}
		return
	}
	applied, err := s.applier.ApplyTo(s.display, snap.Version, out, s.reference)
	if err != nil {
		s.report(err)
		return
	}
	s.opts.Metrics.ObserveApply(applied)
	if !applied {
		s.log.Debug("session: discarded stale result", "version", snap.Version)
	}
}

func (s *Session) waitTextures(ctx context.Context) {
	skins, err := s.textures.Wait(ctx)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.skins = skins
	if s.skin < 0 && len(skins) > 0 {
		s.skin = 0
	}
	s.mu.Unlock()
}

// Ready returns a channel that is closed once the session is ready.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// IsReady returns whether the session is ready.
func (s *Session) IsReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Set sets the value of the given label, and runs the model for it.
// Values outside [0, 1] are rejected.
func (s *Session) Set(label string, value float64) error {
	return s.control(func() error { return s.Params.Set(label, value) })
}

// SetMap sets several values at once, and runs the model once for them.
func (s *Session) SetMap(vals map[string]float64) error {
	return s.control(func() error { return s.Params.SetMap(vals) })
}

// Reset sets every value back to neutral, and runs the model.
func (s *Session) Reset() error {
	return s.control(s.Params.Reset)
}

// Randomize draws every value at random, and runs the model.
func (s *Session) Randomize() error {
	return s.control(s.Params.Randomize)
}

func (s *Session) control(fun func() error) error {
	if !s.IsReady() {
		return ErrNotReady
	}
	if err := fun(); err != nil {
		return err
	}
	s.sched.Request()
	return nil
}

// Values returns the current model input vector.
func (s *Session) Values() []float32 {
	return s.Params.Values()
}

// Schema returns the label schema, or nil before ready.
func (s *Session) Schema() *labels.Schema {
	return s.Params.Schema()
}

// Display returns the display geometry, or nil before ready.
func (s *Session) Display() *geom.Display {
	if !s.IsReady() {
		return nil
	}
	return s.display
}

// Reference returns the reference geometry, or nil before ready.
func (s *Session) Reference() *geom.Reference {
	if !s.IsReady() {
		return nil
	}
	return s.reference
}

// LastError returns the most recent per-request error, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Flush waits until all requested model runs have been applied.
func (s *Session) Flush(ctx context.Context) error {
	if !s.IsReady() {
		return ErrNotReady
	}
	return s.sched.Flush(ctx)
}

// Close stops the inference worker.
func (s *Session) Close() {
	if s.IsReady() {
		s.sched.Stop()
	}
}

// Skins returns the names of the loaded skins.
func (s *Session) Skins() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.skins))
	for i, sk := range s.skins {
		names[i] = sk.Name
	}
	return names
}

// Skin returns the current skin, or nil if none is loaded.
func (s *Session) Skin() *assets.Skin {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.skin < 0 {
		return nil
	}
	return s.skins[s.skin]
}

// SetSkin selects the skin with the given name.
func (s *Session) SetSkin(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sk := range s.skins {
		if sk.Name == name {
			s.skin = i
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownSkin, name)
}
