// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"context"
	"errors"
	"sync"

	"cogentcore.org/morph"
	"cogentcore.org/morph/geom"
	"cogentcore.org/morph/labels"
	"cogentcore.org/morph/model"
	"golang.org/x/sync/errgroup"
)

// Readiness slot names, also used as the slot in [morph.AssetError]
// and as metrics labels.
const (
	SlotModel     = "model"
	SlotDisplay   = "geometry.display"
	SlotReference = "geometry.reference"
	SlotLabels    = "labels"
	SlotTextures  = "textures"
)

// Ready is everything the barrier waits for.
type Ready struct {
	Model model.Model

	// Display is the mutable copy of the geometry.
	Display *geom.Mesh

	// Reference is the copy of the geometry that is frozen as the
	// additive baseline. It is never the same object as Display.
	Reference *geom.Mesh

	Schema *labels.Schema
}

// Barrier combines the four required asset futures. It completes only
// when all of them have succeeded; if any one fails it never becomes
// ready and [Barrier.Wait] returns that failure. Each future is its own
// slot, so the two geometry copies are tracked separately even though
// they come from the same source.
type Barrier struct {
	Model     *Future[model.Model]
	Display   *Future[*geom.Mesh]
	Reference *Future[*geom.Mesh]
	Labels    *Future[*labels.Schema]

	once   sync.Once
	ready  chan struct{}
	done   chan struct{}
	result *Ready
	err    error
	fires  int
}

// NewBarrier returns a barrier over the given futures.
func NewBarrier(m *Future[model.Model], display, reference *Future[*geom.Mesh], lbls *Future[*labels.Schema]) *Barrier {
	return &Barrier{
		Model: m, Display: display, Reference: reference, Labels: lbls,
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start begins waiting on the futures in the background. It is safe to
// call more than once; only the first call has any effect.
// Canceling ctx before all futures resolve fails the barrier.
func (b *Barrier) Start(ctx context.Context) {
	b.once.Do(func() {
		go b.run(ctx)
	})
}

func (b *Barrier) run(ctx context.Context) {
	defer close(b.done)
	r := &Ready{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r.Model, err = b.Model.Wait(gctx)
		return slotError(SlotModel, err)
	})
	g.Go(func() error {
		var err error
		r.Display, err = b.Display.Wait(gctx)
		return slotError(SlotDisplay, err)
	})
	g.Go(func() error {
		var err error
		r.Reference, err = b.Reference.Wait(gctx)
		return slotError(SlotReference, err)
	})
	g.Go(func() error {
		var err error
		r.Schema, err = b.Labels.Wait(gctx)
		return slotError(SlotLabels, err)
	})
	if err := g.Wait(); err != nil {
		b.err = err
		return
	}
	if r.Display == r.Reference {
		b.err = slotError(SlotReference, errors.New("display and reference geometry must be distinct copies"))
		return
	}
	b.result = r
	b.fires++
	close(b.ready)
}

// slotError makes sure err is reported as an asset load failure for the slot.
func slotError(slot string, err error) error {
	if err == nil {
		return nil
	}
	var ae *morph.AssetError
	if errors.As(err, &ae) {
		return err
	}
	return &morph.AssetError{Slot: slot, Err: err}
}

// Ready returns a channel that is closed when all assets have loaded.
// It is never closed if any load fails.
func (b *Barrier) Ready() <-chan struct{} {
	return b.ready
}

// Done returns a channel that is closed once the barrier has either
// become ready or failed.
func (b *Barrier) Done() <-chan struct{} {
	return b.done
}

// Wait starts the barrier if needed and blocks until it is ready,
// has failed, or ctx is done. The returned error matches
// [morph.ErrAssetLoad] for load failures.
func (b *Barrier) Wait(ctx context.Context) (*Ready, error) {
	b.Start(ctx)
	select {
	case <-b.done:
		return b.result, b.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err returns the failure of the barrier, if it has failed.
func (b *Barrier) Err() error {
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}

// Fires returns the number of times the barrier has become ready,
// which is never more than 1.
func (b *Barrier) Fires() int {
	select {
	case <-b.done:
		return b.fires
	default:
		return 0
	}
}
