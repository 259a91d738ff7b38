// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"context"
	"sync"
)

// Future is a value that becomes available once, in the future.
// It is resolved exactly once, with either a value or an error;
// later calls to [Future.Resolve] are ignored.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

// NewFuture returns a new unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Go runs fun in a new goroutine and returns a future for its result.
func Go[T any](ctx context.Context, fun func(ctx context.Context) (T, error)) *Future[T] {
	f := NewFuture[T]()
	go func() {
		f.Resolve(fun(ctx))
	}()
	return f
}

// Resolve sets the result of the future, returning false if
// it had already been resolved.
func (f *Future[T]) Resolve(val T, err error) bool {
	did := false
	f.once.Do(func() {
		f.val, f.err = val, err
		close(f.done)
		did = true
	})
	return did
}

// Done returns a channel that is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is resolved or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the result and true if the future has been resolved.
func (f *Future[T]) Result() (T, error, bool) {
	select {
	case <-f.done:
		return f.val, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}
