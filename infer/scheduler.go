// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package infer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"cogentcore.org/morph/metrics"
)

// Job is run by the [Scheduler] for each batch of coalesced requests.
// It reads whatever state it needs when it is called, so a job that starts
// after several requests sees the effect of all of them.
type Job func(ctx context.Context)

// Scheduler runs a [Job] on a single worker goroutine in response to
// requests. It holds a single-slot pending flag: a request made while the
// job is running is remembered, and any further requests before the job
// runs again are merged into it. Requests never block.
type Scheduler struct {
	job Job

	// Metrics records requests; may be nil.
	Metrics *metrics.Metrics

	mu      sync.Mutex
	cond    *sync.Cond
	pending bool
	running bool
	closed  bool
	started bool

	// idle is closed whenever nothing is pending or running.
	idle       chan struct{}
	idleClosed bool

	requests  atomic.Uint64
	coalesced atomic.Uint64
	runs      atomic.Uint64

	wg sync.WaitGroup
}

// NewScheduler returns a new scheduler for the given job.
// Call [Scheduler.Start] to begin processing requests.
func NewScheduler(job Job) *Scheduler {
	s := &Scheduler{job: job, idle: make(chan struct{}), idleClosed: true}
	close(s.idle)
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Start starts the worker goroutine, which runs until ctx is done
// or [Scheduler.Stop] is called. Pending requests made before Start
// are run once it starts.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("infer: scheduler already started")
	}
	if s.closed {
		return errors.New("infer: scheduler stopped")
	}
	s.started = true
	ctx, cancel := context.WithCancel(ctx)
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.loop(ctx)
	}()
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		s.close()
	}()
	return nil
}

// Request asks for the job to be run. If a run is already pending,
// the request is merged into it. It never blocks.
func (s *Scheduler) Request() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	merged := s.pending
	s.pending = true
	if s.idleClosed {
		s.idle = make(chan struct{})
		s.idleClosed = false
	}
	s.cond.Signal()
	s.mu.Unlock()
	s.requests.Add(1)
	if merged {
		s.coalesced.Add(1)
	}
	s.Metrics.ObserveRequest(merged)
}

// Flush waits until no request is pending and the job is not running.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop stops the worker after any running job returns, and waits for it.
// Pending requests are dropped.
func (s *Scheduler) Stop() {
	s.close()
	s.wg.Wait()
}

// Stats returns the number of requests, how many of them were merged
// into an already pending request, and the number of job runs.
func (s *Scheduler) Stats() (requests, coalesced, runs uint64) {
	return s.requests.Load(), s.coalesced.Load(), s.runs.Load()
}

func (s *Scheduler) close() {
	s.mu.Lock()
	s.closed = true
	s.pending = false
	s.setIdle()
	s.cond.Broadcast()
	s.mu.Unlock()
}

// setIdle must be called with mu held.
func (s *Scheduler) setIdle() {
	if !s.idleClosed && !s.pending && !s.running {
		close(s.idle)
		s.idleClosed = true
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		s.mu.Lock()
		for !s.pending && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.running = true
		s.mu.Unlock()

		s.runs.Add(1)
		s.job(ctx)

		s.mu.Lock()
		s.running = false
		s.setIdle()
		s.mu.Unlock()
	}
}
