// Copyright (c) 2026, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics provides the Prometheus collectors for asset loading,
// inference and mesh updates. A nil [*Metrics] is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"time"

	"cogentcore.org/morph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace is the metric name prefix.
const Namespace = "morph"

// Result labels.
const (
	ResultOK       = "ok"
	ResultShape    = "shape_mismatch"
	ResultFailure  = "failure"
	ResultCanceled = "canceled"
)

// Metrics holds the collectors.
type Metrics struct {
	AssetLoads       *prometheus.CounterVec
	AssetLoadSeconds *prometheus.HistogramVec
	Predictions      *prometheus.CounterVec
	PredictSeconds   prometheus.Histogram
	Requests         prometheus.Counter
	Coalesced        prometheus.Counter
	Applied          prometheus.Counter
	Stale            prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AssetLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "asset_loads_total",
			Help:      "Asset loads by readiness slot and result.",
		}, []string{"slot", "result"}),
		AssetLoadSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "asset_load_seconds",
			Help:      "Asset load duration by readiness slot.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"slot"}),
		Predictions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "predictions_total",
			Help:      "Model invocations by result.",
		}, []string{"result"}),
		PredictSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "predict_seconds",
			Help:      "Model invocation duration.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		Requests: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "inference_requests_total",
			Help:      "Inference requests from control changes.",
		}),
		Coalesced: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "inference_requests_coalesced_total",
			Help:      "Requests merged into an already pending request.",
		}),
		Applied: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "mesh_updates_total",
			Help:      "Model outputs applied to the display mesh.",
		}),
		Stale: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "mesh_updates_stale_total",
			Help:      "Model outputs discarded because a newer one was already applied.",
		}),
	}
}

// Result classifies an error into a result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, morph.ErrShapeMismatch):
		return ResultShape
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	}
	return ResultFailure
}

// ObserveLoad records one asset load.
func (m *Metrics) ObserveLoad(slot string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.AssetLoads.WithLabelValues(slot, Result(err)).Inc()
	m.AssetLoadSeconds.WithLabelValues(slot).Observe(d.Seconds())
}

// ObservePredict records one model invocation.
func (m *Metrics) ObservePredict(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(Result(err)).Inc()
	m.PredictSeconds.Observe(d.Seconds())
}

// ObserveRequest records one inference request, and whether it was
// merged into a pending one.
func (m *Metrics) ObserveRequest(coalesced bool) {
	if m == nil {
		return
	}
	m.Requests.Inc()
	if coalesced {
		m.Coalesced.Inc()
	}
}

// ObserveApply records one mesh update attempt.
func (m *Metrics) ObserveApply(applied bool) {
	if m == nil {
		return
	}
	if applied {
		m.Applied.Inc()
	} else {
		m.Stale.Inc()
	}
}
