// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	precompileLabel = "precompile"
	outcomeLabel    = "outcome"

	outcomeOK = "ok"
	// calls to addresses outside the block carry no identity
	unknownPrecompile = "unknown"
)

type metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Number of precompile calls by outcome",
			},
			[]string{precompileLabel, outcomeLabel},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Time spent dispatching a precompile call",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{precompileLabel},
		),
	}

	var errs *multierror.Error
	errs = multierror.Append(errs,
		registerer.Register(m.calls),
		registerer.Register(m.duration),
	)
	return m, errs.ErrorOrNil()
}

func (m *metrics) observe(precompile, outcome string, start time.Time) {
	m.calls.With(prometheus.Labels{
		precompileLabel: precompile,
		outcomeLabel:    outcome,
	}).Inc()
	m.duration.With(prometheus.Labels{
		precompileLabel: precompile,
	}).Observe(time.Since(start).Seconds())
}
