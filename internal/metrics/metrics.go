// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus collectors for category mutations.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"categoryd/internal/category"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "categoryd_mutations_total",
		Help: "Category mutations by operation and outcome",
	}, []string{"op", "outcome"})

	mutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "categoryd_mutation_duration_seconds",
		Help:    "Time to commit a category mutation",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"op"})

	cascadeSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "categoryd_cascade_descendants",
		Help:    "Descendants whose depth was rewritten by one re-parent",
		Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
	})

	corruptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "categoryd_corrupt_hierarchy_total",
		Help: "Mutations aborted because stored data violated a tree invariant",
	})
)

// Observer records mutation outcomes. The zero value is ready to use.
type Observer struct{}

// Committed implements category.Observer.
func (Observer) Committed(_ context.Context, ev category.Event) {
	mutationsTotal.WithLabelValues(ev.Op, "ok").Inc()
	mutationDuration.WithLabelValues(ev.Op).Observe(ev.Duration.Seconds())
	if ev.Cascaded > 0 {
		cascadeSize.Observe(float64(ev.Cascaded))
	}
}

// Rejected implements category.Observer.
func (Observer) Rejected(_ context.Context, op string, err error) {
	kind := category.KindOf(err)
	if kind == "" {
		kind = category.KindPersistence
	}
	mutationsTotal.WithLabelValues(op, string(kind)).Inc()
	if errors.Is(err, category.ErrCorruptHierarchy) {
		corruptTotal.Inc()
	}
}
