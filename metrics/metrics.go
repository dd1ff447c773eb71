/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package metrics provides Prometheus instrumentation for TransitStore.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	PutsTotal          *prometheus.CounterVec
	GetsTotal          *prometheus.CounterVec
	DocumentsSwept     prometheus.Counter
	IndexCreatesTotal  prometheus.Counter
	IndexDriftTotal    *prometheus.CounterVec
	RecordsRejected    *prometheus.CounterVec
}

// New creates and registers all collectors against the given registerer.
// Tests pass a fresh prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitstore_puts_total",
				Help: "Total number of document writes",
			},
			[]string{"entity_type", "status"},
		),
		GetsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitstore_gets_total",
				Help: "Total number of document reads",
			},
			[]string{"entity_type", "status"},
		),
		DocumentsSwept: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "transitstore_documents_swept_total",
				Help: "Total number of expired documents removed by the sweeper",
			},
		),
		IndexCreatesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "transitstore_index_creates_total",
				Help: "Total number of indexes created by the reconciler",
			},
		),
		IndexDriftTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitstore_index_drift_total",
				Help: "Total number of drift detections per index",
			},
			[]string{"index"},
		),
		RecordsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transitstore_records_rejected_total",
				Help: "Total number of records rejected by validation",
			},
			[]string{"entity_type", "reason"},
		),
	}
}
