// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

// Package metrics defines Prometheus metrics for the recommendation service.
// All metrics are registered on the default registry via promauto and exposed
// at /metrics by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gradcompass"

// HTTP layer metrics.
var (
	// HTTPRequestsTotal counts HTTP requests by method, route and status class.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed, labeled by method, route and status.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "route"})
)

// Recommendation engine metrics.
var (
	// RecommendRequestsTotal counts recommendation requests by outcome
	// (ok, no_matches, validation_error, error).
	RecommendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "requests_total",
		Help:      "Total recommendation requests, labeled by outcome.",
	}, []string{"outcome"})

	// RecommendDuration observes end-to-end engine latency.
	RecommendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "request_duration_seconds",
		Help:      "Recommendation pipeline latency in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// RelaxationsTotal counts constraint relaxation steps applied, by step name.
	RelaxationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "relaxations_total",
		Help:      "Constraint relaxation steps applied, labeled by step.",
	}, []string{"step"})

	// CandidatesFiltered observes how many catalog rows survive filtering.
	CandidatesFiltered = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "candidates_filtered",
		Help:      "Number of candidates remaining after hard filtering.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	// CollaborativeBlendsTotal counts hybrid blends by outcome
	// (blended, content_only, degraded).
	CollaborativeBlendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "collaborative_blends_total",
		Help:      "Collaborative blend attempts, labeled by outcome.",
	}, []string{"outcome"})
)

// Cache metrics.
var (
	// CacheHitsTotal counts response cache hits.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Recommendation response cache hits.",
	})

	// CacheMissesTotal counts response cache misses.
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Recommendation response cache misses.",
	})
)

// Storage metrics.
var (
	// DBQueryDuration observes DuckDB query latency by query name.
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "DuckDB query latency in seconds, labeled by query.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"query"})

	// DBErrorsTotal counts database errors by query name.
	DBErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "errors_total",
		Help:      "DuckDB query errors, labeled by query.",
	}, []string{"query"})

	// CatalogSize tracks the number of universities in the active snapshot.
	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "universities",
		Help:      "Universities in the active catalog snapshot.",
	})
)

// Circuit breaker metrics for the peer log path.
var (
	// BreakerState exports the peer log breaker state
	// (0 = closed, 1 = half-open, 2 = open).
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "peerlog",
		Name:      "breaker_state",
		Help:      "Peer log circuit breaker state (0 closed, 1 half-open, 2 open).",
	})

	// BreakerTransitionsTotal counts breaker state transitions.
	BreakerTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "peerlog",
		Name:      "breaker_transitions_total",
		Help:      "Peer log circuit breaker state transitions, labeled by target state.",
	}, []string{"to"})
)

// StatusClass converts a numeric HTTP status into its class label ("2xx").
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
