// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

// Package metrics defines the Prometheus instrumentation for the
// recommender: API throughput and latency, per-strategy outcomes, and cache
// efficiency. Everything is registered on the default registry via promauto
// and exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	// Recommendation metrics.
	RecommendationRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests served",
		},
	)

	RecommendationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_latency_seconds",
			Help:    "End-to-end recommendation request latency in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_results",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 20, 50},
		},
	)

	RecommendationColdStarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cold_starts_total",
			Help: "Total number of requests served for users without watch history",
		},
	)

	StrategyResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_results_total",
			Help: "Total number of raw results emitted per strategy",
		},
		[]string{"strategy"},
	)

	StrategyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_failures_total",
			Help: "Total number of strategy executions that failed or timed out",
		},
		[]string{"strategy"},
	)

	// Cache metrics. The engine owns the counters; these gauges mirror the
	// latest observed values.
	CacheHits = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_hits",
			Help: "Derived-state cache hits since startup",
		},
		[]string{"cache"}, // "features", "preferences"
	)

	CacheMisses = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_misses",
			Help: "Derived-state cache misses since startup",
		},
		[]string{"cache"},
	)

	CacheRecomputes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_recomputes",
			Help: "Derived-state cache recomputations since startup",
		},
		[]string{"cache"},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommendation records one completed recommendation request.
func RecordRecommendation(results int, coldStart bool, latency time.Duration) {
	RecommendationRequests.Inc()
	RecommendationLatency.Observe(latency.Seconds())
	RecommendationResults.Observe(float64(results))
	if coldStart {
		RecommendationColdStarts.Inc()
	}
}

// RecordStrategy records per-strategy outcome counts for one request.
func RecordStrategy(strategy string, results int, failed bool) {
	if failed {
		StrategyFailures.WithLabelValues(strategy).Inc()
		return
	}
	StrategyResults.WithLabelValues(strategy).Add(float64(results))
}

// UpdateCacheStats mirrors the engine's absolute cache counters into the
// gauges for the named cache.
func UpdateCacheStats(cache string, hits, misses, recomputes int64) {
	CacheHits.WithLabelValues(cache).Set(float64(hits))
	CacheMisses.WithLabelValues(cache).Set(float64(misses))
	CacheRecomputes.WithLabelValues(cache).Set(float64(recomputes))
}
