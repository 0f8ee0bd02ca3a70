// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

// Package api provides the HTTP serving layer for the recommender: the chi
// router, the recommendation endpoints, and the Prometheus exposition
// endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openlearn-tv/recommender/internal/metrics"
)

// RouterConfig contains the serving-layer options the router needs.
type RouterConfig struct {
	// RateLimitPerMinute caps requests per client IP per minute.
	// Zero disables rate limiting.
	RateLimitPerMinute int
}

// NewRouter builds the HTTP router with the standard middleware stack.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(instrument)
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))
	}

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/user/{userID}", h.GetRecommendations)
			r.Get("/stats", h.GetEngineStats)
			r.Post("/invalidate", h.Invalidate)
		})
		r.Route("/videos", func(r chi.Router) {
			r.Get("/{videoID}/similar", h.GetSimilarVideos)
			r.Get("/category/{category}", h.GetVideosByCategory)
		})
	})

	return r
}

// instrument records request count and latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(r.Method, endpoint, ww.Status(), time.Since(start))
	})
}
