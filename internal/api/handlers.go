// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openlearn-tv/recommender/internal/metrics"
	"github.com/openlearn-tv/recommender/internal/recommend"
)

// Handler serves the recommendation API endpoints.
type Handler struct {
	service *recommend.Service
}

// NewHandler creates the API handler around the recommendation service.
func NewHandler(service *recommend.Service) *Handler {
	return &Handler{service: service}
}

// GetRecommendations handles GET /api/v1/recommendations/user/{userID}.
//
// Query parameters:
//   - limit: maximum results (default and cap from engine config)
//   - exclude_watched: "false" keeps already-watched videos (default true)
//   - timeframe: day, week, or month (default week)
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "User ID is required", nil)
		return
	}

	req := recommend.Request{
		UserID:         userID,
		Limit:          intParam(r, "limit", 0),
		IncludeWatched: r.URL.Query().Get("exclude_watched") == "false",
		Timeframe:      parseTimeframe(r.URL.Query().Get("timeframe")),
		RequestID:      r.Header.Get("X-Request-Id"),
	}

	resp, err := h.service.GetRecommendations(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RECOMMENDATION_ERROR", "Failed to generate recommendations", err)
		return
	}

	metrics.RecordRecommendation(len(resp.Recommendations), resp.Metadata.ColdStart, time.Duration(resp.Metadata.LatencyMS)*time.Millisecond)
	for strategy, count := range resp.Metadata.StrategyCounts {
		metrics.RecordStrategy(strategy, count, false)
	}
	for _, strategy := range resp.Metadata.FailedStrategies {
		metrics.RecordStrategy(strategy, 0, true)
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: resp.Metadata.LatencyMS,
		},
	})
}

// GetSimilarVideos handles GET /api/v1/videos/{videoID}/similar.
func (h *Handler) GetSimilarVideos(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if videoID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_VIDEO_ID", "Video ID is required", nil)
		return
	}

	videos, err := h.service.GetSimilarVideos(r.Context(), videoID, intParam(r, "limit", 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SIMILAR_VIDEOS_ERROR", "Failed to find similar videos", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]any{"video_id": videoID, "similar": videos},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// GetVideosByCategory handles GET /api/v1/videos/category/{category}.
//
// With a user_id query parameter the listing is ordered by that user's
// content match; otherwise by view count.
func (h *Handler) GetVideosByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category == "" {
		respondError(w, http.StatusBadRequest, "INVALID_CATEGORY", "Category is required", nil)
		return
	}

	userID := r.URL.Query().Get("user_id")
	videos, err := h.service.GetVideosByCategory(r.Context(), category, userID, intParam(r, "limit", 0))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "CATEGORY_ERROR", "Failed to list category", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]any{"category": category, "videos": videos},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Invalidate handles POST /api/v1/recommendations/invalidate. It marks all
// derived state stale; the next request recomputes.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		h.service.InvalidateUser(userID)
	} else {
		h.service.Invalidate()
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// GetEngineStats handles GET /api/v1/recommendations/stats.
func (h *Handler) GetEngineStats(w http.ResponseWriter, _ *http.Request) {
	m := h.service.Metrics()
	metrics.UpdateCacheStats("features", m.FeatureCache.Hits, m.FeatureCache.Misses, m.FeatureCache.Recomputes)
	metrics.UpdateCacheStats("preferences", m.PreferenceCache.Hits, m.PreferenceCache.Misses, m.PreferenceCache.Recomputes)

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     m,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "ok"},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// intParam reads a positive integer query parameter, returning def when
// absent or malformed.
func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return def
}

// parseTimeframe maps the query value to a timeframe, defaulting to week.
func parseTimeframe(raw string) recommend.Timeframe {
	switch raw {
	case "day":
		return recommend.TimeframeDay
	case "month":
		return recommend.TimeframeMonth
	default:
		return recommend.TimeframeWeek
	}
}
