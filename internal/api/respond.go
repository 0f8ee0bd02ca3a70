// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/openlearn-tv/recommender/internal/logging"
)

// APIResponse is the uniform JSON envelope for every endpoint.
type APIResponse struct {
	Status   string    `json:"status"` // "success" or "error"
	Data     any       `json:"data,omitempty"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response timing information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is the machine-readable error body.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondJSON writes the envelope with the given status.
func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write response")
	}
}

// respondError writes an error envelope and logs the underlying error.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Err(err).Msg("api error")
	}

	respondJSON(w, status, &APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now()},
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}
