// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/gradcompass/gradcompass/internal/logging"
	"github.com/gradcompass/gradcompass/internal/models"
)

// maxRequestBody caps request bodies at 1 MiB; recommendation requests are
// small JSON documents.
const maxRequestBody = 1 << 20

// respondJSON writes a success envelope with the given payload.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSONMeta(w, r, status, data, 0, false)
}

// respondJSONMeta is respondJSON with timing and cache metadata.
func respondJSONMeta(w http.ResponseWriter, r *http.Request, status int, data interface{},
	elapsed time.Duration, cached bool) {
	resp := models.APIResponse{
		Status: models.StatusSuccess,
		Data:   data,
		Metadata: &models.APIMetadata{
			RequestID: logging.RequestIDFromContext(r.Context()),
			Timestamp: time.Now().UTC(),
			ElapsedMS: elapsed.Milliseconds(),
			Cached:    cached,
		},
	}
	writeJSON(w, r, status, &resp)
}

// respondError writes an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string,
	details map[string]interface{}) {
	resp := models.APIResponse{
		Status: models.StatusError,
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: &models.APIMetadata{
			RequestID: logging.RequestIDFromContext(r.Context()),
			Timestamp: time.Now().UTC(),
		},
	}
	writeJSON(w, r, status, &resp)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

// decodeJSON reads a JSON request body into dst, rejecting unknown fields
// and oversized bodies.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
