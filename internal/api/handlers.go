// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

// Package api exposes the recommendation engine over HTTP. Routes are
// versioned under /api/v1 and every response uses the models.APIResponse
// envelope.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gradcompass/gradcompass/internal/logging"
	"github.com/gradcompass/gradcompass/internal/models"
	"github.com/gradcompass/gradcompass/internal/recommend"
	"github.com/gradcompass/gradcompass/internal/validation"
)

// Pinger reports storage liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// groupsCacheTTL bounds how stale the groups endpoint may serve; the
// clustering pass walks every user pair, so it is not recomputed per hit.
const groupsCacheTTL = time.Minute

// Handler carries the dependencies of all API endpoints.
type Handler struct {
	engine    *recommend.Engine
	store     Pinger
	startTime time.Time

	groupsMu sync.Mutex
	groups   []recommend.UserGroup
	groupsAt time.Time
}

// NewHandler builds the API handler. store may be nil, which degrades the
// readiness probe to a liveness check.
func NewHandler(engine *recommend.Engine, store Pinger) *Handler {
	return &Handler{
		engine:    engine,
		store:     store,
		startTime: time.Now().UTC(),
	}
}

// recommendRequest is the POST /recommendations body.
type recommendRequest struct {
	UserID  string            `json:"user_id,omitempty"`
	K       int               `json:"k,omitempty" validate:"omitempty,min=1,max=50"`
	Profile recommend.Profile `json:"profile"`
}

// handleRecommend runs the recommendation pipeline for one applicant.
func (h *Handler) handleRecommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req recommendRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest,
			"invalid JSON body: "+err.Error(), nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		UserID:  req.UserID,
		Profile: req.Profile,
		K:       req.K,
	})
	if err != nil {
		var verr *validation.RequestValidationError
		if errors.As(err, &verr) {
			apiErr := verr.ToAPIError()
			respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
			return
		}
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("recommendation request failed")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal,
			"failed to compute recommendations", nil)
		return
	}

	respondJSONMeta(w, r, http.StatusOK, resp, time.Since(start), resp.FromCache)
}

// handleTrending returns universities with the most peer activity inside
// the trending window.
func (h *Handler) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
				"limit must be an integer in [1, 100]", nil)
			return
		}
		limit = parsed
	}

	trending, err := h.engine.Blender().Trending(r.Context(), limit)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("trending query failed")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal,
			"failed to compute trending universities", nil)
		return
	}
	if trending == nil {
		trending = []recommend.TrendingUniversity{}
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"trending": trending,
	})
}

// handleSimilarUsers returns the peers most similar to one user.
func (h *Handler) handleSimilarUsers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation,
			"userID path parameter is required", nil)
		return
	}

	peers, err := h.engine.Blender().SimilarUsers(r.Context(), userID)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("similar users query failed")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal,
			"failed to compute similar users", nil)
		return
	}
	if peers == nil {
		peers = []recommend.SimilarUser{}
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id":       userID,
		"similar_users": peers,
	})
}

// handleGroups returns clusters of mutually similar users, cached for
// groupsCacheTTL.
func (h *Handler) handleGroups(w http.ResponseWriter, r *http.Request) {
	h.groupsMu.Lock()
	if h.groups != nil && time.Since(h.groupsAt) < groupsCacheTTL {
		groups := h.groups
		h.groupsMu.Unlock()
		respondJSONMeta(w, r, http.StatusOK, map[string]interface{}{
			"groups": groups,
		}, 0, true)
		return
	}
	h.groupsMu.Unlock()

	groups, err := h.engine.Blender().Groups(r.Context())
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Msg("groups query failed")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal,
			"failed to compute collaborative groups", nil)
		return
	}
	if groups == nil {
		groups = []recommend.UserGroup{}
	}

	h.groupsMu.Lock()
	h.groups = groups
	h.groupsAt = time.Now()
	h.groupsMu.Unlock()

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"groups": groups,
	})
}

// handleHealth reports service health including catalog and storage state.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{
		"catalog": "ok",
	}

	if h.engine.Snapshot().Len() == 0 {
		checks["catalog"] = "empty"
		status = "degraded"
	}

	if h.store != nil {
		checks["database"] = "ok"
		if err := h.store.Ping(r.Context()); err != nil {
			checks["database"] = err.Error()
			status = "degraded"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, r, code, map[string]interface{}{
		"status":         status,
		"checks":         checks,
		"universities":   h.engine.Snapshot().Len(),
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// handleLive is the liveness probe: the process is up.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReady is the readiness probe: storage is reachable and the catalog
// is loaded.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.engine.Snapshot().Len() == 0 {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeInternal,
			"catalog not loaded", nil)
		return
	}
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeInternal,
				"database unreachable", nil)
			return
		}
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
