// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gradcompass/gradcompass/internal/config"
	"github.com/gradcompass/gradcompass/internal/middleware"
)

// NewRouter assembles the HTTP routes. Recommendation endpoints sit behind
// the configured rate limit; probes and metrics stay unthrottled so
// orchestrators and scrapers are never locked out.
func NewRouter(h *Handler, cfg *config.SecurityConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Prometheus)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if !cfg.RateLimitDisabled && cfg.RateLimitReqs > 0 {
				r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
			}

			r.Post("/recommendations", h.handleRecommend)
			r.Get("/recommendations/trending", h.handleTrending)
			r.Get("/users/{userID}/similar", h.handleSimilarUsers)
			r.Get("/groups", h.handleGroups)
		})

		// Health stays unthrottled so orchestrators are never locked out.
		r.Get("/health", h.handleHealth)
	})

	r.Get("/health/live", h.handleLive)
	r.Get("/health/ready", h.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
