// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/gradcompass/gradcompass/internal/catalog"
	"github.com/gradcompass/gradcompass/internal/logging"
	"github.com/gradcompass/gradcompass/internal/metrics"
	"github.com/gradcompass/gradcompass/internal/validation"
)

// ResponseCache stores recommendation responses keyed by request hash.
// Implementations decide TTL and eviction; a nil cache disables caching.
type ResponseCache interface {
	Get(key string) (*Response, bool)
	Set(key string, resp *Response)
}

// Engine runs the recommendation pipeline against an immutable catalog
// snapshot. It is safe for concurrent use: per-request state never escapes
// the call, the snapshot is read-only, and Reload swaps it atomically.
type Engine struct {
	cfg     *Config
	snap    atomic.Pointer[catalog.Snapshot]
	blender *Blender
	peerLog PeerLog
	cache   ResponseCache
	logger  zerolog.Logger
}

// NewEngine builds an Engine. peerLog and cache may be nil, disabling
// collaborative blending and response caching respectively.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, snap *catalog.Snapshot, peerLog PeerLog,
	cache ResponseCache, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("engine requires a catalog snapshot")
	}

	cfg.Weights = cfg.Weights.Normalize()
	engineLogger := logger.With().Str("component", "engine").Logger()

	e := &Engine{
		cfg:     cfg,
		blender: NewBlender(peerLog, cfg.Collaborative, engineLogger),
		peerLog: peerLog,
		cache:   cache,
		logger:  engineLogger,
	}
	e.snap.Store(snap)
	return e, nil
}

// Snapshot returns the catalog snapshot the engine serves from.
func (e *Engine) Snapshot() *catalog.Snapshot {
	return e.snap.Load()
}

// Reload swaps in a rebuilt catalog snapshot. In-flight requests keep the
// snapshot they started with.
func (e *Engine) Reload(snap *catalog.Snapshot) {
	if snap == nil {
		return
	}
	e.snap.Store(snap)
	e.logger.Info().Int("universities", snap.Len()).Msg("catalog snapshot reloaded")
}

// Blender exposes the collaborative blender for the peer-centric endpoints
// (trending, similar users, groups).
func (e *Engine) Blender() *Blender {
	return e.blender
}

// Recommend runs the full pipeline for one request: validate, filter, relax
// if underfilled, score, select top-N, blend with peer signals, and persist
// the served results back to the peer log.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	logger := logging.Ctx(ctx)

	if verr := validation.ValidateStruct(&req.Profile); verr != nil {
		metrics.RecommendRequestsTotal.WithLabelValues("validation_error").Inc()
		return nil, verr
	}

	k := e.clampK(req.K)
	cacheKey := e.cacheKey(req, k)
	if e.cache != nil {
		if cached, ok := e.cache.Get(cacheKey); ok {
			metrics.CacheHitsTotal.Inc()
			cached.FromCache = true
			return cached, nil
		}
		metrics.CacheMissesTotal.Inc()
	}

	snap := e.snap.Load()
	candidates := Filter(snap, &req.Profile, logger)
	metrics.CandidatesFiltered.Observe(float64(len(candidates)))

	var relaxLog []RelaxationStep
	preRelax := make(map[string]bool, len(candidates))
	if len(candidates) < e.cfg.Limits.MinCandidates {
		for i := range candidates {
			preRelax[nameKey(candidates[i].Name)] = true
		}
		candidates, relaxLog = EnsureMinimum(snap, &req.Profile, candidates,
			e.cfg.Limits.MinCandidates, logger)
	}
	relaxed := len(relaxLog) > 0

	if len(candidates) == 0 {
		metrics.RecommendRequestsTotal.WithLabelValues("no_matches").Inc()
		resp := &Response{
			Code:          CodeNoMatches,
			Results:       []MatchResult{},
			Relaxed:       relaxed,
			RelaxationLog: relaxLog,
			GeneratedAt:   time.Now().UTC(),
		}
		return resp, nil
	}

	scored := make([]MatchResult, 0, len(candidates))
	for i := range candidates {
		total, breakdown := Score(&req.Profile, &candidates[i], e.cfg.Weights)
		scored = append(scored, MatchResult{
			University: candidates[i],
			Score:      total,
			Breakdown:  breakdown,
			// Only candidates a relaxation admitted carry the flag;
			// survivors of the original filter are not provenance-tainted.
			Relaxed: relaxed && !preRelax[nameKey(candidates[i].Name)],
		})
	}

	top := SelectTopN(scored, k, req.Profile.countryPreferences(), e.cfg.DiversityEnabled)
	results := e.blender.Blend(ctx, req.UserID, top)
	// Blend may have injected collaborative-only entries past k; the page
	// size is still k, so injected peers displace the weakest results
	// rather than growing the response.
	if len(results) > k {
		results = results[:k]
	}

	e.persistServed(ctx, req.UserID, results)

	resp := &Response{
		Code:            CodeOK,
		Results:         results,
		TotalCandidates: len(candidates),
		Relaxed:         relaxed,
		RelaxationLog:   relaxLog,
		Collaborative:   req.UserID != "",
		GeneratedAt:     time.Now().UTC(),
	}
	if e.cache != nil {
		e.cache.Set(cacheKey, resp)
	}

	metrics.RecommendRequestsTotal.WithLabelValues("ok").Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	logger.Info().
		Int("results", len(results)).
		Int("candidates", len(candidates)).
		Bool("relaxed", relaxed).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation request served")

	return resp, nil
}

// persistServed upserts the served results into the peer log so future
// collaborative blends can use them. Failures are logged and swallowed; the
// response has already been computed.
func (e *Engine) persistServed(ctx context.Context, userID string, results []MatchResult) {
	if userID == "" || e.peerLog == nil {
		return
	}
	now := time.Now().UTC()
	for i := range results {
		if results[i].CollaborativeOnly {
			continue
		}
		score := results[i].HybridScore
		if score == 0 {
			score = results[i].ContentScore
		}
		in := Interaction{
			UserID:         userID,
			UniversityName: results[i].University.Name,
			Country:        results[i].University.Country,
			MatchScore:     score,
			UpdatedAt:      now,
		}
		if err := e.peerLog.Record(ctx, in); err != nil {
			e.logger.Warn().Err(err).Str("user_id", userID).
				Str("university", in.UniversityName).
				Msg("failed to persist served recommendation")
			return
		}
	}
}

func (e *Engine) clampK(k int) int {
	if k <= 0 {
		return e.cfg.Limits.DefaultK
	}
	if k > e.cfg.Limits.MaxK {
		return e.cfg.Limits.MaxK
	}
	return k
}

// cacheKey hashes the profile, user and k into a stable cache key.
func (e *Engine) cacheKey(req Request, k int) string {
	h := fnv.New64a()
	if raw, err := json.Marshal(req.Profile); err == nil {
		_, _ = h.Write(raw)
	}
	return fmt.Sprintf("rec:%s:%d:%x", req.UserID, k, h.Sum64())
}
