// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"fmt"
	"time"
)

// ScoringWeights holds the per-category weights of the composite score.
// Weights should sum to 1; Normalize rescales them when they do not.
type ScoringWeights struct {
	Academic      float64 `json:"academic"`
	Prestige      float64 `json:"prestige"`
	Field         float64 `json:"field"`
	Affordability float64 `json:"affordability"`
	Language      float64 `json:"language"`
	Preferences   float64 `json:"preferences"`
}

// DefaultWeights returns the canonical category weights.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		Academic:      0.30,
		Prestige:      0.25,
		Field:         0.20,
		Affordability: 0.15,
		Language:      0.05,
		Preferences:   0.05,
	}
}

// Sum returns the total of all weights.
func (w ScoringWeights) Sum() float64 {
	return w.Academic + w.Prestige + w.Field + w.Affordability + w.Language + w.Preferences
}

// Normalize rescales the weights to sum to 1. A zero-sum weight set is
// replaced by the defaults.
func (w ScoringWeights) Normalize() ScoringWeights {
	sum := w.Sum()
	if sum <= 0 {
		return DefaultWeights()
	}
	return ScoringWeights{
		Academic:      w.Academic / sum,
		Prestige:      w.Prestige / sum,
		Field:         w.Field / sum,
		Affordability: w.Affordability / sum,
		Language:      w.Language / sum,
		Preferences:   w.Preferences / sum,
	}
}

// LimitsConfig bounds result counts and the relaxation trigger.
type LimitsConfig struct {
	// DefaultK applies when a request omits k.
	DefaultK int `json:"default_k"`

	// MaxK caps k per request.
	MaxK int `json:"max_k"`

	// MinCandidates is the post-filter candidate count below which
	// constraint relaxation runs.
	MinCandidates int `json:"min_candidates"`
}

// CollaborativeConfig tunes the peer similarity blend.
type CollaborativeConfig struct {
	// Weight of the collaborative score in the hybrid blend; the content
	// weight is 1 - Weight.
	Weight float64 `json:"weight"`

	// SimilarUsers is how many top peers contribute scores.
	SimilarUsers int `json:"similar_users"`

	// SimilarityThreshold is the minimum Jaccard similarity for a peer to
	// count. Zero keeps every peer with any overlap.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// GroupingThreshold is the minimum similarity for two users to land in
	// the same collaborative group.
	GroupingThreshold float64 `json:"grouping_threshold"`

	// MaxInjected caps collaborative-only universities appended to the
	// content results.
	MaxInjected int `json:"max_injected"`

	// TrendingWindow is the lookback for trending aggregation.
	TrendingWindow time.Duration `json:"trending_window"`
}

// Config is the engine configuration.
type Config struct {
	Weights          ScoringWeights      `json:"weights"`
	Limits           LimitsConfig        `json:"limits"`
	Collaborative    CollaborativeConfig `json:"collaborative"`
	DiversityEnabled bool                `json:"diversity_enabled"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultWeights(),
		Limits: LimitsConfig{
			DefaultK:      15,
			MaxK:          50,
			MinCandidates: 5,
		},
		Collaborative: CollaborativeConfig{
			Weight:              0.3,
			SimilarUsers:        5,
			SimilarityThreshold: 0.0,
			GroupingThreshold:   0.25,
			MaxInjected:         5,
			TrendingWindow:      30 * 24 * time.Hour,
		},
		DiversityEnabled: true,
	}
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.Weights.Sum() <= 0 {
		return fmt.Errorf("scoring weights must have positive sum, got %f", c.Weights.Sum())
	}
	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be >= 1, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k (%d) must be >= limits.default_k (%d)",
			c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.MinCandidates < 1 {
		return fmt.Errorf("limits.min_candidates must be >= 1, got %d", c.Limits.MinCandidates)
	}
	if c.Collaborative.Weight < 0 || c.Collaborative.Weight > 1 {
		return fmt.Errorf("collaborative.weight must be in [0, 1], got %f", c.Collaborative.Weight)
	}
	if c.Collaborative.SimilarityThreshold < 0 || c.Collaborative.SimilarityThreshold >= 1 {
		return fmt.Errorf("collaborative.similarity_threshold must be in [0, 1), got %f",
			c.Collaborative.SimilarityThreshold)
	}
	if c.Collaborative.SimilarUsers < 1 {
		return fmt.Errorf("collaborative.similar_users must be >= 1, got %d",
			c.Collaborative.SimilarUsers)
	}
	return nil
}
