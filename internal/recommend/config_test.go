// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"math"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	if sum := DefaultWeights().Sum(); math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("default weights sum %f, want 1.0", sum)
	}
}

func TestNormalizeWeights(t *testing.T) {
	w := ScoringWeights{Academic: 2, Prestige: 1, Field: 1}
	n := w.Normalize()
	if math.Abs(n.Sum()-1.0) > 1e-9 {
		t.Errorf("normalized sum %f, want 1.0", n.Sum())
	}
	if math.Abs(n.Academic-0.5) > 1e-9 {
		t.Errorf("academic weight should normalize to 0.5, got %f", n.Academic)
	}

	// Zero weights fall back to the defaults.
	zero := ScoringWeights{}.Normalize()
	if zero != DefaultWeights() {
		t.Error("zero weights should normalize to defaults")
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero default k", func(c *Config) { c.Limits.DefaultK = 0 }},
		{"max k below default", func(c *Config) { c.Limits.MaxK = 1 }},
		{"zero min candidates", func(c *Config) { c.Limits.MinCandidates = 0 }},
		{"collab weight above 1", func(c *Config) { c.Collaborative.Weight = 1.1 }},
		{"threshold of 1", func(c *Config) { c.Collaborative.SimilarityThreshold = 1.0 }},
		{"zero similar users", func(c *Config) { c.Collaborative.SimilarUsers = 0 }},
		{"zero-sum weights", func(c *Config) { c.Weights = ScoringWeights{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}
