// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero default k", func(c *Config) { c.Recommend.DefaultK = 0 }},
		{"max k below default k", func(c *Config) { c.Recommend.MaxK = 1; c.Recommend.DefaultK = 10 }},
		{"collab weight over 1", func(c *Config) { c.Recommend.CollaborativeWeight = 1.5 }},
		{"negative collab weight", func(c *Config) { c.Recommend.CollaborativeWeight = -0.1 }},
		{"similarity threshold 1", func(c *Config) { c.Recommend.SimilarityThreshold = 1.0 }},
		{"negative rate limit", func(c *Config) { c.Security.RateLimitReqs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"GRADCOMPASS_SERVER_PORT", "server.port"},
		{"GRADCOMPASS_RECOMMEND_DEFAULT_K", "recommend.default_k"},
		{"GRADCOMPASS_DATABASE_MAX_MEMORY", "database.max_memory"},
		{"GRADCOMPASS_LOGGING_LEVEL", "logging.level"},
	}

	for _, tt := range tests {
		if got := envTransform(tt.input); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("GRADCOMPASS_SERVER_PORT", "9123")
	t.Setenv("GRADCOMPASS_LOGGING_LEVEL", "debug")
	t.Setenv("GRADCOMPASS_DATABASE_PATH", ":memory:")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9123 {
		t.Errorf("expected port 9123, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}
	// Untouched values keep their defaults.
	if cfg.Recommend.DefaultK != 15 {
		t.Errorf("expected default_k 15, got %d", cfg.Recommend.DefaultK)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 8888\ncache:\n  ttl: 1m\nrecommend:\n  default_k: 10\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("expected port 8888 from file, got %d", cfg.Server.Port)
	}
	if cfg.Recommend.DefaultK != 10 {
		t.Errorf("expected default_k 10 from file, got %d", cfg.Recommend.DefaultK)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("expected cache ttl 1m from file, got %s", cfg.Cache.TTL)
	}
}

func TestCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("GRADCOMPASS_SECURITY_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GRADCOMPASS_DATABASE_PATH", ":memory:")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("expected %d origins, got %v", len(want), cfg.Security.CORSOrigins)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("origin %d: got %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}
