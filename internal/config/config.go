// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

// Package config provides layered configuration for GradCompass using
// Koanf v2. Precedence is ENV > config file > built-in defaults.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings for the catalog and peer log store.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" runs fully in memory.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage, e.g. "2GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads for DuckDB query execution. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// CatalogConfig holds catalog import settings.
type CatalogConfig struct {
	// CSVPath is an optional CSV file imported into the universities table
	// when the table is empty at startup.
	CSVPath string `koanf:"csv_path"`
}

// CacheConfig holds the badger-backed response cache settings.
type CacheConfig struct {
	Enabled bool `koanf:"enabled"`

	// Path is the badger directory. Empty string uses an in-memory store.
	Path string `koanf:"path"`

	// TTL is how long a cached recommendation response stays valid.
	TTL time.Duration `koanf:"ttl"`
}

// SecurityConfig holds rate limiting and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings surfaced through the
// service configuration. The engine package has its own Config type; these
// values seed it at startup.
type RecommendConfig struct {
	// DefaultK is the number of results returned when the request omits k.
	DefaultK int `koanf:"default_k"`

	// MaxK caps the number of results per request.
	MaxK int `koanf:"max_k"`

	// MinCandidates is the candidate count below which constraint
	// relaxation kicks in.
	MinCandidates int `koanf:"min_candidates"`

	// CollaborativeWeight is the hybrid blend weight for peer scores.
	// Content weight is 1 - CollaborativeWeight.
	CollaborativeWeight float64 `koanf:"collaborative_weight"`

	// SimilarityThreshold is the minimum Jaccard similarity for two users
	// to count as similar.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`

	// DiversityEnabled turns on country round-robin selection when the
	// applicant names more than one preferred country.
	DiversityEnabled bool `koanf:"diversity_enabled"`

	// TrendingWindow is the lookback window for trending universities.
	TrendingWindow time.Duration `koanf:"trending_window"`
}

// Validate checks the configuration for inconsistent or dangerous values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Recommend.DefaultK < 1 {
		return fmt.Errorf("recommend.default_k must be >= 1, got %d", c.Recommend.DefaultK)
	}
	if c.Recommend.MaxK < c.Recommend.DefaultK {
		return fmt.Errorf("recommend.max_k (%d) must be >= recommend.default_k (%d)",
			c.Recommend.MaxK, c.Recommend.DefaultK)
	}
	if c.Recommend.CollaborativeWeight < 0 || c.Recommend.CollaborativeWeight > 1 {
		return fmt.Errorf("recommend.collaborative_weight must be in [0, 1], got %f",
			c.Recommend.CollaborativeWeight)
	}
	if c.Recommend.SimilarityThreshold < 0 || c.Recommend.SimilarityThreshold >= 1 {
		return fmt.Errorf("recommend.similarity_threshold must be in [0, 1), got %f",
			c.Recommend.SimilarityThreshold)
	}
	if c.Security.RateLimitReqs < 0 {
		return fmt.Errorf("security.rate_limit_reqs must be >= 0, got %d", c.Security.RateLimitReqs)
	}
	return nil
}
