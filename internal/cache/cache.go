// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

// Package cache provides a Badger-backed TTL cache for recommendation
// responses. Identical requests inside the TTL window are served from the
// cache without re-running the pipeline. With an empty path the store runs
// fully in memory, which is also what tests use.
package cache

import (
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/gradcompass/gradcompass/internal/config"
	"github.com/gradcompass/gradcompass/internal/recommend"
)

// ResponseCache stores serialized recommendation responses with a TTL.
type ResponseCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger zerolog.Logger
}

// New opens the cache described by cfg. An empty cfg.Path selects Badger's
// in-memory mode.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg *config.CacheConfig, logger zerolog.Logger) (*ResponseCache, error) {
	cacheLogger := logger.With().Str("component", "cache").Logger()

	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(badgerLogger{cacheLogger}).
		WithInMemory(cfg.Path == "")

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	return &ResponseCache{
		db:     db,
		ttl:    cfg.TTL,
		logger: cacheLogger,
	}, nil
}

// Get returns the cached response for key, if present and unexpired.
func (c *ResponseCache) Get(key string) (*recommend.Response, bool) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}

	var resp recommend.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		c.delete(key)
		return nil, false
	}
	return &resp, true
}

// Set stores resp under key with the configured TTL. Serialization or write
// failures are logged and swallowed; caching is best-effort.
func (c *ResponseCache) Set(key string, resp *recommend.Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to serialize response for cache")
		return
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to write cache entry")
	}
}

func (c *ResponseCache) delete(key string) {
	_ = c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// RunGC rewrites the value log to reclaim space from expired entries.
// Badger returns ErrNoRewrite when there is nothing to collect, which is
// not an error for the caller.
func (c *ResponseCache) RunGC() error {
	err := c.db.RunValueLogGC(0.5)
	if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return err
	}
	return nil
}

// Close flushes and closes the underlying store.
func (c *ResponseCache) Close() error {
	return c.db.Close()
}

// badgerLogger adapts zerolog to badger.Logger. Badger's internal chatter
// logs at debug; real problems at warn and error.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
