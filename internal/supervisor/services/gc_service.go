// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Collector is anything with reclaimable storage, such as the response
// cache's value log.
type Collector interface {
	RunGC() error
}

// CacheGCService runs value-log garbage collection on a fixed interval.
// GC failures are logged and the loop keeps going; only context
// cancellation stops the service.
type CacheGCService struct {
	collector Collector
	interval  time.Duration
	logger    zerolog.Logger
}

// NewCacheGCService builds the GC loop. interval defaults to 10 minutes
// when zero or negative.
func NewCacheGCService(collector Collector, interval time.Duration, logger zerolog.Logger) *CacheGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheGCService{
		collector: collector,
		interval:  interval,
		logger:    logger.With().Str("component", "cache-gc").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.collector.RunGC(); err != nil {
				s.logger.Warn().Err(err).Msg("cache garbage collection failed")
			}
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *CacheGCService) String() string {
	return "cache-gc"
}
