// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package database

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gradcompass/gradcompass/internal/logging"
	"github.com/gradcompass/gradcompass/internal/metrics"
	"github.com/gradcompass/gradcompass/internal/recommend"
)

// BreakerPeerLog wraps a recommend.PeerLog with a circuit breaker. When the
// store misbehaves, the breaker opens and reads fail fast; the blender then
// serves content-only rankings instead of stalling every request on a sick
// database.
//
// The breaker uses real time for its interval and timeout calculations; unit
// tests should exercise the wrapped store directly.
type BreakerPeerLog struct {
	inner recommend.PeerLog
	cb    *gobreaker.CircuitBreaker[interface{}]
}

// NewBreakerPeerLog wraps inner with a circuit breaker that opens after a
// 60% failure rate over at least 10 requests, and probes recovery after 30
// seconds.
func NewBreakerPeerLog(inner recommend.PeerLog) *BreakerPeerLog {
	metrics.BreakerState.Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "peer-log",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("peer log circuit breaker state change")
			metrics.BreakerState.Set(stateToFloat(to))
			metrics.BreakerTransitionsTotal.WithLabelValues(stateToString(to)).Inc()
		},
	})

	return &BreakerPeerLog{inner: inner, cb: cb}
}

// UserInteractions reads through the breaker.
func (b *BreakerPeerLog) UserInteractions(ctx context.Context, userID string) ([]recommend.Interaction, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.UserInteractions(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return out.([]recommend.Interaction), nil
}

// AllInteractions reads through the breaker.
func (b *BreakerPeerLog) AllInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.AllInteractions(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]recommend.Interaction), nil
}

// InteractionsSince reads through the breaker.
func (b *BreakerPeerLog) InteractionsSince(ctx context.Context, cutoff time.Time) ([]recommend.Interaction, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.InteractionsSince(ctx, cutoff)
	})
	if err != nil {
		return nil, err
	}
	return out.([]recommend.Interaction), nil
}

// Record writes through the breaker so a sick store also stops absorbing
// write latency.
func (b *BreakerPeerLog) Record(ctx context.Context, in recommend.Interaction) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.Record(ctx, in)
	})
	return err
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
