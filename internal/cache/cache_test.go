// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package cache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradcompass/gradcompass/internal/config"
	"github.com/gradcompass/gradcompass/internal/recommend"
)

func testCache(t *testing.T, ttl time.Duration) *ResponseCache {
	t.Helper()
	c, err := New(&config.CacheConfig{Enabled: true, Path: "", TTL: ttl}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open in-memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleResponse() *recommend.Response {
	return &recommend.Response{
		Code: recommend.CodeOK,
		Results: []recommend.MatchResult{
			{Score: 0.9},
			{Score: 0.7},
		},
		TotalCandidates: 10,
		GeneratedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c := testCache(t, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache should miss")
	}

	want := sampleResponse()
	c.Set("key1", want)

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Code != want.Code || len(got.Results) != len(want.Results) {
		t.Errorf("cached response mismatch: %+v", got)
	}
	if got.Results[0].Score != 0.9 {
		t.Errorf("result scores did not round-trip: %f", got.Results[0].Score)
	}
	if got.TotalCandidates != 10 {
		t.Errorf("total candidates did not round-trip: %d", got.TotalCandidates)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := testCache(t, 50*time.Millisecond)

	c.Set("short", sampleResponse())
	if _, ok := c.Get("short"); !ok {
		t.Fatal("entry should be present before TTL")
	}

	time.Sleep(120 * time.Millisecond)
	if _, ok := c.Get("short"); ok {
		t.Error("entry should expire after TTL")
	}
}

func TestCacheKeysAreIndependent(t *testing.T) {
	c := testCache(t, time.Minute)

	a := sampleResponse()
	b := sampleResponse()
	b.TotalCandidates = 99

	c.Set("a", a)
	c.Set("b", b)

	gotA, _ := c.Get("a")
	gotB, _ := c.Get("b")
	if gotA.TotalCandidates == gotB.TotalCandidates {
		t.Error("entries under different keys must not collide")
	}
}
