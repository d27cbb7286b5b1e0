// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package catalog

import (
	"strings"
	"time"

	"github.com/gradcompass/gradcompass/internal/metrics"
)

// Snapshot is an immutable view of the catalog with engineered fields
// computed. Build a new snapshot instead of mutating an existing one; the
// affordability field depends on the snapshot-wide tuition range and must be
// recomputed whenever the catalog changes.
type Snapshot struct {
	universities []University
	countries    []string
	loadedAt     time.Time

	minTuition float64
	maxTuition float64
}

// NewSnapshot builds a snapshot from raw catalog rows. Rows are deduplicated
// on (name, country, program fields) with the first occurrence winning, which
// strips the repeated merge artifacts present in the source dataset. Order of
// first occurrence is preserved and serves as the stable tie-break order for
// ranking.
func NewSnapshot(rows []University) *Snapshot {
	s := &Snapshot{
		universities: dedupRows(rows),
		loadedAt:     time.Now().UTC(),
	}

	s.minTuition, s.maxTuition = tuitionRange(s.universities)

	countrySeen := make(map[string]bool)
	for i := range s.universities {
		u := &s.universities[i]
		u.AcademicStrength = computeAcademicStrength(u)
		u.RankingScore = computeRankingScore(u.Ranking)
		u.Affordability = s.affordability(u.TuitionUSD)

		if u.Country != "" && !countrySeen[u.Country] {
			countrySeen[u.Country] = true
			s.countries = append(s.countries, u.Country)
		}
	}

	metrics.CatalogSize.Set(float64(len(s.universities)))
	return s
}

// Universities returns the snapshot rows in catalog order. Callers must not
// modify the returned slice.
func (s *Snapshot) Universities() []University {
	return s.universities
}

// Len returns the number of rows in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.universities)
}

// Countries returns the distinct countries present, in catalog order.
func (s *Snapshot) Countries() []string {
	return s.countries
}

// LoadedAt returns when this snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// affordability inverse-normalizes tuition over the snapshot's tuition range:
// the cheapest row scores 1, the most expensive 0. Unknown tuition scores a
// neutral 0.5.
func (s *Snapshot) affordability(tuition *float64) float64 {
	if tuition == nil {
		return 0.5
	}
	if s.maxTuition <= s.minTuition {
		return 0.5
	}
	return Clip01(1 - (*tuition-s.minTuition)/(s.maxTuition-s.minTuition))
}

func tuitionRange(rows []University) (lo, hi float64) {
	first := true
	for i := range rows {
		t := rows[i].TuitionUSD
		if t == nil {
			continue
		}
		if first {
			lo, hi = *t, *t
			first = false
			continue
		}
		if *t < lo {
			lo = *t
		}
		if *t > hi {
			hi = *t
		}
	}
	return lo, hi
}

func dedupRows(rows []University) []University {
	seen := make(map[string]bool, len(rows))
	out := make([]University, 0, len(rows))
	for i := range rows {
		key := strings.ToLower(rows[i].Name) + "\x00" +
			strings.ToLower(rows[i].Country) + "\x00" +
			strings.ToLower(rows[i].FieldsJoined())
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rows[i])
	}
	return out
}
