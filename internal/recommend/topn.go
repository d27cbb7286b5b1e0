// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"sort"
	"strings"
)

// SelectTopN orders scored candidates descending by total score (stable, so
// catalog order breaks ties) and walks the list collecting up to n results,
// skipping university names already selected. The catalog carries multiple
// rows per university for different programs; the final list never shows the
// same name twice.
//
// When diversity is enabled and the applicant named more than one preferred
// country, a round-robin pass first reserves max(2, n/len(countries)) slots
// per requested country, then remaining slots fill with the best overall.
func SelectTopN(scored []MatchResult, n int, preferredCountries []string, diversity bool) []MatchResult {
	if n <= 0 || len(scored) == 0 {
		return nil
	}

	ordered := make([]MatchResult, len(scored))
	copy(ordered, scored)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	if diversity && len(preferredCountries) > 1 {
		return selectDiverse(ordered, n, preferredCountries)
	}
	return selectUnique(ordered, n, nil)
}

// selectUnique walks an ordered list collecting up to n name-unique results.
// seen carries names already taken by a prior pass; it may be nil.
func selectUnique(ordered []MatchResult, n int, seen map[string]bool) []MatchResult {
	if seen == nil {
		seen = make(map[string]bool, n)
	}
	out := make([]MatchResult, 0, n)
	for i := range ordered {
		key := nameKey(ordered[i].University.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ordered[i])
		if len(out) == n {
			break
		}
	}
	return out
}

// selectDiverse runs the country round-robin quota pass, then fills the
// remaining slots from the overall order.
func selectDiverse(ordered []MatchResult, n int, countries []string) []MatchResult {
	quota := n / len(countries)
	if quota < 2 {
		quota = 2
	}

	seen := make(map[string]bool, n)
	taken := make(map[string]int, len(countries))
	out := make([]MatchResult, 0, n)

	for _, country := range countries {
		for i := range ordered {
			if len(out) == n || taken[country] == quota {
				break
			}
			if !strings.EqualFold(ordered[i].University.Country, country) {
				continue
			}
			key := nameKey(ordered[i].University.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			taken[country]++
			out = append(out, ordered[i])
		}
	}

	if len(out) < n {
		out = append(out, selectUnique(ordered, n-len(out), seen)...)
	}

	// Present the final list in score order regardless of which pass
	// selected each entry.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
