// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/gradcompass/gradcompass/internal/catalog"
	"github.com/gradcompass/gradcompass/internal/metrics"
)

// budgetRelaxFactors are the progressive budget widenings, as fractions of
// the original budgetMax.
var budgetRelaxFactors = []float64{0.25, 0.50, 0.75}

// countryFallbacks maps a preferred country to culturally or geographically
// adjacent alternatives tried before dropping the country filter entirely.
var countryFallbacks = map[string][]string{
	"Australia":   {"New Zealand", "UK"},
	"New Zealand": {"Australia"},
	"UK":          {"Ireland", "Netherlands"},
	"Ireland":     {"UK"},
	"USA":         {"Canada"},
	"Canada":      {"USA"},
	"Germany":     {"Austria", "Netherlands", "Switzerland"},
	"France":      {"Belgium", "Switzerland"},
	"Singapore":   {"Hong Kong", "Australia"},
}

// EnsureMinimum expands an underfilled candidate set by progressively
// relaxing constraints. Each relaxation re-filters the full catalog from
// scratch with a loosened copy of the profile rather than layering partial
// filters incrementally. The returned log records every step applied, in
// order; every served recommendation is traceable to the relaxation that
// produced it.
//
// The expanded set is never smaller than the input set: each loosened
// profile admits a superset of the original constraints, and the academic
// fallback ranks the whole catalog.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func EnsureMinimum(snap *catalog.Snapshot, p *Profile, candidates []catalog.University,
	minCount int, logger zerolog.Logger) ([]catalog.University, []RelaxationStep) {
	if len(candidates) >= minCount {
		return candidates, nil
	}

	var log []RelaxationStep
	best := candidates

	record := func(step, note string, got []catalog.University) {
		log = append(log, RelaxationStep{Step: step, Note: note})
		metrics.RelaxationsTotal.WithLabelValues(step).Inc()
		logger.Info().
			Str("step", step).
			Int("candidates", len(got)).
			Msg("constraint relaxation applied")
		if len(got) > len(best) {
			best = got
		}
	}

	// Budget widening. Stop at the first widening that yields any
	// candidates at all.
	if p.BudgetMax > 0 {
		for _, factor := range budgetRelaxFactors {
			loose := *p
			loose.BudgetMax = p.BudgetMax * (1 + factor)
			got := Filter(snap, &loose, logger)
			record(fmt.Sprintf("relax_budget_%d%%", int(factor*100)),
				fmt.Sprintf("budget widened to $%.0f", loose.BudgetMax), got)
			if len(got) >= 1 {
				break
			}
		}
		if len(best) >= minCount {
			return best, log
		}
	}

	// Country expansion, then no country at all.
	if p.HasCountryPreference() {
		loose := *p
		loose.BudgetMax = widestBudget(p)
		loose.PreferredCountries = expandCountries(p.countryPreferences())
		got := Filter(snap, &loose, logger)
		record("relax_country_adjacent",
			fmt.Sprintf("expanded to adjacent countries %v", loose.PreferredCountries), got)

		if len(best) < minCount {
			loose.PreferredCountries = nil
			got = Filter(snap, &loose, logger)
			record("relax_country_any", "country preference dropped", got)
		}
		if len(best) >= minCount {
			return best, log
		}
	}

	// Last resort: rank the full catalog by academic proximity alone.
	got := academicFallback(snap, p)
	record("fallback_academic", "ranked full catalog by academic proximity", got)

	return best, log
}

func widestBudget(p *Profile) float64 {
	if p.BudgetMax <= 0 {
		return 0
	}
	last := budgetRelaxFactors[len(budgetRelaxFactors)-1]
	return p.BudgetMax * (1 + last)
}

// expandCountries unions the preferred countries with their fallbacks,
// preserving first-seen order.
func expandCountries(prefs []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(prefs)*2)
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range prefs {
		add(c)
		for _, adj := range countryFallbacks[c] {
			add(adj)
		}
	}
	return out
}

// academicFallback orders the entire catalog by |A_user - A_uni| ascending,
// ignoring all soft filters.
func academicFallback(snap *catalog.Snapshot, p *Profile) []catalog.University {
	aUser := p.AcademicStrength()
	out := make([]catalog.University, snap.Len())
	copy(out, snap.Universities())
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].AcademicStrength-aUser) < math.Abs(out[j].AcademicStrength-aUser)
	})
	return out
}
