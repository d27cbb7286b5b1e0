// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/gradcompass/gradcompass/internal/catalog"
)

// filterStep is one hard constraint. Each step is conjunctive and
// idempotent; ordering only affects the diagnostic counts logged per step.
type filterStep struct {
	name  string
	apply func(*Profile, *catalog.University) bool
}

// filterSteps lists the hard constraints in their fixed diagnostic order.
// Missing catalog attributes are wildcards: a row is only excluded when it
// carries a value that conflicts with the profile.
var filterSteps = []filterStep{
	{"field_of_study", matchesField},
	{"country", matchesCountry},
	{"budget", matchesBudget},
	{"university_type", matchesType},
	{"ranking_ceiling", matchesRankingCeiling},
	{"duration", matchesDuration},
	{"preference_flags", matchesPreferenceFlags},
	{"language", matchesLanguage},
}

// Filter applies the hard constraints to the catalog and returns the
// surviving candidates in catalog order. An empty result is valid output;
// the caller escalates to relaxation.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Filter(snap *catalog.Snapshot, p *Profile, logger zerolog.Logger) []catalog.University {
	candidates := snap.Universities()
	out := make([]catalog.University, 0, len(candidates))

	counts := make([]int, len(filterSteps))
	for i := range candidates {
		u := &candidates[i]
		kept := true
		for si, step := range filterSteps {
			if !step.apply(p, u) {
				kept = false
				break
			}
			counts[si]++
		}
		if kept {
			out = append(out, candidates[i])
		}
	}

	ev := logger.Debug()
	for si, step := range filterSteps {
		ev = ev.Int(step.name, counts[si])
	}
	ev.Int("catalog", len(candidates)).
		Int("candidates", len(out)).
		Msg("hard filter applied")

	return out
}

// matchesField keeps rows whose program fields contain the major as a
// case-insensitive substring, or whose field list is empty.
func matchesField(p *Profile, u *catalog.University) bool {
	major := strings.TrimSpace(p.Major)
	if major == "" {
		return true
	}
	if len(u.ProgramFields) == 0 {
		return true
	}
	return u.HasField(major)
}

func matchesCountry(p *Profile, u *catalog.University) bool {
	prefs := p.countryPreferences()
	if len(prefs) == 0 {
		return true
	}
	for _, c := range prefs {
		if strings.EqualFold(u.Country, c) {
			return true
		}
	}
	return false
}

func matchesBudget(p *Profile, u *catalog.University) bool {
	if u.TuitionUSD == nil {
		return true
	}
	if p.BudgetMax <= 0 {
		return true
	}
	return *u.TuitionUSD >= p.BudgetMin && *u.TuitionUSD <= p.BudgetMax
}

func matchesType(p *Profile, u *catalog.University) bool {
	if p.UniversityType == nil {
		return true
	}
	if u.Type == "" || u.Type == catalog.TypeUnknown {
		return true
	}
	return strings.EqualFold(string(u.Type), string(*p.UniversityType))
}

func matchesRankingCeiling(p *Profile, u *catalog.University) bool {
	if p.RankingCeiling == nil {
		return true
	}
	if u.Ranking == nil {
		return true
	}
	return *u.Ranking <= *p.RankingCeiling
}

func matchesDuration(p *Profile, u *catalog.University) bool {
	if p.DurationYears == nil {
		return true
	}
	if u.DurationYears == nil {
		return true
	}
	return *u.DurationYears == *p.DurationYears
}

// matchesPreferenceFlags applies the boolean soft-filters. A requested flag
// only excludes rows explicitly marked false; unknown passes through.
func matchesPreferenceFlags(p *Profile, u *catalog.University) bool {
	if p.WantsResearch && u.ResearchFocused != nil && !*u.ResearchFocused {
		return false
	}
	if p.WantsInternship && u.InternshipOpportunities != nil && !*u.InternshipOpportunities {
		return false
	}
	if p.WantsWorkVisa && u.PostStudyWorkVisa != nil && !*u.PostStudyWorkVisa {
		return false
	}
	return true
}

// matchesLanguage checks the applicant's test score against the university
// minimum, preferring IELTS when both were supplied.
func matchesLanguage(p *Profile, u *catalog.University) bool {
	switch {
	case p.IELTSScore != nil:
		return u.IELTSMin == nil || *p.IELTSScore >= *u.IELTSMin
	case p.TOEFLScore != nil:
		return u.TOEFLMin == nil || *p.TOEFLScore >= *u.TOEFLMin
	default:
		return true
	}
}
