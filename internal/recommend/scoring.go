// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"math"
	"strings"

	"github.com/gradcompass/gradcompass/internal/catalog"
)

// Score computes the content-based match score of one university for one
// applicant. It is a pure function of (profile, row, weights): no
// randomness, no hidden state. The breakdown carries each category's
// weighted contribution; the total is clipped to [0,1].
func Score(p *Profile, u *catalog.University, w ScoringWeights) (float64, ScoreBreakdown) {
	b := ScoreBreakdown{
		AcademicMatch:  w.Academic * academicMatch(p.AcademicStrength(), u.AcademicStrength),
		Prestige:       w.Prestige * prestige(p, u),
		FieldAlignment: w.Field * fieldAlignment(p.Major, u),
		Affordability:  w.Affordability * affordability(p, u),
		LanguageFit:    w.Language * languageFit(p, u),
		Preferences:    w.Preferences * preferenceMatch(p, u),
	}
	b.Total = catalog.Clip01(b.AcademicMatch + b.Prestige + b.FieldAlignment +
		b.Affordability + b.LanguageFit + b.Preferences)
	return b.Total, b
}

// academicMatch rewards applicants at or above the university's academic
// level and penalizes shortfalls harder than surpluses.
func academicMatch(aUser, aUni float64) float64 {
	if aUser >= aUni {
		return math.Min(1, 0.95+(aUser-aUni)*0.1)
	}
	return math.Max(0, 1-(aUni-aUser)*1.5)
}

// prestigeRankSteps maps ranking cutoffs to base prestige scores.
var prestigeRankSteps = []struct {
	maxRank int
	score   float64
}{
	{10, 1.0},
	{50, 0.9},
	{100, 0.7},
	{200, 0.5},
	{500, 0.3},
}

// prestige derives a base score from the ranking step table, falling back to
// the precomputed ranking score when the row has no ranking, then applies
// small boosts for research and industry fit.
func prestige(p *Profile, u *catalog.University) float64 {
	var score float64
	if u.Ranking != nil && *u.Ranking > 0 {
		score = 0.2
		for _, step := range prestigeRankSteps {
			if *u.Ranking <= step.maxRank {
				score = step.score
				break
			}
		}
	} else {
		score = u.RankingScore
	}

	if p.Publications > 2 && u.ResearchFocused != nil && *u.ResearchFocused {
		score += 0.05
	}
	if p.WorkExperience > 3 && u.InternshipOpportunities != nil && *u.InternshipOpportunities {
		score += 0.05
	}
	return math.Min(1, score)
}

// fieldAlignment scores how well the university's programs cover the
// applicant's major. Exact substring match is full credit; otherwise partial
// credit for the fraction of major keywords (longer than 2 characters)
// appearing in the program fields.
func fieldAlignment(major string, u *catalog.University) float64 {
	major = strings.TrimSpace(major)
	if major == "" {
		return 0.5
	}
	if u.HasField(major) {
		return 1.0
	}

	fields := strings.ToLower(u.FieldsJoined())
	var total, found int
	for _, kw := range strings.Fields(strings.ToLower(major)) {
		if len(kw) <= 2 {
			continue
		}
		total++
		if strings.Contains(fields, kw) {
			found++
		}
	}
	if total == 0 || found == 0 {
		return 0.2
	}
	return 0.6 + 0.4*float64(found)/float64(total)
}

// affordability scores tuition against the applicant's budget window.
func affordability(p *Profile, u *catalog.University) float64 {
	if u.TuitionUSD == nil {
		return 0.5
	}
	tuition := *u.TuitionUSD

	if p.BudgetMax <= 0 {
		// No budget supplied: fall back to the snapshot-relative score.
		return u.Affordability
	}

	if tuition > p.BudgetMax {
		overage := (tuition - p.BudgetMax) / p.BudgetMax
		return math.Max(0, 0.5-overage)
	}
	if tuition <= p.BudgetMin {
		// Suspiciously cheap for the applicant's stated range.
		return 0.8
	}

	score := u.Affordability
	midpoint := (p.BudgetMin + p.BudgetMax) / 2
	if midpoint > 0 && math.Abs(tuition-midpoint) <= 0.2*midpoint {
		score = math.Min(1, score*1.15)
	}
	return score
}

// languageFit gives full credit when the applicant meets the university
// minimum, linear partial credit for shortfalls, and a neutral 0.7 when
// either side has no data.
func languageFit(p *Profile, u *catalog.University) float64 {
	switch {
	case p.IELTSScore != nil && u.IELTSMin != nil:
		return shortfallCredit(*p.IELTSScore, *u.IELTSMin, 1.5)
	case p.TOEFLScore != nil && u.TOEFLMin != nil:
		return shortfallCredit(*p.TOEFLScore, *u.TOEFLMin, 25)
	default:
		return 0.7
	}
}

func shortfallCredit(have, need, scale float64) float64 {
	if have >= need {
		return 1.0
	}
	return math.Max(0, 1-(need-have)/scale)
}

// preferenceMatch averages the boolean preference matches over only the
// sub-preferences the applicant actually requested.
func preferenceMatch(p *Profile, u *catalog.University) float64 {
	var requested, matched float64

	check := func(want bool, have *bool) {
		if !want {
			return
		}
		requested++
		if have != nil && *have {
			matched++
		}
	}
	check(p.WantsResearch, u.ResearchFocused)
	check(p.WantsInternship, u.InternshipOpportunities)
	check(p.WantsWorkVisa, u.PostStudyWorkVisa)

	if p.DurationYears != nil {
		requested++
		if u.DurationYears != nil && *u.DurationYears == *p.DurationYears {
			matched++
		}
	}

	if requested == 0 {
		return 0.5
	}
	return matched / requested
}
