// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

// Package catalog holds the in-memory university catalog used for matching.
// The catalog is loaded once at startup and held immutable for the process
// lifetime; concurrent requests read it without locking. Engineered fields
// (academic strength, ranking score, affordability) are computed when a
// snapshot is built and are only meaningful relative to that snapshot.
package catalog

import (
	"math"
	"strings"
)

// UniversityType classifies a university's funding model.
type UniversityType string

// Known university types. Unknown means the source data carried no value;
// it never excludes a row during filtering.
const (
	TypePublic  UniversityType = "Public"
	TypePrivate UniversityType = "Private"
	TypeUnknown UniversityType = "Unknown"
)

// worstCaseRanking substitutes for a missing ranking when computing the
// log-scaled ranking score.
const worstCaseRanking = 999

// University is one program row in the catalog. Optional attributes use
// pointer types; nil means the source data had no value, which filters treat
// as a wildcard and scoring treats as neutral.
type University struct {
	Name          string   `json:"name"`
	Country       string   `json:"country"`
	ProgramFields []string `json:"program_fields"`

	TuitionUSD    *float64       `json:"tuition_usd,omitempty"`
	Ranking       *int           `json:"ranking,omitempty"`
	Type          UniversityType `json:"university_type"`
	DurationYears *int           `json:"duration_years,omitempty"`
	IELTSMin      *float64       `json:"ielts_min,omitempty"`
	TOEFLMin      *float64       `json:"toefl_min,omitempty"`

	ResearchFocused         *bool `json:"research_focused,omitempty"`
	InternshipOpportunities *bool `json:"internship_opportunities,omitempty"`
	PostStudyWorkVisa       *bool `json:"post_study_work_visa,omitempty"`

	// Admitted-cohort academic averages used to derive AcademicStrength.
	GREVerbal *float64 `json:"gre_v,omitempty"`
	GREQuant  *float64 `json:"gre_q,omitempty"`
	GREAWA    *float64 `json:"gre_a,omitempty"`
	CGPA      *float64 `json:"cgpa,omitempty"`

	// Engineered fields, computed by NewSnapshot. All clipped to [0,1].
	AcademicStrength float64 `json:"academic_strength"`
	RankingScore     float64 `json:"ranking_score"`
	Affordability    float64 `json:"affordability"`
}

// Cohort defaults applied when a row has no admitted-cohort statistics.
const (
	defaultGRESection = 150.0
	defaultGREAWA     = 4.0
	defaultCGPA       = 3.0
)

// HasField reports whether the university's program fields contain the given
// text as a case-insensitive substring. An empty field list matches nothing.
func (u *University) HasField(text string) bool {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return false
	}
	for _, f := range u.ProgramFields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// FieldsJoined returns the program fields as a single comma-joined string,
// matching the representation used in the source dataset.
func (u *University) FieldsJoined() string {
	return strings.Join(u.ProgramFields, ", ")
}

// Norm linearly normalizes v into [0,1] over [lo,hi], clipping at both ends.
func Norm(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return Clip01((v - lo) / (hi - lo))
}

// Clip01 clips v to the [0,1] interval.
func Clip01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// AcademicStrengthFrom computes the weighted normalized academic composite
// used for both applicant profiles and university cohorts:
// 0.25*norm(greV) + 0.35*norm(greQ) + 0.15*(greA/6) + 0.25*(cgpa/4).
func AcademicStrengthFrom(greV, greQ, greA, cgpa float64) float64 {
	s := 0.25*Norm(greV, 130, 170) +
		0.35*Norm(greQ, 130, 170) +
		0.15*Clip01(greA/6) +
		0.25*Clip01(cgpa/4)
	return Clip01(s)
}

// computeAcademicStrength derives a row's academic strength from its cohort
// averages, substituting dataset-wide defaults for missing values.
func computeAcademicStrength(u *University) float64 {
	greV := valueOr(u.GREVerbal, defaultGRESection)
	greQ := valueOr(u.GREQuant, defaultGRESection)
	greA := valueOr(u.GREAWA, defaultGREAWA)
	cgpa := valueOr(u.CGPA, defaultCGPA)
	return AcademicStrengthFrom(greV, greQ, greA, cgpa)
}

// computeRankingScore maps a ranking to a log-scaled score in [0,1], where
// rank 1 scores 1.0 and rank 1000 (or missing) approaches 0.
func computeRankingScore(ranking *int) float64 {
	rank := worstCaseRanking
	if ranking != nil && *ranking > 0 {
		rank = *ranking
	}
	return Clip01(1 - math.Log10(float64(rank))/3)
}

func valueOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}
