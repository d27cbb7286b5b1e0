// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/gradcompass/gradcompass/internal/catalog"
)

// Profile is an applicant's scores, budget and preferences for one
// recommendation request. Optional constraints use pointer types; nil means
// "no constraint" and never excludes a catalog row.
type Profile struct {
	GREVerbal float64 `json:"gre_v" validate:"min=130,max=170"`
	GREQuant  float64 `json:"gre_q" validate:"min=130,max=170"`
	GREAWA    float64 `json:"gre_a" validate:"min=0,max=6"`
	CGPA      float64 `json:"cgpa" validate:"min=0,max=4"`

	// IELTS is preferred over TOEFL when both are present.
	IELTSScore *float64 `json:"ielts,omitempty" validate:"omitempty,min=0,max=9"`
	TOEFLScore *float64 `json:"toefl,omitempty" validate:"omitempty,min=0,max=120"`

	Major          string  `json:"major,omitempty"`
	WorkExperience float64 `json:"work_experience" validate:"min=0"`
	Publications   int     `json:"publications" validate:"min=0"`

	// PreferredCountries empty means any country.
	PreferredCountries []string `json:"preferred_countries,omitempty"`

	BudgetMin float64 `json:"budget_min" validate:"min=0"`
	BudgetMax float64 `json:"budget_max" validate:"min=0,gtefield=BudgetMin"`

	UniversityType *catalog.UniversityType `json:"university_type,omitempty"`
	DurationYears  *int                    `json:"duration_years,omitempty" validate:"omitempty,min=1"`
	RankingCeiling *int                    `json:"ranking_ceiling,omitempty" validate:"omitempty,min=1"`

	WantsResearch   bool `json:"wants_research"`
	WantsInternship bool `json:"wants_internship"`
	WantsWorkVisa   bool `json:"wants_work_visa"`
}

// AcademicStrength computes the applicant's weighted academic composite on
// the same scale as the catalog's engineered academic_strength field.
func (p *Profile) AcademicStrength() float64 {
	return catalog.AcademicStrengthFrom(p.GREVerbal, p.GREQuant, p.GREAWA, p.CGPA)
}

// HasCountryPreference reports whether the profile constrains countries.
// "Any" entries are ignored, matching the wildcard convention of the
// source dataset.
func (p *Profile) HasCountryPreference() bool {
	return len(p.countryPreferences()) > 0
}

func (p *Profile) countryPreferences() []string {
	out := make([]string, 0, len(p.PreferredCountries))
	for _, c := range p.PreferredCountries {
		if c == "" || strings.EqualFold(c, "any") {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ScoreBreakdown carries the weighted contribution of each scoring category.
// The sub-scores sum to Total, which is clipped to [0,1].
type ScoreBreakdown struct {
	AcademicMatch  float64 `json:"academic_match"`
	Prestige       float64 `json:"university_prestige"`
	FieldAlignment float64 `json:"field_alignment"`
	Affordability  float64 `json:"affordability"`
	LanguageFit    float64 `json:"language_fit"`
	Preferences    float64 `json:"preferences"`
	Total          float64 `json:"total"`
}

// MatchResult is one ranked university with full scoring provenance.
type MatchResult struct {
	University catalog.University `json:"university"`

	// Score is the content-based total in [0,1].
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"score_breakdown"`

	// ContentScore is Score min-max normalized to [0,100] over the result
	// set; populated during blending.
	ContentScore float64 `json:"content_score,omitempty"`

	// CollaborativeScore is the similarity-weighted average of peer match
	// scores (percentage scale), present only when peers recommended this
	// university.
	CollaborativeScore float64 `json:"collaborative_score,omitempty"`
	HasCollaborative   bool    `json:"has_collaborative,omitempty"`

	// HybridScore is the blend of ContentScore and CollaborativeScore used
	// for final ordering when collaborative data is available.
	HybridScore float64 `json:"hybrid_score,omitempty"`

	// CollaborativeOnly marks universities injected from peer history that
	// were absent from the content-based results.
	CollaborativeOnly bool `json:"collaborative_only,omitempty"`

	// RecommendedBy counts how many similar users received this university.
	RecommendedBy int `json:"recommended_by,omitempty"`

	// Relaxed marks results produced after constraint relaxation.
	Relaxed bool `json:"relaxed"`
}

// RelaxationStep records one constraint relaxation applied while expanding
// an underfilled candidate set. The log is user-facing transparency data.
type RelaxationStep struct {
	Step string `json:"step"`
	Note string `json:"note"`
}

// Result codes reported in Response.Code.
const (
	CodeOK        = "ok"
	CodeNoMatches = "no_matches"
)

// Request is one recommendation request.
type Request struct {
	// UserID enables collaborative blending and peer log persistence when
	// set. Anonymous requests get content-only ranking.
	UserID string `json:"user_id,omitempty"`

	Profile Profile `json:"profile"`

	// K is the number of results wanted; 0 uses the configured default.
	K int `json:"k,omitempty"`
}

// Response is the ranked recommendation list plus provenance.
type Response struct {
	Code            string           `json:"code"`
	Results         []MatchResult    `json:"results"`
	TotalCandidates int              `json:"total_candidates"`
	Relaxed         bool             `json:"relaxed"`
	RelaxationLog   []RelaxationStep `json:"relaxation_log,omitempty"`
	Collaborative   bool             `json:"collaborative"`
	GeneratedAt     time.Time        `json:"generated_at"`
	FromCache       bool             `json:"-"`
}

// Interaction is one peer log row: a university served to a user with its
// match score (percentage scale) at a point in time. One row exists per
// (user, university) pair; repeats upsert.
type Interaction struct {
	UserID         string    `json:"user_id"`
	UniversityName string    `json:"university_name"`
	Country        string    `json:"country,omitempty"`
	MatchScore     float64   `json:"match_score"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PeerLog is the collaborative blender's read/write boundary with the
// interaction store. Reads may be slightly stale; the blender only needs
// "most recent write visible" semantics.
type PeerLog interface {
	// UserInteractions returns all rows for one user.
	UserInteractions(ctx context.Context, userID string) ([]Interaction, error)

	// AllInteractions returns all rows across users.
	AllInteractions(ctx context.Context) ([]Interaction, error)

	// InteractionsSince returns rows updated at or after cutoff.
	InteractionsSince(ctx context.Context, cutoff time.Time) ([]Interaction, error)

	// Record upserts one row keyed by (user, university).
	Record(ctx context.Context, in Interaction) error
}

// SimilarUser is a peer ranked by Jaccard similarity to a given user.
type SimilarUser struct {
	UserID             string   `json:"user_id"`
	Similarity         float64  `json:"similarity"`
	CommonUniversities []string `json:"common_universities"`
}

// TrendingUniversity aggregates recent peer activity for one university.
type TrendingUniversity struct {
	Name                string  `json:"name"`
	Country             string  `json:"country,omitempty"`
	RecommendationCount int     `json:"recommendation_count"`
	AverageScore        float64 `json:"average_score"`
}

// UserGroup is a cluster of mutually similar users.
type UserGroup struct {
	Members           []string `json:"members"`
	AverageSimilarity float64  `json:"average_similarity"`
	SharedUniversity  string   `json:"shared_university,omitempty"`
}
