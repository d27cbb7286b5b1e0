// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package catalog

import (
	"math"
	"testing"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func TestAcademicStrengthFrom(t *testing.T) {
	tests := []struct {
		name                   string
		greV, greQ, greA, cgpa float64
		want                   float64
	}{
		{"perfect", 170, 170, 6, 4, 1.0},
		{"floor", 130, 130, 0, 0, 0.0},
		{"midpoint", 150, 150, 3, 2, 0.25*0.5 + 0.35*0.5 + 0.15*0.5 + 0.25*0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AcademicStrengthFrom(tt.greV, tt.greQ, tt.greA, tt.cgpa)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestAcademicStrengthInUnitInterval(t *testing.T) {
	// Even nonsense inputs must stay clipped.
	for _, v := range []float64{-100, 0, 130, 170, 500} {
		got := AcademicStrengthFrom(v, v, v, v)
		if got < 0 || got > 1 {
			t.Errorf("AcademicStrengthFrom(%f,...) = %f out of [0,1]", v, got)
		}
	}
}

func TestComputeRankingScore(t *testing.T) {
	rank1 := computeRankingScore(intp(1))
	if rank1 != 1.0 {
		t.Errorf("rank 1 should score 1.0, got %f", rank1)
	}

	rank10 := computeRankingScore(intp(10))
	rank100 := computeRankingScore(intp(100))
	if rank10 <= rank100 {
		t.Errorf("rank 10 (%f) should outscore rank 100 (%f)", rank10, rank100)
	}

	missing := computeRankingScore(nil)
	if missing >= rank100 {
		t.Errorf("missing ranking (%f) should score below rank 100 (%f)", missing, rank100)
	}
	if missing < 0 || missing > 1 {
		t.Errorf("missing ranking score %f out of [0,1]", missing)
	}
}

func TestHasField(t *testing.T) {
	u := University{ProgramFields: []string{"Computer Science", "Data Engineering"}}

	if !u.HasField("computer science") {
		t.Error("case-insensitive exact field should match")
	}
	if !u.HasField("Data") {
		t.Error("substring should match")
	}
	if u.HasField("Philosophy") {
		t.Error("absent field should not match")
	}
	if u.HasField("") {
		t.Error("empty needle should not match")
	}

	empty := University{}
	if empty.HasField("anything") {
		t.Error("empty field list should never match")
	}
}

func TestSnapshotDedup(t *testing.T) {
	rows := []University{
		{Name: "MIT", Country: "USA", ProgramFields: []string{"Computer Science"}},
		{Name: "mit", Country: "usa", ProgramFields: []string{"Computer Science"}},
		{Name: "MIT", Country: "USA", ProgramFields: []string{"Mechanical Engineering"}},
		{Name: "Oxford", Country: "UK", ProgramFields: []string{"Computer Science"}},
	}

	s := NewSnapshot(rows)
	if s.Len() != 3 {
		t.Fatalf("expected 3 rows after dedup, got %d", s.Len())
	}
	// Different program rows for the same university survive dedup.
	if s.Universities()[1].Name != "MIT" {
		t.Errorf("expected second MIT program row kept, got %s", s.Universities()[1].Name)
	}
}

func TestSnapshotAffordability(t *testing.T) {
	rows := []University{
		{Name: "Cheap U", Country: "A", TuitionUSD: f64(10000)},
		{Name: "Mid U", Country: "B", TuitionUSD: f64(30000)},
		{Name: "Expensive U", Country: "C", TuitionUSD: f64(50000)},
		{Name: "Unknown U", Country: "D"},
	}

	s := NewSnapshot(rows)
	us := s.Universities()

	if us[0].Affordability != 1.0 {
		t.Errorf("cheapest should score 1.0, got %f", us[0].Affordability)
	}
	if us[2].Affordability != 0.0 {
		t.Errorf("most expensive should score 0.0, got %f", us[2].Affordability)
	}
	if math.Abs(us[1].Affordability-0.5) > 1e-9 {
		t.Errorf("midpoint should score 0.5, got %f", us[1].Affordability)
	}
	if us[3].Affordability != 0.5 {
		t.Errorf("unknown tuition should score neutral 0.5, got %f", us[3].Affordability)
	}
}

func TestSnapshotUniformTuition(t *testing.T) {
	rows := []University{
		{Name: "A", Country: "X", TuitionUSD: f64(20000)},
		{Name: "B", Country: "Y", TuitionUSD: f64(20000)},
	}

	s := NewSnapshot(rows)
	for _, u := range s.Universities() {
		if u.Affordability != 0.5 {
			t.Errorf("degenerate tuition range should yield neutral 0.5, got %f", u.Affordability)
		}
	}
}

func TestSnapshotCountries(t *testing.T) {
	rows := []University{
		{Name: "A", Country: "USA"},
		{Name: "B", Country: "UK"},
		{Name: "C", Country: "USA"},
	}

	s := NewSnapshot(rows)
	got := s.Countries()
	want := []string{"USA", "UK"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("countries[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSnapshotAcademicStrengthDefaults(t *testing.T) {
	rows := []University{
		{Name: "No Stats U", Country: "X"},
		{Name: "Strong U", Country: "Y", GREVerbal: f64(165), GREQuant: f64(168), GREAWA: f64(5.5), CGPA: f64(3.9)},
	}

	s := NewSnapshot(rows)
	us := s.Universities()

	wantDefault := AcademicStrengthFrom(150, 150, 4.0, 3.0)
	if math.Abs(us[0].AcademicStrength-wantDefault) > 1e-9 {
		t.Errorf("missing cohort stats should use defaults: got %f, want %f",
			us[0].AcademicStrength, wantDefault)
	}
	if us[1].AcademicStrength <= us[0].AcademicStrength {
		t.Error("stronger cohort should yield higher academic strength")
	}
}
