// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/gradcompass/gradcompass/internal/catalog"
)

func TestFilterByMajor(t *testing.T) {
	snap := testCatalog()
	p := testProfile()

	got := Filter(snap, &p, zerolog.Nop())
	for _, u := range got {
		if u.Name == "Central Plains University" {
			t.Error("business-only university should not survive a CS major filter")
		}
	}
	if len(got) == 0 {
		t.Fatal("expected candidates for a broad CS profile")
	}
}

func TestFilterByCountry(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.PreferredCountries = []string{"Canada"}

	got := Filter(snap, &p, zerolog.Nop())
	if len(got) != 1 || got[0].Name != "University of Toronto" {
		t.Errorf("expected only Toronto, got %v", names(got))
	}
}

func TestFilterCountryAnyIsWildcard(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.PreferredCountries = []string{"Any"}

	withAny := Filter(snap, &p, zerolog.Nop())
	p.PreferredCountries = nil
	without := Filter(snap, &p, zerolog.Nop())

	if len(withAny) != len(without) {
		t.Errorf("'Any' should not filter: got %d vs %d", len(withAny), len(without))
	}
}

func TestFilterByBudget(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.BudgetMax = 31000

	got := Filter(snap, &p, zerolog.Nop())
	for _, u := range got {
		if u.TuitionUSD != nil && *u.TuitionUSD > 31000 {
			t.Errorf("%s exceeds budget: %f", u.Name, *u.TuitionUSD)
		}
	}
}

func TestFilterUnknownTuitionPasses(t *testing.T) {
	snap := catalog.NewSnapshot([]catalog.University{
		{Name: "No Tuition U", Country: "X", ProgramFields: []string{"Computer Science"}},
	})
	p := testProfile()
	p.BudgetMax = 1000

	got := Filter(snap, &p, zerolog.Nop())
	if len(got) != 1 {
		t.Error("unknown tuition must be a wildcard, never excluded")
	}
}

func TestFilterByType(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.UniversityType = typep(catalog.TypePublic)

	got := Filter(snap, &p, zerolog.Nop())
	for _, u := range got {
		if u.Type == catalog.TypePrivate {
			t.Errorf("%s is private, should be excluded", u.Name)
		}
	}
}

func TestFilterByRankingCeiling(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.RankingCeiling = intp(30)

	got := Filter(snap, &p, zerolog.Nop())
	for _, u := range got {
		if u.Ranking != nil && *u.Ranking > 30 {
			t.Errorf("%s rank %d exceeds ceiling", u.Name, *u.Ranking)
		}
	}
	// Central Plains has no ranking but fails the major filter; a row with
	// unknown ranking must pass the ceiling itself.
	p.Major = ""
	got = Filter(snap, &p, zerolog.Nop())
	if !contains(names(got), "Central Plains University") {
		t.Error("unknown ranking should pass the ceiling filter")
	}
}

func TestFilterByDuration(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.DurationYears = intp(1)

	got := Filter(snap, &p, zerolog.Nop())
	if len(got) != 1 || got[0].Name != "University of Auckland" {
		t.Errorf("expected only the 1-year program, got %v", names(got))
	}
}

func TestFilterByPreferenceFlags(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.WantsResearch = true

	got := Filter(snap, &p, zerolog.Nop())
	for _, u := range got {
		if u.ResearchFocused != nil && !*u.ResearchFocused {
			t.Errorf("%s explicitly not research-focused, should be excluded", u.Name)
		}
	}
	// Toronto has no research flag and must survive (missing = wildcard).
	if !contains(names(got), "University of Toronto") {
		t.Error("unknown research flag should not exclude")
	}
}

func TestFilterByLanguage(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.IELTSScore = f64(6.5)

	got := Filter(snap, &p, zerolog.Nop())
	if contains(names(got), "MIT") {
		t.Error("IELTS 6.5 below MIT's 7.0 minimum, should be excluded")
	}
	if !contains(names(got), "University of Toronto") {
		t.Error("IELTS 6.5 meets Toronto's 6.5 minimum, should survive")
	}
}

func TestFilterIdempotent(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.PreferredCountries = []string{"USA", "Canada"}
	p.BudgetMax = 56000

	once := Filter(snap, &p, zerolog.Nop())
	twice := Filter(catalog.NewSnapshot(once), &p, zerolog.Nop())

	if len(once) != len(twice) {
		t.Errorf("filter not idempotent: %d then %d", len(once), len(twice))
	}
}

func TestFilterEmptyResultIsValid(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.PreferredCountries = []string{"Japan"}

	got := Filter(snap, &p, zerolog.Nop())
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", names(got))
	}
}

func names(us []catalog.University) []string {
	out := make([]string, len(us))
	for i := range us {
		out[i] = us[i].Name
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
