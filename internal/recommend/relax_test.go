// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestEnsureMinimumNoopWhenEnough(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	candidates := Filter(snap, &p, zerolog.Nop())
	if len(candidates) < 5 {
		t.Fatalf("fixture should yield >= 5 candidates, got %d", len(candidates))
	}

	got, log := EnsureMinimum(snap, &p, candidates, 5, zerolog.Nop())
	if len(log) != 0 {
		t.Errorf("relaxation must not fire above the minimum, log: %v", log)
	}
	if len(got) != len(candidates) {
		t.Errorf("candidate set changed without relaxation: %d -> %d", len(candidates), len(got))
	}
}

func TestBudgetRelaxation(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	// Toronto at 30000 is reachable with +25% of 25000.
	p.BudgetMax = 25000
	p.PreferredCountries = []string{"Canada"}

	candidates := Filter(snap, &p, zerolog.Nop())
	if len(candidates) != 0 {
		t.Fatalf("expected zero candidates before relaxation, got %v", names(candidates))
	}

	got, log := EnsureMinimum(snap, &p, candidates, 1, zerolog.Nop())
	if len(got) == 0 {
		t.Fatal("budget relaxation should find Toronto")
	}
	if log[0].Step != "relax_budget_25%" {
		t.Errorf("first step should be relax_budget_25%%, got %s", log[0].Step)
	}
}

func TestBudgetRelaxationLogsBeforeFallback(t *testing.T) {
	// No university under $10,000 in range of even +75% of 5000: budget
	// steps must appear in the log and the final set must be non-empty.
	snap := testCatalog()
	p := testProfile()
	p.BudgetMax = 5000

	candidates := Filter(snap, &p, zerolog.Nop())
	got, log := EnsureMinimum(snap, &p, candidates, 5, zerolog.Nop())

	if len(got) == 0 {
		t.Fatal("relaxation must produce a non-empty set")
	}
	foundBudget := false
	for _, step := range log {
		if strings.HasPrefix(step.Step, "relax_budget_") {
			foundBudget = true
			break
		}
	}
	if !foundBudget {
		t.Errorf("log must show a budget relaxation step, got %v", log)
	}
}

func TestCountryRelaxationUsesAdjacency(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	// Auckland is the only NZ row but runs 1-year programs only; asking for
	// 2 years in New Zealand forces country expansion to Australia.
	p.PreferredCountries = []string{"New Zealand"}
	p.DurationYears = intp(2)

	candidates := Filter(snap, &p, zerolog.Nop())
	if len(candidates) != 0 {
		t.Fatalf("expected zero candidates, got %v", names(candidates))
	}

	got, log := EnsureMinimum(snap, &p, candidates, 1, zerolog.Nop())
	if len(got) == 0 {
		t.Fatal("adjacency expansion should reach Australia")
	}
	if !contains(names(got), "University of Melbourne") {
		t.Errorf("expected Melbourne via adjacency, got %v", names(got))
	}

	foundAdjacent := false
	for _, step := range log {
		if step.Step == "relax_country_adjacent" {
			foundAdjacent = true
		}
	}
	if !foundAdjacent {
		t.Errorf("log should record relax_country_adjacent, got %v", log)
	}
}

func TestAcademicFallbackRanksWholeCatalog(t *testing.T) {
	snap := testCatalog()
	p := testProfile()
	p.PreferredCountries = []string{"Japan"}
	p.Major = "Quantum Basket Weaving"

	candidates := Filter(snap, &p, zerolog.Nop())
	got, log := EnsureMinimum(snap, &p, candidates, 5, zerolog.Nop())

	if len(got) != snap.Len() {
		t.Errorf("academic fallback should rank the full catalog: %d != %d", len(got), snap.Len())
	}
	last := log[len(log)-1]
	if last.Step != "fallback_academic" {
		t.Errorf("final step should be fallback_academic, got %s", last.Step)
	}
}

func TestRelaxationNeverNarrows(t *testing.T) {
	snap := testCatalog()
	profiles := []Profile{
		func() Profile { p := testProfile(); p.BudgetMax = 5000; return p }(),
		func() Profile { p := testProfile(); p.PreferredCountries = []string{"Japan"}; return p }(),
		func() Profile {
			p := testProfile()
			p.BudgetMax = 20000
			p.PreferredCountries = []string{"Australia"}
			return p
		}(),
	}

	for _, p := range profiles {
		candidates := Filter(snap, &p, zerolog.Nop())
		got, _ := EnsureMinimum(snap, &p, candidates, 5, zerolog.Nop())
		if len(got) < len(candidates) {
			t.Errorf("relaxation narrowed the set: %d -> %d", len(candidates), len(got))
		}
	}
}

func TestExpandCountries(t *testing.T) {
	got := expandCountries([]string{"Australia"})
	want := []string{"Australia", "New Zealand", "UK"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expandCountries[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Unknown countries pass through unchanged.
	got = expandCountries([]string{"Japan"})
	if len(got) != 1 || got[0] != "Japan" {
		t.Errorf("unknown country should pass through, got %v", got)
	}
}
