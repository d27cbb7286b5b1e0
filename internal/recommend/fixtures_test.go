// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gradcompass/gradcompass/internal/catalog"
)

func f64(v float64) *float64                       { return &v }
func intp(v int) *int                              { return &v }
func boolp(v bool) *bool                           { return &v }
func typep(v catalog.UniversityType) *catalog.UniversityType { return &v }

// testCatalog builds a small but varied snapshot used across the pipeline
// tests. Tuition spans 8000-55000 so affordability normalization has a real
// range; MIT carries top-tier cohort stats for the end-to-end checks.
func testCatalog() *catalog.Snapshot {
	return catalog.NewSnapshot([]catalog.University{
		{
			Name: "MIT", Country: "USA",
			ProgramFields: []string{"Computer Science", "Electrical Engineering"},
			TuitionUSD:    f64(55000), Ranking: intp(1), Type: catalog.TypePrivate,
			DurationYears: intp(2), IELTSMin: f64(7.0), TOEFLMin: f64(100),
			ResearchFocused: boolp(true), InternshipOpportunities: boolp(true),
			PostStudyWorkVisa: boolp(true),
			GREVerbal:         f64(165), GREQuant: f64(168), GREAWA: f64(5.5), CGPA: f64(3.9),
		},
		{
			Name: "Stanford University", Country: "USA",
			ProgramFields: []string{"Computer Science", "AI"},
			TuitionUSD:    f64(52000), Ranking: intp(3), Type: catalog.TypePrivate,
			DurationYears: intp(2), IELTSMin: f64(7.0),
			ResearchFocused: boolp(true), InternshipOpportunities: boolp(true),
			GREVerbal:       f64(163), GREQuant: f64(167), GREAWA: f64(5.0), CGPA: f64(3.85),
		},
		{
			Name: "University of Toronto", Country: "Canada",
			ProgramFields: []string{"Computer Science", "Data Science"},
			TuitionUSD:    f64(30000), Ranking: intp(25), Type: catalog.TypePublic,
			DurationYears: intp(2), IELTSMin: f64(6.5),
			PostStudyWorkVisa: boolp(true),
			GREVerbal:         f64(158), GREQuant: f64(162), GREAWA: f64(4.5), CGPA: f64(3.6),
		},
		{
			Name: "TU Munich", Country: "Germany",
			ProgramFields: []string{"Computer Science", "Robotics"},
			TuitionUSD:    f64(8000), Ranking: intp(40), Type: catalog.TypePublic,
			DurationYears: intp(2), IELTSMin: f64(6.5),
			ResearchFocused: boolp(true),
			GREVerbal:       f64(156), GREQuant: f64(163), GREAWA: f64(4.0), CGPA: f64(3.5),
		},
		{
			Name: "University of Melbourne", Country: "Australia",
			ProgramFields: []string{"Computer Science", "Software Engineering"},
			TuitionUSD:    f64(35000), Ranking: intp(35), Type: catalog.TypePublic,
			DurationYears: intp(2), IELTSMin: f64(6.5),
			InternshipOpportunities: boolp(true), PostStudyWorkVisa: boolp(true),
			GREVerbal:               f64(155), GREQuant: f64(160), GREAWA: f64(4.0), CGPA: f64(3.4),
		},
		{
			Name: "University of Auckland", Country: "New Zealand",
			ProgramFields: []string{"Computer Science"},
			TuitionUSD:    f64(28000), Ranking: intp(85), Type: catalog.TypePublic,
			DurationYears: intp(1), IELTSMin: f64(6.5),
			PostStudyWorkVisa: boolp(true),
			GREVerbal:         f64(152), GREQuant: f64(156), GREAWA: f64(3.8), CGPA: f64(3.2),
		},
		{
			Name: "Central Plains University", Country: "USA",
			ProgramFields: []string{"Business Administration"},
			TuitionUSD:    f64(15000), Type: catalog.TypePublic,
			DurationYears: intp(2),
			GREVerbal:     f64(148), GREQuant: f64(150), GREAWA: f64(3.5), CGPA: f64(3.0),
		},
		{
			// Second MIT program row; the top-N dedup must collapse it.
			Name: "MIT", Country: "USA",
			ProgramFields: []string{"Computational Biology"},
			TuitionUSD:    f64(54000), Ranking: intp(1), Type: catalog.TypePrivate,
			DurationYears: intp(2), IELTSMin: f64(7.0),
			ResearchFocused: boolp(true),
			GREVerbal:       f64(165), GREQuant: f64(168), GREAWA: f64(5.5), CGPA: f64(3.9),
		},
	})
}

func emptyCatalog() *catalog.Snapshot {
	return catalog.NewSnapshot(nil)
}

// testProfile is a solid CS applicant matching most of the fixture catalog.
func testProfile() Profile {
	return Profile{
		GREVerbal: 160, GREQuant: 165, GREAWA: 4.5, CGPA: 3.8,
		IELTSScore: f64(7.5),
		Major:      "Computer Science",
		BudgetMin:  0, BudgetMax: 60000,
	}
}

// memPeerLog is an in-memory PeerLog with optional failure injection.
type memPeerLog struct {
	mu   sync.Mutex
	rows map[string]map[string]Interaction
	fail bool
}

func newMemPeerLog() *memPeerLog {
	return &memPeerLog{rows: make(map[string]map[string]Interaction)}
}

var errPeerLogDown = errors.New("peer log unavailable")

func (m *memPeerLog) UserInteractions(_ context.Context, userID string) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errPeerLogDown
	}
	var out []Interaction
	for _, in := range m.rows[userID] {
		out = append(out, in)
	}
	return out, nil
}

func (m *memPeerLog) AllInteractions(_ context.Context) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errPeerLogDown
	}
	var out []Interaction
	for _, byName := range m.rows {
		for _, in := range byName {
			out = append(out, in)
		}
	}
	return out, nil
}

func (m *memPeerLog) InteractionsSince(_ context.Context, cutoff time.Time) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errPeerLogDown
	}
	var out []Interaction
	for _, byName := range m.rows {
		for _, in := range byName {
			if !in.UpdatedAt.Before(cutoff) {
				out = append(out, in)
			}
		}
	}
	return out, nil
}

func (m *memPeerLog) Record(_ context.Context, in Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errPeerLogDown
	}
	if m.rows[in.UserID] == nil {
		m.rows[in.UserID] = make(map[string]Interaction)
	}
	m.rows[in.UserID][in.UniversityName] = in
	return nil
}

// seed records a user's history with uniform scores.
func (m *memPeerLog) seed(userID string, score float64, names ...string) {
	for _, name := range names {
		_ = m.Record(context.Background(), Interaction{
			UserID:         userID,
			UniversityName: name,
			MatchScore:     score,
			UpdatedAt:      time.Now().UTC(),
		})
	}
}
