// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gradcompass/gradcompass/internal/catalog"
	"github.com/gradcompass/gradcompass/internal/logging"
)

// Universities loads every catalog row in insertion order.
func (db *DB) Universities(ctx context.Context) ([]catalog.University, error) {
	start := time.Now()
	query := `SELECT univ_name, country, program_fields, tuition_usd, ranking,
		university_type, duration_years, ielts_min, toefl_min,
		research_focused, internship_opportunities, post_study_work_visa,
		gre_v, gre_q, gre_a, cgpa
		FROM universities`

	rows, err := db.conn.QueryContext(ctx, query)
	observe("universities", start, err)
	if err != nil {
		return nil, fmt.Errorf("query universities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []catalog.University
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate universities: %w", err)
	}
	return out, nil
}

// CountUniversities returns the number of catalog rows.
func (db *DB) CountUniversities(ctx context.Context) (int, error) {
	start := time.Now()
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM universities`).Scan(&n)
	observe("count_universities", start, err)
	if err != nil {
		return 0, fmt.Errorf("count universities: %w", err)
	}
	return n, nil
}

// ImportCSV bulk-loads catalog rows from a CSV file using DuckDB's
// read_csv_auto, deduplicating on (name, country, fields) and keeping the
// best-ranked row per key. Existing rows are replaced.
func (db *DB) ImportCSV(ctx context.Context, path string) (int, error) {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM universities`); err != nil {
		observe("import_csv", start, err)
		return 0, fmt.Errorf("clear universities: %w", err)
	}

	insert := `INSERT INTO universities
		SELECT univ_name, country, program_fields, tuition_usd, ranking,
			university_type, duration_years, ielts_min, toefl_min,
			research_focused, internship_opportunities, post_study_work_visa,
			gre_v, gre_q, gre_a, cgpa
		FROM read_csv_auto(?, header = true)
		QUALIFY row_number() OVER (
			PARTITION BY lower(univ_name), lower(country), lower(program_fields)
			ORDER BY ranking NULLS LAST
		) = 1`

	res, err := tx.ExecContext(ctx, insert, path)
	observe("import_csv", start, err)
	if err != nil {
		return 0, fmt.Errorf("import csv %s: %w", path, err)
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	imported, _ := res.RowsAffected()
	logging.Info().
		Str("path", path).
		Int64("rows", imported).
		Msg("catalog imported from CSV")
	return int(imported), nil
}

// InsertUniversities writes catalog rows one by one. Used by tests and small
// seed flows; bulk loads should use ImportCSV.
func (db *DB) InsertUniversities(ctx context.Context, rows []catalog.University) error {
	start := time.Now()
	stmt, err := db.prepare(ctx, `INSERT INTO universities VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	for i := range rows {
		u := &rows[i]
		_, err = stmt.ExecContext(ctx,
			u.Name, nullIfEmpty(u.Country), nullIfEmpty(u.FieldsJoined()),
			u.TuitionUSD, u.Ranking, nullIfEmpty(string(u.Type)), u.DurationYears,
			u.IELTSMin, u.TOEFLMin,
			u.ResearchFocused, u.InternshipOpportunities, u.PostStudyWorkVisa,
			u.GREVerbal, u.GREQuant, u.GREAWA, u.CGPA)
		if err != nil {
			observe("insert_universities", start, err)
			return fmt.Errorf("insert university %s: %w", u.Name, err)
		}
	}
	observe("insert_universities", start, nil)
	return nil
}

// LoadSnapshot builds a catalog snapshot from the stored rows.
func (db *DB) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	rows, err := db.Universities(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewSnapshot(rows), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUniversity(rows rowScanner) (catalog.University, error) {
	var (
		u          catalog.University
		country    sql.NullString
		fields     sql.NullString
		tuition    sql.NullFloat64
		ranking    sql.NullInt64
		utype      sql.NullString
		duration   sql.NullInt64
		ielts      sql.NullFloat64
		toefl      sql.NullFloat64
		research   sql.NullBool
		internship sql.NullBool
		visa       sql.NullBool
		greV       sql.NullFloat64
		greQ       sql.NullFloat64
		greA       sql.NullFloat64
		cohortCGPA sql.NullFloat64
	)

	err := rows.Scan(&u.Name, &country, &fields, &tuition, &ranking, &utype,
		&duration, &ielts, &toefl, &research, &internship, &visa,
		&greV, &greQ, &greA, &cohortCGPA)
	if err != nil {
		return u, fmt.Errorf("scan university: %w", err)
	}

	u.Country = country.String
	u.ProgramFields = splitFields(fields.String)
	u.TuitionUSD = floatPtr(tuition)
	u.Ranking = intPtr(ranking)
	u.Type = parseType(utype)
	u.DurationYears = intPtr(duration)
	u.IELTSMin = floatPtr(ielts)
	u.TOEFLMin = floatPtr(toefl)
	u.ResearchFocused = boolPtr(research)
	u.InternshipOpportunities = boolPtr(internship)
	u.PostStudyWorkVisa = boolPtr(visa)
	u.GREVerbal = floatPtr(greV)
	u.GREQuant = floatPtr(greQ)
	u.GREAWA = floatPtr(greA)
	u.CGPA = floatPtr(cohortCGPA)
	return u, nil
}

func splitFields(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseType(v sql.NullString) catalog.UniversityType {
	if !v.Valid || v.String == "" {
		return catalog.TypeUnknown
	}
	switch {
	case strings.EqualFold(v.String, string(catalog.TypePublic)):
		return catalog.TypePublic
	case strings.EqualFold(v.String, string(catalog.TypePrivate)):
		return catalog.TypePrivate
	default:
		return catalog.TypeUnknown
	}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func boolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}

func nullIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
