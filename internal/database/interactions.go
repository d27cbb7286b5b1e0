// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gradcompass/gradcompass/internal/recommend"
)

// PeerLogStore implements recommend.PeerLog on top of the recommendations
// table. One row exists per (user, university); repeats upsert the score and
// timestamp.
type PeerLogStore struct {
	db *DB
}

// PeerLog returns the peer interaction log backed by this database.
func (db *DB) PeerLog() *PeerLogStore {
	return &PeerLogStore{db: db}
}

const interactionColumns = `user_id, university_name, country, match_score, updated_at`

// UserInteractions returns all rows for one user.
func (s *PeerLogStore) UserInteractions(ctx context.Context, userID string) ([]recommend.Interaction, error) {
	start := time.Now()
	stmt, err := s.db.prepare(ctx, `SELECT `+interactionColumns+`
		FROM recommendations WHERE user_id = ?`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, userID)
	observe("user_interactions", start, err)
	if err != nil {
		return nil, fmt.Errorf("query user interactions: %w", err)
	}
	return scanInteractions(rows)
}

// AllInteractions returns every row in the log.
func (s *PeerLogStore) AllInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	start := time.Now()
	rows, err := s.db.conn.QueryContext(ctx, `SELECT `+interactionColumns+`
		FROM recommendations`)
	observe("all_interactions", start, err)
	if err != nil {
		return nil, fmt.Errorf("query all interactions: %w", err)
	}
	return scanInteractions(rows)
}

// InteractionsSince returns rows updated at or after cutoff.
func (s *PeerLogStore) InteractionsSince(ctx context.Context, cutoff time.Time) ([]recommend.Interaction, error) {
	start := time.Now()
	stmt, err := s.db.prepare(ctx, `SELECT `+interactionColumns+`
		FROM recommendations WHERE updated_at >= ?`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, cutoff)
	observe("interactions_since", start, err)
	if err != nil {
		return nil, fmt.Errorf("query interactions since %s: %w", cutoff, err)
	}
	return scanInteractions(rows)
}

// Record upserts one interaction keyed by (user, university).
func (s *PeerLogStore) Record(ctx context.Context, in recommend.Interaction) error {
	start := time.Now()
	stmt, err := s.db.prepare(ctx, `INSERT INTO recommendations
		(user_id, university_name, country, match_score, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, university_name) DO UPDATE SET
			country = excluded.country,
			match_score = excluded.match_score,
			updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx, in.UserID, in.UniversityName,
		nullIfEmpty(in.Country), in.MatchScore, in.UpdatedAt)
	observe("record_interaction", start, err)
	if err != nil {
		return fmt.Errorf("record interaction for %s/%s: %w", in.UserID, in.UniversityName, err)
	}
	return nil
}

func scanInteractions(rows *sql.Rows) ([]recommend.Interaction, error) {
	defer func() { _ = rows.Close() }()

	var out []recommend.Interaction
	for rows.Next() {
		var (
			in      recommend.Interaction
			country sql.NullString
		)
		if err := rows.Scan(&in.UserID, &in.UniversityName, &country,
			&in.MatchScore, &in.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in.Country = country.String
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}
