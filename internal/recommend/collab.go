// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/gradcompass/gradcompass/internal/metrics"
)

// Blender combines content-based rankings with peer-similarity signals from
// the interaction log. Every read goes through the PeerLog boundary; any
// failure there degrades silently to content-only ranking, so a cold start
// or a broken store never errors to the caller.
type Blender struct {
	peerLog PeerLog
	cfg     CollaborativeConfig
	logger  zerolog.Logger
}

// NewBlender creates a Blender reading peer history from peerLog.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBlender(peerLog PeerLog, cfg CollaborativeConfig, logger zerolog.Logger) *Blender {
	return &Blender{
		peerLog: peerLog,
		cfg:     cfg,
		logger:  logger.With().Str("component", "blender").Logger(),
	}
}

// collabSignal aggregates peer evidence for one university. name keeps the
// first-seen original casing; aggregation keys are lowercased.
type collabSignal struct {
	name          string
	country       string
	weightedScore float64
	totalWeight   float64
	count         int
}

func (s collabSignal) score() float64 {
	if s.totalWeight == 0 {
		return 0
	}
	return s.weightedScore / s.totalWeight
}

// Blend produces the hybrid ranking for userID. Content scores are min-max
// normalized to [0,100] over the result set; where peers recommended a
// university, hybrid = (1-w)*content + w*collab, otherwise the normalized
// content score stands alone. Up to MaxInjected universities recommended by
// peers but absent from the content results are appended, then everything is
// re-sorted by hybrid score.
func (b *Blender) Blend(ctx context.Context, userID string, content []MatchResult) []MatchResult {
	normalizeContent(content)

	if userID == "" || b.peerLog == nil {
		metrics.CollaborativeBlendsTotal.WithLabelValues("content_only").Inc()
		return content
	}

	signals, ownSet, err := b.peerSignals(ctx, userID)
	if err != nil {
		metrics.CollaborativeBlendsTotal.WithLabelValues("degraded").Inc()
		b.logger.Info().Err(err).Str("user_id", userID).
			Msg("peer log unavailable, serving content-only ranking")
		return content
	}
	if len(signals) == 0 {
		metrics.CollaborativeBlendsTotal.WithLabelValues("content_only").Inc()
		return content
	}

	inContent := make(map[string]bool, len(content))
	for i := range content {
		key := nameKey(content[i].University.Name)
		inContent[key] = true
		sig, ok := signals[key]
		if !ok {
			content[i].HybridScore = content[i].ContentScore
			continue
		}
		content[i].HasCollaborative = true
		content[i].CollaborativeScore = sig.score()
		content[i].RecommendedBy = sig.count
		content[i].HybridScore = (1-b.cfg.Weight)*content[i].ContentScore +
			b.cfg.Weight*sig.score()
	}

	content = append(content, b.injectCollaborativeOnly(signals, inContent, ownSet)...)

	sort.SliceStable(content, func(i, j int) bool {
		return content[i].HybridScore > content[j].HybridScore
	})

	metrics.CollaborativeBlendsTotal.WithLabelValues("blended").Inc()
	return content
}

// normalizeContent min-max normalizes content scores to [0,100] over the
// result set. A degenerate range maps everything to 100.
func normalizeContent(results []MatchResult) {
	if len(results) == 0 {
		return
	}
	lo, hi := results[0].Score, results[0].Score
	for i := range results {
		if results[i].Score < lo {
			lo = results[i].Score
		}
		if results[i].Score > hi {
			hi = results[i].Score
		}
	}
	for i := range results {
		if hi > lo {
			results[i].ContentScore = (results[i].Score - lo) / (hi - lo) * 100
		} else {
			results[i].ContentScore = 100
		}
		results[i].HybridScore = results[i].ContentScore
	}
}

// peerSignals computes similarity-weighted collaborative scores over the
// universities recommended to the user's most similar peers, excluding
// anything already in the user's own history.
func (b *Blender) peerSignals(ctx context.Context, userID string) (map[string]collabSignal, map[string]bool, error) {
	all, err := b.peerLog.AllInteractions(ctx)
	if err != nil {
		return nil, nil, err
	}

	byUser := groupByUser(all)
	ownSet := nameSet(byUser[userID])

	peers := rankSimilarUsers(userID, byUser, b.cfg.SimilarityThreshold, b.cfg.SimilarUsers)
	if len(peers) == 0 {
		return nil, ownSet, nil
	}

	signals := make(map[string]collabSignal)
	for _, peer := range peers {
		for _, in := range byUser[peer.UserID] {
			key := nameKey(in.UniversityName)
			if ownSet[key] {
				continue
			}
			sig := signals[key]
			if sig.name == "" {
				sig.name = in.UniversityName
				sig.country = in.Country
			}
			sig.weightedScore += in.MatchScore * peer.Similarity
			sig.totalWeight += peer.Similarity
			sig.count++
			signals[key] = sig
		}
	}
	return signals, ownSet, nil
}

// injectCollaborativeOnly builds entries for the strongest peer-recommended
// universities missing from the content results, capped at MaxInjected.
func (b *Blender) injectCollaborativeOnly(signals map[string]collabSignal,
	inContent, ownSet map[string]bool) []MatchResult {
	type namedSignal struct {
		key string
		sig collabSignal
	}
	missing := make([]namedSignal, 0, len(signals))
	for key, sig := range signals {
		if inContent[key] || ownSet[key] {
			continue
		}
		missing = append(missing, namedSignal{key, sig})
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].sig.score() > missing[j].sig.score()
	})

	max := b.cfg.MaxInjected
	if max <= 0 || max > len(missing) {
		max = len(missing)
	}

	out := make([]MatchResult, 0, max)
	for _, ns := range missing[:max] {
		r := MatchResult{
			CollaborativeScore: ns.sig.score(),
			HasCollaborative:   true,
			CollaborativeOnly:  true,
			RecommendedBy:      ns.sig.count,
			HybridScore:        b.cfg.Weight * ns.sig.score(),
		}
		r.University.Name = ns.sig.name
		r.University.Country = ns.sig.country
		out = append(out, r)
	}
	return out
}

// SimilarUsers returns the top peers by Jaccard similarity over
// recommended-university name sets, restricted to similarity above the
// configured threshold (strictly above zero in all cases).
func (b *Blender) SimilarUsers(ctx context.Context, userID string) ([]SimilarUser, error) {
	all, err := b.peerLog.AllInteractions(ctx)
	if err != nil {
		return nil, err
	}
	byUser := groupByUser(all)
	peers := rankSimilarUsers(userID, byUser, b.cfg.SimilarityThreshold, b.cfg.SimilarUsers)

	// Attach the common universities for presentation, using the original
	// casing from the log rows.
	names := make(map[string]string, len(all))
	for _, in := range all {
		if _, ok := names[nameKey(in.UniversityName)]; !ok {
			names[nameKey(in.UniversityName)] = in.UniversityName
		}
	}
	own := nameSet(byUser[userID])
	for i := range peers {
		other := nameSet(byUser[peers[i].UserID])
		for key := range own {
			if other[key] {
				peers[i].CommonUniversities = append(peers[i].CommonUniversities, names[key])
			}
		}
		sort.Strings(peers[i].CommonUniversities)
	}
	return peers, nil
}

// Trending aggregates interactions inside the configured window and returns
// universities ordered by recommendation count, then average score.
func (b *Blender) Trending(ctx context.Context, limit int) ([]TrendingUniversity, error) {
	cutoff := time.Now().UTC().Add(-b.cfg.TrendingWindow)
	rows, err := b.peerLog.InteractionsSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	agg := make(map[string]*TrendingUniversity)
	sums := make(map[string]float64)
	for _, in := range rows {
		key := nameKey(in.UniversityName)
		t, ok := agg[key]
		if !ok {
			t = &TrendingUniversity{Name: in.UniversityName, Country: in.Country}
			agg[key] = t
		}
		t.RecommendationCount++
		sums[key] += in.MatchScore
	}

	out := make([]TrendingUniversity, 0, len(agg))
	for key, t := range agg {
		t.AverageScore = sums[key] / float64(t.RecommendationCount)
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RecommendationCount != out[j].RecommendationCount {
			return out[i].RecommendationCount > out[j].RecommendationCount
		}
		return out[i].AverageScore > out[j].AverageScore
	})

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Groups clusters users greedily: each ungrouped user pulls in every other
// ungrouped user whose similarity meets the grouping threshold. Only groups
// with at least two members are returned.
func (b *Blender) Groups(ctx context.Context) ([]UserGroup, error) {
	all, err := b.peerLog.AllInteractions(ctx)
	if err != nil {
		return nil, err
	}
	byUser := groupByUser(all)

	users := make([]string, 0, len(byUser))
	for id := range byUser {
		users = append(users, id)
	}
	sort.Strings(users)

	grouped := make(map[string]bool, len(users))
	var groups []UserGroup
	for i, id := range users {
		if grouped[id] {
			continue
		}
		own := nameSet(byUser[id])
		if len(own) == 0 {
			continue
		}

		members := []string{id}
		var simSum float64
		for _, other := range users[i+1:] {
			if grouped[other] {
				continue
			}
			sim := jaccard(own, nameSet(byUser[other]))
			if sim >= b.cfg.GroupingThreshold && sim > 0 {
				members = append(members, other)
				simSum += sim
			}
		}
		if len(members) < 2 {
			continue
		}
		for _, m := range members {
			grouped[m] = true
		}
		groups = append(groups, UserGroup{
			Members:           members,
			AverageSimilarity: simSum / float64(len(members)-1),
		})
	}
	return groups, nil
}

// rankSimilarUsers computes Jaccard similarity between userID and every
// other user, keeps those strictly above zero and at or above threshold,
// and returns the top limit peers by similarity.
func rankSimilarUsers(userID string, byUser map[string][]Interaction,
	threshold float64, limit int) []SimilarUser {
	own := nameSet(byUser[userID])
	if len(own) == 0 {
		return nil
	}

	ids := make([]string, 0, len(byUser))
	for id := range byUser {
		if id != userID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	peers := make([]SimilarUser, 0, len(ids))
	for _, id := range ids {
		sim := jaccard(own, nameSet(byUser[id]))
		if sim <= 0 || sim < threshold {
			continue
		}
		peers = append(peers, SimilarUser{UserID: id, Similarity: sim})
	}

	sort.SliceStable(peers, func(i, j int) bool {
		return peers[i].Similarity > peers[j].Similarity
	})
	if limit > 0 && limit < len(peers) {
		peers = peers[:limit]
	}
	return peers
}

// jaccard computes |a∩b| / |a∪b| over two name sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var inter int
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func groupByUser(rows []Interaction) map[string][]Interaction {
	out := make(map[string][]Interaction)
	for _, in := range rows {
		out[in.UserID] = append(out[in.UserID], in)
	}
	return out
}

func nameSet(rows []Interaction) map[string]bool {
	out := make(map[string]bool, len(rows))
	for _, in := range rows {
		out[nameKey(in.UniversityName)] = true
	}
	return out
}
