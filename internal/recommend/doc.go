// GradCompass - University Recommendation and Applicant Matching
// Copyright 2026 GradCompass Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradcompass/gradcompass

// Package recommend implements the university recommendation pipeline:
// hard filtering of the catalog against an applicant profile, weighted
// multi-factor scoring, constraint relaxation when too few candidates
// survive, top-N selection with name deduplication, and an optional
// collaborative blend using Jaccard similarity over peer history.
//
// The pipeline is pure request-scoped computation over an immutable catalog
// snapshot. The only external dependency is the peer interaction log, read
// through the PeerLog interface; any failure on that path degrades silently
// to content-only ranking.
package recommend
