// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import "sort"

// Aggregate merges per-strategy results into the canonical combined ranking.
// This is the only place video IDs are deduplicated: results for the same
// video have their weighted scores summed and their reason lists
// concatenated. The output is sorted by combined score descending, ties
// broken by video ID for determinism.
func Aggregate(results []Result, weights map[string]float64) []Ranked {
	byID := make(map[string]*Ranked)
	order := make([]string, 0, len(results))

	for _, r := range results {
		weighted := r.Score * weights[r.Strategy]
		entry, ok := byID[r.VideoID]
		if !ok {
			entry = &Ranked{VideoID: r.VideoID}
			byID[r.VideoID] = entry
			order = append(order, r.VideoID)
		}
		entry.Score += weighted
		entry.Reasons = append(entry.Reasons, r.Reasons...)
		entry.Strategies = append(entry.Strategies, r.Strategy)
	}

	ranked := make([]Ranked, 0, len(byID))
	for _, id := range order {
		ranked = append(ranked, *byID[id])
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].VideoID < ranked[j].VideoID
	})

	return ranked
}
