// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"math"
	"sort"
)

// ItemSimilarity computes attribute similarity between two catalog items:
// same category contributes 0.3, tag Jaccard overlap up to 0.4, same
// difficulty 0.2, duration closeness up to 0.1.
func ItemSimilarity(a, b Video) float64 {
	var score float64

	if a.Category != "" && a.Category == b.Category {
		score += 0.3
	}

	score += 0.4 * tagJaccard(a.Tags, b.Tags)

	if a.Difficulty != "" && a.Difficulty == b.Difficulty {
		score += 0.2
	}

	// Zero durations contribute nothing rather than dividing by zero.
	maxDur := float64(a.Duration)
	if float64(b.Duration) > maxDur {
		maxDur = float64(b.Duration)
	}
	if maxDur > 0 {
		score += 0.1 * (1 - math.Abs(float64(a.Duration-b.Duration))/maxDur)
	}

	return score
}

// SimilarVideos ranks the pool by similarity to the target and returns the
// top limit items. The target itself is never returned.
func SimilarVideos(target Video, pool []Video, limit int) []Video {
	type scored struct {
		video Video
		score float64
	}

	candidates := make([]scored, 0, len(pool))
	for i := range pool {
		if pool[i].ID == target.ID {
			continue
		}
		candidates = append(candidates, scored{video: pool[i], score: ItemSimilarity(target, pool[i])})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].video.ID < candidates[j].video.ID
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	videos := make([]Video, len(candidates))
	for i, c := range candidates {
		videos[i] = c.video
	}
	return videos
}

// tagJaccard computes Jaccard similarity between two tag lists.
func tagJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}

	intersection := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
