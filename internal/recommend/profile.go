// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"sort"
	"time"
)

// BuildPreference derives a user's interest profile from their watch history.
// Entries whose video is no longer in the catalog are skipped. An empty
// history yields empty maps and zero scalars, which is the valid cold-start
// profile, not an error.
func BuildPreference(history []WatchEntry, catalog map[string]Video, now time.Time) UserPreference {
	pref := UserPreference{
		Categories:   make(map[string]int),
		Tags:         make(map[string]int),
		Difficulties: make(map[string]int),
		Instructors:  make(map[string]int),
		ComputedAt:   now,
	}

	var totalWatchTime, totalDuration, completed int
	for _, entry := range history {
		video, ok := catalog[entry.VideoID]
		if !ok {
			continue
		}

		if video.Category != "" {
			pref.Categories[video.Category]++
		}
		for _, tag := range video.Tags {
			pref.Tags[tag]++
		}
		if video.Difficulty != "" {
			pref.Difficulties[video.Difficulty]++
		}
		if video.UploaderName != "" {
			pref.Instructors[video.UploaderName]++
		}

		totalWatchTime += entry.WatchTime
		totalDuration += video.Duration
		if entry.Completed {
			completed++
		}
		pref.VideoCount++
	}

	if pref.VideoCount > 0 {
		n := float64(pref.VideoCount)
		pref.AvgWatchTime = float64(totalWatchTime) / n
		pref.CompletionRate = float64(completed) / n
		pref.PreferredDuration = float64(totalDuration) / n
	}

	return pref
}

// Summary returns the compact profile used in response metadata: the top 3
// categories and top 5 tags by descending frequency.
func (p UserPreference) Summary() ProfileSummary {
	return ProfileSummary{
		TopCategories: topKeys(p.Categories, 3),
		TopTags:       topKeys(p.Tags, 5),
	}
}

// topKeys returns up to k map keys ordered by descending count, ties broken
// alphabetically for determinism.
func topKeys(counts map[string]int, k int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > k {
		keys = keys[:k]
	}
	return keys
}
