// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"fmt"
	"math"
	"strings"
)

// ContentMatchWeights are the component multipliers for the content match
// score.
type ContentMatchWeights struct {
	Category   float64
	Tag        float64
	Difficulty float64
	Duration   float64
	Instructor float64
}

// DefaultContentMatchWeights returns the production component weights.
func DefaultContentMatchWeights() ContentMatchWeights {
	return ContentMatchWeights{
		Category:   0.3,
		Tag:        0.2,
		Difficulty: 0.25,
		Duration:   0.15,
		Instructor: 0.1,
	}
}

// ContentMatch scores how well a video's attributes match a user's interest
// profile, with human-readable reasons for each contributing component.
// Frequencies are raw watch counts, so the score saturates quickly for
// strong histories; it is clamped to at most 1. A zero preferred duration
// contributes nothing rather than dividing by zero.
func ContentMatch(v Video, pref UserPreference, w ContentMatchWeights) (float64, []string) {
	var score float64
	var reasons []string

	if freq := pref.Categories[v.Category]; freq > 0 {
		score += float64(freq) * w.Category
		reasons = append(reasons, fmt.Sprintf("Matches your interest in %s", v.Category))
	}

	var matchedTags []string
	for _, tag := range v.Tags {
		if freq := pref.Tags[tag]; freq > 0 {
			score += float64(freq) * w.Tag
			matchedTags = append(matchedTags, tag)
		}
	}
	if len(matchedTags) > 0 {
		reasons = append(reasons, fmt.Sprintf("Covers topics you watch: %s", strings.Join(matchedTags, ", ")))
	}

	if freq := pref.Difficulties[v.Difficulty]; freq > 0 {
		score += float64(freq) * w.Difficulty
		reasons = append(reasons, fmt.Sprintf("At the %s level you usually watch", v.Difficulty))
	}

	if pref.PreferredDuration > 0 {
		closeness := 1 - math.Abs(float64(v.Duration)-pref.PreferredDuration)/pref.PreferredDuration
		if closeness > 0 {
			score += closeness * w.Duration
			if closeness >= 0.5 {
				reasons = append(reasons, "Fits your preferred video length")
			}
		}
	}

	if freq := pref.Instructors[v.UploaderName]; freq > 0 {
		score += float64(freq) * w.Instructor
		reasons = append(reasons, fmt.Sprintf("By %s, whose videos you watch", v.UploaderName))
	}

	if score > 1 {
		score = 1
	}
	return score, reasons
}
