// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"math"
	"strings"
	"testing"
)

func TestContentMatch(t *testing.T) {
	weights := DefaultContentMatchWeights()
	pref := UserPreference{
		Categories:        map[string]int{"programming": 5},
		Tags:              map[string]int{"go": 3, "testing": 2},
		Difficulties:      map[string]int{"beginner": 4},
		Instructors:       map[string]int{"Ada": 2},
		VideoCount:        5,
		PreferredDuration: 600,
	}

	tests := []struct {
		name        string
		video       Video
		wantScore   float64
		wantReasons int
	}{
		{
			name:        "no overlap scores duration closeness only",
			video:       Video{ID: "v1", Category: "music", Duration: 600},
			wantScore:   0.15,
			wantReasons: 1,
		},
		{
			name: "full match clamps to 1",
			video: Video{
				ID:           "v2",
				Category:     "programming",
				Tags:         []string{"go", "testing"},
				Difficulty:   "beginner",
				Duration:     600,
				UploaderName: "Ada",
			},
			wantScore:   1,
			wantReasons: 5,
		},
		{
			name:        "zero video matches nothing",
			video:       Video{ID: "v3", Duration: 2000},
			wantScore:   0,
			wantReasons: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := ContentMatch(tt.video, pref, weights)
			if math.Abs(score-tt.wantScore) > 1e-9 {
				t.Errorf("score = %f, want %f", score, tt.wantScore)
			}
			if len(reasons) != tt.wantReasons {
				t.Errorf("reasons = %v, want %d entries", reasons, tt.wantReasons)
			}
		})
	}
}

func TestContentMatchMonotonic(t *testing.T) {
	// With a profile of {programming: 5, beginner: 4, preferred 600s}, each
	// added matching attribute must not lower the score.
	weights := DefaultContentMatchWeights()
	pref := UserPreference{
		Categories:        map[string]int{"programming": 5},
		Tags:              map[string]int{},
		Difficulties:      map[string]int{"beginner": 4},
		Instructors:       map[string]int{},
		VideoCount:        5,
		PreferredDuration: 600,
	}

	steps := []Video{
		{ID: "v", Duration: 2000},
		{ID: "v", Duration: 2000, Category: "programming"},
		{ID: "v", Duration: 2000, Category: "programming", Difficulty: "beginner"},
		{ID: "v", Duration: 600, Category: "programming", Difficulty: "beginner"},
	}

	prev := -1.0
	for i, v := range steps {
		score, _ := ContentMatch(v, pref, weights)
		if score < prev {
			t.Errorf("step %d: score %f dropped below %f after adding a matching attribute", i, score, prev)
		}
		prev = score
	}
}

func TestContentMatchZeroPreferredDuration(t *testing.T) {
	// A profile with no duration signal must not divide by zero.
	pref := UserPreference{
		Categories: map[string]int{"programming": 1},
		VideoCount: 1,
	}
	score, _ := ContentMatch(Video{ID: "v", Category: "programming", Duration: 900}, pref, DefaultContentMatchWeights())
	if math.Abs(score-0.3) > 1e-9 {
		t.Errorf("score = %f, want 0.3 (category only)", score)
	}
}

func TestContentMatchReasonWording(t *testing.T) {
	pref := UserPreference{
		Categories: map[string]int{"programming": 2},
		Tags:       map[string]int{"go": 1, "testing": 1},
		VideoCount: 2,
	}
	video := Video{ID: "v", Category: "programming", Tags: []string{"go", "testing", "unrelated"}}

	_, reasons := ContentMatch(video, pref, DefaultContentMatchWeights())

	joined := strings.Join(reasons, "\n")
	if !strings.Contains(joined, "Matches your interest in programming") {
		t.Errorf("missing category reason in %v", reasons)
	}
	if !strings.Contains(joined, "Covers topics you watch: go, testing") {
		t.Errorf("missing merged tag reason in %v", reasons)
	}
}
