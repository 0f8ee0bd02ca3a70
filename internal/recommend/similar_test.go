// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"math"
	"testing"
)

func TestItemSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Video
		want float64
	}{
		{
			name: "identical attributes score full",
			a:    Video{ID: "a", Category: "programming", Tags: []string{"go"}, Difficulty: "beginner", Duration: 600},
			b:    Video{ID: "b", Category: "programming", Tags: []string{"go"}, Difficulty: "beginner", Duration: 600},
			want: 1.0,
		},
		{
			name: "nothing in common scores zero",
			a:    Video{ID: "a", Category: "programming", Tags: []string{"go"}, Difficulty: "beginner"},
			b:    Video{ID: "b", Category: "design", Tags: []string{"figma"}, Difficulty: "expert"},
			want: 0,
		},
		{
			name: "category match alone",
			a:    Video{ID: "a", Category: "programming"},
			b:    Video{ID: "b", Category: "programming", Difficulty: "expert"},
			want: 0.3,
		},
		{
			name: "partial tag overlap",
			a:    Video{ID: "a", Tags: []string{"go", "testing"}},
			b:    Video{ID: "b", Tags: []string{"go", "profiling", "tracing"}},
			want: 0.4 * 0.25,
		},
		{
			name: "empty categories never match",
			a:    Video{ID: "a"},
			b:    Video{ID: "b"},
			want: 0,
		},
		{
			name: "duration closeness",
			a:    Video{ID: "a", Duration: 600},
			b:    Video{ID: "b", Duration: 300},
			want: 0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ItemSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ItemSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestItemSimilaritySymmetric(t *testing.T) {
	a := Video{ID: "a", Category: "programming", Tags: []string{"go", "testing"}, Difficulty: "beginner", Duration: 600}
	b := Video{ID: "b", Category: "programming", Tags: []string{"go"}, Difficulty: "advanced", Duration: 900}

	if ab, ba := ItemSimilarity(a, b), ItemSimilarity(b, a); math.Abs(ab-ba) > 1e-9 {
		t.Errorf("ItemSimilarity not symmetric: %f vs %f", ab, ba)
	}
}

func TestSimilarVideos(t *testing.T) {
	target := Video{ID: "t", Category: "programming", Tags: []string{"go"}, Difficulty: "beginner", Duration: 600}
	pool := []Video{
		target,
		{ID: "close", Category: "programming", Tags: []string{"go"}, Difficulty: "beginner", Duration: 600},
		{ID: "mid", Category: "programming", Tags: []string{"rust"}, Difficulty: "beginner", Duration: 600},
		{ID: "far", Category: "design", Tags: []string{"figma"}, Difficulty: "expert", Duration: 120},
	}

	got := SimilarVideos(target, pool, 2)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, v := range got {
		if v.ID == target.ID {
			t.Fatal("target video must not appear in its own similarity list")
		}
	}
	if got[0].ID != "close" || got[1].ID != "mid" {
		t.Errorf("order = [%q %q], want [close mid]", got[0].ID, got[1].ID)
	}
}

func TestSimilarVideosSmallPool(t *testing.T) {
	target := Video{ID: "t", Category: "programming"}
	pool := []Video{target, {ID: "only", Category: "programming"}}

	got := SimilarVideos(target, pool, 5)
	if len(got) != 1 || got[0].ID != "only" {
		t.Errorf("got %v, want the single non-target item", got)
	}
}
