// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"sort"
	"time"
)

// difficultyOrdinals maps difficulty levels to their ordinal scores.
// Unknown or missing levels default to beginner.
var difficultyOrdinals = map[string]float64{
	"beginner":     1,
	"intermediate": 2,
	"advanced":     3,
	"expert":       4,
}

// DifficultyOrdinal returns the ordinal score (1-4) for a difficulty level.
func DifficultyOrdinal(level string) float64 {
	if s, ok := difficultyOrdinals[level]; ok {
		return s
	}
	return 1
}

// Vocabulary holds the distinct category and tag values observed across the
// whole catalog. One-hot vectors are positioned against it, so all features
// extracted against the same vocabulary are comparable.
type Vocabulary struct {
	Categories []string
	Tags       []string

	categoryIndex map[string]int
	tagIndex      map[string]int
}

// BuildVocabulary collects the distinct categories and tags from the catalog,
// sorted for stable vector positions.
func BuildVocabulary(videos []Video) Vocabulary {
	catSet := make(map[string]struct{})
	tagSet := make(map[string]struct{})
	for i := range videos {
		if videos[i].Category != "" {
			catSet[videos[i].Category] = struct{}{}
		}
		for _, tag := range videos[i].Tags {
			tagSet[tag] = struct{}{}
		}
	}

	v := Vocabulary{
		Categories:    make([]string, 0, len(catSet)),
		Tags:          make([]string, 0, len(tagSet)),
		categoryIndex: make(map[string]int, len(catSet)),
		tagIndex:      make(map[string]int, len(tagSet)),
	}
	for cat := range catSet {
		v.Categories = append(v.Categories, cat)
	}
	for tag := range tagSet {
		v.Tags = append(v.Tags, tag)
	}
	sort.Strings(v.Categories)
	sort.Strings(v.Tags)
	for i, cat := range v.Categories {
		v.categoryIndex[cat] = i
	}
	for i, tag := range v.Tags {
		v.tagIndex[tag] = i
	}

	return v
}

// EngagementScorer produces the engagement component of VideoFeatures.
// It is pluggable so a metric derived from richer interaction telemetry can
// be substituted without touching the extractor.
type EngagementScorer interface {
	// EngagementScore returns a score in [0, 1] for the video.
	EngagementScore(v Video) float64
}

// TelemetryEngagement derives engagement from like/comment/view counts:
// clamp((2*likes + 3*comments) / views, 0, 1). A video with no views scores 0.
type TelemetryEngagement struct{}

// EngagementScore implements EngagementScorer.
func (TelemetryEngagement) EngagementScore(v Video) float64 {
	if v.ViewCount <= 0 {
		return 0
	}
	return clamp01(float64(2*v.LikeCount+3*v.CommentCount) / float64(v.ViewCount))
}

// Extractor turns catalog items into numeric feature records.
type Extractor struct {
	engagement EngagementScorer
}

// NewExtractor creates a feature extractor. A nil scorer falls back to
// TelemetryEngagement.
func NewExtractor(engagement EngagementScorer) *Extractor {
	if engagement == nil {
		engagement = TelemetryEngagement{}
	}
	return &Extractor{engagement: engagement}
}

// Extract derives the feature record for one catalog item. Missing optional
// fields degrade to defaults; extraction never fails.
func (e *Extractor) Extract(v Video, vocab Vocabulary, now time.Time) VideoFeatures {
	catVec := make([]float64, len(vocab.Categories))
	if idx, ok := vocab.categoryIndex[v.Category]; ok {
		catVec[idx] = 1
	}

	tagVec := make([]float64, len(vocab.Tags))
	for _, tag := range v.Tags {
		if idx, ok := vocab.tagIndex[tag]; ok {
			tagVec[idx] = 1
		}
	}

	return VideoFeatures{
		VideoID:         v.ID,
		CategoryVector:  catVec,
		TagVector:       tagVec,
		DifficultyScore: DifficultyOrdinal(v.Difficulty),
		PopularityScore: clamp01(float64(v.ViewCount) / 1000),
		QualityScore:    qualityScore(v.Resolutions),
		EngagementScore: clamp01(e.engagement.EngagementScore(v)),
		FreshnessScore:  freshnessScore(v.CreatedAt, now),
		ComputedAt:      now,
	}
}

// qualityScore is 1.0 when an HD stream exists, else 0.7.
func qualityScore(resolutions []string) float64 {
	for _, res := range resolutions {
		if res == "720p" || res == "1080p" {
			return 1.0
		}
	}
	return 0.7
}

// freshnessScore decays linearly from 1 to 0 over 365 days.
func freshnessScore(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	days := now.Sub(createdAt).Hours() / 24
	return clamp01(1 - days/365)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
