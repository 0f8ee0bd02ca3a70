// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package strategies

import (
	"context"

	"github.com/openlearn-tv/recommender/internal/recommend"
)

// ContentBased scores candidates by how well their attributes match the
// user's interest profile, using the engine's content match formula:
//
//	score = freq[category]*0.3 + sum(freq[tag]*0.2) + freq[difficulty]*0.25 +
//	        durationCloseness*0.15 + freq[instructor]*0.1
//
// clamped to at most 1. Every candidate is scored; there is no inclusion
// threshold, though zero-scoring candidates emit no result.
type ContentBased struct {
	weights recommend.ContentMatchWeights
}

// ContentBasedConfig contains configuration for content-based scoring.
type ContentBasedConfig struct {
	// Weights are the component multipliers. Zero-value fields take the
	// production defaults.
	Weights recommend.ContentMatchWeights
}

// NewContentBased creates a content-based strategy.
func NewContentBased(cfg ContentBasedConfig) *ContentBased {
	defaults := recommend.DefaultContentMatchWeights()
	if cfg.Weights.Category == 0 {
		cfg.Weights.Category = defaults.Category
	}
	if cfg.Weights.Tag == 0 {
		cfg.Weights.Tag = defaults.Tag
	}
	if cfg.Weights.Difficulty == 0 {
		cfg.Weights.Difficulty = defaults.Difficulty
	}
	if cfg.Weights.Duration == 0 {
		cfg.Weights.Duration = defaults.Duration
	}
	if cfg.Weights.Instructor == 0 {
		cfg.Weights.Instructor = defaults.Instructor
	}
	return &ContentBased{weights: cfg.Weights}
}

// Name returns the strategy identifier.
func (s *ContentBased) Name() string { return "content_based" }

// Score implements recommend.Strategy.
func (s *ContentBased) Score(ctx context.Context, in recommend.Input) ([]recommend.Result, error) {
	// Cold-start users have no profile to match against.
	if in.Preference.VideoCount == 0 {
		return nil, nil
	}

	results := make([]recommend.Result, 0, len(in.Candidates))
	for i := range in.Candidates {
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}

		score, reasons := recommend.ContentMatch(in.Candidates[i], in.Preference, s.weights)
		if score <= 0 {
			continue
		}
		results = append(results, recommend.Result{
			VideoID:  in.Candidates[i].ID,
			Score:    score,
			Reasons:  reasons,
			Strategy: s.Name(),
		})
	}

	return results, nil
}
