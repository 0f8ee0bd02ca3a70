// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package strategies

import (
	"context"

	"github.com/openlearn-tv/recommender/internal/recommend"
)

// LearningPath scores candidates by how well their difficulty fits the
// user's estimated level. The level starts at 1, gains 1 for a completion
// rate above 0.7 and 0.5 for an average watch time above 10 minutes, capped
// at 4. Candidates up to one level ahead score 0.8, review material up to
// half a level behind scores 0.6, everything else 0.2 and falls below the
// inclusion threshold.
type LearningPath struct {
	threshold float64
}

// LearningPathConfig contains configuration for learning-path scoring.
type LearningPathConfig struct {
	// ScoreThreshold is the exclusive inclusion threshold. Default: 0.3.
	ScoreThreshold float64
}

// NewLearningPath creates a learning-path strategy.
func NewLearningPath(cfg LearningPathConfig) *LearningPath {
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = 0.3
	}
	return &LearningPath{threshold: cfg.ScoreThreshold}
}

// Name returns the strategy identifier.
func (s *LearningPath) Name() string { return "learning_path" }

// Score implements recommend.Strategy.
func (s *LearningPath) Score(ctx context.Context, in recommend.Input) ([]recommend.Result, error) {
	// A cold-start user has no level estimate yet.
	if in.Preference.VideoCount == 0 {
		return nil, nil
	}

	level := estimateLevel(in.Preference)

	results := make([]recommend.Result, 0, len(in.Candidates))
	for i := range in.Candidates {
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}

		difficulty := recommend.DifficultyOrdinal(in.Candidates[i].Difficulty)
		if feat, ok := in.Features[in.Candidates[i].ID]; ok {
			difficulty = feat.DifficultyScore
		}

		score, reason := scoreLevelFit(difficulty - level)
		if score <= s.threshold {
			continue
		}

		results = append(results, recommend.Result{
			VideoID:  in.Candidates[i].ID,
			Score:    score,
			Reasons:  []string{reason},
			Strategy: s.Name(),
		})
	}

	return results, nil
}

// estimateLevel derives the user's level (1-4) from behavioral scalars.
func estimateLevel(pref recommend.UserPreference) float64 {
	level := 1.0
	if pref.CompletionRate > 0.7 {
		level++
	}
	if pref.AvgWatchTime > 600 {
		level += 0.5
	}
	if level > 4 {
		level = 4
	}
	return level
}

// scoreLevelFit maps the difficulty-to-level delta to a score and reason.
func scoreLevelFit(delta float64) (float64, string) {
	switch {
	case delta >= 0 && delta <= 1:
		return 0.8, "Matches the next step in your learning path"
	case delta >= -0.5 && delta < 0:
		return 0.6, "Good review material for your level"
	default:
		return 0.2, "Outside your current learning path"
	}
}
