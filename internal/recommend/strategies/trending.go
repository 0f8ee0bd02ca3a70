// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package strategies

import (
	"context"
	"fmt"

	"github.com/openlearn-tv/recommender/internal/recommend"
)

// Trending scores candidates published within the request's trailing
// timeframe window. The score blends recency and recent popularity:
//
//	score = recency*0.6 + popularity*0.4
//	recency = max(0, 1 - daysSinceUpload/30)
//	popularity = min(viewCount/100, 1)
//
// Results at or below the threshold are dropped. Trending needs no user
// profile, so it is the strategy that still produces output for cold-start
// users.
type Trending struct {
	threshold float64
}

// TrendingConfig contains configuration for trending scoring.
type TrendingConfig struct {
	// ScoreThreshold is the exclusive inclusion threshold. Default: 0.2.
	ScoreThreshold float64
}

// NewTrending creates a trending strategy.
func NewTrending(cfg TrendingConfig) *Trending {
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = 0.2
	}
	return &Trending{threshold: cfg.ScoreThreshold}
}

// Name returns the strategy identifier.
func (s *Trending) Name() string { return "trending" }

// Score implements recommend.Strategy.
func (s *Trending) Score(ctx context.Context, in recommend.Input) ([]recommend.Result, error) {
	cutoff := in.Now.AddDate(0, 0, -in.Timeframe.Days())

	results := make([]recommend.Result, 0, len(in.Candidates))
	for i := range in.Candidates {
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}

		v := in.Candidates[i]
		if v.CreatedAt.Before(cutoff) {
			continue
		}

		daysSince := in.Now.Sub(v.CreatedAt).Hours() / 24
		recency := 1 - daysSince/30
		if recency < 0 {
			recency = 0
		}
		popularity := float64(v.ViewCount) / 100
		if popularity > 1 {
			popularity = 1
		}

		score := recency*0.6 + popularity*0.4
		if score <= s.threshold {
			continue
		}

		results = append(results, recommend.Result{
			VideoID: v.ID,
			Score:   score,
			Reasons: []string{
				fmt.Sprintf("Trending this %s", in.Timeframe),
				fmt.Sprintf("%d views since release", v.ViewCount),
			},
			Strategy: s.Name(),
		})
	}

	return results, nil
}
