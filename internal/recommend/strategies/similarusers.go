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

// SimilarUsers scores candidates by the viewing behavior of users who have
// watched at least MinOverlapRatio of the target user's watched set. A
// candidate's score is the fraction of those similar viewers who also
// watched it. Only the first MaxCandidates candidates are evaluated to bound
// the per-request cost of the viewer lookups.
type SimilarUsers struct {
	minOverlapRatio float64
	maxCandidates   int
	threshold       float64
}

// SimilarUsersConfig contains configuration for similar-viewer scoring.
type SimilarUsersConfig struct {
	// MinOverlapRatio is the fraction of the user's watched set a viewer
	// must share to count as similar. Default: 0.2.
	MinOverlapRatio float64

	// MaxCandidates bounds how many candidates are evaluated. Default: 20.
	MaxCandidates int

	// ScoreThreshold is the exclusive inclusion threshold. Default: 0.2.
	ScoreThreshold float64
}

// NewSimilarUsers creates a similar-viewer strategy.
func NewSimilarUsers(cfg SimilarUsersConfig) *SimilarUsers {
	if cfg.MinOverlapRatio == 0 {
		cfg.MinOverlapRatio = 0.2
	}
	if cfg.MaxCandidates == 0 {
		cfg.MaxCandidates = 20
	}
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = 0.2
	}
	return &SimilarUsers{
		minOverlapRatio: cfg.MinOverlapRatio,
		maxCandidates:   cfg.MaxCandidates,
		threshold:       cfg.ScoreThreshold,
	}
}

// Name returns the strategy identifier.
func (s *SimilarUsers) Name() string { return "similar_users" }

// Score implements recommend.Strategy.
func (s *SimilarUsers) Score(ctx context.Context, in recommend.Input) ([]recommend.Result, error) {
	if len(in.Watched) == 0 {
		return nil, nil
	}

	similarViewers, err := s.findSimilarViewers(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(similarViewers) == 0 {
		return nil, nil
	}

	candidates := in.Candidates
	if len(candidates) > s.maxCandidates {
		candidates = candidates[:s.maxCandidates]
	}

	results := make([]recommend.Result, 0, len(candidates))
	for i := range candidates {
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}

		viewers, err := in.History.GetViewers(ctx, candidates[i].ID)
		if err != nil {
			return nil, fmt.Errorf("get viewers for video %s: %w", candidates[i].ID, err)
		}

		watchedBy := 0
		for _, viewer := range viewers {
			if _, ok := similarViewers[viewer]; ok {
				watchedBy++
			}
		}

		score := float64(watchedBy) / float64(len(similarViewers))
		if score <= s.threshold {
			continue
		}

		results = append(results, recommend.Result{
			VideoID: candidates[i].ID,
			Score:   score,
			Reasons: []string{
				"Also watched by learners who share your viewing history",
			},
			Strategy: s.Name(),
		})
	}

	return results, nil
}

// findSimilarViewers returns the set of users whose overlap with the target
// user's watched set reaches the minimum ratio.
func (s *SimilarUsers) findSimilarViewers(ctx context.Context, in recommend.Input) (map[string]struct{}, error) {
	overlap := make(map[string]int)
	for videoID := range in.Watched {
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}

		viewers, err := in.History.GetViewers(ctx, videoID)
		if err != nil {
			return nil, fmt.Errorf("get viewers for video %s: %w", videoID, err)
		}
		for _, viewer := range viewers {
			if viewer != in.UserID {
				overlap[viewer]++
			}
		}
	}

	similar := make(map[string]struct{})
	total := float64(len(in.Watched))
	for userID, shared := range overlap {
		if float64(shared)/total >= s.minOverlapRatio {
			similar[userID] = struct{}{}
		}
	}
	return similar, nil
}
