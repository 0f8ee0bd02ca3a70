// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package strategies

import (
	"context"
	"fmt"
	"sort"

	"github.com/openlearn-tv/recommender/internal/recommend"
)

// Collaborative scores candidates by the behavior of the users whose watch
// history overlaps most with the target user's. Up to MaxSimilarUsers
// neighbors are selected by shared watched-video count; a candidate's score
// is the fraction of those neighbors who watched it. Results at or below the
// threshold are dropped.
type Collaborative struct {
	maxSimilarUsers int
	threshold       float64
}

// CollaborativeConfig contains configuration for collaborative filtering.
type CollaborativeConfig struct {
	// MaxSimilarUsers is the neighbor count. Default: 10.
	MaxSimilarUsers int

	// ScoreThreshold is the exclusive inclusion threshold. Default: 0.3.
	ScoreThreshold float64
}

// NewCollaborative creates a collaborative filtering strategy.
func NewCollaborative(cfg CollaborativeConfig) *Collaborative {
	if cfg.MaxSimilarUsers == 0 {
		cfg.MaxSimilarUsers = 10
	}
	if cfg.ScoreThreshold == 0 {
		cfg.ScoreThreshold = 0.3
	}
	return &Collaborative{
		maxSimilarUsers: cfg.MaxSimilarUsers,
		threshold:       cfg.ScoreThreshold,
	}
}

// Name returns the strategy identifier.
func (s *Collaborative) Name() string { return "collaborative" }

// Score implements recommend.Strategy.
func (s *Collaborative) Score(ctx context.Context, in recommend.Input) ([]recommend.Result, error) {
	if len(in.Watched) == 0 {
		return nil, nil
	}

	similar, err := s.findSimilarUsers(ctx, in)
	if err != nil {
		return nil, err
	}
	if len(similar) == 0 {
		return nil, nil
	}

	similarSet := make(map[string]struct{}, len(similar))
	for _, userID := range similar {
		similarSet[userID] = struct{}{}
	}

	// Naming one concrete neighbor makes the explanation text relatable;
	// fall back to generic wording when the directory cannot resolve it.
	neighborReason := "Watched by learners with a similar history to yours"
	if in.Users != nil {
		if name, err := in.Users.GetDisplayName(ctx, similar[0]); err == nil && name != "" {
			neighborReason = fmt.Sprintf("Popular with learners like %s", name)
		}
	}

	results := make([]recommend.Result, 0, len(in.Candidates))
	for i := range in.Candidates {
		if contextCancelled(ctx) {
			return nil, ctx.Err()
		}

		viewers, err := in.History.GetViewers(ctx, in.Candidates[i].ID)
		if err != nil {
			return nil, fmt.Errorf("get viewers for video %s: %w", in.Candidates[i].ID, err)
		}

		watchedBy := 0
		for _, viewer := range viewers {
			if _, ok := similarSet[viewer]; ok {
				watchedBy++
			}
		}

		score := float64(watchedBy) / float64(len(similar))
		if score <= s.threshold {
			continue
		}

		results = append(results, recommend.Result{
			VideoID: in.Candidates[i].ID,
			Score:   score,
			Reasons: []string{
				fmt.Sprintf("Watched by %d of %d similar learners", watchedBy, len(similar)),
				neighborReason,
			},
			Strategy: s.Name(),
		})
	}

	return results, nil
}

// findSimilarUsers returns up to maxSimilarUsers user IDs ordered by
// descending co-watch overlap with the target user.
func (s *Collaborative) findSimilarUsers(ctx context.Context, in recommend.Input) ([]string, error) {
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

	users := make([]string, 0, len(overlap))
	for userID := range overlap {
		users = append(users, userID)
	}
	sort.Slice(users, func(i, j int) bool {
		if overlap[users[i]] != overlap[users[j]] {
			return overlap[users[i]] > overlap[users[j]]
		}
		return users[i] < users[j]
	})

	if len(users) > s.maxSimilarUsers {
		users = users[:s.maxSimilarUsers]
	}
	return users, nil
}
