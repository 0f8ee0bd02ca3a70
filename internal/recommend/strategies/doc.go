// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

// Package strategies implements the five scoring strategies of the
// recommendation engine.
//
// Each strategy implements the recommend.Strategy interface, holds no
// request state, and is safe for concurrent use. Scores are raw and
// strategy-local; the engine applies the configured weight before
// aggregation. A strategy that finds nothing to say about a candidate emits
// no result for it, and strategies with an inclusion threshold drop results
// at or below it.
//
// # Strategies
//
//   - ContentBased: attribute match against the user's interest profile
//   - Collaborative: co-watch overlap with the most similar users
//   - Trending: recently published videos with recent popularity
//   - SimilarUsers: viewers sharing a large part of the user's history
//   - LearningPath: difficulty progression relative to the user's level
package strategies

import (
	"context"

	"github.com/openlearn-tv/recommender/internal/recommend"
)

// Ensure all strategies implement the interface.
var (
	_ recommend.Strategy = (*ContentBased)(nil)
	_ recommend.Strategy = (*Collaborative)(nil)
	_ recommend.Strategy = (*Trending)(nil)
	_ recommend.Strategy = (*SimilarUsers)(nil)
	_ recommend.Strategy = (*LearningPath)(nil)
)

// contextCancelled checks if the context has been canceled.
func contextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
