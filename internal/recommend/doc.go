// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

// Package recommend implements the personalized recommendation engine for
// the OpenLearn video catalog.
//
// # Architecture
//
// The engine combines five independent scoring strategies over a per-request
// candidate set:
//
//   - Content-Based: attribute match against the user's interest profile
//   - Collaborative: co-watch overlap with the most similar users
//   - Trending: recently published, recently popular videos
//   - Similar-Users: viewers who share a large part of the user's history
//   - Learning-Path: difficulty progression relative to the user's level
//
// Strategies run concurrently with a per-strategy timeout; a strategy that
// fails or times out contributes nothing and never fails the request. The
// aggregator is the single dedup point: it sums weighted scores per video,
// concatenates reasons, sorts, and truncates.
//
// # Derived state
//
// Two time-bounded caches keep scoring affordable: a bulk-refreshed feature
// cache (per-item numeric features against global category/tag vocabularies)
// and a per-user preference cache (frequency-weighted interest maps). Each
// cache tracks its own freshness, recomputes under a single-flight guard, and
// takes its clock by injection so tests control time deterministically.
//
// # Collaborators
//
// The engine is a library. Catalog content, watch history, and user display
// names come in through the CatalogStore, WatchHistoryStore, and
// UserDirectory interfaces, implemented by the serving layer.
package recommend
