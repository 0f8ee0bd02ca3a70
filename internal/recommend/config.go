// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the fixed multiplier applied to each strategy's raw
	// scores before aggregation.
	Weights StrategyWeights `koanf:"weights" json:"weights"`

	// Cache contains freshness parameters for the derived-state caches.
	Cache CacheConfig `koanf:"cache" json:"cache"`

	// Limits contains operational limits and timeouts.
	Limits LimitsConfig `koanf:"limits" json:"limits"`
}

// StrategyWeights defines the fixed per-strategy score multipliers.
// Unlike ensemble weights these are not normalized: each strategy's raw
// score is scaled by its weight and the aggregator sums the results.
type StrategyWeights struct {
	// ContentBased is the weight for content-based filtering.
	ContentBased float64 `koanf:"content_based" json:"content_based"`

	// Collaborative is the weight for collaborative filtering.
	Collaborative float64 `koanf:"collaborative" json:"collaborative"`

	// Trending is the weight for trending content.
	Trending float64 `koanf:"trending" json:"trending"`

	// SimilarUsers is the weight for similar-viewer scoring.
	SimilarUsers float64 `koanf:"similar_users" json:"similar_users"`

	// LearningPath is the weight for difficulty-progression scoring.
	LearningPath float64 `koanf:"learning_path" json:"learning_path"`
}

// ToMap returns the weights keyed by strategy name.
func (w StrategyWeights) ToMap() map[string]float64 {
	return map[string]float64{
		"content_based": w.ContentBased,
		"collaborative": w.Collaborative,
		"trending":      w.Trending,
		"similar_users": w.SimilarUsers,
		"learning_path": w.LearningPath,
	}
}

// CacheConfig contains freshness parameters for the derived-state caches.
// The feature cache and the preference cache track their own TTLs; refreshing
// one never invalidates the other.
type CacheConfig struct {
	// FeatureTTL is how long the bulk feature cache stays fresh.
	// Default: 30m.
	FeatureTTL time.Duration `koanf:"feature_ttl" json:"feature_ttl"`

	// PreferenceTTL is how long a per-user preference entry stays fresh.
	// Default: 30m.
	PreferenceTTL time.Duration `koanf:"preference_ttl" json:"preference_ttl"`
}

// LimitsConfig contains operational limits and timeouts.
type LimitsConfig struct {
	// DefaultLimit is the number of recommendations returned when the
	// request does not specify one. Default: 10.
	DefaultLimit int `koanf:"default_limit" json:"default_limit"`

	// MaxLimit caps the requested limit. Default: 50.
	MaxLimit int `koanf:"max_limit" json:"max_limit"`

	// StrategyTimeout bounds a single strategy's execution. A strategy that
	// exceeds it contributes an empty result set. Default: 250ms.
	StrategyTimeout time.Duration `koanf:"strategy_timeout" json:"strategy_timeout"`

	// RequestTimeout bounds strategy execution plus aggregation for the
	// whole request. Default: 500ms.
	RequestTimeout time.Duration `koanf:"request_timeout" json:"request_timeout"`

	// SimilarVideosLimit is the default K for similar-item lookups.
	// Default: 5.
	SimilarVideosLimit int `koanf:"similar_videos_limit" json:"similar_videos_limit"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: StrategyWeights{
			ContentBased:  0.8,
			Collaborative: 0.9,
			Trending:      0.6,
			SimilarUsers:  0.7,
			LearningPath:  0.85,
		},
		Cache: CacheConfig{
			FeatureTTL:    30 * time.Minute,
			PreferenceTTL: 30 * time.Minute,
		},
		Limits: LimitsConfig{
			DefaultLimit:       10,
			MaxLimit:           50,
			StrategyTimeout:    250 * time.Millisecond,
			RequestTimeout:     500 * time.Millisecond,
			SimilarVideosLimit: 5,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, w := range c.Weights.ToMap() {
		if w < 0 {
			return fmt.Errorf("weights.%s must be non-negative, got %f", name, w)
		}
	}

	if c.Cache.FeatureTTL <= 0 {
		return fmt.Errorf("cache.feature_ttl must be positive, got %v", c.Cache.FeatureTTL)
	}
	if c.Cache.PreferenceTTL <= 0 {
		return fmt.Errorf("cache.preference_ttl must be positive, got %v", c.Cache.PreferenceTTL)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d",
			c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}
	if c.Limits.StrategyTimeout <= 0 {
		return fmt.Errorf("limits.strategy_timeout must be positive, got %v", c.Limits.StrategyTimeout)
	}
	if c.Limits.RequestTimeout < c.Limits.StrategyTimeout {
		return fmt.Errorf("limits.request_timeout must be >= limits.strategy_timeout, got %v < %v",
			c.Limits.RequestTimeout, c.Limits.StrategyTimeout)
	}
	if c.Limits.SimilarVideosLimit < 1 {
		return fmt.Errorf("limits.similar_videos_limit must be positive, got %d", c.Limits.SimilarVideosLimit)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types.
	return &Config{
		Weights: c.Weights,
		Cache:   c.Cache,
		Limits:  c.Limits,
	}
}
