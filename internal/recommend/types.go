// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"context"
	"time"
)

// Video is a catalog item as exposed by the content catalog. Only items that
// are ready for playback and publicly visible reach the engine; the catalog
// store applies that filter.
type Video struct {
	// ID is the opaque catalog identifier.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Category is the single curriculum category (e.g. "programming").
	Category string `json:"category"`

	// Tags are free-form topical labels.
	Tags []string `json:"tags"`

	// Difficulty is one of beginner, intermediate, advanced, expert.
	Difficulty string `json:"difficulty"`

	// Duration is the runtime in seconds.
	Duration int `json:"duration"`

	// ViewCount is the lifetime play count.
	ViewCount int `json:"view_count"`

	// LikeCount is the lifetime like count.
	LikeCount int `json:"like_count"`

	// CommentCount is the lifetime comment count.
	CommentCount int `json:"comment_count"`

	// CreatedAt is when the video was published.
	CreatedAt time.Time `json:"created_at"`

	// UploaderID identifies the instructor who published the video.
	UploaderID string `json:"uploader_id"`

	// UploaderName is the instructor display name.
	UploaderName string `json:"uploader_name"`

	// Resolutions lists the available stream resolutions (e.g. "720p").
	Resolutions []string `json:"resolutions"`
}

// WatchEntry is one (user, video) watch record.
type WatchEntry struct {
	// VideoID is the watched video.
	VideoID string `json:"video_id"`

	// Completed reports whether the user finished the video.
	Completed bool `json:"completed"`

	// WatchTime is the accumulated watch time in seconds.
	WatchTime int `json:"watch_time"`
}

// UserPreference is the derived interest profile for one user. Frequencies
// are raw counts of watched items carrying the attribute, never normalized;
// consumers normalize as needed.
type UserPreference struct {
	// Categories maps category name to watch count.
	Categories map[string]int `json:"categories"`

	// Tags maps tag to watch count.
	Tags map[string]int `json:"tags"`

	// Difficulties maps difficulty level to watch count.
	Difficulties map[string]int `json:"difficulties"`

	// Instructors maps instructor display name to watch count.
	Instructors map[string]int `json:"instructors"`

	// VideoCount is the number of history entries the profile was built from.
	// Zero marks a cold-start user.
	VideoCount int `json:"video_count"`

	// AvgWatchTime is the mean watch time in seconds.
	AvgWatchTime float64 `json:"avg_watch_time"`

	// CompletionRate is the fraction of watched videos that were completed (0-1).
	CompletionRate float64 `json:"completion_rate"`

	// PreferredDuration is the mean duration of watched videos in seconds.
	PreferredDuration float64 `json:"preferred_duration"`

	// ComputedAt is when the profile was derived.
	ComputedAt time.Time `json:"computed_at"`
}

// VideoFeatures is the derived numeric feature record for one catalog item.
// All scalar scores are clamped to [0, 1] except DifficultyScore, which is
// ordinal 1-4.
type VideoFeatures struct {
	// VideoID is the catalog item the features describe.
	VideoID string `json:"video_id"`

	// CategoryVector is a one-hot vector over the global category vocabulary.
	CategoryVector []float64 `json:"category_vector"`

	// TagVector is a one-hot vector over the global tag vocabulary.
	TagVector []float64 `json:"tag_vector"`

	// DifficultyScore is the ordinal difficulty: beginner=1 .. expert=4.
	DifficultyScore float64 `json:"difficulty_score"`

	// PopularityScore is min(viewCount/1000, 1).
	PopularityScore float64 `json:"popularity_score"`

	// QualityScore is 1.0 when an HD stream (720p/1080p) exists, else 0.7.
	QualityScore float64 `json:"quality_score"`

	// EngagementScore is produced by the configured EngagementScorer.
	EngagementScore float64 `json:"engagement_score"`

	// FreshnessScore decays linearly from 1 to 0 over 365 days.
	FreshnessScore float64 `json:"freshness_score"`

	// ComputedAt is when the features were derived.
	ComputedAt time.Time `json:"computed_at"`
}

// Result is one strategy's verdict on one candidate. Scores are
// strategy-local and pre-weighting; the aggregator applies strategy weights.
// Multiple results for the same video may exist across strategies.
type Result struct {
	// VideoID is the scored candidate.
	VideoID string `json:"video_id"`

	// Score is the raw strategy score, expected roughly in [0, 1].
	Score float64 `json:"score"`

	// Reasons are human-readable explanations for the score.
	Reasons []string `json:"reasons"`

	// Strategy is the producing strategy name.
	Strategy string `json:"strategy"`
}

// Ranked is one aggregated, deduplicated ranking entry.
type Ranked struct {
	// VideoID is the ranked video.
	VideoID string `json:"video_id"`

	// Score is the sum of weighted per-strategy scores.
	Score float64 `json:"score"`

	// Reasons is the concatenation of contributing strategies' reasons.
	Reasons []string `json:"reasons"`

	// Strategies lists the strategies that contributed, in aggregation order.
	Strategies []string `json:"strategies"`
}

// Timeframe selects the trailing window for trending candidates.
type Timeframe int

const (
	// TimeframeDay covers the trailing 24 hours.
	TimeframeDay Timeframe = iota
	// TimeframeWeek covers the trailing 7 days.
	TimeframeWeek
	// TimeframeMonth covers the trailing 30 days.
	TimeframeMonth
)

// Days returns the window length in days.
func (t Timeframe) Days() int {
	switch t {
	case TimeframeDay:
		return 1
	case TimeframeMonth:
		return 30
	default:
		return 7
	}
}

// String returns a human-readable timeframe name.
func (t Timeframe) String() string {
	switch t {
	case TimeframeDay:
		return "day"
	case TimeframeMonth:
		return "month"
	default:
		return "week"
	}
}

// Request is a recommendation request.
type Request struct {
	// UserID is the user to recommend for.
	UserID string `json:"user_id"`

	// Limit is the maximum number of recommendations to return.
	// Defaults to Config.Limits.DefaultLimit if zero.
	Limit int `json:"limit,omitempty"`

	// IncludeWatched keeps already-watched videos in the candidate set.
	// The default (false) excludes them.
	IncludeWatched bool `json:"include_watched,omitempty"`

	// Timeframe is the trending window. Defaults to the weekly window.
	Timeframe Timeframe `json:"timeframe,omitempty"`

	// RequestID is a unique identifier for tracing. Generated if empty.
	RequestID string `json:"request_id,omitempty"`
}

// ScoredVideo pairs a resolved catalog item with its combined score.
type ScoredVideo struct {
	// Video is the recommended catalog item.
	Video Video `json:"video"`

	// Score is the combined weighted score.
	Score float64 `json:"score"`

	// Reasons explain why the video was recommended.
	Reasons []string `json:"reasons"`
}

// Response is a recommendation response.
type Response struct {
	// Recommendations is the ranked list, at most Request.Limit entries,
	// with no repeated video IDs.
	Recommendations []ScoredVideo `json:"recommendations"`

	// Metadata carries explanation and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata carries explanation and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// UserID is the user the recommendations are for.
	UserID string `json:"user_id"`

	// TotalCandidates is the number of candidate items scored.
	TotalCandidates int `json:"total_candidates"`

	// StrategyCounts maps strategy name to the number of results it produced.
	// A failed strategy counts zero; FailedStrategies tells it apart from a
	// strategy that genuinely produced nothing.
	StrategyCounts map[string]int `json:"strategy_counts"`

	// FailedStrategies lists strategies that errored or timed out, sorted
	// by name. Empty on a fully successful request.
	FailedStrategies []string `json:"failed_strategies,omitempty"`

	// Profile summarizes the user's interest profile.
	Profile ProfileSummary `json:"profile"`

	// Reasoning is the per-video reason breakdown for the returned entries.
	Reasoning []ReasonEntry `json:"reasoning"`

	// ColdStart reports whether the user had no watch history.
	ColdStart bool `json:"cold_start"`

	// LatencyMS is the end-to-end latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// ProfileSummary is the compact interest profile included in metadata.
type ProfileSummary struct {
	// TopCategories holds up to 3 categories by descending frequency.
	TopCategories []string `json:"top_categories"`

	// TopTags holds up to 5 tags by descending frequency.
	TopTags []string `json:"top_tags"`
}

// ReasonEntry is the reasoning breakdown for one returned video.
type ReasonEntry struct {
	// VideoID is the recommended video.
	VideoID string `json:"video_id"`

	// Reasons are the contributing strategies' explanations.
	Reasons []string `json:"reasons"`
}

// CatalogStore provides readable, public catalog items. Implemented by the
// serving layer; the engine never mutates catalog state.
type CatalogStore interface {
	// ListReadyPublic returns all items eligible for recommendation.
	ListReadyPublic(ctx context.Context) ([]Video, error)
}

// WatchHistoryStore provides per-user watch history and reverse viewer
// lookups for the collaborative strategies.
type WatchHistoryStore interface {
	// GetHistory returns all watch entries for a user.
	GetHistory(ctx context.Context, userID string) ([]WatchEntry, error)

	// GetWatchedIDs returns the IDs of videos the user has watched.
	GetWatchedIDs(ctx context.Context, userID string) ([]string, error)

	// GetViewers returns the IDs of users who watched the video.
	GetViewers(ctx context.Context, videoID string) ([]string, error)
}

// UserDirectory resolves user display names for explanation text.
type UserDirectory interface {
	// GetDisplayName returns the display name for a user, or an error if the
	// user is unknown. Callers fall back to generic wording on error.
	GetDisplayName(ctx context.Context, userID string) (string, error)
}

// Strategy is one independent, side-effect-free scoring strategy. Strategies
// must be safe for concurrent use and must not retain Input between calls.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "content_based").
	Name() string

	// Score evaluates the candidates and returns raw, pre-weighting results.
	Score(ctx context.Context, in Input) ([]Result, error)
}

// Input is the request-scoped data handed to every strategy.
type Input struct {
	// UserID is the target user.
	UserID string

	// Candidates is the candidate set for this request.
	Candidates []Video

	// Features maps video ID to derived features for every candidate.
	Features map[string]VideoFeatures

	// Preference is the target user's interest profile.
	Preference UserPreference

	// Watched is the target user's watched-video ID set.
	Watched map[string]struct{}

	// History provides co-watch lookups for collaborative strategies.
	History WatchHistoryStore

	// Users resolves display names for explanation text. May be nil.
	Users UserDirectory

	// Timeframe is the trending window for this request.
	Timeframe Timeframe

	// Now is the request timestamp; strategies must not call time.Now.
	Now time.Time
}
