// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Deps are the external collaborators the service consumes. Catalog and
// History are required; Users, Engagement, and Clock are optional.
type Deps struct {
	// Catalog provides ready, public catalog items.
	Catalog CatalogStore

	// History provides per-user watch history and viewer lookups.
	History WatchHistoryStore

	// Users resolves display names for explanation text. May be nil.
	Users UserDirectory

	// Engagement overrides the default engagement scorer. May be nil.
	Engagement EngagementScorer

	// Clock overrides time.Now for deterministic tests. May be nil.
	Clock Clock
}

// Service is the recommendation engine entry point. It owns the derived-state
// caches, orchestrates the scoring strategies, and assembles explanation
// metadata. It is safe for concurrent use.
type Service struct {
	cfg    *Config
	logger zerolog.Logger

	catalog CatalogStore
	history WatchHistoryStore
	users   UserDirectory
	now     Clock

	features *FeatureCache
	prefs    *PreferenceCache

	stratMu    sync.RWMutex
	strategies []Strategy

	requestCount     atomic.Int64
	strategyErrors   atomic.Int64
	strategyTimeouts atomic.Int64
}

// Metrics contains engine counters for observability.
type Metrics struct {
	// RequestCount is the total number of recommendation requests served.
	RequestCount int64 `json:"request_count"`

	// StrategyErrors is the number of strategy executions that failed.
	StrategyErrors int64 `json:"strategy_errors"`

	// StrategyTimeouts is the number of strategy executions that timed out.
	StrategyTimeouts int64 `json:"strategy_timeouts"`

	// FeatureCache reports the feature cache counters.
	FeatureCache CacheStats `json:"feature_cache"`

	// PreferenceCache reports the preference cache counters.
	PreferenceCache CacheStats `json:"preference_cache"`
}

// NewService creates the recommendation service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg *Config, deps Deps, logger zerolog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog store is required")
	}
	if deps.History == nil {
		return nil, errors.New("watch history store is required")
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	extractor := NewExtractor(deps.Engagement)

	return &Service{
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		catalog:  deps.Catalog,
		history:  deps.History,
		users:    deps.Users,
		now:      now,
		features: NewFeatureCache(deps.Catalog, extractor, cfg.Cache.FeatureTTL, now),
		prefs:    NewPreferenceCache(cfg.Cache.PreferenceTTL, now),
	}, nil
}

// RegisterStrategy adds a scoring strategy to the ensemble. A strategy whose
// name has no configured weight scores zero during aggregation; registration
// logs a warning so the misconfiguration is visible at startup.
func (s *Service) RegisterStrategy(st Strategy) {
	s.stratMu.Lock()
	defer s.stratMu.Unlock()

	s.strategies = append(s.strategies, st)
	if _, ok := s.cfg.Weights.ToMap()[st.Name()]; !ok {
		s.logger.Warn().
			Str("strategy", st.Name()).
			Msg("strategy has no configured weight, its results will not rank")
	}
	s.logger.Info().
		Str("strategy", st.Name()).
		Msg("registered strategy")
}

// Invalidate marks all derived state stale. The next request recomputes.
func (s *Service) Invalidate() {
	s.features.Invalidate()
	s.prefs.Clear()
}

// InvalidateUser drops one user's memoized profile.
func (s *Service) InvalidateUser(userID string) {
	s.prefs.Invalidate(userID)
}

// Metrics returns the current engine counters.
func (s *Service) Metrics() Metrics {
	return Metrics{
		RequestCount:     s.requestCount.Load(),
		StrategyErrors:   s.strategyErrors.Load(),
		StrategyTimeouts: s.strategyTimeouts.Load(),
		FeatureCache:     s.features.Stats(),
		PreferenceCache:  s.prefs.Stats(),
	}
}

// Config returns a copy of the engine configuration.
func (s *Service) Config() *Config {
	return s.cfg.Clone()
}

// GetRecommendations generates personalized recommendations for a user.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) GetRecommendations(ctx context.Context, req Request) (*Response, error) {
	start := s.now()
	s.requestCount.Add(1)

	req = s.prepareRequest(req)
	logger := s.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Logger()
	logger.Debug().Msg("processing recommendation request")

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Limits.RequestTimeout)
	defer cancel()

	set, err := s.features.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh features: %w", err)
	}

	videos, err := s.catalog.ListReadyPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	byID := make(map[string]Video, len(videos))
	for i := range videos {
		byID[videos[i].ID] = videos[i]
	}

	watched, err := s.watchedSet(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	pref, err := s.prefs.GetOrCompute(ctx, req.UserID, func(ctx context.Context) (UserPreference, error) {
		history, err := s.history.GetHistory(ctx, req.UserID)
		if err != nil {
			return UserPreference{}, err
		}
		return BuildPreference(history, byID, s.now()), nil
	})
	if err != nil {
		return nil, err
	}

	// The candidate set is computed fresh per request and never cached:
	// catalog state can change between requests.
	candidates := s.buildCandidates(videos, watched, req.IncludeWatched)
	if len(candidates) == 0 {
		logger.Debug().Msg("no candidates available")
		return s.emptyResponse(req, pref, start), nil
	}

	features := s.candidateFeatures(candidates, set)

	in := Input{
		UserID:     req.UserID,
		Candidates: candidates,
		Features:   features,
		Preference: pref,
		Watched:    watched,
		History:    s.history,
		Users:      s.users,
		Timeframe:  req.Timeframe,
		Now:        s.now(),
	}

	results, counts, failed := s.runStrategies(ctx, in, logger)

	ranked := Aggregate(results, s.cfg.Weights.ToMap())
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	resp := s.buildResponse(req, pref, ranked, byID, counts, failed, len(candidates), start)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("returned", len(resp.Recommendations)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// GetSimilarVideos returns up to limit catalog items most similar to the
// target. An unknown target yields an empty list, not an error.
func (s *Service) GetSimilarVideos(ctx context.Context, videoID string, limit int) ([]Video, error) {
	if limit <= 0 {
		limit = s.cfg.Limits.SimilarVideosLimit
	}

	videos, err := s.catalog.ListReadyPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	var target *Video
	for i := range videos {
		if videos[i].ID == videoID {
			target = &videos[i]
			break
		}
	}
	if target == nil {
		return []Video{}, nil
	}

	return SimilarVideos(*target, videos, limit), nil
}

// GetVideosByCategory returns up to limit catalog items in the category.
// With a user ID and a non-empty profile the list is ordered by content
// match; otherwise by view count.
func (s *Service) GetVideosByCategory(ctx context.Context, category, userID string, limit int) ([]Video, error) {
	if limit <= 0 {
		limit = s.cfg.Limits.DefaultLimit
	}

	videos, err := s.catalog.ListReadyPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	matched := make([]Video, 0, len(videos))
	byID := make(map[string]Video, len(videos))
	for i := range videos {
		byID[videos[i].ID] = videos[i]
		if strings.EqualFold(videos[i].Category, category) {
			matched = append(matched, videos[i])
		}
	}

	var pref UserPreference
	if userID != "" {
		pref, err = s.prefs.GetOrCompute(ctx, userID, func(ctx context.Context) (UserPreference, error) {
			history, err := s.history.GetHistory(ctx, userID)
			if err != nil {
				return UserPreference{}, err
			}
			return BuildPreference(history, byID, s.now()), nil
		})
		if err != nil {
			return nil, err
		}
	}

	weights := DefaultContentMatchWeights()
	sort.SliceStable(matched, func(i, j int) bool {
		if pref.VideoCount > 0 {
			si, _ := ContentMatch(matched[i], pref, weights)
			sj, _ := ContentMatch(matched[j], pref, weights)
			if si != sj {
				return si > sj
			}
		}
		return matched[i].ViewCount > matched[j].ViewCount
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Limit <= 0 {
		req.Limit = s.cfg.Limits.DefaultLimit
	}
	if req.Limit > s.cfg.Limits.MaxLimit {
		req.Limit = s.cfg.Limits.MaxLimit
	}
	return req
}

// watchedSet returns the user's watched-video ID set.
func (s *Service) watchedSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	ids, err := s.history.GetWatchedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get watched ids: %w", err)
	}
	watched := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		watched[id] = struct{}{}
	}
	return watched, nil
}

// buildCandidates filters the catalog down to the request's candidate set.
func (s *Service) buildCandidates(videos []Video, watched map[string]struct{}, includeWatched bool) []Video {
	if includeWatched || len(watched) == 0 {
		return videos
	}
	candidates := make([]Video, 0, len(videos))
	for i := range videos {
		if _, ok := watched[videos[i].ID]; !ok {
			candidates = append(candidates, videos[i])
		}
	}
	return candidates
}

// candidateFeatures returns features for every candidate, computing on the
// fly for items published after the last bulk refresh.
func (s *Service) candidateFeatures(candidates []Video, set FeatureSet) map[string]VideoFeatures {
	features := make(map[string]VideoFeatures, len(candidates))
	for i := range candidates {
		if feat, ok := set.Features[candidates[i].ID]; ok {
			features[candidates[i].ID] = feat
			continue
		}
		features[candidates[i].ID] = s.features.For(candidates[i])
	}
	return features
}

// strategyResult holds the outcome of one strategy execution.
type strategyResult struct {
	name    string
	results []Result
	err     error
}

// runStrategies executes all registered strategies concurrently, each under
// its own timeout. A strategy that fails or times out contributes nothing;
// the request always proceeds to aggregation. Failed strategy names are
// returned sorted so callers can distinguish a failure from an empty result.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (s *Service) runStrategies(ctx context.Context, in Input, logger zerolog.Logger) ([]Result, map[string]int, []string) {
	s.stratMu.RLock()
	strategies := s.strategies
	s.stratMu.RUnlock()

	outcomes := make([]strategyResult, len(strategies))
	var wg sync.WaitGroup
	for i, st := range strategies {
		wg.Add(1)
		go func(idx int, st Strategy) {
			defer wg.Done()
			results, err := s.runStrategy(ctx, st, in)
			outcomes[idx] = strategyResult{name: st.Name(), results: results, err: err}
		}(i, st)
	}
	wg.Wait()

	counts := make(map[string]int, len(strategies))
	var all []Result
	var failed []string
	for _, out := range outcomes {
		if out.err != nil {
			s.strategyErrors.Add(1)
			if errors.Is(out.err, context.DeadlineExceeded) {
				s.strategyTimeouts.Add(1)
			}
			logger.Warn().
				Str("strategy", out.name).
				Err(out.err).
				Msg("strategy failed, contributing no results")
			counts[out.name] = 0
			failed = append(failed, out.name)
			continue
		}
		counts[out.name] = len(out.results)
		all = append(all, out.results...)
	}
	sort.Strings(failed)

	return all, counts, failed
}

// runStrategy executes one strategy under its timeout, converting panics to
// errors so a misbehaving strategy never aborts the request.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (s *Service) runStrategy(ctx context.Context, st Strategy, in Input) (results []Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("strategy panic: %v", r)
		}
	}()

	stCtx, cancel := context.WithTimeout(ctx, s.cfg.Limits.StrategyTimeout)
	defer cancel()

	return st.Score(stCtx, in)
}

// buildResponse resolves ranked IDs to catalog items and assembles the
// explanation metadata. IDs that no longer resolve are dropped.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) buildResponse(req Request, pref UserPreference, ranked []Ranked, byID map[string]Video, counts map[string]int, failed []string, totalCandidates int, start time.Time) *Response {
	recommendations := make([]ScoredVideo, 0, len(ranked))
	reasoning := make([]ReasonEntry, 0, len(ranked))
	for _, r := range ranked {
		video, ok := byID[r.VideoID]
		if !ok {
			continue
		}
		recommendations = append(recommendations, ScoredVideo{
			Video:   video,
			Score:   r.Score,
			Reasons: r.Reasons,
		})
		reasoning = append(reasoning, ReasonEntry{VideoID: r.VideoID, Reasons: r.Reasons})
	}

	return &Response{
		Recommendations: recommendations,
		Metadata: ResponseMetadata{
			RequestID:        req.RequestID,
			UserID:           req.UserID,
			TotalCandidates:  totalCandidates,
			StrategyCounts:   counts,
			FailedStrategies: failed,
			Profile:          pref.Summary(),
			Reasoning:        reasoning,
			ColdStart:        pref.VideoCount == 0,
			LatencyMS:        s.now().Sub(start).Milliseconds(),
			Timestamp:        s.now(),
		},
	}
}

// emptyResponse returns a response for requests with no candidates.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) emptyResponse(req Request, pref UserPreference, start time.Time) *Response {
	return &Response{
		Recommendations: []ScoredVideo{},
		Metadata: ResponseMetadata{
			RequestID:      req.RequestID,
			UserID:         req.UserID,
			StrategyCounts: map[string]int{},
			Profile:        pref.Summary(),
			Reasoning:      []ReasonEntry{},
			ColdStart:      pref.VideoCount == 0,
			LatencyMS:      s.now().Sub(start).Milliseconds(),
			Timestamp:      s.now(),
		},
	}
}
