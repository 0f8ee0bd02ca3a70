// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeHistory is an in-memory WatchHistoryStore for tests.
type fakeHistory struct {
	entries map[string][]WatchEntry
	err     error
}

func (f *fakeHistory) GetHistory(_ context.Context, userID string) ([]WatchEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[userID], nil
}

func (f *fakeHistory) GetWatchedIDs(ctx context.Context, userID string) ([]string, error) {
	entries, err := f.GetHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VideoID)
	}
	return ids, nil
}

func (f *fakeHistory) GetViewers(_ context.Context, videoID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var viewers []string
	for userID, entries := range f.entries {
		for _, e := range entries {
			if e.VideoID == videoID {
				viewers = append(viewers, userID)
				break
			}
		}
	}
	return viewers, nil
}

// stubStrategy returns canned results, or fails, or panics.
type stubStrategy struct {
	name    string
	results []Result
	err     error
	panics  bool
	delay   time.Duration
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Score(ctx context.Context, _ Input) ([]Result, error) {
	if s.panics {
		panic("stub strategy panic")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func testService(t *testing.T, deps Deps, cfg *Config) *Service {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	svc, err := NewService(cfg, deps, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func testCatalog() *countingCatalog {
	return &countingCatalog{videos: []Video{
		{ID: "v1", Category: "programming", Tags: []string{"go"}, Difficulty: "beginner", Duration: 600, ViewCount: 900},
		{ID: "v2", Category: "programming", Tags: []string{"go", "testing"}, Difficulty: "intermediate", Duration: 700, ViewCount: 400},
		{ID: "v3", Category: "design", Tags: []string{"figma"}, Difficulty: "beginner", Duration: 300, ViewCount: 100},
		{ID: "v4", Category: "music", Tags: []string{"jazz"}, Difficulty: "advanced", Duration: 1200, ViewCount: 50},
	}}
}

func TestNewServiceValidation(t *testing.T) {
	history := &fakeHistory{}
	catalog := testCatalog()

	tests := []struct {
		name    string
		cfg     *Config
		deps    Deps
		wantErr bool
	}{
		{
			name: "nil config uses defaults",
			deps: Deps{Catalog: catalog, History: history},
		},
		{
			name:    "missing catalog rejected",
			deps:    Deps{History: history},
			wantErr: true,
		},
		{
			name:    "missing history rejected",
			deps:    Deps{Catalog: catalog},
			wantErr: true,
		},
		{
			name: "invalid config rejected",
			cfg: func() *Config {
				c := DefaultConfig()
				c.Limits.DefaultLimit = -1
				return c
			}(),
			deps:    Deps{Catalog: catalog, History: history},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.cfg, tt.deps, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewService() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetRecommendations(t *testing.T) {
	history := &fakeHistory{entries: map[string][]WatchEntry{
		"u1": {{VideoID: "v1", Completed: true, WatchTime: 600}},
	}}
	svc := testService(t, Deps{Catalog: testCatalog(), History: history}, nil)
	svc.RegisterStrategy(&stubStrategy{name: "content_based", results: []Result{
		{VideoID: "v2", Score: 0.9, Reasons: []string{"match"}, Strategy: "content_based"},
		{VideoID: "v3", Score: 0.4, Reasons: []string{"weak match"}, Strategy: "content_based"},
	}})
	svc.RegisterStrategy(&stubStrategy{name: "trending", results: []Result{
		{VideoID: "v2", Score: 0.5, Reasons: []string{"hot"}, Strategy: "trending"},
	}})

	resp, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}

	if len(resp.Recommendations) != 2 {
		t.Fatalf("len(Recommendations) = %d, want 2", len(resp.Recommendations))
	}

	// v2 aggregates both strategies and ranks first.
	top := resp.Recommendations[0]
	if top.Video.ID != "v2" {
		t.Errorf("top video = %q, want v2", top.Video.ID)
	}
	if len(top.Reasons) != 2 {
		t.Errorf("top reasons = %v, want both strategies' reasons", top.Reasons)
	}

	seen := make(map[string]bool)
	for _, rec := range resp.Recommendations {
		if seen[rec.Video.ID] {
			t.Fatalf("video %q recommended twice", rec.Video.ID)
		}
		seen[rec.Video.ID] = true
	}

	md := resp.Metadata
	if md.RequestID == "" {
		t.Error("RequestID not generated")
	}
	if md.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", md.UserID)
	}
	if md.ColdStart {
		t.Error("ColdStart = true for a user with history")
	}
	if md.TotalCandidates != 3 {
		t.Errorf("TotalCandidates = %d, want 3 (v1 watched)", md.TotalCandidates)
	}
	if md.StrategyCounts["content_based"] != 2 || md.StrategyCounts["trending"] != 1 {
		t.Errorf("StrategyCounts = %v", md.StrategyCounts)
	}
	if len(md.Reasoning) != len(resp.Recommendations) {
		t.Errorf("len(Reasoning) = %d, want %d", len(md.Reasoning), len(resp.Recommendations))
	}
	if len(md.FailedStrategies) != 0 {
		t.Errorf("FailedStrategies = %v, want none", md.FailedStrategies)
	}
}

func TestGetRecommendationsExcludesWatched(t *testing.T) {
	history := &fakeHistory{entries: map[string][]WatchEntry{
		"u1": {{VideoID: "v1"}, {VideoID: "v2"}},
	}}
	svc := testService(t, Deps{Catalog: testCatalog(), History: history}, nil)
	svc.RegisterStrategy(&stubStrategy{name: "trending", results: []Result{
		{VideoID: "v3", Score: 0.5, Strategy: "trending"},
	}})

	resp, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range resp.Recommendations {
		if rec.Video.ID == "v1" || rec.Video.ID == "v2" {
			t.Errorf("watched video %q recommended", rec.Video.ID)
		}
	}
	if resp.Metadata.TotalCandidates != 2 {
		t.Errorf("TotalCandidates = %d, want 2", resp.Metadata.TotalCandidates)
	}

	// IncludeWatched keeps the full catalog as candidates.
	resp, err = svc.GetRecommendations(context.Background(), Request{UserID: "u1", IncludeWatched: true})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.TotalCandidates != 4 {
		t.Errorf("TotalCandidates = %d, want 4 with IncludeWatched", resp.Metadata.TotalCandidates)
	}
}

func TestGetRecommendationsLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.MaxLimit = 3
	svc := testService(t, Deps{Catalog: testCatalog(), History: &fakeHistory{}}, cfg)

	var results []Result
	for _, id := range []string{"v1", "v2", "v3", "v4"} {
		results = append(results, Result{VideoID: id, Score: 0.5, Strategy: "trending"})
	}
	svc.RegisterStrategy(&stubStrategy{name: "trending", results: results})

	// Limit above the maximum is clamped.
	resp, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1", Limit: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Recommendations) != 3 {
		t.Errorf("len = %d, want 3 (clamped to MaxLimit)", len(resp.Recommendations))
	}

	// Explicit limit within bounds is honored.
	resp, err = svc.GetRecommendations(context.Background(), Request{UserID: "u1", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Recommendations) != 2 {
		t.Errorf("len = %d, want 2", len(resp.Recommendations))
	}
}

func TestGetRecommendationsColdStart(t *testing.T) {
	svc := testService(t, Deps{Catalog: testCatalog(), History: &fakeHistory{}}, nil)
	svc.RegisterStrategy(&stubStrategy{name: "trending", results: []Result{
		{VideoID: "v1", Score: 0.8, Strategy: "trending"},
	}})

	resp, err := svc.GetRecommendations(context.Background(), Request{UserID: "new-user"})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v, cold start must not fail", err)
	}
	if !resp.Metadata.ColdStart {
		t.Error("ColdStart = false for a user with no history")
	}
	if len(resp.Recommendations) != 1 {
		t.Errorf("len = %d, want 1 (trending still contributes)", len(resp.Recommendations))
	}
}

func TestGetRecommendationsStrategyFailure(t *testing.T) {
	svc := testService(t, Deps{Catalog: testCatalog(), History: &fakeHistory{}}, nil)
	svc.RegisterStrategy(&stubStrategy{name: "broken", err: errors.New("boom")})
	svc.RegisterStrategy(&stubStrategy{name: "panicky", panics: true})
	svc.RegisterStrategy(&stubStrategy{name: "trending", results: []Result{
		{VideoID: "v1", Score: 0.5, Strategy: "trending"},
	}})

	resp, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v, strategy failures must not fail the request", err)
	}
	if len(resp.Recommendations) != 1 {
		t.Errorf("len = %d, want 1 from the healthy strategy", len(resp.Recommendations))
	}
	if resp.Metadata.StrategyCounts["broken"] != 0 {
		t.Errorf("broken strategy count = %d, want 0", resp.Metadata.StrategyCounts["broken"])
	}
	// A zero count alone does not identify a failure; the failed list does.
	got := resp.Metadata.FailedStrategies
	if len(got) != 2 || got[0] != "broken" || got[1] != "panicky" {
		t.Errorf("FailedStrategies = %v, want [broken panicky]", got)
	}
	if svc.Metrics().StrategyErrors != 2 {
		t.Errorf("StrategyErrors = %d, want 2", svc.Metrics().StrategyErrors)
	}
}

func TestGetRecommendationsStrategyTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.StrategyTimeout = 10 * time.Millisecond
	svc := testService(t, Deps{Catalog: testCatalog(), History: &fakeHistory{}}, cfg)
	svc.RegisterStrategy(&stubStrategy{name: "slow", delay: time.Second})
	svc.RegisterStrategy(&stubStrategy{name: "trending", results: []Result{
		{VideoID: "v1", Score: 0.5, Strategy: "trending"},
	}})

	resp, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v, a slow strategy must not fail the request", err)
	}
	if len(resp.Recommendations) != 1 {
		t.Errorf("len = %d, want 1", len(resp.Recommendations))
	}
	if svc.Metrics().StrategyTimeouts != 1 {
		t.Errorf("StrategyTimeouts = %d, want 1", svc.Metrics().StrategyTimeouts)
	}
	if got := resp.Metadata.FailedStrategies; len(got) != 1 || got[0] != "slow" {
		t.Errorf("FailedStrategies = %v, want [slow]", got)
	}
}

func TestGetRecommendationsConcurrentWithLatePublishes(t *testing.T) {
	catalog := testCatalog()
	svc := testService(t, Deps{Catalog: catalog, History: &fakeHistory{}}, nil)
	svc.RegisterStrategy(&stubStrategy{name: "trending", results: []Result{
		{VideoID: "v1", Score: 0.5, Strategy: "trending"},
	}})

	// Warm the bulk feature set, then publish items it does not contain.
	if _, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		catalog.videos = append(catalog.videos, Video{ID: fmt.Sprintf("late-%d", i), Category: "programming"})
	}

	// Requests reading candidate features overlap with requests computing
	// the late items on the fly.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := svc.GetRecommendations(context.Background(), Request{UserID: fmt.Sprintf("u%d", i)})
			if err != nil {
				t.Errorf("GetRecommendations() error = %v", err)
				return
			}
			if resp.Metadata.TotalCandidates != 12 {
				t.Errorf("TotalCandidates = %d, want 12", resp.Metadata.TotalCandidates)
			}
		}(i)
	}
	wg.Wait()
}

func TestRegisterStrategyWithoutWeightWarns(t *testing.T) {
	var buf bytes.Buffer
	svc, err := NewService(nil, Deps{Catalog: testCatalog(), History: &fakeHistory{}}, zerolog.New(&buf))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	svc.RegisterStrategy(&stubStrategy{name: "experimental"})
	if !strings.Contains(buf.String(), "no configured weight") {
		t.Errorf("log output = %q, want a missing-weight warning", buf.String())
	}

	buf.Reset()
	svc.RegisterStrategy(&stubStrategy{name: "trending"})
	if strings.Contains(buf.String(), "no configured weight") {
		t.Errorf("log output = %q, warned for a weighted strategy", buf.String())
	}
}

func TestGetRecommendationsNoCandidates(t *testing.T) {
	catalog := &countingCatalog{videos: []Video{{ID: "v1"}}}
	history := &fakeHistory{entries: map[string][]WatchEntry{
		"u1": {{VideoID: "v1"}},
	}}
	svc := testService(t, Deps{Catalog: catalog, History: history}, nil)
	svc.RegisterStrategy(&stubStrategy{name: "trending"})

	resp, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("len = %d, want 0", len(resp.Recommendations))
	}
	if resp.Recommendations == nil {
		t.Error("Recommendations must be an empty list, not nil")
	}
}

func TestGetRecommendationsHistoryError(t *testing.T) {
	svc := testService(t, Deps{Catalog: testCatalog(), History: &fakeHistory{err: errors.New("db down")}}, nil)

	if _, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"}); err == nil {
		t.Fatal("GetRecommendations() error = nil, want history error")
	}
}

func TestGetSimilarVideos(t *testing.T) {
	svc := testService(t, Deps{Catalog: testCatalog(), History: &fakeHistory{}}, nil)

	got, err := svc.GetSimilarVideos(context.Background(), "v1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// v2 shares category and a tag with v1.
	if got[0].ID != "v2" {
		t.Errorf("got[0] = %q, want v2", got[0].ID)
	}
	for _, v := range got {
		if v.ID == "v1" {
			t.Error("target video returned in its own similarity list")
		}
	}

	// Unknown target yields an empty list, not an error.
	got, err = svc.GetSimilarVideos(context.Background(), "missing", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 for unknown target", len(got))
	}
}

func TestGetVideosByCategory(t *testing.T) {
	history := &fakeHistory{entries: map[string][]WatchEntry{
		"u1": {{VideoID: "v2", Completed: true, WatchTime: 700}},
	}}
	svc := testService(t, Deps{Catalog: testCatalog(), History: history}, nil)

	// Anonymous listing orders by view count.
	got, err := svc.GetVideosByCategory(context.Background(), "programming", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "v1" {
		t.Errorf("got %v, want [v1 v2] by view count", videoIDs(got))
	}

	// Case-insensitive category match.
	got, err = svc.GetVideosByCategory(context.Background(), "Programming", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 for case-insensitive match", len(got))
	}

	// Unknown category yields an empty list.
	got, err = svc.GetVideosByCategory(context.Background(), "cooking", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestInvalidateDropsCaches(t *testing.T) {
	catalog := testCatalog()
	history := &fakeHistory{entries: map[string][]WatchEntry{}}
	svc := testService(t, Deps{Catalog: catalog, History: history}, nil)
	svc.RegisterStrategy(&stubStrategy{name: "trending"})

	if _, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	before := svc.Metrics()
	svc.Invalidate()
	if _, err := svc.GetRecommendations(context.Background(), Request{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	after := svc.Metrics()

	if after.FeatureCache.Recomputes <= before.FeatureCache.Recomputes {
		t.Error("feature cache not recomputed after Invalidate")
	}
	if after.PreferenceCache.Recomputes <= before.PreferenceCache.Recomputes {
		t.Error("preference cache not recomputed after Invalidate")
	}
}

func videoIDs(videos []Video) []string {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	return ids
}
