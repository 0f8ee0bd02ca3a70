// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

// Package memory provides the in-memory backing store for the recommender.
// It implements the engine's catalog, watch-history, and user-directory
// interfaces and can be seeded from a JSON fixture at startup.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/openlearn-tv/recommender/internal/recommend"
)

// User is one learner in the directory.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Store is the in-memory data store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	videos  map[string]recommend.Video
	history map[string][]recommend.WatchEntry // userID -> entries
	viewers map[string][]string               // videoID -> userIDs
	users   map[string]User
}

// Interface conformance.
var (
	_ recommend.CatalogStore      = (*Store)(nil)
	_ recommend.WatchHistoryStore = (*Store)(nil)
	_ recommend.UserDirectory     = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		videos:  make(map[string]recommend.Video),
		history: make(map[string][]recommend.WatchEntry),
		viewers: make(map[string][]string),
		users:   make(map[string]User),
	}
}

// Seed is the JSON fixture format.
type Seed struct {
	Videos  []recommend.Video `json:"videos"`
	Users   []User            `json:"users"`
	History []SeedWatch       `json:"history"`
}

// SeedWatch is one watch record in the fixture.
type SeedWatch struct {
	UserID    string `json:"user_id"`
	VideoID   string `json:"video_id"`
	Completed bool   `json:"completed"`
	WatchTime int    `json:"watch_time"`
}

// LoadSeed populates the store from a JSON fixture file.
func (s *Store) LoadSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for i := range seed.Videos {
		s.PutVideo(seed.Videos[i])
	}
	for _, u := range seed.Users {
		s.PutUser(u)
	}
	for _, w := range seed.History {
		s.RecordWatch(w.UserID, recommend.WatchEntry{
			VideoID:   w.VideoID,
			Completed: w.Completed,
			WatchTime: w.WatchTime,
		})
	}
	return nil
}

// PutVideo inserts or replaces a catalog item.
func (s *Store) PutVideo(v recommend.Video) {
	s.mu.Lock()
	s.videos[v.ID] = v
	s.mu.Unlock()
}

// DeleteVideo removes a catalog item. Watch history referencing it stays;
// the engine skips entries it cannot resolve.
func (s *Store) DeleteVideo(videoID string) {
	s.mu.Lock()
	delete(s.videos, videoID)
	s.mu.Unlock()
}

// PutUser inserts or replaces a directory entry.
func (s *Store) PutUser(u User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

// RecordWatch appends a watch entry for the user. Re-watching a video
// updates the existing entry instead of duplicating it.
func (s *Store) RecordWatch(userID string, entry recommend.WatchEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.history[userID]
	for i := range entries {
		if entries[i].VideoID == entry.VideoID {
			entries[i] = entry
			return
		}
	}
	s.history[userID] = append(entries, entry)
	s.viewers[entry.VideoID] = append(s.viewers[entry.VideoID], userID)
}

// ListReadyPublic implements recommend.CatalogStore. Items are returned in
// ID order for deterministic downstream behavior.
func (s *Store) ListReadyPublic(_ context.Context) ([]recommend.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	videos := make([]recommend.Video, 0, len(s.videos))
	for _, v := range s.videos {
		videos = append(videos, v)
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })
	return videos, nil
}

// GetHistory implements recommend.WatchHistoryStore.
func (s *Store) GetHistory(_ context.Context, userID string) ([]recommend.WatchEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[userID]
	out := make([]recommend.WatchEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// GetWatchedIDs implements recommend.WatchHistoryStore.
func (s *Store) GetWatchedIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[userID]
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.VideoID
	}
	return ids, nil
}

// GetViewers implements recommend.WatchHistoryStore.
func (s *Store) GetViewers(_ context.Context, videoID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	viewers := s.viewers[videoID]
	out := make([]string, len(viewers))
	copy(out, viewers)
	return out, nil
}

// GetDisplayName implements recommend.UserDirectory.
func (s *Store) GetDisplayName(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return "", fmt.Errorf("unknown user %s", userID)
	}
	return u.DisplayName, nil
}

// Counts returns the store sizes, for startup logging.
func (s *Store) Counts() (videos, users, watchers int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos), len(s.users), len(s.history)
}
