// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock supplies the current time. Injected so tests control freshness
// deterministically.
type Clock func() time.Time

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	// Hits is the number of lookups served from fresh cached state.
	Hits int64 `json:"hits"`

	// Misses is the number of lookups that triggered recomputation.
	Misses int64 `json:"misses"`

	// Recomputes is the number of recomputations actually performed.
	// Under concurrent misses this stays below Misses: the single-flight
	// guard collapses them into one recompute.
	Recomputes int64 `json:"recomputes"`
}

// FeatureSet is the bulk-computed derived state for the whole catalog:
// per-item features plus the vocabulary they were extracted against.
type FeatureSet struct {
	Features map[string]VideoFeatures
	Vocab    Vocabulary
}

// FeatureCache owns the catalog-wide feature cache. The whole set is
// recomputed in bulk once it is older than the TTL; individual items missing
// from a fresh set (published mid-TTL) are treated as misses and computed
// synchronously. Refreshing this cache has no effect on the preference
// cache: each tracks its own freshness.
type FeatureCache struct {
	catalog   CatalogStore
	extractor *Extractor
	ttl       time.Duration
	now       Clock

	mu          sync.RWMutex
	set         FeatureSet
	refreshedAt time.Time

	group      singleflight.Group
	hits       atomic.Int64
	misses     atomic.Int64
	recomputes atomic.Int64
}

// NewFeatureCache creates a feature cache. A nil clock uses time.Now.
func NewFeatureCache(catalog CatalogStore, extractor *Extractor, ttl time.Duration, now Clock) *FeatureCache {
	if now == nil {
		now = time.Now
	}
	return &FeatureCache{
		catalog:   catalog,
		extractor: extractor,
		ttl:       ttl,
		now:       now,
	}
}

// Get returns the current feature set, recomputing it in bulk when stale.
// Concurrent callers observing a stale set trigger exactly one recompute and
// share its result.
func (c *FeatureCache) Get(ctx context.Context) (FeatureSet, error) {
	c.mu.RLock()
	fresh := !c.refreshedAt.IsZero() && c.now().Sub(c.refreshedAt) < c.ttl
	set := c.set
	c.mu.RUnlock()

	if fresh {
		c.hits.Add(1)
		return set, nil
	}

	c.misses.Add(1)
	v, err, _ := c.group.Do("features", func() (interface{}, error) {
		// Another caller may have refreshed while we waited on the flight.
		c.mu.RLock()
		fresh := !c.refreshedAt.IsZero() && c.now().Sub(c.refreshedAt) < c.ttl
		set := c.set
		c.mu.RUnlock()
		if fresh {
			return set, nil
		}
		// The recompute is shared by every caller in the flight; the
		// initiating request's cancellation must not fail the others.
		return c.recompute(context.WithoutCancel(ctx))
	})
	if err != nil {
		return FeatureSet{}, err
	}
	return v.(FeatureSet), nil
}

// Refresh forces a bulk recomputation regardless of freshness.
func (c *FeatureCache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("features", func() (interface{}, error) {
		return c.recompute(context.WithoutCancel(ctx))
	})
	return err
}

// Invalidate marks the cache stale. The next Get recomputes.
func (c *FeatureCache) Invalidate() {
	c.mu.Lock()
	c.refreshedAt = time.Time{}
	c.mu.Unlock()
}

// For returns the features for one video, computing and storing them against
// the current vocabulary if the bulk set does not contain the item. Sets
// already returned by Get are unaffected.
func (c *FeatureCache) For(v Video) VideoFeatures {
	c.mu.RLock()
	feat, ok := c.set.Features[v.ID]
	c.mu.RUnlock()
	if ok {
		return feat
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if feat, ok := c.set.Features[v.ID]; ok {
		return feat
	}
	feat = c.extractor.Extract(v, c.set.Vocab, c.now())

	// Sets handed out by Get are read without locking, so the stored map is
	// never mutated in place: a new map is installed instead.
	next := make(map[string]VideoFeatures, len(c.set.Features)+1)
	for id, f := range c.set.Features {
		next[id] = f
	}
	next[v.ID] = feat
	c.set.Features = next
	return feat
}

// Stats returns cache effectiveness counters.
func (c *FeatureCache) Stats() CacheStats {
	return CacheStats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Recomputes: c.recomputes.Load(),
	}
}

// recompute extracts features for every catalog item under a fresh
// vocabulary and installs the result.
func (c *FeatureCache) recompute(ctx context.Context) (FeatureSet, error) {
	videos, err := c.catalog.ListReadyPublic(ctx)
	if err != nil {
		return FeatureSet{}, fmt.Errorf("list catalog for feature refresh: %w", err)
	}

	now := c.now()
	vocab := BuildVocabulary(videos)
	features := make(map[string]VideoFeatures, len(videos))
	for i := range videos {
		features[videos[i].ID] = c.extractor.Extract(videos[i], vocab, now)
	}
	set := FeatureSet{Features: features, Vocab: vocab}

	c.mu.Lock()
	c.set = set
	c.refreshedAt = now
	c.mu.Unlock()

	c.recomputes.Add(1)
	return set, nil
}

// prefEntry is one memoized user profile.
type prefEntry struct {
	pref       UserPreference
	computedAt time.Time
}

// PreferenceCache owns the per-user preference cache. Each entry tracks its
// own freshness and recomputes under a per-user single-flight guard, so the
// feature cache's bulk refresh never touches it.
type PreferenceCache struct {
	ttl time.Duration
	now Clock

	mu      sync.RWMutex
	entries map[string]prefEntry

	group      singleflight.Group
	hits       atomic.Int64
	misses     atomic.Int64
	recomputes atomic.Int64
}

// NewPreferenceCache creates a preference cache. A nil clock uses time.Now.
func NewPreferenceCache(ttl time.Duration, now Clock) *PreferenceCache {
	if now == nil {
		now = time.Now
	}
	return &PreferenceCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]prefEntry),
	}
}

// GetOrCompute returns the user's memoized profile, invoking compute when the
// entry is missing or stale. Concurrent requests for the same stale user
// trigger exactly one compute and share its result.
func (c *PreferenceCache) GetOrCompute(ctx context.Context, userID string, compute func(ctx context.Context) (UserPreference, error)) (UserPreference, error) {
	if pref, ok := c.lookup(userID); ok {
		c.hits.Add(1)
		return pref, nil
	}

	c.misses.Add(1)
	v, err, _ := c.group.Do(userID, func() (interface{}, error) {
		if pref, ok := c.lookup(userID); ok {
			return pref, nil
		}

		// Like the feature recompute, the result is shared by every caller
		// in the flight and must survive the initiating request going away.
		pref, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return UserPreference{}, err
		}

		c.mu.Lock()
		c.entries[userID] = prefEntry{pref: pref, computedAt: c.now()}
		c.mu.Unlock()

		c.recomputes.Add(1)
		return pref, nil
	})
	if err != nil {
		return UserPreference{}, fmt.Errorf("compute preference for user %s: %w", userID, err)
	}
	return v.(UserPreference), nil
}

// Invalidate drops one user's entry. The next lookup recomputes.
func (c *PreferenceCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *PreferenceCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]prefEntry)
	c.mu.Unlock()
}

// Stats returns cache effectiveness counters.
func (c *PreferenceCache) Stats() CacheStats {
	return CacheStats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Recomputes: c.recomputes.Load(),
	}
}

// lookup returns a fresh entry, if any.
func (c *PreferenceCache) lookup(userID string) (UserPreference, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[userID]
	if !ok {
		return UserPreference{}, false
	}
	if c.now().Sub(entry.computedAt) >= c.ttl {
		return UserPreference{}, false
	}
	return entry.pref, true
}
