// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/metrics"
)

// CachedStore puts a cache store in front of a backend store.
//
// The cache favours archival over correctness: when the backend cannot
// deliver, an expired cache entry is served instead, and not found answers
// from the backend never evict cache entries.
type CachedStore struct {
	name    string
	backend Store
	cache   Store
	ttu     time.Duration

	// mu serializes all operations so the backend sees at most one request
	// at a time; group collapses concurrent gets of the same name.
	mu    sync.Mutex
	group singleflight.Group
	now   func() time.Time
}

// NewCachedStore creates a cached store. ttu (time to update) is the age after
// which a cache entry is refreshed from the backend. name labels the metrics.
func NewCachedStore(name string, backend, cache Store, ttu time.Duration) *CachedStore {
	return &CachedStore{
		name:    name,
		backend: backend,
		cache:   cache,
		ttu:     ttu,
		now:     time.Now,
	}
}

// TTU returns the configured time to update.
func (s *CachedStore) TTU() time.Duration {
	return s.ttu
}

// clampTTL limits the stat TTL to the time to update.
func (s *CachedStore) clampTTL(stat Stat) Stat {
	if stat.TTL <= 0 || stat.TTL > s.ttu {
		stat.TTL = s.ttu
	}
	return stat
}

// Stat implements Store. The cache is not filled by a stat.
func (s *CachedStore) Stat(ctx context.Context, name string) (Stat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stat, ok := s.statCache(ctx, name, s.ttu); ok {
		metrics.RecordCacheHit(s.name)
		return stat, nil
	}

	stat, err := s.backend.Stat(ctx, name)
	if err == nil {
		return s.clampTTL(stat), nil
	}
	if cerr := s.backendError(ctx, name, "stat", err); cerr != nil {
		return Stat{}, cerr
	}

	if stat, ok := s.statCache(ctx, name, NoExpiry); ok {
		metrics.RecordCacheStale(s.name)
		return stat, nil
	}

	metrics.RecordCacheMiss(s.name)
	return Stat{}, NotFound(name, "")
}

// Get implements Store. A fresh backend object is written to the cache.
func (s *CachedStore) Get(ctx context.Context, name string) (*Object, error) {
	obj, err := Share(ctx, &s.group, name, func(ctx context.Context) (*Object, error) {
		return s.get(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	// callers sharing a flight must not share the data slice
	return NewObject(obj.Stat, append([]byte(nil), obj.Data...)), nil
}

func (s *CachedStore) get(ctx context.Context, name string) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obj, ok := s.getCache(ctx, name, s.ttu); ok {
		metrics.RecordCacheHit(s.name)
		return obj, nil
	}

	obj, err := s.backend.Get(ctx, name)
	if err == nil {
		obj.Stat = s.clampTTL(obj.Stat)
		if perr := s.cache.Put(ctx, name, obj); perr != nil {
			logging.Ctx(ctx).Error().Err(perr).Str("cache", s.name).Str("name", name).Msg("Failed to update cache")
		}
		metrics.RecordCacheBackendFetch(s.name)
		return obj, nil
	}
	if cerr := s.backendError(ctx, name, "get", err); cerr != nil {
		return nil, cerr
	}

	if obj, ok := s.getCache(ctx, name, NoExpiry); ok {
		metrics.RecordCacheStale(s.name)
		return obj, nil
	}

	metrics.RecordCacheMiss(s.name)
	return nil, NotFound(name, "")
}

// Put implements Store. The backend is written first; ErrWriteNotSupported
// from the backend aborts the put so the cache stays coherent.
func (s *CachedStore) Put(ctx context.Context, name string, obj *Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Put(ctx, name, obj); err != nil {
		return err
	}
	return s.cache.Put(ctx, name, obj)
}

// backendError logs a failed backend call. Only a cancelled context is
// returned; every other failure becomes a miss.
func (s *CachedStore) backendError(ctx context.Context, name, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, ErrNotFound) {
		logging.Ctx(ctx).Debug().Str("cache", s.name).Str("name", name).Str("reason", err.Error()).
			Msg("Item not found in backend")
		return nil
	}
	logging.Ctx(ctx).Warn().Err(err).Str("cache", s.name).Str("name", name).Str("op", op).
		Msg("Backend failed, falling back to cache")
	return nil
}

func (s *CachedStore) statCache(ctx context.Context, name string, maxAge time.Duration) (Stat, bool) {
	stat, err := s.cache.Stat(ctx, name)
	if err != nil {
		s.cacheError(ctx, name, err)
		return Stat{}, false
	}
	if stat.IsExpired(maxAge, s.now()) {
		return Stat{}, false
	}
	return s.clampTTL(stat), true
}

func (s *CachedStore) getCache(ctx context.Context, name string, maxAge time.Duration) (*Object, bool) {
	stat, err := s.cache.Stat(ctx, name)
	if err != nil {
		s.cacheError(ctx, name, err)
		return nil, false
	}
	if stat.IsExpired(maxAge, s.now()) {
		logging.Ctx(ctx).Debug().Str("cache", s.name).Str("name", name).Msg("Item found in cache but outdated")
		return nil, false
	}
	obj, err := s.cache.Get(ctx, name)
	if err != nil {
		s.cacheError(ctx, name, err)
		return nil, false
	}
	obj.Stat = s.clampTTL(obj.Stat)
	return obj, true
}

func (s *CachedStore) cacheError(ctx context.Context, name string, err error) {
	if errors.Is(err, ErrNotFound) {
		logging.Ctx(ctx).Debug().Str("cache", s.name).Str("name", name).Msg("Item not found in cache")
		return
	}
	logging.Ctx(ctx).Warn().Err(err).Str("cache", s.name).Str("name", name).Msg("Cache lookup failed")
}
