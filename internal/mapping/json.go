// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/objstore"
)

// JSONContentType is the content type of the saved document.
const JSONContentType = "text/json"

// JSONRepo keeps the mappings as one JSON document on an object store,
// e.g. next to the caches on S3.
//
// The document is read on first use into an in-memory DuckDB repo that
// serves all reads, and written as a whole after every change. Changes to
// the document from outside the process are not picked up.
type JSONRepo struct {
	name    string
	backend objstore.Store
	cache   *DBRepo

	mu     sync.Mutex
	loaded bool
}

// NewJSONRepo creates the repo for the document name in backend.
func NewJSONRepo(ctx context.Context, name string, backend objstore.Store) (*JSONRepo, error) {
	cache, err := NewDuckDBRepo(ctx, "")
	if err != nil {
		return nil, err
	}
	return &JSONRepo{name: name, backend: backend, cache: cache}, nil
}

// load fills the cache from the document once. A missing or undecodable
// document is an empty repo.
func (r *JSONRepo) load(ctx context.Context) error {
	if r.loaded {
		return nil
	}
	if err := r.cache.Purge(ctx); err != nil {
		return err
	}

	obj, err := r.backend.Get(ctx, r.name)
	switch {
	case objstore.IsNotFound(err):
		r.loaded = true
		return nil
	case err != nil:
		return fmt.Errorf("failed to load anime mappings: %w", err)
	}

	if len(obj.Data) > 0 {
		items, err := decodeMappings(obj.Data)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("name", r.name).Msg("Failed to decode anime mapping repo json data")
		} else if err := r.cache.Store(ctx, items, false); err != nil {
			return err
		}
	}
	r.loaded = true
	return nil
}

func decodeMappings(data []byte) ([]AnimeMapping, error) {
	var items []AnimeMapping
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := item.complete(); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *JSONRepo) save(ctx context.Context) error {
	items, err := r.cache.Dump(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode anime mappings: %w", err)
	}
	obj := objstore.NewObject(objstore.NewStat(JSONContentType, time.Time{}), data)
	if err := r.backend.Put(ctx, r.name, obj); err != nil {
		return fmt.Errorf("failed to save anime mappings: %w", err)
	}
	return nil
}

// ResolveTmdb implements Repo.
func (r *JSONRepo) ResolveTmdb(ctx context.Context, query AnimeMapping) ([]AnimeMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r.cache.ResolveTmdb(ctx, query)
}

// ResolveAnidb implements Repo.
func (r *JSONRepo) ResolveAnidb(ctx context.Context, query AnimeMapping) ([]AnimeMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r.cache.ResolveAnidb(ctx, query)
}

// Load implements Repo.
func (r *JSONRepo) Load(ctx context.Context, query AnimeMapping) (*AnimeMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r.cache.Load(ctx, query)
}

// Dump implements Repo.
func (r *JSONRepo) Dump(ctx context.Context) ([]AnimeMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	return r.cache.Dump(ctx)
}

// Store implements Repo.
func (r *JSONRepo) Store(ctx context.Context, values []AnimeMapping, replace bool) error {
	return r.update(ctx, func() error { return r.cache.Store(ctx, values, replace) })
}

// Remove implements Repo.
func (r *JSONRepo) Remove(ctx context.Context, value AnimeMapping) error {
	return r.update(ctx, func() error { return r.cache.Remove(ctx, value) })
}

// Purge implements Repo.
func (r *JSONRepo) Purge(ctx context.Context) error {
	return r.update(ctx, func() error { return r.cache.Purge(ctx) })
}

func (r *JSONRepo) update(ctx context.Context, fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.load(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return r.save(ctx)
}

// Close closes the in-memory cache.
func (r *JSONRepo) Close() error {
	return r.cache.Close()
}
