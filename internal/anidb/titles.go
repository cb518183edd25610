// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package anidb

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/metrics"
	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/objstore"
	"github.com/tomtom215/amc2/internal/titles"
)

// ExtraTitleType marks titles added locally rather than from the dump.
const ExtraTitleType = "extra"

// storeBatchSize bounds the rows written per transaction during a reload.
const storeBatchSize = 5000

// TitleRepo serves the titles dump together with locally stored extra
// titles. The dump is reloaded into the SQL repository whenever the copy it
// was loaded from expires.
type TitleRepo struct {
	store   objstore.Store
	dump    *titles.SQLRepo
	overlay *titles.OverlayRepo

	mu         sync.RWMutex
	validUntil time.Time
	loaded     bool
	now        func() time.Time
}

// NewTitleRepo creates the repository. dump receives the parsed titles,
// extra receives writes.
func NewTitleRepo(store objstore.Store, dump *titles.SQLRepo, extra models.TitleRepo) *TitleRepo {
	return &TitleRepo{
		store:   store,
		dump:    dump,
		overlay: titles.NewOverlayRepo(dump, extra),
		now:     time.Now,
	}
}

// Load reloads the dump if the loaded copy has expired. A failed reload
// keeps the previous titles and is retried on the next call.
func (r *TitleRepo) Load(ctx context.Context) error {
	r.mu.RLock()
	fresh := r.isFresh()
	r.mu.RUnlock()
	if fresh {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isFresh() {
		return nil
	}

	count, err := r.reload(ctx)
	metrics.RecordTitlesReload(count, err)
	if err != nil {
		if r.loaded {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to reload AniDB titles, keeping the previous titles")
			return nil
		}
		return err
	}
	logging.Ctx(ctx).Info().Int("titles", count).Time("valid_until", r.validUntil).Msg("AniDB titles loaded")
	return nil
}

// ValidUntil returns the expiry time of the loaded dump.
func (r *TitleRepo) ValidUntil() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.validUntil
}

func (r *TitleRepo) isFresh() bool {
	return r.loaded && r.now().Before(r.validUntil)
}

// reload must be called with mu held. The dump is parsed completely before
// the current titles are purged, so a broken dump leaves them untouched.
func (r *TitleRepo) reload(ctx context.Context) (int, error) {
	obj, err := r.store.Get(ctx, TitlesName)
	if err != nil {
		return 0, fmt.Errorf("get titles dump: %w", err)
	}

	age := obj.LastModified
	var entries []models.TitleEntry
	err = ParseTitles(bytes.NewReader(obj.Data), func(t models.Title) error {
		entries = append(entries, models.TitleEntry{Title: t, Age: age})
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse titles dump: %w", err)
	}

	if err := r.dump.Purge(ctx); err != nil {
		return 0, err
	}
	for start := 0; start < len(entries); start += storeBatchSize {
		end := min(start+storeBatchSize, len(entries))
		if err := r.dump.StoreBatch(ctx, entries[start:end]); err != nil {
			r.loaded = false
			return 0, err
		}
	}

	r.validUntil = obj.ExpiryTime()
	r.loaded = true
	return len(entries), nil
}

// Find loads the dump if needed and returns the dump titles followed by
// the extra titles.
func (r *TitleRepo) Find(ctx context.Context, query models.Title) ([]models.TitleEntry, error) {
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overlay.Find(ctx, query)
}

// Store stores an extra title.
func (r *TitleRepo) Store(ctx context.Context, entry models.TitleEntry) error {
	return r.overlay.Store(ctx, entry)
}

// Purge is a no-op; the dump is managed by Load and extra titles are kept.
func (r *TitleRepo) Purge(context.Context) error {
	return nil
}

// Remove removes extra titles.
func (r *TitleRepo) Remove(ctx context.Context, query models.Title) error {
	return r.overlay.Remove(ctx, query)
}
