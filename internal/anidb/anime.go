// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package anidb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/amc2/internal/cache"
	"github.com/tomtom215/amc2/internal/metrics"
	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/objstore"
)

// ErrUnexpectedContentType is returned when a stored anime is not XML.
var ErrUnexpectedContentType = errors.New("unexpected content type")

// AnimeRepo parses anime documents from the anime store.
type AnimeRepo struct {
	store  objstore.Store
	titles models.TitleRepo
	memo   *cache.LRU[*models.AnimeEntry]
	group  singleflight.Group
}

// NewAnimeRepo creates the repository. titles is consulted before the
// store so that unknown ids never reach the API. memo may be nil.
func NewAnimeRepo(store objstore.Store, titles models.TitleRepo, memo *cache.LRU[*models.AnimeEntry]) *AnimeRepo {
	return &AnimeRepo{store: store, titles: titles, memo: memo}
}

// Get returns the anime for a numeric AniDB id, or nil if it is unknown.
func (r *AnimeRepo) Get(ctx context.Context, aid string) (*models.AnimeEntry, error) {
	if !isDigits(aid) {
		return nil, nil
	}

	exists, err := r.exists(ctx, aid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	entry, err := r.parsed(ctx, aid)
	if err != nil || entry == nil {
		return nil, err
	}
	entry = cloneEntry(entry)

	extra, err := r.titles.Find(ctx, models.Title{Type: ExtraTitleType, AID: aid})
	if err != nil {
		return nil, err
	}
	for _, e := range extra {
		entry.Anime.Titles = append(entry.Anime.Titles, e.Title)
	}
	return entry, nil
}

// parsed returns the memoized or freshly parsed anime. The result is shared
// and must not be modified.
func (r *AnimeRepo) parsed(ctx context.Context, aid string) (*models.AnimeEntry, error) {
	if r.memo != nil {
		if entry, ok := r.memo.Get(aid); ok {
			metrics.RecordMemoLookup(Source, true)
			return entry, nil
		}
		metrics.RecordMemoLookup(Source, false)
	}

	return objstore.Share(ctx, &r.group, aid, func(ctx context.Context) (*models.AnimeEntry, error) {
		return r.load(ctx, aid)
	})
}

// exists reports whether the dump knows the anime. Extra titles alone do
// not count.
func (r *AnimeRepo) exists(ctx context.Context, aid string) (bool, error) {
	entries, err := r.titles.Find(ctx, models.Title{AID: aid})
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Title.Type != ExtraTitleType {
			return true, nil
		}
	}
	return false, nil
}

func (r *AnimeRepo) load(ctx context.Context, aid string) (*models.AnimeEntry, error) {
	obj, err := r.store.Get(ctx, aid+".xml")
	if objstore.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if mt := obj.MediaType(); !strings.HasSuffix(mt, "/xml") {
		return nil, fmt.Errorf("%w: expected xml, got %q", ErrUnexpectedContentType, obj.ContentType)
	}

	anime, err := ParseAnime(obj.Data)
	if err != nil {
		return nil, err
	}

	entry := &models.AnimeEntry{Anime: anime, Age: obj.LastModified}
	if r.memo != nil {
		r.memo.Add(aid, entry)
	}
	return entry, nil
}

func cloneEntry(e *models.AnimeEntry) *models.AnimeEntry {
	return &models.AnimeEntry{Anime: e.Anime.Clone(), Age: e.Age}
}
