// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package tmdb

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

// DefaultLanguage is the language of the documents the repo parses.
const DefaultLanguage = "en"

// ErrUnexpectedContentType is returned when a stored show is not JSON.
var ErrUnexpectedContentType = errors.New("unexpected content type")

// AnimeRepo parses show documents from the show store.
type AnimeRepo struct {
	store objstore.Store
	memo  *cache.LRU[*models.AnimeEntry]
	group singleflight.Group
}

// NewAnimeRepo creates the repository. memo may be nil.
func NewAnimeRepo(store objstore.Store, memo *cache.LRU[*models.AnimeEntry]) *AnimeRepo {
	return &AnimeRepo{store: store, memo: memo}
}

// Get returns the show with a numeric TMDB id, or nil if it is unknown.
func (r *AnimeRepo) Get(ctx context.Context, id string) (*models.AnimeEntry, error) {
	if _, err := parseShowName(DefaultLanguage + "/" + id + ".json"); err != nil {
		return nil, nil
	}

	if r.memo != nil {
		if entry, ok := r.memo.Get(id); ok {
			metrics.RecordMemoLookup(Source, true)
			return cloneEntry(entry), nil
		}
		metrics.RecordMemoLookup(Source, false)
	}

	entry, err := objstore.Share(ctx, &r.group, id, func(ctx context.Context) (*models.AnimeEntry, error) {
		return r.load(ctx, id)
	})
	if err != nil || entry == nil {
		return nil, err
	}
	return cloneEntry(entry), nil
}

func (r *AnimeRepo) load(ctx context.Context, id string) (*models.AnimeEntry, error) {
	obj, err := r.store.Get(ctx, DefaultLanguage+"/"+id+".json")
	if objstore.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if mt := obj.MediaType(); !strings.HasSuffix(mt, "/json") {
		return nil, fmt.Errorf("%w: expected json, got %q", ErrUnexpectedContentType, obj.ContentType)
	}

	anime, err := ParseShow(obj.Data, DefaultLanguage)
	if err != nil {
		return nil, err
	}

	entry := &models.AnimeEntry{Anime: anime, Age: obj.LastModified}
	if r.memo != nil {
		r.memo.Add(id, entry)
	}
	return entry, nil
}

func cloneEntry(e *models.AnimeEntry) *models.AnimeEntry {
	return &models.AnimeEntry{Anime: e.Anime.Clone(), Age: e.Age}
}
