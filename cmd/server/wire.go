// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/amc2/internal/anidb"
	"github.com/tomtom215/amc2/internal/api"
	"github.com/tomtom215/amc2/internal/cache"
	"github.com/tomtom215/amc2/internal/config"
	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/mapping"
	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/objstore"
	"github.com/tomtom215/amc2/internal/titles"
	"github.com/tomtom215/amc2/internal/tmdb"
)

// pinger is implemented by cache stores with a remote connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// app holds the wired components and everything that needs closing.
type app struct {
	deps        api.Deps
	anidbTitles *anidb.TitleRepo
	closers     []io.Closer
}

// Close releases the stores and repositories in reverse order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// track registers v for Close and for readiness if it supports either.
func (a *app) track(name string, v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	if p, ok := v.(pinger); ok {
		a.deps.Checks = append(a.deps.Checks, api.ReadinessCheck{Name: name, Check: p.Ping})
	}
}

// cachedStore puts the cache store given by cacheURL in front of upstream.
func (a *app) cachedStore(name string, upstream objstore.Store, cacheURL string, ttu time.Duration, opts objstore.FactoryOptions) (objstore.Store, error) {
	cacheStore, err := objstore.NewStore(cacheURL, opts)
	if err != nil {
		return nil, fmt.Errorf("%s cache: %w", name, err)
	}
	a.track(name+"-cache", cacheStore)

	logging.Info().
		Str("store", name).
		Str("cache_url", cacheURL).
		Dur("ttu", ttu).
		Msg("Cached store configured")

	return objstore.Instrument(name, objstore.NewCachedStore(name, upstream, cacheStore, ttu)), nil
}

// wire builds every store and repository from the configuration.
//
//nolint:gocyclo // Sequential wiring steps
func wire(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{deps: api.Deps{SelfBaseURL: cfg.SelfBaseURL}}
	defer func() {
		if err != nil {
			if closeErr := a.Close(); closeErr != nil {
				logging.Warn().Err(closeErr).Msg("Failed to close partially wired stores")
			}
		}
	}()
	opts := cfg.StoreOptions()

	// === AniDB ===
	titlesUpstream, err := anidb.NewTitlesStore(cfg.Anidb.TitlesURL)
	if err != nil {
		return nil, fmt.Errorf("anidb titles store: %w", err)
	}
	titlesStore, err := a.cachedStore("anidb-titles", titlesUpstream, cfg.Anidb.TitlesCacheURL, cfg.Anidb.TitlesTTL, opts)
	if err != nil {
		return nil, err
	}

	animeUpstream, err := anidb.NewAnimeStore(cfg.Anidb.APIURL, opts)
	if err != nil {
		return nil, fmt.Errorf("anidb anime store: %w", err)
	}
	a.deps.AnidbShows, err = a.cachedStore("anidb-anime", animeUpstream, cfg.Anidb.APICacheURL, cfg.Anidb.APITTL, opts)
	if err != nil {
		return nil, err
	}

	imageUpstream, err := anidb.NewImageStore(cfg.Anidb.ImageURL, opts)
	if err != nil {
		return nil, fmt.Errorf("anidb image store: %w", err)
	}
	a.deps.AnidbImages, err = a.cachedStore("anidb-images", imageUpstream, cfg.Anidb.ImageCacheURL, cfg.Anidb.ImageTTL, opts)
	if err != nil {
		return nil, err
	}

	dump, err := titles.NewSQLRepo(ctx)
	if err != nil {
		return nil, fmt.Errorf("anidb title dump: %w", err)
	}
	a.track("anidb-title-dump", dump)
	extra, err := titles.NewSQLRepo(ctx)
	if err != nil {
		return nil, fmt.Errorf("anidb extra titles: %w", err)
	}
	a.track("anidb-extra-titles", extra)

	a.anidbTitles = anidb.NewTitleRepo(titlesStore, dump, extra)
	a.deps.AnidbAnime = anidb.NewAnimeRepo(a.deps.AnidbShows, a.anidbTitles, newMemo(cfg))

	// === TMDB ===
	tmdbURL, err := tmdb.APIURL(cfg.Tmdb.APIURL, cfg.Tmdb.APIKey)
	if err != nil {
		return nil, fmt.Errorf("tmdb api url: %w", err)
	}

	showUpstream, err := tmdb.NewShowStore(tmdbURL, opts)
	if err != nil {
		return nil, fmt.Errorf("tmdb show store: %w", err)
	}
	a.deps.TmdbShows, err = a.cachedStore("tmdb-shows", showUpstream, cfg.Tmdb.APICacheURL, cfg.Tmdb.APITTL, opts)
	if err != nil {
		return nil, err
	}

	tmdbImageUpstream, err := tmdb.NewImageStore(tmdbURL, opts)
	if err != nil {
		return nil, fmt.Errorf("tmdb image store: %w", err)
	}
	a.deps.TmdbImages, err = a.cachedStore("tmdb-images", tmdbImageUpstream, cfg.Tmdb.ImageCacheURL, cfg.Tmdb.ImageTTL, opts)
	if err != nil {
		return nil, err
	}

	a.deps.TmdbAnime = tmdb.NewAnimeRepo(a.deps.TmdbShows, newMemo(cfg))

	tmdbTitles, err := tmdb.NewTitleRepo(tmdbURL, tmdb.SearchHTTPConfig())
	if err != nil {
		return nil, fmt.Errorf("tmdb title repo: %w", err)
	}

	// === Mappings ===
	mappings, err := mapping.NewRepo(ctx, cfg.Mapping.URL, opts)
	if err != nil {
		return nil, fmt.Errorf("anime mapping repo: %w", err)
	}
	a.track("anime-mapping", mappings)
	a.deps.Checks = append(a.deps.Checks, api.ReadinessCheck{
		Name: "anime-mapping",
		Check: func(ctx context.Context) error {
			_, err := mappings.Load(ctx, mapping.AnimeMapping{Anidb: "0", Tmdb: "T0S0"})
			return err
		},
	})
	a.deps.Mappings = mappings
	a.deps.Matcher = mapping.NewAnidbTitleMatcher(a.anidbTitles, tmdbTitles, mappings)

	return a, nil
}

func newMemo(cfg *config.Config) *cache.LRU[*models.AnimeEntry] {
	return cache.NewLRU[*models.AnimeEntry](cfg.Cache.MemoSize, cfg.Cache.MemoTTL)
}
