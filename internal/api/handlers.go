// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"context"
	"errors"

	"github.com/tomtom215/amc2/internal/mapping"
	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/objstore"
)

// TitleMatcher finds candidate mappings for a title.
type TitleMatcher interface {
	MatchTitle(ctx context.Context, query models.Title) ([]mapping.TitleMappingResult, error)
}

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps holds everything the handlers read from.
type Deps struct {
	// SelfBaseURL is the public URL the links of responses point below.
	SelfBaseURL string

	AnidbShows  objstore.Store
	AnidbImages objstore.Store
	TmdbShows   objstore.Store
	TmdbImages  objstore.Store

	// AnidbAnime takes bare AniDB digits, TmdbAnime a bare TMDB show id.
	AnidbAnime models.AnimeRepo
	TmdbAnime  models.AnimeRepo

	Matcher  TitleMatcher
	Mappings mapping.Repo

	// Checks run on /readyz.
	Checks []ReadinessCheck
}

// Handler serves the HTTP API.
type Handler struct {
	deps  Deps
	views views
}

// NewHandler creates the API handler.
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.SelfBaseURL == "":
		return nil, errors.New("api: self base URL is required")
	case deps.AnidbShows == nil, deps.AnidbImages == nil, deps.TmdbShows == nil, deps.TmdbImages == nil:
		return nil, errors.New("api: all object stores are required")
	case deps.AnidbAnime == nil, deps.TmdbAnime == nil:
		return nil, errors.New("api: both anime repositories are required")
	case deps.Matcher == nil, deps.Mappings == nil:
		return nil, errors.New("api: the title matcher and the mapping repository are required")
	}
	return &Handler{deps: deps, views: views{base: deps.SelfBaseURL}}, nil
}
