// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/amc2/internal/models"
)

// ErrMissingID is returned when a mapping lacks an id the operation needs.
var ErrMissingID = errors.New("mapping id is required")

// AnimeMapping pairs an AniDB anime (digits) with a TMDB season (T#S#).
// In queries an empty field means no restriction.
type AnimeMapping struct {
	Anidb string `json:"anidb"`
	Tmdb  string `json:"tmdb"`
}

// FromID returns the mapping for a parsed mapping id.
func FromID(id models.AnimeMappingID) AnimeMapping {
	return AnimeMapping{Anidb: id.Anidb.Digits(), Tmdb: id.Tmdb.String()}
}

func (m AnimeMapping) complete() error {
	if m.Anidb == "" || m.Tmdb == "" {
		return fmt.Errorf("%w: expected the anidb and tmdb ids to be set", ErrMissingID)
	}
	return nil
}

// TitleMappingResult is a candidate mapping found for a title.
type TitleMappingResult struct {
	Anidb models.Title
	Tmdb  models.Title

	// IsFromMatch marks a perfect title match worth remembering.
	IsFromMatch bool

	// IsFromStorage marks a mapping read from the repo.
	IsFromStorage bool
}

// Repo stores anime mappings.
type Repo interface {
	// ResolveTmdb returns the mappings of the query's AniDB id.
	ResolveTmdb(ctx context.Context, query AnimeMapping) ([]AnimeMapping, error)

	// ResolveAnidb returns the mappings of the query's TMDB id.
	ResolveAnidb(ctx context.Context, query AnimeMapping) ([]AnimeMapping, error)

	// Load returns the mapping with both ids, or nil.
	Load(ctx context.Context, query AnimeMapping) (*AnimeMapping, error)

	// Store adds the mappings in one transaction. With replace, the
	// existing mappings of every AniDB id and every TMDB id in values are
	// deleted first.
	Store(ctx context.Context, values []AnimeMapping, replace bool) error

	// Remove deletes the mappings matching the set fields of value.
	// Without any set field nothing is removed.
	Remove(ctx context.Context, value AnimeMapping) error

	// Dump returns every mapping.
	Dump(ctx context.Context) ([]AnimeMapping, error)

	// Purge deletes every mapping.
	Purge(ctx context.Context) error

	Close() error
}
