// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package models

import (
	"context"
	"errors"
)

// ErrNotSupported is returned by read-only repositories on write operations.
var ErrNotSupported = errors.New("operation not supported")

// TitleRepo stores and searches anime titles.
type TitleRepo interface {
	// Find returns the titles matching every non-empty field of the query.
	Find(ctx context.Context, query Title) ([]TitleEntry, error)

	// Store inserts or replaces a title.
	Store(ctx context.Context, entry TitleEntry) error

	// Purge removes all titles.
	Purge(ctx context.Context) error

	// Remove deletes the titles matching the query; the value must be set.
	Remove(ctx context.Context, query Title) error
}

// AnimeRepo loads parsed anime by provider specific id.
// A missing anime is reported as (nil, nil).
type AnimeRepo interface {
	Get(ctx context.Context, id string) (*AnimeEntry, error)
}
