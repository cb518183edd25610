// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package titles

import (
	"context"

	"github.com/tomtom215/amc2/internal/models"
)

// OverlayRepo reads from a base and an overlay repository and writes to
// the overlay only.
type OverlayRepo struct {
	Base    models.TitleRepo
	Overlay models.TitleRepo
}

// NewOverlayRepo combines base and overlay.
func NewOverlayRepo(base, overlay models.TitleRepo) *OverlayRepo {
	return &OverlayRepo{Base: base, Overlay: overlay}
}

// Find returns the base titles followed by the overlay titles.
func (r *OverlayRepo) Find(ctx context.Context, query models.Title) ([]models.TitleEntry, error) {
	base, err := r.Base.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	upper, err := r.Overlay.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	return append(base, upper...), nil
}

// Store writes to the overlay.
func (r *OverlayRepo) Store(ctx context.Context, entry models.TitleEntry) error {
	return r.Overlay.Store(ctx, entry)
}

// Purge purges the overlay.
func (r *OverlayRepo) Purge(ctx context.Context) error {
	return r.Overlay.Purge(ctx)
}

// Remove removes from the overlay.
func (r *OverlayRepo) Remove(ctx context.Context, query models.Title) error {
	return r.Overlay.Remove(ctx, query)
}
