// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/tomtom215/amc2/internal/logging"
)

// ErrTitlesNotLoaded is reported by Ready until the first load succeeded.
var ErrTitlesNotLoaded = errors.New("titles not loaded yet")

// TitleLoader reloads a title dump when its copy has expired.
type TitleLoader interface {
	Load(ctx context.Context) error
	ValidUntil() time.Time
}

// TitleRefreshService keeps the AniDB titles loaded in the background so
// that title matching never waits for a dump download.
//
// It loads once on start and then every interval. Failed loads are logged
// and retried on the next tick; the service itself only stops with its
// context.
type TitleRefreshService struct {
	loader   TitleLoader
	interval time.Duration
	loaded   atomic.Bool
	name     string
}

// NewTitleRefreshService creates the service. interval must be positive.
func NewTitleRefreshService(loader TitleLoader, interval time.Duration) *TitleRefreshService {
	return &TitleRefreshService{
		loader:   loader,
		interval: interval,
		name:     "title-refresh",
	}
}

// Serve implements suture.Service.
func (s *TitleRefreshService) Serve(ctx context.Context) error {
	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *TitleRefreshService) refresh(ctx context.Context) {
	if err := s.loader.Load(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Warn().Err(err).Str("service", s.name).Msg("Failed to load AniDB titles")
		return
	}
	if !s.loaded.Swap(true) {
		logging.Info().Time("valid_until", s.loader.ValidUntil()).Msg("AniDB titles ready")
	}
}

// Ready reports ErrTitlesNotLoaded until a load succeeded. It has the
// signature of a readiness check.
func (s *TitleRefreshService) Ready(context.Context) error {
	if !s.loaded.Load() {
		return ErrTitlesNotLoaded
	}
	return nil
}

// String implements fmt.Stringer; suture names the service by it.
func (s *TitleRefreshService) String() string {
	return s.name
}
