// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

// Package models defines the provider independent anime metadata model,
// the anime identifiers used in API paths and the repository interfaces.
//
// Identifiers:
//   - AnidbID: A123 (or 123)
//   - TmdbID: T123
//   - TmdbSeasonID: T123S1
//   - AnimeMappingID: A123-T456S1, an AniDB anime paired with one TMDB season
//
// CombineAnime merges an AniDB anime with a TMDB season into a single Anime
// whose id is the mapping id.
package models
