// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package models

import (
	"fmt"
	"maps"
	"slices"
)

// CombineAnime merges an AniDB anime with one season of a TMDB show.
//
// The result is a deep copy of the AniDB anime with the mapping id, the TMDB
// unique ids, images, ratings and genres added. Only the specials season (0 to 0)
// and the first season (1 to tmdbSeason) are kept, each only when both sides
// have it. Episodes are not matched: the order does not need to match and some
// AniDB anime span multiple TMDB seasons.
func CombineAnime(anidb, tmdb *Anime, tmdbSeason int) (*Anime, error) {
	if anidb == nil || tmdb == nil {
		return nil, fmt.Errorf("combine anime: both anidb and tmdb anime are required")
	}
	anidbID, err := ParseAnidbID(anidb.ID)
	if err != nil {
		return nil, fmt.Errorf("combine anime: %w", err)
	}
	tmdbID, err := ParseTmdbID(tmdb.ID)
	if err != nil {
		return nil, fmt.Errorf("combine anime: %w", err)
	}

	anime := anidb.Clone()
	anime.ID = AnimeMappingID{
		Anidb: anidbID,
		Tmdb:  TmdbSeasonID{Show: tmdbID.Show, Season: tmdbSeason},
	}.String()

	if anime.UniqueIDs == nil {
		anime.UniqueIDs = make(map[string]string, len(tmdb.UniqueIDs))
	}
	maps.Copy(anime.UniqueIDs, tmdb.UniqueIDs)
	anime.Images = append(anime.Images, tmdb.Images...)
	anime.Ratings = append(anime.Ratings, tmdb.Ratings...)

	// anidb does not have genres
	anime.Genres = slices.Clone(tmdb.Genres)

	seasonMap := [][2]int{{0, 0}, {1, tmdbSeason}}
	seasons := make([]Season, 0, len(seasonMap))
	for _, pair := range seasonMap {
		anidbSeason := anime.FindSeason(pair[0])
		tmdbSeasonData := tmdb.FindSeason(pair[1])
		if anidbSeason == nil || tmdbSeasonData == nil {
			continue
		}
		merged := *anidbSeason
		merged.Images = append(slices.Clone(merged.Images), tmdbSeasonData.Images...)
		merged.Ratings = append(slices.Clone(merged.Ratings), tmdbSeasonData.Ratings...)
		seasons = append(seasons, merged)
	}
	anime.Seasons = seasons
	anime.Normalize()

	return anime, nil
}
