// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package anidb fetches and parses AniDB data.

# Stores

  - AnimeStore: the AniDB HTTP API (request=anime), one "<aid>.xml" object
    per anime. Errors reported in the XML body are mapped to not found or
    to runtime errors, and a ban starts the error cool-down.
  - image store: the AniDB image CDN, one object per file name.
  - TitlesStore: the daily titles dump (anime-titles.xml.gz), decompressed.

AniDB bans clients that request too often, so every HTTP store waits 4s
between requests and backs off for 30 minutes after an error. The stores
are meant to sit behind an objstore.CachedStore.

# Repositories

TitleRepo keeps the titles dump in a DuckDB table and reloads it when the
cached copy expires. AnimeRepo parses the anime XML into models.Anime and
memoizes the result.
*/
package anidb
