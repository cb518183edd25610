// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package tmdb fetches and parses TV shows from The Movie Database.

ShowStore assembles one JSON document per show and language ("en/123.json")
from the show, its images and alternative titles, every season with images
and aggregate credits, and every episode with images. A show with many
seasons costs dozens of API calls, which is why the store is meant to sit
behind an objstore.CachedStore.

The image store resolves names against the secure_base_url from the
/configuration endpoint. TitleRepo searches shows by name and turns their
seasons into titles with TxxSyy ids.
*/
package tmdb
