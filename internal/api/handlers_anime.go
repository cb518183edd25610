// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/models"
)

// Anime handles GET /anime/{id}. The id selects the source: A123 reads
// AniDB, T123 and T123S1 read the whole TMDB show, and A123-T456S1 merges
// the AniDB anime into that TMDB season.
func (h *Handler) Anime(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := models.ParseAnimeID(raw)
	if err != nil {
		writeNotFound(w, r, msgInvalidAnimeID)
		return
	}

	logging.Ctx(r.Context()).Debug().Str("anime_id", id.String()).Msg("Loading anime")

	var entry *models.AnimeEntry
	switch id := id.(type) {
	case models.AnidbID:
		entry, err = h.deps.AnidbAnime.Get(r.Context(), id.Digits())
	case models.TmdbID:
		entry, err = h.tmdbAnime(r.Context(), id.Show)
	case models.TmdbSeasonID:
		entry, err = h.tmdbAnime(r.Context(), id.Show)
	case models.AnimeMappingID:
		h.mappedAnime(w, r, raw, id)
		return
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	if entry == nil || entry.Anime == nil {
		writeNotFound(w, r, "")
		return
	}

	setLastModified(w, entry.Age)
	writeJSON(w, r, http.StatusOK, h.views.anime(raw, entry.Anime))
}

func (h *Handler) tmdbAnime(ctx context.Context, show int) (*models.AnimeEntry, error) {
	return h.deps.TmdbAnime.Get(ctx, strconv.Itoa(show))
}

// mappedAnime loads both sides of a mapping id and merges them.
func (h *Handler) mappedAnime(w http.ResponseWriter, r *http.Request, raw string, id models.AnimeMappingID) {
	anidbEntry, err := h.deps.AnidbAnime.Get(r.Context(), id.Anidb.Digits())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if anidbEntry == nil || anidbEntry.Anime == nil {
		writeNotFound(w, r, msgAnidbIDNotFound)
		return
	}

	tmdbEntry, err := h.tmdbAnime(r.Context(), id.Tmdb.Show)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if tmdbEntry == nil || tmdbEntry.Anime == nil {
		writeNotFound(w, r, msgTmdbIDNotFound)
		return
	}

	combined, err := models.CombineAnime(anidbEntry.Anime, tmdbEntry.Anime, id.Tmdb.Season)
	if err != nil {
		handleError(w, r, err)
		return
	}

	age := anidbEntry.Age
	if tmdbEntry.Age.After(age) {
		age = tmdbEntry.Age
	}
	setLastModified(w, age)
	writeJSON(w, r, http.StatusOK, h.views.anime(raw, combined))
}
