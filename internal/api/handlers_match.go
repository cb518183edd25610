// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/mapping"
	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/validation"
)

// matchDatabase is the only database titles can be matched against.
const matchDatabase = "anidb"

// matchRequest holds the query parameters of GET /match/.
type matchRequest struct {
	Title string `query:"title" validate:"required,max=512"`
	DB    string `query:"db" validate:"oneof=anidb"`
}

// Match handles GET /match/?title=...&db=anidb and returns candidate
// mappings between AniDB anime and TMDB seasons.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := matchRequest{
		Title: strings.TrimSpace(q.Get("title")),
		DB:    q.Get("db"),
	}
	if req.DB == "" {
		req.DB = matchDatabase
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		writeBadRequest(w, r, apiErr.Code, apiErr.Message)
		return
	}

	results, err := h.deps.Matcher.MatchTitle(r.Context(), models.Title{Value: req.Title})
	if err != nil {
		handleError(w, r, err)
		return
	}

	items := make([]TitleMappingView, 0, len(results))
	for _, res := range results {
		view, err := h.views.titleMapping(res)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).
				Str("anidb", res.Anidb.AID).
				Str("tmdb", res.Tmdb.AID).
				Msg("Skipping match with malformed ids")
			continue
		}
		items = append(items, view)
	}

	writeJSON(w, r, http.StatusOK, CollectionView[TitleMappingView]{Items: items, Links: Links{}})
}

// GetMapping handles GET /match/{id}.
func (h *Handler) GetMapping(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mappingID(w, r)
	if !ok {
		return
	}

	stored, err := h.deps.Mappings.Load(r.Context(), mapping.FromID(id))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if stored == nil {
		writeNotFound(w, r, "")
		return
	}
	writeJSON(w, r, http.StatusOK, h.views.animeMapping(id))
}

// PutMapping handles PUT /match/{id}. Remembering a mapping replaces every
// other mapping of both of its ids.
func (h *Handler) PutMapping(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mappingID(w, r)
	if !ok {
		return
	}

	value := mapping.FromID(id)
	stored, err := h.deps.Mappings.Load(r.Context(), value)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if stored == nil {
		if err := h.deps.Mappings.Store(r.Context(), []mapping.AnimeMapping{value}, true); err != nil {
			handleError(w, r, err)
			return
		}
		logging.Ctx(r.Context()).Info().Str("anime_id", id.String()).Msg("Mapping remembered")
	}
	writeJSON(w, r, http.StatusOK, h.views.animeMapping(id))
}

// DeleteMapping handles DELETE /match/{id}. Forgetting an unknown mapping
// succeeds.
func (h *Handler) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mappingID(w, r)
	if !ok {
		return
	}

	value := mapping.FromID(id)
	stored, err := h.deps.Mappings.Load(r.Context(), value)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if stored != nil {
		if err := h.deps.Mappings.Remove(r.Context(), value); err != nil {
			handleError(w, r, err)
			return
		}
		logging.Ctx(r.Context()).Info().Str("anime_id", id.String()).Msg("Mapping forgotten")
	}
	w.WriteHeader(http.StatusNoContent)
}

// mappingID parses the {id} path parameter or writes a 404. Only the
// canonical form (A1-T2S3) is accepted.
func (h *Handler) mappingID(w http.ResponseWriter, r *http.Request) (models.AnimeMappingID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := models.ParseAnimeMappingID(raw)
	if err != nil || id.String() != raw {
		writeNotFound(w, r, msgInvalidMatchID)
		return models.AnimeMappingID{}, false
	}
	return id, true
}
