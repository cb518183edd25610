// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/amc2/internal/objstore"
	"github.com/tomtom215/amc2/internal/validation"
)

// AnidbShow handles GET /anidb/shows/{aid} with the cached AniDB XML.
func (h *Handler) AnidbShow(w http.ResponseWriter, r *http.Request) {
	aid := chi.URLParam(r, "aid")
	if !validation.IsObjectName(aid) {
		writeNotFound(w, r, "")
		return
	}
	h.serveObject(w, r, h.deps.AnidbShows, aid+".xml", contentTypeAnidb)
}

// AnidbImage handles GET and HEAD /anidb/images/{name}.
func (h *Handler) AnidbImage(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, h.deps.AnidbImages)
}

// TmdbShow handles GET /tmdb/shows/{lang}/{sid} with the cached TMDB JSON.
func (h *Handler) TmdbShow(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	sid := chi.URLParam(r, "sid")
	if !validation.IsObjectName(lang) || !validation.IsObjectName(sid) {
		writeNotFound(w, r, "")
		return
	}
	h.serveObject(w, r, h.deps.TmdbShows, path.Join(lang, sid+".json"), contentTypeTmdb)
}

// TmdbImage handles GET and HEAD /tmdb/images/{name}.
func (h *Handler) TmdbImage(w http.ResponseWriter, r *http.Request) {
	h.serveImage(w, r, h.deps.TmdbImages)
}

// serveImage answers HEAD from the object's stat and GET with its bytes.
func (h *Handler) serveImage(w http.ResponseWriter, r *http.Request, store objstore.Store) {
	name := chi.URLParam(r, "name")
	if !validation.IsObjectName(name) {
		writeNotFound(w, r, "")
		return
	}

	if r.Method == http.MethodHead {
		stat, err := store.Stat(r.Context(), name)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeStat(w, stat)
		return
	}

	h.serveObject(w, r, store, name, "")
}

func (h *Handler) serveObject(w http.ResponseWriter, r *http.Request, store objstore.Store, name, contentType string) {
	obj, err := store.Get(r.Context(), name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeObject(w, r, obj, contentType)
}
