// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/mapping"
	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/objstore"
)

// Messages of the 404 responses that say more than "Not Found".
const (
	msgInvalidAnimeID  = "Invalid anime ID format"
	msgInvalidMatchID  = "Invalid anime ID"
	msgAnidbIDNotFound = "Anidb ID not found"
	msgTmdbIDNotFound  = "Tmdb ID not found"
)

// handleError maps an error returned by a store, repository or matcher to a
// response. This is the only place where error kinds become status codes.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case objstore.IsNotFound(err):
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Object not found")
		writeNotFound(w, r, "")
	case errors.Is(err, models.ErrInvalidID):
		writeNotFound(w, r, msgInvalidAnimeID)
	case errors.Is(err, mapping.ErrMissingID):
		writeBadRequest(w, r, ErrCodeBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		// The client is gone; nobody reads the response.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Request canceled")
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Request timed out")
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "upstream timeout")
	default:
		writeInternalError(w, r, err)
	}
}
