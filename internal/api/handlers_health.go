// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/amc2/internal/logging"
)

// readinessTimeout bounds all readiness checks of one request.
const readinessTimeout = 5 * time.Second

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health handles GET /healthz. It only reports that the process serves HTTP.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready handles GET /readyz by running every readiness check.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.deps.Checks))}
	status := http.StatusOK
	for _, check := range h.deps.Checks {
		if err := check.Check(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("check", check.Name).Msg("Readiness check failed")
			resp.Checks[check.Name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	writeJSON(w, r, status, resp)
}
