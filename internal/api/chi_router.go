// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/amc2/internal/middleware"
)

// compressionLevel is the gzip/deflate level for text responses.
const compressionLevel = 5

// Router wires the handler and the middleware into routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware factory uses the defaults.
func NewRouter(handler *Handler, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: chiMiddleware}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w, r, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "")
	})

	// ========================
	// Health & Observability
	// ========================
	// Not rate limited so probes and scrapes never see 429.
	r.Get("/healthz", router.handler.Health)
	r.Get("/readyz", router.handler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// API Routes
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(RequestLogging())
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		// Images are already compressed.
		r.Use(chimiddleware.Compress(compressionLevel, "application/json", "text/json", "text/xml"))

		r.Route("/anidb", func(r chi.Router) {
			r.Get("/shows/{aid}", router.handler.AnidbShow)
			r.Get("/images/{name}", router.handler.AnidbImage)
			r.Head("/images/{name}", router.handler.AnidbImage)
		})

		r.Route("/tmdb", func(r chi.Router) {
			r.Get("/shows/{lang}/{sid}", router.handler.TmdbShow)
			r.Get("/images/{name}", router.handler.TmdbImage)
			r.Head("/images/{name}", router.handler.TmdbImage)
		})

		r.Get("/anime/{id}", router.handler.Anime)

		r.Route("/match", func(r chi.Router) {
			r.Get("/", router.handler.Match)
			r.Get("/{id}", router.handler.GetMapping)
			r.Put("/{id}", router.handler.PutMapping)
			r.Delete("/{id}", router.handler.DeleteMapping)
		})
	})

	return r
}
