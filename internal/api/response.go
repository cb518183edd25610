// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/objstore"
)

// APIResponse is the envelope of every error response.
type APIResponse struct {
	// Success is always false for errors
	Success bool `json:"success"`

	// Error contains error details
	Error *APIError `json:"error,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
)

// Content types of the raw upstream documents.
const (
	contentTypeJSON    = "application/json; charset=utf-8"
	contentTypeAnidb   = "text/xml; charset=utf-8"
	contentTypeTmdb    = "text/json; charset=utf-8"
	headerLastModified = "Last-Modified"
)

// writeJSON writes a JSON response with proper headers.
func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write response")
	}
}

// writeError writes the error envelope with the given status code.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	writeJSON(w, r, statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// writeNotFound writes a 404 Not Found error.
func writeNotFound(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeBadRequest writes a 400 Bad Request error.
func writeBadRequest(w http.ResponseWriter, r *http.Request, code, message string) {
	writeError(w, r, http.StatusBadRequest, code, message)
}

// writeInternalError logs err and writes a 500 without leaking its text.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	writeError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "")
}

// setLastModified sets the Last-Modified header as an HTTP date in GMT.
func setLastModified(w http.ResponseWriter, t time.Time) {
	if t.IsZero() {
		return
	}
	w.Header().Set(headerLastModified, t.UTC().Format(http.TimeFormat))
}

// writeObject writes a persisted object. An empty contentType uses the
// object's own content type.
func writeObject(w http.ResponseWriter, r *http.Request, obj *objstore.Object, contentType string) {
	if contentType == "" {
		contentType = obj.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	setLastModified(w, obj.LastModified)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(obj.Data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write object")
	}
}

// writeStat writes the headers of a persisted object without a body.
func writeStat(w http.ResponseWriter, stat objstore.Stat) {
	w.Header().Set("Content-Type", stat.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size, 10))
	setLastModified(w, stat.LastModified)
	w.WriteHeader(http.StatusOK)
}
