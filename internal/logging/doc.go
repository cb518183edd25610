// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

// Package logging provides centralized zerolog-based structured logging for AMC2.
//
// The package provides:
//   - a global zerolog logger configured once from main via Init
//   - JSON output for production and console output for development
//   - context-aware logging with request and correlation ID propagation
//   - an slog adapter so the suture supervisor logs through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
//
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Debug().Str("name", name).Msg("cache miss")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event is never emitted.
package logging
