// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

// Package titles provides the generic title repositories: a DuckDB backed
// SQL repository and an overlay that combines a read-mostly base repository
// with a writable upper one.
package titles
