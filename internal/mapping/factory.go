// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/tomtom215/amc2/internal/objstore"
)

// NewRepo creates the mapping repo for a URL:
//
//	duckdb:///path/mapping.db or sqlite:///path/mapping.db   DuckDB file
//	duckdb: or sqlite:                                        in-memory DuckDB
//	postgres://... or postgresql://...                        PostgreSQL
//	anything else                                             JSON document on an object store
//
// For object store URLs the last path element names the document, with the
// extension forced to .json, and the parent directory selects the store.
func NewRepo(ctx context.Context, raw string, opts objstore.FactoryOptions) (Repo, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse anime mapping URL %q: %w", raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "sqlite", "duckdb":
		p := u.Path
		if u.Opaque != "" {
			p = u.Opaque
		}
		return NewDuckDBRepo(ctx, p)
	case "postgres", "postgresql":
		return NewPostgresRepo(ctx, raw)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return nil, fmt.Errorf("anime mapping URL %q has no file name", raw)
	}
	if ext := path.Ext(name); ext != ".json" {
		name = strings.TrimSuffix(name, ext) + ".json"
	}
	u.Path = path.Dir(u.Path)
	u.RawPath = ""

	backend, err := objstore.NewStore(u.String(), opts)
	if err != nil {
		return nil, err
	}
	return NewJSONRepo(ctx, name, objstore.Instrument("mapping", backend))
}
