// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/amc2/internal/metrics"
)

const mappingTable = "anime_mapping"

// The statements use $n placeholders, which DuckDB and PostgreSQL share.
const (
	mappingDDL = `
		CREATE TABLE IF NOT EXISTS anime_mapping (
			anidb_id TEXT NOT NULL,
			tmdb_id TEXT NOT NULL,
			PRIMARY KEY (anidb_id, tmdb_id)
		)`

	selectMappings    = `SELECT anidb_id, tmdb_id FROM anime_mapping`
	selectByAnidb     = selectMappings + ` WHERE anidb_id = $1 ORDER BY tmdb_id`
	selectByTmdb      = selectMappings + ` WHERE tmdb_id = $1 ORDER BY anidb_id`
	selectMapping     = selectMappings + ` WHERE anidb_id = $1 AND tmdb_id = $2`
	selectConflicting = selectMappings + ` WHERE anidb_id = $1 OR tmdb_id = $2`
	selectAllMappings = selectMappings + ` ORDER BY anidb_id, tmdb_id`
	insertMapping     = `INSERT INTO anime_mapping (anidb_id, tmdb_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	deleteMapping     = `DELETE FROM anime_mapping WHERE anidb_id = $1 AND tmdb_id = $2`
	deleteByAnidb     = `DELETE FROM anime_mapping WHERE anidb_id = $1`
	deleteByTmdb      = `DELETE FROM anime_mapping WHERE tmdb_id = $1`
	deleteAllMappings = `DELETE FROM anime_mapping`
)

// conn runs mapping statements on a database or inside a transaction.
type conn interface {
	query(ctx context.Context, stmt string, args ...any) ([]AnimeMapping, error)
	exec(ctx context.Context, stmt string, args ...any) error
}

// backend is a database holding the anime_mapping table.
type backend interface {
	conn
	inTx(ctx context.Context, fn func(conn) error) error
	close() error
}

// DBRepo is a Repo on a SQL database.
type DBRepo struct {
	db backend
	mu sync.RWMutex
}

// ResolveTmdb implements Repo.
func (r *DBRepo) ResolveTmdb(ctx context.Context, query AnimeMapping) ([]AnimeMapping, error) {
	if query.Anidb == "" {
		return nil, fmt.Errorf("%w: expected the anidb id to be set", ErrMissingID)
	}
	return r.query(ctx, "resolve_tmdb", selectByAnidb, query.Anidb)
}

// ResolveAnidb implements Repo.
func (r *DBRepo) ResolveAnidb(ctx context.Context, query AnimeMapping) ([]AnimeMapping, error) {
	if query.Tmdb == "" {
		return nil, fmt.Errorf("%w: expected the tmdb id to be set", ErrMissingID)
	}
	return r.query(ctx, "resolve_anidb", selectByTmdb, query.Tmdb)
}

// Load implements Repo.
func (r *DBRepo) Load(ctx context.Context, query AnimeMapping) (*AnimeMapping, error) {
	if err := query.complete(); err != nil {
		return nil, err
	}
	found, err := r.query(ctx, "load", selectMapping, query.Anidb, query.Tmdb)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

// Dump implements Repo.
func (r *DBRepo) Dump(ctx context.Context) ([]AnimeMapping, error) {
	return r.query(ctx, "dump", selectAllMappings)
}

// Store implements Repo.
func (r *DBRepo) Store(ctx context.Context, values []AnimeMapping, replace bool) (err error) {
	for _, v := range values {
		if err := v.complete(); err != nil {
			return err
		}
	}
	if len(values) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("store", mappingTable, time.Since(start), err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.inTx(ctx, func(tx conn) error {
		return storeMappings(ctx, tx, values, replace)
	})
}

// storeMappings deletes the conflicting mappings that are not stored again
// and inserts the missing ones. Rows kept as they are never get deleted and
// re-inserted within the transaction.
func storeMappings(ctx context.Context, tx conn, values []AnimeMapping, replace bool) error {
	keep := make(map[AnimeMapping]bool, len(values))
	for _, v := range values {
		keep[v] = true
	}

	if replace {
		stale := map[AnimeMapping]bool{}
		for _, v := range values {
			existing, err := tx.query(ctx, selectConflicting, v.Anidb, v.Tmdb)
			if err != nil {
				return err
			}
			for _, e := range existing {
				if !keep[e] {
					stale[e] = true
				}
			}
		}
		for e := range stale {
			if err := tx.exec(ctx, deleteMapping, e.Anidb, e.Tmdb); err != nil {
				return err
			}
		}
	}

	inserted := make(map[AnimeMapping]bool, len(values))
	for _, v := range values {
		if inserted[v] {
			continue
		}
		inserted[v] = true
		if err := tx.exec(ctx, insertMapping, v.Anidb, v.Tmdb); err != nil {
			return err
		}
	}
	return nil
}

// Remove implements Repo.
func (r *DBRepo) Remove(ctx context.Context, value AnimeMapping) (err error) {
	var stmt string
	var args []any
	switch {
	case value.Anidb != "" && value.Tmdb != "":
		stmt, args = deleteMapping, []any{value.Anidb, value.Tmdb}
	case value.Anidb != "":
		stmt, args = deleteByAnidb, []any{value.Anidb}
	case value.Tmdb != "":
		stmt, args = deleteByTmdb, []any{value.Tmdb}
	default:
		return nil
	}
	return r.exec(ctx, "remove", stmt, args...)
}

// Purge implements Repo.
func (r *DBRepo) Purge(ctx context.Context) error {
	return r.exec(ctx, "purge", deleteAllMappings)
}

// Close closes the database.
func (r *DBRepo) Close() error {
	return r.db.close()
}

func (r *DBRepo) query(ctx context.Context, op, stmt string, args ...any) (result []AnimeMapping, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, mappingTable, time.Since(start), err) }()

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db.query(ctx, stmt, args...)
}

func (r *DBRepo) exec(ctx context.Context, op, stmt string, args ...any) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, mappingTable, time.Since(start), err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.exec(ctx, stmt, args...)
}

// statementName returns the verb of a statement for error messages.
func statementName(stmt string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(stmt), " ")
	return strings.ToLower(verb)
}
