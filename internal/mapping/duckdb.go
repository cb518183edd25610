// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/amc2/internal/database"
)

// NewDuckDBRepo opens the mapping repo in a DuckDB file. An empty path
// opens an in-memory database.
func NewDuckDBRepo(ctx context.Context, path string) (*DBRepo, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	repo, err := NewDuckDBRepoFromDB(ctx, db)
	if err != nil {
		database.CloseQuietly(db)
		return nil, err
	}
	repo.db.(*duckBackend).owned = true
	return repo, nil
}

// NewDuckDBRepoFromDB creates the mapping table in db if needed.
func NewDuckDBRepoFromDB(ctx context.Context, db *sql.DB) (*DBRepo, error) {
	if _, err := db.ExecContext(ctx, mappingDDL); err != nil {
		return nil, fmt.Errorf("failed to create anime_mapping table: %w", err)
	}
	return &DBRepo{db: &duckBackend{sqlConn: sqlConn{db}, db: db}}, nil
}

// sqlQuerier is satisfied by *sql.DB and *sql.Tx.
type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlConn struct {
	q sqlQuerier
}

func (c sqlConn) query(ctx context.Context, stmt string, args ...any) ([]AnimeMapping, error) {
	rows, err := c.q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anime mappings: %w", err)
	}
	defer rows.Close()

	result := []AnimeMapping{}
	for rows.Next() {
		var m AnimeMapping
		if err := rows.Scan(&m.Anidb, &m.Tmdb); err != nil {
			return nil, fmt.Errorf("failed to scan anime mapping: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating anime mappings: %w", err)
	}
	return result, nil
}

func (c sqlConn) exec(ctx context.Context, stmt string, args ...any) error {
	if _, err := c.q.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to %s anime mapping: %w", statementName(stmt), err)
	}
	return nil
}

type duckBackend struct {
	sqlConn
	db    *sql.DB
	owned bool
}

func (b *duckBackend) inTx(ctx context.Context, fn func(conn) error) error {
	return database.InTx(ctx, b.db, func(tx *sql.Tx) error {
		return fn(sqlConn{tx})
	})
}

func (b *duckBackend) close() error {
	if b.owned {
		return b.db.Close()
	}
	return nil
}
