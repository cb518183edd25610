// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tomtom215/amc2/internal/logging"
)

// NewPostgresRepo connects to PostgreSQL and creates the mapping table if
// needed.
func NewPostgresRepo(ctx context.Context, dsn string) (*DBRepo, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, mappingDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create anime_mapping table: %w", err)
	}
	return &DBRepo{db: &pgBackend{pgConn: pgConn{pool}, pool: pool}}, nil
}

// pgQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgConn struct {
	q pgQuerier
}

func (c pgConn) query(ctx context.Context, stmt string, args ...any) ([]AnimeMapping, error) {
	rows, err := c.q.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query anime mappings: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AnimeMapping, error) {
		var m AnimeMapping
		err := row.Scan(&m.Anidb, &m.Tmdb)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan anime mappings: %w", err)
	}
	if result == nil {
		result = []AnimeMapping{}
	}
	return result, nil
}

func (c pgConn) exec(ctx context.Context, stmt string, args ...any) error {
	if _, err := c.q.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to %s anime mapping: %w", statementName(stmt), err)
	}
	return nil
}

type pgBackend struct {
	pgConn
	pool *pgxpool.Pool
}

func (b *pgBackend) inTx(ctx context.Context, fn func(conn) error) error {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Error().Err(err).Msg("Transaction rollback failed")
		}
	}()

	if err := fn(pgConn{tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (b *pgBackend) close() error {
	b.pool.Close()
	return nil
}
