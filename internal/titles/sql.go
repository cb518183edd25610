// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package titles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/amc2/internal/database"
	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/metrics"
	"github.com/tomtom215/amc2/internal/models"
)

const titlesTable = "titles"

const titlesDDL = `
	CREATE TABLE IF NOT EXISTS titles (
		aid TEXT NOT NULL,
		type TEXT NOT NULL,
		lang TEXT NOT NULL,
		value TEXT NOT NULL,
		age TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (aid, type, lang, value)
	);
	CREATE INDEX IF NOT EXISTS idx_titles_value ON titles(value);
`

// ErrMissingValue is returned by Remove when the query has no value.
var ErrMissingValue = errors.New("title value is required")

// SQLRepo is a TitleRepo stored in a DuckDB table. Storing a title with an
// existing (aid, type, lang, value) key replaces its age.
type SQLRepo struct {
	db    *sql.DB
	owned bool
	mu    sync.RWMutex
}

// NewSQLRepo opens an in-memory DuckDB database for the titles.
func NewSQLRepo(ctx context.Context) (*SQLRepo, error) {
	db, err := database.Open("")
	if err != nil {
		return nil, err
	}
	repo, err := NewSQLRepoFromDB(ctx, db)
	if err != nil {
		database.CloseQuietly(db)
		return nil, err
	}
	repo.owned = true
	return repo, nil
}

// NewSQLRepoFromDB creates the titles table in db if needed.
func NewSQLRepoFromDB(ctx context.Context, db *sql.DB) (*SQLRepo, error) {
	if _, err := db.ExecContext(ctx, titlesDDL); err != nil {
		return nil, fmt.Errorf("failed to create titles table: %w", err)
	}
	return &SQLRepo{db: db}, nil
}

// Close closes the database if the repo opened it.
func (r *SQLRepo) Close() error {
	if r.owned {
		return r.db.Close()
	}
	return nil
}

// Find returns the titles matching every non-empty query field. An empty
// query returns no titles instead of the whole table.
func (r *SQLRepo) Find(ctx context.Context, query models.Title) (result []models.TitleEntry, err error) {
	conds, args := titleConditions(query)
	if len(conds) == 0 {
		return []models.TitleEntry{}, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("find", titlesTable, time.Since(start), err) }()

	stmt := "SELECT aid, type, lang, value, age FROM titles WHERE " + strings.Join(conds, " AND ")

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}
	defer rows.Close()

	result = []models.TitleEntry{}
	for rows.Next() {
		var entry models.TitleEntry
		if err := rows.Scan(&entry.Title.AID, &entry.Title.Type, &entry.Title.Lang, &entry.Title.Value, &entry.Age); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating titles: %w", err)
	}
	return result, nil
}

// Store inserts or replaces a title.
func (r *SQLRepo) Store(ctx context.Context, entry models.TitleEntry) error {
	return r.StoreBatch(ctx, []models.TitleEntry{entry})
}

// StoreBatch inserts or replaces titles in one transaction. Duplicate keys
// within the batch keep the last entry.
func (r *SQLRepo) StoreBatch(ctx context.Context, entries []models.TitleEntry) (err error) {
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("store", titlesTable, time.Since(start), err) }()

	entries = dedupeTitles(entries)

	r.mu.Lock()
	defer r.mu.Unlock()

	return database.InTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO titles (aid, type, lang, value, age) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() {
			if closeErr := stmt.Close(); closeErr != nil {
				logging.Warn().Err(closeErr).Msg("Failed to close prepared statement")
			}
		}()

		for _, e := range entries {
			t := e.Title
			if _, err := stmt.ExecContext(ctx, t.AID, t.Type, t.Lang, t.Value, e.Age.UTC()); err != nil {
				return fmt.Errorf("failed to store title %q: %w", t.Value, err)
			}
		}
		return nil
	})
}

// Purge deletes all titles.
func (r *SQLRepo) Purge(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("purge", titlesTable, time.Since(start), err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM titles"); err != nil {
		return fmt.Errorf("failed to purge titles: %w", err)
	}
	return nil
}

// Remove deletes the titles with the query value, restricted by the
// optional aid, lang and type.
func (r *SQLRepo) Remove(ctx context.Context, query models.Title) (err error) {
	if query.Value == "" {
		return ErrMissingValue
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("remove", titlesTable, time.Since(start), err) }()

	conds, args := titleConditions(query)
	stmt := "DELETE FROM titles WHERE " + strings.Join(conds, " AND ")

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to remove titles: %w", err)
	}
	return nil
}

// Count returns the number of stored titles.
func (r *SQLRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM titles").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count titles: %w", err)
	}
	return n, nil
}

// titleConditions builds the WHERE conditions for the non-empty fields.
func titleConditions(query models.Title) ([]string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(column, value string) {
		if value == "" {
			return
		}
		conds = append(conds, column+" = ?")
		args = append(args, value)
	}
	add("value", query.Value)
	add("aid", query.AID)
	add("lang", query.Lang)
	add("type", query.Type)
	return conds, args
}

func dedupeTitles(entries []models.TitleEntry) []models.TitleEntry {
	seen := make(map[models.Title]int, len(entries))
	out := make([]models.TitleEntry, 0, len(entries))
	for _, e := range entries {
		if i, ok := seen[e.Title]; ok {
			out[i] = e
			continue
		}
		seen[e.Title] = len(out)
		out = append(out, e)
	}
	return out
}
