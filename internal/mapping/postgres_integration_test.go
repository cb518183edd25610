// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

//go:build integration

package mapping

import (
	"context"
	"testing"

	"github.com/tomtom215/amc2/internal/objstore"
	"github.com/tomtom215/amc2/internal/testinfra"
)

func TestPostgresRepoIntegration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx := context.Background()

	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, pg)

	// subtests share the database and start from an empty table
	runRepoTests(t, func(t *testing.T) Repo {
		t.Helper()
		repo, err := NewRepo(ctx, pg.DSN, objstore.FactoryOptions{})
		if err != nil {
			t.Fatalf("NewRepo(postgres) error = %v", err)
		}
		if _, ok := repo.(*DBRepo); !ok {
			t.Fatalf("NewRepo(postgres) = %T, want *DBRepo", repo)
		}
		if err := repo.Purge(ctx); err != nil {
			t.Fatalf("Purge() error = %v", err)
		}
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}
