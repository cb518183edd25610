// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/amc2/internal/objstore"
)

func TestNewRepo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name     string
		url      string
		wantJSON string
		wantErr  bool
	}{
		{name: "duckdb in memory", url: "duckdb:"},
		{name: "sqlite alias", url: "sqlite:"},
		{name: "duckdb file", url: "duckdb://" + filepath.Join(dir, "mapping.db")},
		{name: "json", url: "file://" + dir + "/mapping.json", wantJSON: "mapping.json"},
		{name: "json forced extension", url: "file://" + dir + "/other.txt", wantJSON: "other.json"},
		{name: "json added extension", url: "file://" + dir + "/third", wantJSON: "third.json"},
		{name: "memory", url: "memory:///mapping.json", wantJSON: "mapping.json"},
		{name: "no file name", url: "memory:", wantErr: true},
		{name: "unknown scheme", url: "ftp://host/mapping.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			repo, err := NewRepo(ctx, tt.url, objstore.FactoryOptions{})
			if tt.wantErr {
				if err == nil {
					_ = repo.Close()
					t.Fatalf("NewRepo(%q) expected an error", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRepo(%q) error = %v", tt.url, err)
			}
			defer repo.Close()

			mustStore(t, repo, true, AnimeMapping{"1", "T10S1"})

			if tt.wantJSON == "" {
				if _, ok := repo.(*DBRepo); !ok {
					t.Errorf("NewRepo(%q) = %T, want *DBRepo", tt.url, repo)
				}
				return
			}
			jsonRepo, ok := repo.(*JSONRepo)
			if !ok {
				t.Fatalf("NewRepo(%q) = %T, want *JSONRepo", tt.url, repo)
			}
			if jsonRepo.name != tt.wantJSON {
				t.Errorf("document name = %q, want %q", jsonRepo.name, tt.wantJSON)
			}
			if strings.HasPrefix(tt.url, "file://") {
				if _, err := os.Stat(filepath.Join(dir, tt.wantJSON)); err != nil {
					t.Errorf("JSON document not written to the file store: %v", err)
				}
			}
		})
	}
}
