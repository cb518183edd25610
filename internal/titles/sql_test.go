// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package titles

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/tomtom215/amc2/internal/models"
)

func newTestRepo(t *testing.T) *SQLRepo {
	t.Helper()
	repo, err := NewSQLRepo(context.Background())
	if err != nil {
		t.Fatalf("NewSQLRepo() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

var testAge = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedTitles(t *testing.T, repo *SQLRepo) {
	t.Helper()
	titles := []models.Title{
		{AID: "1", Type: "main", Lang: "x-jat", Value: "Seikai no Monshou"},
		{AID: "1", Type: "official", Lang: "en", Value: "Crest of the Stars"},
		{AID: "1", Type: "official", Lang: "ja", Value: "星界の紋章"},
		{AID: "2", Type: "main", Lang: "x-jat", Value: "Cowboy Bebop"},
		{AID: "2", Type: "official", Lang: "en", Value: "Cowboy Bebop"},
	}
	entries := make([]models.TitleEntry, len(titles))
	for i, title := range titles {
		entries[i] = models.TitleEntry{Title: title, Age: testAge}
	}
	if err := repo.StoreBatch(context.Background(), entries); err != nil {
		t.Fatalf("StoreBatch() error = %v", err)
	}
}

func values(entries []models.TitleEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title.AID + ":" + e.Title.Type + ":" + e.Title.Lang + ":" + e.Title.Value
	}
	sort.Strings(out)
	return out
}

func TestSQLRepo_Find(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	seedTitles(t, repo)
	ctx := context.Background()

	tests := []struct {
		name  string
		query models.Title
		want  []string
	}{
		{
			name:  "empty query returns nothing",
			query: models.Title{},
			want:  []string{},
		},
		{
			name:  "by value",
			query: models.Title{Value: "Cowboy Bebop"},
			want:  []string{"2:main:x-jat:Cowboy Bebop", "2:official:en:Cowboy Bebop"},
		},
		{
			name:  "by value and lang",
			query: models.Title{Value: "Cowboy Bebop", Lang: "en"},
			want:  []string{"2:official:en:Cowboy Bebop"},
		},
		{
			name:  "by aid",
			query: models.Title{AID: "1"},
			want: []string{
				"1:main:x-jat:Seikai no Monshou",
				"1:official:en:Crest of the Stars",
				"1:official:ja:星界の紋章",
			},
		},
		{
			name:  "by aid and type",
			query: models.Title{AID: "1", Type: "official"},
			want:  []string{"1:official:en:Crest of the Stars", "1:official:ja:星界の紋章"},
		},
		{
			name:  "no match",
			query: models.Title{AID: "3"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Find(ctx, tt.query)
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			gotValues := values(got)
			if len(gotValues) != len(tt.want) {
				t.Fatalf("Find() = %v, want %v", gotValues, tt.want)
			}
			for i := range gotValues {
				if gotValues[i] != tt.want[i] {
					t.Errorf("Find()[%d] = %q, want %q", i, gotValues[i], tt.want[i])
				}
			}
		})
	}
}

func TestSQLRepo_FindReturnsAge(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	seedTitles(t, repo)

	got, err := repo.Find(context.Background(), models.Title{AID: "2", Lang: "en"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one title, got %d", len(got))
	}
	if !got[0].Age.Equal(testAge) {
		t.Errorf("Age = %v, want %v", got[0].Age, testAge)
	}
}

func TestSQLRepo_StoreReplaces(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()
	title := models.Title{AID: "5", Type: "extra", Lang: "en", Value: "Extra"}

	if err := repo.Store(ctx, models.TitleEntry{Title: title, Age: testAge}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	later := testAge.Add(time.Hour)
	if err := repo.Store(ctx, models.TitleEntry{Title: title, Age: later}); err != nil {
		t.Fatalf("Store() replace error = %v", err)
	}

	got, err := repo.Find(ctx, models.Title{AID: "5"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the row to be replaced, got %d rows", len(got))
	}
	if !got[0].Age.Equal(later) {
		t.Errorf("Age = %v, want %v", got[0].Age, later)
	}
}

func TestSQLRepo_StoreBatchDuplicates(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()
	title := models.Title{AID: "9", Type: "syn", Lang: "en", Value: "Dup"}

	err := repo.StoreBatch(ctx, []models.TitleEntry{
		{Title: title, Age: testAge},
		{Title: title, Age: testAge.Add(time.Minute)},
	})
	if err != nil {
		t.Fatalf("StoreBatch() error = %v", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestSQLRepo_Remove(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	seedTitles(t, repo)
	ctx := context.Background()

	if err := repo.Remove(ctx, models.Title{AID: "2"}); !errors.Is(err, ErrMissingValue) {
		t.Fatalf("expected ErrMissingValue, got %v", err)
	}

	if err := repo.Remove(ctx, models.Title{Value: "Cowboy Bebop", Type: "official"}); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	got, err := repo.Find(ctx, models.Title{AID: "2"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if want := []string{"2:main:x-jat:Cowboy Bebop"}; len(got) != 1 || values(got)[0] != want[0] {
		t.Errorf("after Remove got %v, want %v", values(got), want)
	}
}

func TestSQLRepo_Purge(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	seedTitles(t, repo)
	ctx := context.Background()

	if err := repo.Purge(ctx); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() after Purge = %d, want 0", n)
	}
}
