// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/amc2/internal/models"
)

// fakeTitles is a read-only TitleRepo over a fixed list that records the
// queries it receives.
type fakeTitles struct {
	titles []models.Title
	err    error

	mu      sync.Mutex
	queries []models.Title
}

func (f *fakeTitles) Find(_ context.Context, query models.Title) ([]models.TitleEntry, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.TitleEntry
	for _, t := range f.titles {
		if (query.Value == "" || query.Value == t.Value) &&
			(query.AID == "" || query.AID == t.AID) &&
			(query.Lang == "" || t.Lang == "" || query.Lang == t.Lang) &&
			(query.Type == "" || query.Type == t.Type) {
			out = append(out, models.TitleEntry{Title: t, Age: time.Unix(0, 0)})
		}
	}
	return out, nil
}

func (f *fakeTitles) Store(context.Context, models.TitleEntry) error { return models.ErrNotSupported }

func (f *fakeTitles) Purge(context.Context) error { return models.ErrNotSupported }

func (f *fakeTitles) Remove(context.Context, models.Title) error { return models.ErrNotSupported }

func (f *fakeTitles) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func anidbTitles() *fakeTitles {
	return &fakeTitles{titles: []models.Title{
		{Value: "Shingeki no Kyojin", AID: "9541", Lang: "x-jat", Type: "main"},
		{Value: "Attack on Titan", AID: "9541", Lang: "en", Type: "official"},
		{Value: "進撃の巨人", AID: "9541", Lang: "ja", Type: "official"},
		{Value: "AoT", AID: "9541", Lang: "en", Type: "synonym"},

		{Value: "Shingeki no Kyojin (2017)", AID: "10944", Lang: "x-jat", Type: "main"},
		{Value: "Attack on Titan", AID: "10944", Lang: "en", Type: "synonym"},
		{Value: "Attack on Titan Season 2", AID: "10944", Lang: "en", Type: "official"},
	}}
}

func newTestMatcher(t *testing.T, tmdb models.TitleRepo, stored ...AnimeMapping) (*AnidbTitleMatcher, *fakeTitles) {
	t.Helper()
	repo, err := NewDuckDBRepo(context.Background(), "")
	if err != nil {
		t.Fatalf("NewDuckDBRepo() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if len(stored) > 0 {
		mustStore(t, repo, false, stored...)
	}
	anidb := anidbTitles()
	return NewAnidbTitleMatcher(anidb, tmdb, repo), anidb
}

func TestMatchTitle_PerfectMatch(t *testing.T) {
	t.Parallel()

	tmdb := &fakeTitles{titles: []models.Title{
		{Value: "Attack on Titan", AID: "T1429S1"},
		{Value: "Attack on Titan Season 2", AID: "T1429S2"},
	}}
	matcher, _ := newTestMatcher(t, tmdb)

	got, err := matcher.MatchTitle(context.Background(), models.Title{Value: "Attack on Titan", Lang: "en"})
	if err != nil {
		t.Fatalf("MatchTitle() error = %v", err)
	}

	want := []TitleMappingResult{
		{
			Anidb:       models.Title{Value: "Attack on Titan", AID: "9541", Lang: "en", Type: "official"},
			Tmdb:        models.Title{Value: "Attack on Titan", AID: "T1429S1"},
			IsFromMatch: true,
		},
		{
			Anidb:       models.Title{Value: "Attack on Titan Season 2", AID: "10944", Lang: "en", Type: "official"},
			Tmdb:        models.Title{Value: "Attack on Titan Season 2", AID: "T1429S2"},
			IsFromMatch: true,
		},
	}
	if !slices.Equal(got, want) {
		t.Errorf("MatchTitle() = %+v\nwant %+v", got, want)
	}
}

func TestMatchTitle_StoredMappingsSkipSearch(t *testing.T) {
	t.Parallel()

	tmdb := &fakeTitles{}
	matcher, _ := newTestMatcher(t, tmdb, AnimeMapping{"9541", "T1429S1"}, AnimeMapping{"10944", "T1429S2"})

	got, err := matcher.MatchTitle(context.Background(), models.Title{Value: "Attack on Titan"})
	if err != nil {
		t.Fatalf("MatchTitle() error = %v", err)
	}
	want := []TitleMappingResult{
		{
			Anidb:         models.Title{Value: "Attack on Titan", AID: "9541", Lang: "en", Type: "official"},
			Tmdb:          models.Title{AID: "T1429S1"},
			IsFromStorage: true,
		},
		{
			Anidb:         models.Title{Value: "Attack on Titan", AID: "10944", Lang: "en", Type: "synonym"},
			Tmdb:          models.Title{AID: "T1429S2"},
			IsFromStorage: true,
		},
	}
	if !slices.Equal(got, want) {
		t.Errorf("MatchTitle() = %+v\nwant %+v", got, want)
	}
	if n := tmdb.queryCount(); n != 0 {
		t.Errorf("TMDB searched %d times, want 0", n)
	}
}

func TestMatchTitle_Candidates(t *testing.T) {
	t.Parallel()

	tmdb := &fakeTitles{titles: []models.Title{
		{Value: "Shingeki no Kyojin", AID: "T1429S1"},
		{Value: "Titans", AID: "T5000S1"},
	}}
	matcher, _ := newTestMatcher(t, tmdb, AnimeMapping{"9541", "T1429S1"})

	got, err := matcher.MatchTitle(context.Background(), models.Title{Value: "Shingeki no Kyojin (2017)"})
	if err != nil {
		t.Fatalf("MatchTitle() error = %v", err)
	}
	// the search only finds exact values; none of the 10944 titles is known
	if len(got) != 0 {
		t.Errorf("MatchTitle() = %+v, want no candidates", got)
	}
	// official en, then main; there is no official ja title
	if n := tmdb.queryCount(); n != 2 {
		t.Errorf("TMDB searched %d times, want 2", n)
	}
}

func TestMatchTitle_CandidatesWithoutPerfectMatch(t *testing.T) {
	t.Parallel()

	tmdb := &fakeTitles{titles: []models.Title{
		{Value: "Shingeki no Kyojin (2017)", AID: "T1429S2"},
		{Value: "Attack on Titan Season 2", AID: "T9999S1"},
	}}
	matcher, _ := newTestMatcher(t, &searchAll{tmdb}, AnimeMapping{"9541", "T1429S1"})

	got, err := matcher.MatchTitle(context.Background(), models.Title{AID: "10944"})
	if err != nil {
		t.Fatalf("MatchTitle() error = %v", err)
	}
	for _, r := range got {
		if r.IsFromMatch || r.IsFromStorage {
			t.Errorf("unexpected flags on %+v", r)
		}
	}
	// two attempts (official en, main), each returning both hits
	if len(got) != 4 {
		t.Errorf("len(MatchTitle()) = %d, want 4: %+v", len(got), got)
	}
}

// searchAll returns every title for any query, like a fuzzy search that
// never matches exactly.
type searchAll struct {
	*fakeTitles
}

func (s *searchAll) Find(ctx context.Context, query models.Title) ([]models.TitleEntry, error) {
	entries, err := s.fakeTitles.Find(ctx, models.Title{})
	for i := range entries {
		entries[i].Title.Value += " (TV)"
	}
	return entries, err
}

func TestMatchTitle_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("search failed")
	matcher, anidb := newTestMatcher(t, &fakeTitles{err: boom})

	if _, err := matcher.MatchTitle(context.Background(), models.Title{Value: "Attack on Titan"}); !errors.Is(err, boom) {
		t.Errorf("MatchTitle() error = %v, want the TMDB error", err)
	}

	anidb.err = boom
	if _, err := matcher.MatchTitle(context.Background(), models.Title{Value: "Attack on Titan"}); !errors.Is(err, boom) {
		t.Errorf("MatchTitle() error = %v, want the AniDB error", err)
	}
}

func TestMainTitle(t *testing.T) {
	t.Parallel()

	entry := func(lang, typ string) models.TitleEntry {
		return models.TitleEntry{Title: models.Title{Value: lang + "/" + typ, Lang: lang, Type: typ}}
	}
	tests := []struct {
		name   string
		titles []models.TitleEntry
		want   string
	}{
		{"main", []models.TitleEntry{entry("en", "official"), entry("x-jat", "main")}, "x-jat/main"},
		{"official en", []models.TitleEntry{entry("ja", "official"), entry("en", "official")}, "en/official"},
		{"official ja", []models.TitleEntry{entry("de", "synonym"), entry("ja", "official")}, "ja/official"},
		{"first", []models.TitleEntry{entry("de", "synonym"), entry("fr", "short")}, "de/synonym"},
	}
	for _, tt := range tests {
		if got := mainTitle(tt.titles).Title.Value; got != tt.want {
			t.Errorf("%s: mainTitle() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
