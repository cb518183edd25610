// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/tomtom215/amc2/internal/mapping"
	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/objstore"
)

const testLastModified = "Tue, 02 Jan 2024 03:04:05 GMT"

func putObject(t *testing.T, store objstore.Store, name, contentType, data string) {
	t.Helper()
	obj := objstore.NewObject(objstore.NewStat(contentType, testModified), []byte(data))
	if err := store.Put(context.Background(), name, obj); err != nil {
		t.Fatalf("put %s: %v", name, err)
	}
}

func TestAnidbShow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	putObject(t, f.anidb, "1.xml", "application/xml", "<anime id=\"1\"/>")
	h := f.handler(t, nil)

	w := do(t, h, http.MethodGet, "/anidb/shows/1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Type"); got != "text/xml; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Last-Modified"); got != testLastModified {
		t.Errorf("Last-Modified = %q, want %q", got, testLastModified)
	}
	if got := w.Body.String(); got != "<anime id=\"1\"/>" {
		t.Errorf("body = %q", got)
	}

	assertError(t, do(t, h, http.MethodGet, "/anidb/shows/2"), http.StatusNotFound, ErrCodeNotFound, "")
	assertError(t, do(t, h, http.MethodGet, "/anidb/shows/.."), http.StatusNotFound, ErrCodeNotFound, "")
}

func TestTmdbShow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	putObject(t, f.tmdb, "en/5.json", "application/json", `{"id":5}`)
	h := f.handler(t, nil)

	w := do(t, h, http.MethodGet, "/tmdb/shows/en/5")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "text/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Body.String(); got != `{"id":5}` {
		t.Errorf("body = %q", got)
	}

	assertError(t, do(t, h, http.MethodGet, "/tmdb/shows/de/5"), http.StatusNotFound, ErrCodeNotFound, "")
}

func TestImages(t *testing.T) {
	t.Parallel()

	f := newFixture()
	putObject(t, f.images, "1.jpg", "image/jpeg", "jpegdata")
	h := f.handler(t, nil)

	t.Run("GET", func(t *testing.T) {
		t.Parallel()
		w := do(t, h, http.MethodGet, "/anidb/images/1.jpg")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if got := w.Header().Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("Content-Type = %q, want image/jpeg", got)
		}
		if got := w.Header().Get("Last-Modified"); got != testLastModified {
			t.Errorf("Last-Modified = %q", got)
		}
		if w.Body.String() != "jpegdata" {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("HEAD", func(t *testing.T) {
		t.Parallel()
		w := do(t, h, http.MethodHead, "/anidb/images/1.jpg")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if got := w.Header().Get("Content-Length"); got != "8" {
			t.Errorf("Content-Length = %q, want 8", got)
		}
		if got := w.Header().Get("Last-Modified"); got != testLastModified {
			t.Errorf("Last-Modified = %q", got)
		}
		if w.Body.Len() != 0 {
			t.Errorf("HEAD wrote %d body bytes", w.Body.Len())
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		assertError(t, do(t, h, http.MethodGet, "/tmdb/images/1.jpg"), http.StatusNotFound, ErrCodeNotFound, "")
		if w := do(t, h, http.MethodHead, "/anidb/images/2.jpg"); w.Code != http.StatusNotFound {
			t.Errorf("HEAD status = %d, want 404", w.Code)
		}
	})
}

func TestAnime(t *testing.T) {
	t.Parallel()
	h := newFixture().handler(t, nil)

	t.Run("anidb", func(t *testing.T) {
		t.Parallel()
		w := do(t, h, http.MethodGet, "/anime/A1")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Last-Modified"); got != testLastModified {
			t.Errorf("Last-Modified = %q", got)
		}

		view := decode[AnimeView](t, w)
		if view.ID != "A1" {
			t.Errorf("id = %q, want A1", view.ID)
		}
		if got := view.Links["anime"]; got.Href != testBaseURL+"/anime/A1" || got.Method != http.MethodGet {
			t.Errorf("anime link = %+v", got)
		}
		if len(view.Images) != 1 || view.Images[0].Links["image"].Href != testBaseURL+"/anidb/images/1.jpg" {
			t.Errorf("images = %+v", view.Images)
		}
		if len(view.Cast) != 1 || view.Cast[0].ActorImage == nil || view.Cast[0].CharacterImage != nil {
			t.Errorf("cast = %+v", view.Cast)
		}
		if len(view.Seasons) != 1 || len(view.Seasons[0].Episodes) != 1 {
			t.Fatalf("seasons = %+v", view.Seasons)
		}
		if got := view.Seasons[0].Episodes[0].Description; got != "Asteroid Blues" {
			t.Errorf("episode description = %q", got)
		}
		if view.Genres == nil || view.Tags == nil {
			t.Error("empty lists should serialize as []")
		}
	})

	t.Run("tmdb show and season", func(t *testing.T) {
		t.Parallel()
		for _, id := range []string{"T5", "T5S1"} {
			w := do(t, h, http.MethodGet, "/anime/"+id)
			if w.Code != http.StatusOK {
				t.Fatalf("%s: status = %d, want 200", id, w.Code)
			}
			view := decode[AnimeView](t, w)
			if view.ID != "T5" {
				t.Errorf("%s: id = %q, want T5", id, view.ID)
			}
			if got := view.Links["anime"].Href; got != testBaseURL+"/anime/"+id {
				t.Errorf("%s: anime link = %q", id, got)
			}
		}
	})

	t.Run("mapping", func(t *testing.T) {
		t.Parallel()
		w := do(t, h, http.MethodGet, "/anime/A1-T5S1")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		// The newer of both sources.
		if got := w.Header().Get("Last-Modified"); got != "Tue, 02 Jan 2024 04:04:05 GMT" {
			t.Errorf("Last-Modified = %q", got)
		}
		view := decode[AnimeView](t, w)
		if view.ID != "A1-T5S1" {
			t.Errorf("id = %q, want A1-T5S1", view.ID)
		}
		if view.UniqueIDs["anidb"] != "1" || view.UniqueIDs["tmdb"] != "5" {
			t.Errorf("uniqueids = %v", view.UniqueIDs)
		}
		if len(view.Genres) != 1 || view.Genres[0] != "Animation" {
			t.Errorf("genres = %v", view.Genres)
		}
	})

	tests := []struct {
		name    string
		path    string
		status  int
		code    string
		message string
	}{
		{"invalid id", "/anime/X1", http.StatusNotFound, ErrCodeNotFound, msgInvalidAnimeID},
		{"lower case prefix", "/anime/a1", http.StatusNotFound, ErrCodeNotFound, msgInvalidAnimeID},
		{"missing anidb", "/anime/A2", http.StatusNotFound, ErrCodeNotFound, "Not Found"},
		{"missing tmdb", "/anime/T6", http.StatusNotFound, ErrCodeNotFound, "Not Found"},
		{"mapping without anidb", "/anime/A2-T5S1", http.StatusNotFound, ErrCodeNotFound, msgAnidbIDNotFound},
		{"mapping without tmdb", "/anime/A1-T6S1", http.StatusNotFound, ErrCodeNotFound, msgTmdbIDNotFound},
		{"repository error", "/anime/A500", http.StatusInternalServerError, ErrCodeInternalError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertError(t, do(t, h, http.MethodGet, tt.path), tt.status, tt.code, tt.message)
		})
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.matcher.results = []mapping.TitleMappingResult{
		{
			Anidb:       models.Title{Value: "Cowboy Bebop", AID: "1", Lang: "x-jat", Type: "main"},
			Tmdb:        models.Title{Value: "Cowboy Bebop", AID: "T5S1"},
			IsFromMatch: true,
		},
		{
			Anidb:         models.Title{Value: "Cowboy Bebop", AID: "1"},
			Tmdb:          models.Title{Value: "Cowboy Bebop", AID: "T7S2"},
			IsFromStorage: true,
		},
		{
			Anidb: models.Title{Value: "broken", AID: "1"},
			Tmdb:  models.Title{Value: "broken", AID: "T7"},
		},
	}
	h := f.handler(t, nil)

	w := do(t, h, http.MethodGet, "/match/?title="+url.QueryEscape(" Cowboy Bebop ")+"&db=anidb")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	view := decode[CollectionView[TitleMappingView]](t, w)
	if len(view.Items) != 2 {
		t.Fatalf("items = %d, want 2 (malformed ids are skipped)", len(view.Items))
	}

	first := view.Items[0]
	if first.AnimeID != "A1-T5S1" {
		t.Errorf("anime_id = %q, want A1-T5S1", first.AnimeID)
	}
	if first.Anidb.ID != "1" || first.Anidb.Title.Lang != "x-jat" || first.Tmdb.ID != "T5S1" {
		t.Errorf("first = %+v", first)
	}
	if got := first.Links["remember"]; got.Method != http.MethodPut || got.Href != testBaseURL+"/match/A1-T5S1" {
		t.Errorf("remember link = %+v", got)
	}
	if _, ok := first.Links["forget"]; ok {
		t.Error("new match should not offer forget")
	}
	if got := view.Items[1].Links["forget"]; got.Method != http.MethodDelete {
		t.Errorf("stored match forget link = %+v", got)
	}

	if len(f.matcher.queries) != 1 || f.matcher.queries[0].Value != "Cowboy Bebop" {
		t.Errorf("matcher queries = %+v", f.matcher.queries)
	}

	// db defaults to anidb; /match without the slash works too
	if w := do(t, h, http.MethodGet, "/match?title=Bebop"); w.Code != http.StatusOK {
		t.Errorf("default db status = %d, want 200", w.Code)
	}
}

func TestMatch_Validation(t *testing.T) {
	t.Parallel()
	h := newFixture().handler(t, nil)

	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"missing title", "/match/", "title must not be empty"},
		{"blank title", "/match/?title=%20%20", "title must not be empty"},
		{"unknown db", "/match/?title=Bebop&db=tmdb", "db must be one of: anidb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertError(t, do(t, h, http.MethodGet, tt.query), http.StatusBadRequest, ErrCodeValidationFailed, tt.message)
		})
	}
}

func TestMappingLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.mappings.items = []mapping.AnimeMapping{{Anidb: "1", Tmdb: "T9S1"}, {Anidb: "3", Tmdb: "T5S1"}}
	h := f.handler(t, nil)

	assertError(t, do(t, h, http.MethodGet, "/match/A1-T5S1"), http.StatusNotFound, ErrCodeNotFound, "")

	w := do(t, h, http.MethodPut, "/match/A1-T5S1")
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	// Remembering replaces the other mappings of both ids.
	if got := f.mappings.items; len(got) != 1 || got[0] != (mapping.AnimeMapping{Anidb: "1", Tmdb: "T5S1"}) {
		t.Errorf("stored mappings = %+v", got)
	}

	w = do(t, h, http.MethodGet, "/match/A1-T5S1")
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", w.Code)
	}
	view := decode[AnimeMappingView](t, w)
	want := map[string]string{"anidb": "1", "tmdb": "5", "tmdb_season": "T5S1"}
	for k, v := range want {
		if view.UniqueIDs[k] != v {
			t.Errorf("uniqueids[%s] = %q, want %q", k, view.UniqueIDs[k], v)
		}
	}
	if got := view.Links["anime"].Href; got != testBaseURL+"/anime/A1-T5S1" {
		t.Errorf("anime link = %q", got)
	}
	if got := view.Links["forget"]; got.Method != http.MethodDelete {
		t.Errorf("forget link = %+v", got)
	}

	// PUT of a stored mapping is a no-op.
	if w := do(t, h, http.MethodPut, "/match/A1-T5S1"); w.Code != http.StatusOK {
		t.Errorf("second PUT status = %d, want 200", w.Code)
	}

	if w := do(t, h, http.MethodDelete, "/match/A1-T5S1"); w.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", w.Code)
	}
	if len(f.mappings.items) != 0 {
		t.Errorf("mappings after DELETE = %+v", f.mappings.items)
	}
	if w := do(t, h, http.MethodDelete, "/match/A1-T5S1"); w.Code != http.StatusNoContent {
		t.Errorf("DELETE of unknown mapping status = %d, want 204", w.Code)
	}

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		for _, id := range []string{"A1", "1-T5S1", "a1-t5s1", "A01-T5S1"} {
			assertError(t, do(t, h, method, "/match/"+id), http.StatusNotFound, ErrCodeNotFound, msgInvalidMatchID)
		}
	}
	if len(f.mappings.items) != 0 {
		t.Errorf("non-canonical ids changed the mappings: %+v", f.mappings.items)
	}
}
