// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package tmdb

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/tomtom215/amc2/internal/models"
)

// assembledShow fetches show 100 through a ShowStore backed by the fake API.
func assembledShow(t *testing.T) []byte {
	t.Helper()
	_, apiURL := newFakeAPI(t, showResponses())
	store, err := NewShowAPIStore(apiURL, testHTTPConfig("tmdb-parse-"+t.Name()))
	if err != nil {
		t.Fatalf("NewShowAPIStore() error = %v", err)
	}
	obj, err := store.Get(context.Background(), "en/100.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return obj.Data
}

func TestParseShow(t *testing.T) {
	t.Parallel()

	anime, err := ParseShow(assembledShow(t), "en")
	if err != nil {
		t.Fatalf("ParseShow() error = %v", err)
	}

	if anime.ID != "T100" || anime.UniqueIDs[Source] != "100" {
		t.Errorf("ID = %q, UniqueIDs = %v", anime.ID, anime.UniqueIDs)
	}
	wantTitles := []models.Title{{Value: "Cowboy Bebop", Lang: "en", Type: "main"}}
	if !slices.Equal(anime.Titles, wantTitles) {
		t.Errorf("Titles = %+v", anime.Titles)
	}
	if anime.Description != "Space bounty hunters." {
		t.Errorf("Description = %q", anime.Description)
	}
	if !slices.Equal(anime.Genres, []string{"Animation"}) {
		t.Errorf("Genres = %v", anime.Genres)
	}
	wantImages := []models.Image{
		{Source: Source, Name: "show-poster.jpg", Type: models.ImagePoster},
		{Source: Source, Name: "show-backdrop.jpg", Type: models.ImageBackdrop},
	}
	if !slices.Equal(anime.Images, wantImages) {
		t.Errorf("Images = %+v", anime.Images)
	}
	if anime.Airdate == nil || anime.Airdate.String() != "1998-04-03" {
		t.Errorf("Airdate = %v, want the season 1 airdate", anime.Airdate)
	}
	if len(anime.Cast) != 2 || len(anime.Credits) != 3 {
		t.Errorf("anime cast/credits = %d/%d, want the season 1 cast/credits", len(anime.Cast), len(anime.Credits))
	}

	if len(anime.Seasons) != 2 || anime.Seasons[0].Number != 0 || anime.Seasons[1].Number != 1 {
		t.Fatalf("Seasons = %+v", anime.Seasons)
	}
}

func TestParseShow_Season(t *testing.T) {
	t.Parallel()

	anime, err := ParseShow(assembledShow(t), "en")
	if err != nil {
		t.Fatalf("ParseShow() error = %v", err)
	}
	s := anime.FindSeason(1)
	if s == nil {
		t.Fatal("season 1 missing")
	}

	if s.ID != "T100S1" || s.UniqueIDs[Source] != "100" || s.UniqueIDs["tmdb_season"] != "1" {
		t.Errorf("ID = %q, UniqueIDs = %v", s.ID, s.UniqueIDs)
	}
	wantTitles := []models.Title{{Value: "Season 1", AID: "T100S1", Lang: "en", Type: "main"}}
	if !slices.Equal(s.Titles, wantTitles) {
		t.Errorf("Titles = %+v", s.Titles)
	}
	if s.Airdate == nil || s.Airdate.String() != "1998-04-03" {
		t.Errorf("Airdate = %v", s.Airdate)
	}
	if !slices.Equal(s.Genres, []string{"Animation"}) {
		t.Errorf("Genres = %v, want the show genres", s.Genres)
	}
	wantImages := []models.Image{
		{Source: Source, Name: "s1-poster.jpg", Type: models.ImagePoster},
		{Source: Source, Name: "show-backdrop.jpg", Type: models.ImageBackdrop},
	}
	if !slices.Equal(s.Images, wantImages) {
		t.Errorf("Images = %+v", s.Images)
	}

	if len(s.Cast) != 2 {
		t.Fatalf("Cast = %+v", s.Cast)
	}
	if c := s.Cast[0]; c.Character != "Spike Spiegel" || c.Actor != "Koichi Yamadera" ||
		c.ActorImage == nil || c.ActorImage.Name != "yamadera.jpg" || c.ActorImage.Type != models.ImageThumb {
		t.Errorf("Cast[0] = %+v", c)
	}
	if c := s.Cast[1]; c.Character != "Ein" || c.ActorImage != nil {
		t.Errorf("Cast[1] = %+v, want no actor image", c)
	}

	wantCredits := []models.Credit{
		{Name: "Shinichiro Watanabe", Job: "Director", Department: "Directing", Category: "directing"},
		{Name: "Yoko Kanno", Job: "Music", Department: "Sound"},
		{Name: "Yoko Kanno", Job: "Theme Song Performance", Department: "Sound"},
	}
	if !slices.Equal(s.Credits, wantCredits) {
		t.Errorf("Credits = %+v", s.Credits)
	}

	if len(s.Episodes) != 2 {
		t.Fatalf("Episodes = %+v", s.Episodes)
	}
	e1 := s.Episodes[0]
	if e1.Number != 1 || e1.Length != 24 || e1.Airdate.String() != "1998-04-03" || e1.Summary != "Spike and Jet." {
		t.Errorf("episode 1 = %+v", e1)
	}
	if !slices.Equal(e1.Titles, []models.Title{{Value: "Asteroid Blues", Lang: "en", Type: "main"}}) {
		t.Errorf("episode 1 titles = %+v", e1.Titles)
	}
	if !slices.Equal(e1.Ratings, []models.Rating{{Source: Source, Average: 8.1, Votes: 40}}) {
		t.Errorf("episode 1 ratings = %+v", e1.Ratings)
	}
	if !slices.Equal(e1.Images, []models.Image{{Source: Source, Name: "e1.jpg", Type: models.ImageThumb}}) {
		t.Errorf("episode 1 images = %+v", e1.Images)
	}

	e2 := s.Episodes[1]
	if e2.Number != 2 || e2.Length != 0 || !e2.Airdate.IsZero() || len(e2.Ratings) != 0 || len(e2.Images) != 0 {
		t.Errorf("episode 2 = %+v, want defaults", e2)
	}
}

func TestParseShow_Specials(t *testing.T) {
	t.Parallel()

	anime, err := ParseShow(assembledShow(t), "en")
	if err != nil {
		t.Fatalf("ParseShow() error = %v", err)
	}
	s := anime.FindSeason(0)
	if s == nil {
		t.Fatal("season 0 missing")
	}
	if s.ID != "T100S0" || s.Airdate != nil || len(s.Cast) != 0 {
		t.Errorf("season 0 = %+v", s)
	}
	if !slices.Equal(s.Images, []models.Image{{Source: Source, Name: "show-backdrop.jpg", Type: models.ImageBackdrop}}) {
		t.Errorf("season 0 images = %+v", s.Images)
	}
	if ep := s.FindEpisode(1); ep == nil || ep.Length != 25 || ep.Airdate.String() != "1999-06-26" {
		t.Errorf("special 1 = %+v", ep)
	}
}

func TestParseShow_Language(t *testing.T) {
	t.Parallel()

	anime, err := ParseShow([]byte(`{"id": 5, "name": "Name", "seasons": [{"season_number": 2, "name": "Zweite Staffel"}]}`), "de")
	if err != nil {
		t.Fatalf("ParseShow() error = %v", err)
	}
	if anime.Titles[0].Lang != "de" || anime.Seasons[0].Titles[0].Lang != "de" {
		t.Errorf("titles = %+v / %+v", anime.Titles, anime.Seasons[0].Titles)
	}
	if anime.Airdate != nil || anime.Cast != nil {
		t.Errorf("show without season 1 got airdate %v cast %v", anime.Airdate, anime.Cast)
	}
}

func TestParseShow_Invalid(t *testing.T) {
	t.Parallel()

	for _, data := range []string{``, `[]`, `{"name": "no id"}`, `{"id": "abc"}`} {
		if _, err := ParseShow([]byte(data), "en"); !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("ParseShow(%q) error = %v, want ErrInvalidDocument", data, err)
		}
	}
}
