// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package models

import (
	"maps"
	"slices"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the ISO calendar date format used by both upstream APIs.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. The zero value is 0001-01-01,
// which is also the default airdate for episodes without one.
type Date struct {
	time.Time
}

// NewDate returns the date for year, month and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ImageType classifies artwork.
type ImageType string

const (
	// ImagePoster is the printout in movie theaters or on the DVD box.
	ImagePoster ImageType = "poster"
	// ImageBackdrop is a big background image without text (tmdb: backdrop, kodi: fanart).
	ImageBackdrop ImageType = "backdrop"
	// ImageBanner is a wide and short image featuring the characters.
	ImageBanner ImageType = "banner"
	// ImageThumb is a thumbnail for a video or person (tmdb: still/profile).
	ImageThumb ImageType = "thumb"
	// ImageUnknown is anything else.
	ImageUnknown ImageType = "unknown"
)

// Image references an artwork file held by one of the image stores.
type Image struct {
	Source string    `json:"source"`
	Name   string    `json:"name"`
	Type   ImageType `json:"type"`
}

// Title is a single title of an anime. In queries an empty field means no restriction.
type Title struct {
	Value string `json:"value"`
	AID   string `json:"aid"`
	Lang  string `json:"lang"`
	Type  string `json:"type"`
}

// TitleEntry is a stored title with the age of its source data.
type TitleEntry struct {
	Title Title     `json:"title"`
	Age   time.Time `json:"age"`
}

// CastRole is a character together with its (voice) actor.
type CastRole struct {
	Character      string `json:"character"`
	Actor          string `json:"actor"`
	CharacterImage *Image `json:"character_image,omitempty"`
	ActorImage     *Image `json:"actor_image,omitempty"`
}

// Clone returns a deep copy of the role.
func (c CastRole) Clone() CastRole {
	if c.CharacterImage != nil {
		img := *c.CharacterImage
		c.CharacterImage = &img
	}
	if c.ActorImage != nil {
		img := *c.ActorImage
		c.ActorImage = &img
	}
	return c
}

// Credit is a crew member with their job.
type Credit struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
	Category   string `json:"category"`
}

// Rating is an aggregated score from one source.
type Rating struct {
	Source  string  `json:"source"`
	Average float64 `json:"average"`
	Votes   int     `json:"votes"`
}

// Episode is a single episode within a season.
type Episode struct {
	Number  int      `json:"number"`
	Length  int      `json:"length"`
	Airdate Date     `json:"airdate"`
	Titles  []Title  `json:"titles"`
	Summary string   `json:"summary"`
	Images  []Image  `json:"images"`
	Ratings []Rating `json:"ratings"`
}

// Clone returns a deep copy of the episode.
func (e Episode) Clone() Episode {
	e.Titles = slices.Clone(e.Titles)
	e.Images = slices.Clone(e.Images)
	e.Ratings = slices.Clone(e.Ratings)
	return e
}

// Season groups episodes. Number 0 holds specials.
type Season struct {
	ID          string            `json:"id"`
	Number      int               `json:"number"`
	UniqueIDs   map[string]string `json:"uniqueids"`
	Titles      []Title           `json:"titles"`
	Description string            `json:"description"`
	Genres      []string          `json:"genres"`
	Tags        []string          `json:"tags"`
	Airdate     *Date             `json:"airdate,omitempty"`
	Episodes    []Episode         `json:"episodes"`
	Images      []Image           `json:"images"`
	Ratings     []Rating          `json:"ratings"`
	Cast        []CastRole        `json:"cast"`
	Directors   []string          `json:"directors"`
	Credits     []Credit          `json:"credits"`
}

// SortEpisodes orders the episodes by number. The order of the source
// list does not have to match the episode numbers.
func (s *Season) SortEpisodes() {
	slices.SortStableFunc(s.Episodes, func(a, b Episode) int { return a.Number - b.Number })
}

// FindEpisode returns the episode with the given number.
func (s *Season) FindEpisode(number int) *Episode {
	for i := range s.Episodes {
		if s.Episodes[i].Number == number {
			return &s.Episodes[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the season.
func (s Season) Clone() Season {
	s.UniqueIDs = maps.Clone(s.UniqueIDs)
	s.Titles = slices.Clone(s.Titles)
	s.Genres = slices.Clone(s.Genres)
	s.Tags = slices.Clone(s.Tags)
	s.Airdate = cloneDate(s.Airdate)
	s.Episodes = cloneEach(s.Episodes, Episode.Clone)
	s.Images = slices.Clone(s.Images)
	s.Ratings = slices.Clone(s.Ratings)
	s.Cast = cloneEach(s.Cast, CastRole.Clone)
	s.Directors = slices.Clone(s.Directors)
	s.Credits = slices.Clone(s.Credits)
	return s
}

// Anime is the provider independent metadata of a show.
type Anime struct {
	ID          string            `json:"id"`
	UniqueIDs   map[string]string `json:"uniqueids"`
	Titles      []Title           `json:"titles"`
	Description string            `json:"description"`
	Genres      []string          `json:"genres"`
	Tags        []string          `json:"tags"`
	Airdate     *Date             `json:"airdate,omitempty"`
	Seasons     []Season          `json:"seasons"`
	Images      []Image           `json:"images"`
	Ratings     []Rating          `json:"ratings"`
	Cast        []CastRole        `json:"cast"`
	Directors   []string          `json:"directors"`
	Credits     []Credit          `json:"credits"`
}

// Normalize sorts seasons by number and the episodes of each season.
func (a *Anime) Normalize() {
	slices.SortStableFunc(a.Seasons, func(x, y Season) int { return x.Number - y.Number })
	for i := range a.Seasons {
		a.Seasons[i].SortEpisodes()
	}
}

// FindSeason returns the season with the given number.
func (a *Anime) FindSeason(number int) *Season {
	for i := range a.Seasons {
		if a.Seasons[i].Number == number {
			return &a.Seasons[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the anime.
func (a *Anime) Clone() *Anime {
	c := *a
	c.UniqueIDs = maps.Clone(a.UniqueIDs)
	c.Titles = slices.Clone(a.Titles)
	c.Genres = slices.Clone(a.Genres)
	c.Tags = slices.Clone(a.Tags)
	c.Airdate = cloneDate(a.Airdate)
	c.Seasons = cloneEach(a.Seasons, Season.Clone)
	c.Images = slices.Clone(a.Images)
	c.Ratings = slices.Clone(a.Ratings)
	c.Cast = cloneEach(a.Cast, CastRole.Clone)
	c.Directors = slices.Clone(a.Directors)
	c.Credits = slices.Clone(a.Credits)
	return &c
}

// AnimeEntry is a parsed anime with the age of its source document.
type AnimeEntry struct {
	Anime *Anime    `json:"anime"`
	Age   time.Time `json:"age"`
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneEach[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}
