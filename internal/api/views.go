// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/amc2/internal/anidb"
	"github.com/tomtom215/amc2/internal/mapping"
	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/tmdb"
)

// Link is a hypermedia reference to a related resource.
type Link struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

// Links maps a relation name to a link. It is always serialized, even when
// empty.
type Links map[string]Link

// CollectionView wraps a list of items.
type CollectionView[T any] struct {
	Items []T   `json:"items"`
	Links Links `json:"_links"`
}

// TitleView is a title without its owning id.
type TitleView struct {
	Title string `json:"title"`
	Lang  string `json:"lang"`
	Type  string `json:"type"`
}

// ImageView is an image with a link to its bytes.
type ImageView struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Links  Links  `json:"_links"`
}

// CastRoleView is a character and its actor.
type CastRoleView struct {
	Character      string     `json:"character"`
	Actor          string     `json:"actor"`
	ActorImage     *ImageView `json:"actor_image"`
	CharacterImage *ImageView `json:"character_image"`
}

// CreditView is a crew member.
type CreditView struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
	Category   string `json:"category"`
}

// RatingView is an aggregated score.
type RatingView struct {
	Source  string  `json:"source"`
	Average float64 `json:"average"`
	Votes   int     `json:"votes"`
}

// EpisodeView is a single episode.
type EpisodeView struct {
	Number      int          `json:"number"`
	Titles      []TitleView  `json:"titles"`
	Description string       `json:"description"`
	Length      int          `json:"length"`
	Airdate     models.Date  `json:"airdate"`
	Images      []ImageView  `json:"images"`
	Ratings     []RatingView `json:"ratings"`
	Links       Links        `json:"_links"`
}

// SeasonView is a season with its episodes.
type SeasonView struct {
	ID          string            `json:"id"`
	Number      int               `json:"number"`
	UniqueIDs   map[string]string `json:"uniqueids"`
	Titles      []TitleView       `json:"titles"`
	Description string            `json:"description"`
	Genres      []string          `json:"genres"`
	Tags        []string          `json:"tags"`
	Airdate     *models.Date      `json:"airdate"`
	Episodes    []EpisodeView     `json:"episodes"`
	Images      []ImageView       `json:"images"`
	Ratings     []RatingView      `json:"ratings"`
	Cast        []CastRoleView    `json:"cast"`
	Directors   []string          `json:"directors"`
	Credits     []CreditView      `json:"credits"`
	Links       Links             `json:"_links"`
}

// AnimeView is the public representation of an anime.
type AnimeView struct {
	ID          string            `json:"id"`
	UniqueIDs   map[string]string `json:"uniqueids"`
	Titles      []TitleView       `json:"titles"`
	Description string            `json:"description"`
	Genres      []string          `json:"genres"`
	Tags        []string          `json:"tags"`
	Airdate     *models.Date      `json:"airdate"`
	Seasons     []SeasonView      `json:"seasons"`
	Images      []ImageView       `json:"images"`
	Ratings     []RatingView      `json:"ratings"`
	Cast        []CastRoleView    `json:"cast"`
	Directors   []string          `json:"directors"`
	Credits     []CreditView      `json:"credits"`
	Links       Links             `json:"_links"`
}

// MappedTitleView is one side of a title mapping.
type MappedTitleView struct {
	Title TitleView `json:"title"`
	ID    string    `json:"id"`
}

// TitleMappingView is a candidate mapping returned by the title matcher.
type TitleMappingView struct {
	AnimeID string          `json:"anime_id"`
	Anidb   MappedTitleView `json:"anidb"`
	Tmdb    MappedTitleView `json:"tmdb"`
	Links   Links           `json:"_links"`
}

// AnimeMappingView is a stored mapping.
type AnimeMappingView struct {
	AnimeID   string            `json:"anime_id"`
	UniqueIDs map[string]string `json:"uniqueids"`
	Links     Links             `json:"_links"`
}

// views builds views whose links point below the public base URL.
type views struct {
	base string
}

// href joins path elements below the base URL, escaping each element.
func (v views) href(elem ...string) string {
	href, err := url.JoinPath(v.base, elem...)
	if err != nil {
		// The base URL is validated at startup.
		return v.base
	}
	return href
}

func (v views) animeLink(id string) Link {
	return Link{Href: v.href("anime", id), Method: http.MethodGet}
}

func (v views) matchLink(id, method string) Link {
	return Link{Href: v.href("match", id), Method: method}
}

func (v views) title(t models.Title) TitleView {
	return TitleView{Title: t.Value, Lang: t.Lang, Type: t.Type}
}

func (v views) titles(in []models.Title) []TitleView {
	out := make([]TitleView, 0, len(in))
	for _, t := range in {
		out = append(out, v.title(t))
	}
	return out
}

// image links images of a known source to their proxy route.
func (v views) image(img models.Image) ImageView {
	links := Links{}
	switch img.Source {
	case anidb.Source:
		links["image"] = Link{Href: v.href("anidb", "images", img.Name), Method: http.MethodGet}
	case tmdb.Source:
		links["image"] = Link{Href: v.href("tmdb", "images", img.Name), Method: http.MethodGet}
	}
	return ImageView{Source: img.Source, Name: img.Name, Type: string(img.Type), Links: links}
}

func (v views) optionalImage(img *models.Image) *ImageView {
	if img == nil {
		return nil
	}
	view := v.image(*img)
	return &view
}

func (v views) images(in []models.Image) []ImageView {
	out := make([]ImageView, 0, len(in))
	for _, img := range in {
		out = append(out, v.image(img))
	}
	return out
}

func (v views) ratings(in []models.Rating) []RatingView {
	out := make([]RatingView, 0, len(in))
	for _, r := range in {
		out = append(out, RatingView(r))
	}
	return out
}

func (v views) cast(in []models.CastRole) []CastRoleView {
	out := make([]CastRoleView, 0, len(in))
	for _, c := range in {
		out = append(out, CastRoleView{
			Character:      c.Character,
			Actor:          c.Actor,
			ActorImage:     v.optionalImage(c.ActorImage),
			CharacterImage: v.optionalImage(c.CharacterImage),
		})
	}
	return out
}

func (v views) credits(in []models.Credit) []CreditView {
	out := make([]CreditView, 0, len(in))
	for _, c := range in {
		out = append(out, CreditView(c))
	}
	return out
}

func (v views) episode(e models.Episode) EpisodeView {
	return EpisodeView{
		Number:      e.Number,
		Titles:      v.titles(e.Titles),
		Description: e.Summary,
		Length:      e.Length,
		Airdate:     e.Airdate,
		Images:      v.images(e.Images),
		Ratings:     v.ratings(e.Ratings),
		Links:       Links{},
	}
}

func (v views) season(s models.Season) SeasonView {
	episodes := make([]EpisodeView, 0, len(s.Episodes))
	for _, e := range s.Episodes {
		episodes = append(episodes, v.episode(e))
	}
	return SeasonView{
		ID:          s.ID,
		Number:      s.Number,
		UniqueIDs:   nonNilMap(s.UniqueIDs),
		Titles:      v.titles(s.Titles),
		Description: s.Description,
		Genres:      nonNil(s.Genres),
		Tags:        nonNil(s.Tags),
		Airdate:     s.Airdate,
		Episodes:    episodes,
		Images:      v.images(s.Images),
		Ratings:     v.ratings(s.Ratings),
		Cast:        v.cast(s.Cast),
		Directors:   nonNil(s.Directors),
		Credits:     v.credits(s.Credits),
		Links:       Links{},
	}
}

// anime renders an anime requested under id.
func (v views) anime(id string, a *models.Anime) AnimeView {
	seasons := make([]SeasonView, 0, len(a.Seasons))
	for _, s := range a.Seasons {
		seasons = append(seasons, v.season(s))
	}
	return AnimeView{
		ID:          a.ID,
		UniqueIDs:   nonNilMap(a.UniqueIDs),
		Titles:      v.titles(a.Titles),
		Description: a.Description,
		Genres:      nonNil(a.Genres),
		Tags:        nonNil(a.Tags),
		Airdate:     a.Airdate,
		Seasons:     seasons,
		Images:      v.images(a.Images),
		Ratings:     v.ratings(a.Ratings),
		Cast:        v.cast(a.Cast),
		Directors:   nonNil(a.Directors),
		Credits:     v.credits(a.Credits),
		Links:       Links{"anime": v.animeLink(id)},
	}
}

// titleMapping renders a matcher result. Stored results offer to forget the
// mapping, new ones to remember it.
func (v views) titleMapping(res mapping.TitleMappingResult) (TitleMappingView, error) {
	anidbID, err := models.ParseAnidbID(res.Anidb.AID)
	if err != nil {
		return TitleMappingView{}, err
	}
	tmdbID, err := models.ParseTmdbSeasonID(res.Tmdb.AID)
	if err != nil {
		return TitleMappingView{}, err
	}
	id := models.AnimeMappingID{Anidb: anidbID, Tmdb: tmdbID}.String()

	links := Links{"anime": v.animeLink(id)}
	if res.IsFromStorage {
		links["forget"] = v.matchLink(id, http.MethodDelete)
	} else {
		links["remember"] = v.matchLink(id, http.MethodPut)
	}

	return TitleMappingView{
		AnimeID: id,
		Anidb:   MappedTitleView{Title: v.title(res.Anidb), ID: res.Anidb.AID},
		Tmdb:    MappedTitleView{Title: v.title(res.Tmdb), ID: res.Tmdb.AID},
		Links:   links,
	}, nil
}

// animeMapping renders a stored mapping.
func (v views) animeMapping(id models.AnimeMappingID) AnimeMappingView {
	s := id.String()
	return AnimeMappingView{
		AnimeID: s,
		UniqueIDs: map[string]string{
			"anidb":       id.Anidb.Digits(),
			"tmdb":        strconv.Itoa(id.Tmdb.Show),
			"tmdb_season": id.Tmdb.String(),
		},
		Links: Links{
			"anime":  v.animeLink(s),
			"forget": v.matchLink(s, http.MethodDelete),
		},
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func nonNilMap(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	return in
}
