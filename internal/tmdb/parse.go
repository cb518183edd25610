// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package tmdb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/amc2/internal/models"
)

// Source labels images, ratings and unique ids from TMDB.
const Source = "tmdb"

// ErrInvalidDocument is returned for show documents that cannot be parsed.
var ErrInvalidDocument = errors.New("invalid TMDB show document")

type jsonImage struct {
	FilePath string `json:"file_path"`
}

type jsonImages struct {
	Posters   []jsonImage `json:"posters"`
	Backdrops []jsonImage `json:"backdrops"`
	Stills    []jsonImage `json:"stills"`
}

type jsonCastMember struct {
	Name        string  `json:"name"`
	ProfilePath *string `json:"profile_path"`
	Roles       []struct {
		Character string `json:"character"`
	} `json:"roles"`
}

type jsonCrewMember struct {
	Name               string  `json:"name"`
	Department         string  `json:"department"`
	KnownForDepartment *string `json:"known_for_department"`
	Jobs               []struct {
		Job string `json:"job"`
	} `json:"jobs"`
}

type jsonCredits struct {
	Cast []jsonCastMember `json:"cast"`
	Crew []jsonCrewMember `json:"crew"`
}

type jsonEpisode struct {
	EpisodeNumber *int       `json:"episode_number"`
	Name          string     `json:"name"`
	Overview      string     `json:"overview"`
	Runtime       *int       `json:"runtime"`
	AirDate       *string    `json:"air_date"`
	VoteAverage   *float64   `json:"vote_average"`
	VoteCount     *int       `json:"vote_count"`
	Images        jsonImages `json:"images"`
}

type jsonSeason struct {
	SeasonNumber *int          `json:"season_number"`
	Name         string        `json:"name"`
	Overview     string        `json:"overview"`
	AirDate      *string       `json:"air_date"`
	Episodes     []jsonEpisode `json:"episodes"`
	Images       jsonImages    `json:"images"`
	Credits      jsonCredits   `json:"credits"`
}

type jsonShow struct {
	ID       *int         `json:"id"`
	Name     string       `json:"name"`
	Overview string       `json:"overview"`
	Images   jsonImages   `json:"images"`
	Genres   []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Seasons []jsonSeason `json:"seasons"`
}

// ParseShow converts a document assembled by ShowStore into an anime.
// Season 1 provides the cast, credits and airdate of the anime.
func ParseShow(data []byte, lang string) (*models.Anime, error) {
	var show jsonShow
	if err := json.Unmarshal(data, &show); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if show.ID == nil {
		return nil, fmt.Errorf("%w: missing show id", ErrInvalidDocument)
	}
	showID := strconv.Itoa(*show.ID)

	anime := &models.Anime{
		ID:          "T" + showID,
		UniqueIDs:   map[string]string{Source: showID},
		Titles:      []models.Title{{Value: show.Name, Lang: lang, Type: "main"}},
		Description: show.Overview,
		Images:      parseImages(show.Images),
	}
	for _, g := range show.Genres {
		if g.Name != "" {
			anime.Genres = append(anime.Genres, g.Name)
		}
	}
	showBackdrops := parseImages(jsonImages{Backdrops: show.Images.Backdrops})

	for i := range show.Seasons {
		s := &show.Seasons[i]
		if s.SeasonNumber == nil {
			continue
		}
		season := parseSeason(s, *show.ID, lang)
		season.Genres = append([]string(nil), anime.Genres...)
		season.Images = append(season.Images, showBackdrops...)

		if season.Number == 1 {
			anime.Cast = cloneCast(season.Cast)
			anime.Credits = append([]models.Credit(nil), season.Credits...)
			if season.Airdate != nil {
				d := *season.Airdate
				anime.Airdate = &d
			}
		}
		anime.Seasons = append(anime.Seasons, season)
	}

	anime.Normalize()
	return anime, nil
}

func parseSeason(s *jsonSeason, showID int, lang string) models.Season {
	id := models.TmdbSeasonID{Show: showID, Season: *s.SeasonNumber}.String()
	season := models.Season{
		ID:          id,
		Number:      *s.SeasonNumber,
		UniqueIDs:   map[string]string{Source: strconv.Itoa(showID), "tmdb_season": strconv.Itoa(*s.SeasonNumber)},
		Titles:      []models.Title{{Value: s.Name, AID: id, Lang: lang, Type: "main"}},
		Description: s.Overview,
		Images:      parseImages(s.Images),
		Cast:        parseCast(s.Credits.Cast),
		Credits:     parseCrew(s.Credits.Crew),
	}
	if s.AirDate != nil {
		if d, err := models.ParseDate(*s.AirDate); err == nil {
			season.Airdate = &d
		}
	}
	for i := range s.Episodes {
		if s.Episodes[i].EpisodeNumber == nil {
			continue
		}
		season.Episodes = append(season.Episodes, parseEpisode(&s.Episodes[i], lang))
	}
	return season
}

func parseEpisode(e *jsonEpisode, lang string) models.Episode {
	ep := models.Episode{
		Number:  *e.EpisodeNumber,
		Titles:  []models.Title{{Value: e.Name, Lang: lang, Type: "main"}},
		Summary: e.Overview,
		Images:  parseImages(e.Images),
	}
	if e.Runtime != nil {
		ep.Length = *e.Runtime
	}
	if e.AirDate != nil {
		if d, err := models.ParseDate(*e.AirDate); err == nil {
			ep.Airdate = d
		}
	}
	if e.VoteAverage != nil && e.VoteCount != nil {
		ep.Ratings = []models.Rating{{Source: Source, Average: *e.VoteAverage, Votes: *e.VoteCount}}
	}
	return ep
}

func parseImages(images jsonImages) []models.Image {
	var out []models.Image
	add := func(list []jsonImage, typ models.ImageType) {
		for _, img := range list {
			name := strings.Trim(img.FilePath, "/")
			if name == "" {
				continue
			}
			out = append(out, models.Image{Source: Source, Name: name, Type: typ})
		}
	}
	add(images.Posters, models.ImagePoster)
	add(images.Backdrops, models.ImageBackdrop)
	add(images.Stills, models.ImageThumb)
	return out
}

func parseCast(members []jsonCastMember) []models.CastRole {
	var out []models.CastRole
	for _, m := range members {
		if m.Name == "" || len(m.Roles) == 0 || m.Roles[0].Character == "" {
			continue
		}
		role := models.CastRole{Character: m.Roles[0].Character, Actor: m.Name}
		if m.ProfilePath != nil {
			if name := strings.Trim(*m.ProfilePath, "/"); name != "" {
				role.ActorImage = &models.Image{Source: Source, Name: name, Type: models.ImageThumb}
			}
		}
		out = append(out, role)
	}
	return out
}

func parseCrew(members []jsonCrewMember) []models.Credit {
	var out []models.Credit
	for _, m := range members {
		if m.Name == "" || m.Department == "" {
			continue
		}
		category := ""
		if m.KnownForDepartment != nil {
			category = strings.ToLower(*m.KnownForDepartment)
		}
		for _, j := range m.Jobs {
			if j.Job == "" {
				continue
			}
			out = append(out, models.Credit{Name: m.Name, Job: j.Job, Department: m.Department, Category: category})
		}
	}
	return out
}

func cloneCast(in []models.CastRole) []models.CastRole {
	if in == nil {
		return nil
	}
	out := make([]models.CastRole, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
