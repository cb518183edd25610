// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package anidb

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tomtom215/amc2/internal/models"
)

// ErrInvalidDocument is returned (wrapped) for XML that cannot be parsed.
var ErrInvalidDocument = errors.New("invalid anidb document")

// Source is the image and rating source name of AniDB data.
const Source = "anidb"

// ParseTitles streams the titles of a titles dump to fn. Parsing stops at
// the first error returned by fn.
func ParseTitles(r io.Reader, fn func(models.Title) error) error {
	dec := xml.NewDecoder(r)

	var aid string
	var title *models.Title
	var value strings.Builder

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch strings.ToLower(t.Name.Local) {
			case "anime":
				aid = attr(t.Attr, "aid")
			case "title":
				title = &models.Title{
					AID:  aid,
					Type: titleType(attr(t.Attr, "type")),
					Lang: attr(t.Attr, "lang"),
				}
				value.Reset()
			}
		case xml.CharData:
			if title != nil {
				value.Write(t)
			}
		case xml.EndElement:
			if strings.EqualFold(t.Name.Local, "title") && title != nil {
				title.Value = value.String()
				if err := fn(*title); err != nil {
					return err
				}
				title = nil
			}
		}
	}
}

// ParseAPIError returns the lower-cased message of an <error> document, or
// "" if data is not an error document.
func ParseAPIError(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !strings.EqualFold(start.Name.Local, "error") {
			return ""
		}
		var body struct {
			Text string `xml:",chardata"`
		}
		if err := dec.DecodeElement(&body, &start); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(body.Text))
	}
}

type xmlTitle struct {
	Type  string     `xml:"type,attr"`
	Attrs []xml.Attr `xml:",any,attr"`
	Value string     `xml:",chardata"`
}

func (t xmlTitle) title(aid string) models.Title {
	return models.Title{
		Value: strings.TrimSpace(t.Value),
		AID:   aid,
		Lang:  attr(t.Attrs, "lang"),
		Type:  titleType(t.Type),
	}
}

type xmlCreator struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

type xmlRating struct {
	Votes string `xml:"votes,attr"`
	Count string `xml:"count,attr"`
	Value string `xml:",chardata"`
}

type xmlTag struct {
	ID       string `xml:"id,attr"`
	ParentID string `xml:"parentid,attr"`
	Name     string `xml:"name"`
}

type xmlSeiyuu struct {
	Picture string `xml:"picture,attr"`
	Name    string `xml:",chardata"`
}

type xmlCharacter struct {
	Name    string     `xml:"name"`
	Picture *string    `xml:"picture"`
	Seiyuu  *xmlSeiyuu `xml:"seiyuu"`
}

type xmlEpno struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlEpisode struct {
	Epno    xmlEpno    `xml:"epno"`
	Length  string     `xml:"length"`
	Airdate string     `xml:"airdate"`
	Rating  *xmlRating `xml:"rating"`
	Titles  []xmlTitle `xml:"title"`
	Summary string     `xml:"summary"`
}

type xmlAnime struct {
	XMLName     xml.Name       `xml:"anime"`
	ID          string         `xml:"id,attr"`
	StartDate   string         `xml:"startdate"`
	Titles      []xmlTitle     `xml:"titles>title"`
	Creators    []xmlCreator   `xml:"creators>name"`
	Description string         `xml:"description"`
	Permanent   *xmlRating     `xml:"ratings>permanent"`
	Pictures    []string       `xml:"picture"`
	Tags        []xmlTag       `xml:"tags>tag"`
	Characters  []xmlCharacter `xml:"characters>character"`
	Episodes    []xmlEpisode   `xml:"episodes>episode"`
}

// Episode types of the epno element. 1 is a regular episode, 2 a special
// ("S" prefix). Credits, trailers, parodies and others are ignored.
const (
	episodeRegular = 1
	episodeSpecial = 2
)

// creditRoles maps AniDB creator types to TMDB department and category
// (known_for_department).
var creditRoles = map[string]struct{ department, category string }{
	"Character Design":           {"Art", "visual effects"},
	"Original Work":              {"Writing", "writing"},
	"Music":                      {"Sound", "sound"},
	"Animation Work":             {"Art", "visual effects"},
	"Direction":                  {"Directing", "directing"},
	"Chief Animation Direction":  {"Directing", "directing"},
	"Animation Character Design": {"Art", "visual effects"},
	"Series Composition":         {"Writing", "writing"},
}

// ParseAnime parses an anime document of the HTTP API. Season 0 holds the
// specials and season 1 the regular episodes.
func ParseAnime(data []byte) (*models.Anime, error) {
	var doc xmlAnime
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if !isDigits(doc.ID) {
		return nil, fmt.Errorf("%w: anime id %q", ErrInvalidDocument, doc.ID)
	}
	aid := doc.ID

	anime := &models.Anime{
		ID:          "A" + aid,
		UniqueIDs:   map[string]string{Source: aid},
		Titles:      make([]models.Title, 0, len(doc.Titles)),
		Description: strings.TrimSpace(doc.Description),
		Genres:      []string{},
		Tags:        parseTags(doc.Tags),
		Images:      make([]models.Image, 0, len(doc.Pictures)),
		Ratings:     []models.Rating{},
		Cast:        []models.CastRole{},
		Directors:   []string{},
		Credits:     []models.Credit{},
	}

	for _, t := range doc.Titles {
		anime.Titles = append(anime.Titles, t.title(aid))
	}
	for _, p := range doc.Pictures {
		if name := imageName(p); name != "" {
			anime.Images = append(anime.Images, models.Image{Source: Source, Name: name, Type: models.ImagePoster})
		}
	}
	if strings.TrimSpace(doc.StartDate) != "" {
		d, err := parseDate(doc.StartDate)
		if err != nil {
			return nil, err
		}
		anime.Airdate = &d
	}
	if r := parseRating(doc.Permanent, true); r != nil {
		anime.Ratings = append(anime.Ratings, *r)
	}
	for _, c := range doc.Characters {
		if role := parseCharacter(c); role != nil {
			anime.Cast = append(anime.Cast, *role)
		}
	}
	for _, c := range doc.Creators {
		name := strings.TrimSpace(c.Name)
		job := strings.TrimSpace(c.Type)
		if name == "" || job == "" {
			continue
		}
		if strings.EqualFold(job, "Direction") {
			anime.Directors = append(anime.Directors, name)
		}
		role := creditRoles[job]
		anime.Credits = append(anime.Credits, models.Credit{
			Name:       name,
			Job:        job,
			Department: role.department,
			Category:   role.category,
		})
	}

	regular, specials, err := parseEpisodes(doc.Episodes)
	if err != nil {
		return nil, err
	}

	season := models.Season{
		ID:          anime.ID,
		Number:      1,
		UniqueIDs:   anime.UniqueIDs,
		Titles:      anime.Titles,
		Description: anime.Description,
		Genres:      anime.Genres,
		Tags:        anime.Tags,
		Airdate:     anime.Airdate,
		Images:      anime.Images,
		Ratings:     anime.Ratings,
		Cast:        anime.Cast,
		Directors:   anime.Directors,
		Credits:     anime.Credits,
	}.Clone()
	season.Episodes = regular

	specialSeason := models.Season{
		ID:        anime.ID,
		Number:    0,
		UniqueIDs: map[string]string{Source: aid},
		Titles:    []models.Title{{Value: "Specials", Type: "main", Lang: "en"}},
		Genres:    []string{},
		Tags:      []string{},
		Episodes:  specials,
		Images:    []models.Image{},
		Ratings:   []models.Rating{},
		Cast:      []models.CastRole{},
		Directors: []string{},
		Credits:   []models.Credit{},
	}

	anime.Seasons = []models.Season{specialSeason, season}
	anime.Normalize()
	return anime, nil
}

func parseEpisodes(elements []xmlEpisode) (regular, specials []models.Episode, err error) {
	regular = []models.Episode{}
	specials = []models.Episode{}
	for _, el := range elements {
		typ, number, err := parseEpno(el.Epno)
		if err != nil {
			return nil, nil, err
		}
		if typ != episodeRegular && typ != episodeSpecial {
			continue
		}

		ep := models.Episode{
			Number:  number,
			Titles:  make([]models.Title, 0, len(el.Titles)),
			Summary: strings.TrimSpace(el.Summary),
			Images:  []models.Image{},
			Ratings: []models.Rating{},
		}
		if s := strings.TrimSpace(el.Length); s != "" {
			if ep.Length, err = strconv.Atoi(s); err != nil {
				return nil, nil, fmt.Errorf("%w: episode length %q", ErrInvalidDocument, s)
			}
		}
		if strings.TrimSpace(el.Airdate) != "" {
			if ep.Airdate, err = parseDate(el.Airdate); err != nil {
				return nil, nil, err
			}
		}
		for _, t := range el.Titles {
			ep.Titles = append(ep.Titles, t.title(""))
		}
		if r := parseRating(el.Rating, false); r != nil {
			ep.Ratings = append(ep.Ratings, *r)
		}

		if typ == episodeRegular {
			regular = append(regular, ep)
		} else {
			specials = append(specials, ep)
		}
	}
	return regular, specials, nil
}

// parseEpno returns the episode type and number. Non-regular episodes
// carry a one letter prefix (S1, C2, T1, ...).
func parseEpno(el xmlEpno) (typ, number int, err error) {
	typ, err = strconv.Atoi(strings.TrimSpace(el.Type))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: episode type %q", ErrInvalidDocument, el.Type)
	}
	value := strings.TrimSpace(el.Value)
	if typ != episodeRegular && value != "" {
		value = value[1:]
	}
	number, err = strconv.Atoi(value)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: episode number %q", ErrInvalidDocument, el.Value)
	}
	return typ, number, nil
}

// parseRating reads an average with votes (episodes) or count (anime)
// attributes. Unparsable averages are dropped, unparsable votes are 0.
func parseRating(el *xmlRating, useCount bool) *models.Rating {
	if el == nil {
		return nil
	}
	average, err := strconv.ParseFloat(strings.TrimSpace(el.Value), 64)
	if err != nil {
		return nil
	}
	votesAttr := el.Votes
	if useCount {
		votesAttr = el.Count
	}
	votes, err := strconv.Atoi(strings.TrimSpace(votesAttr))
	if err != nil {
		votes = 0
	}
	return &models.Rating{Source: Source, Average: average, Votes: votes}
}

// parseCharacter skips characters without a voice actor (seiyuu).
func parseCharacter(el xmlCharacter) *models.CastRole {
	if el.Seiyuu == nil {
		return nil
	}
	role := &models.CastRole{
		Character: strings.TrimSpace(el.Name),
		Actor:     strings.TrimSpace(el.Seiyuu.Name),
	}
	if el.Picture != nil {
		if name := imageName(*el.Picture); name != "" {
			role.CharacterImage = &models.Image{Source: Source, Name: name, Type: models.ImageThumb}
		}
	}
	if name := imageName(el.Seiyuu.Picture); name != "" {
		role.ActorImage = &models.Image{Source: Source, Name: name, Type: models.ImageThumb}
	}
	return role
}

type tagNode struct {
	id     string
	name   string
	parent string
}

// parseTags keeps the leaves of the tag tree, except those below
// "maintenance tags". Inner nodes are tag categories. Tags without a name
// are dropped.
func parseTags(elements []xmlTag) []string {
	nodes := make(map[string]*tagNode, len(elements))
	order := make([]string, 0, len(elements))
	for _, el := range elements {
		name := strings.TrimSpace(el.Name)
		if name == "" {
			continue
		}
		id := strings.TrimSpace(el.ID)
		if _, ok := nodes[id]; !ok {
			order = append(order, id)
		}
		nodes[id] = &tagNode{id: id, name: name, parent: strings.TrimSpace(el.ParentID)}
	}

	parents := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		parents[n.parent] = true
	}

	tags := []string{}
	for _, id := range order {
		if parents[id] {
			continue
		}
		n := nodes[id]
		if !isMaintenanceTag(n, nodes) {
			tags = append(tags, n.name)
		}
	}
	return tags
}

func isMaintenanceTag(n *tagNode, nodes map[string]*tagNode) bool {
	seen := make(map[string]bool)
	for n != nil && !seen[n.id] {
		if strings.EqualFold(n.name, "maintenance tags") {
			return true
		}
		seen[n.id] = true
		n = nodes[n.parent]
	}
	return false
}

// parseDate accepts YYYY-MM-DD. AniDB uses YYYY-MM and YYYY when the day or
// month is unknown; those map to the first day of the period.
func parseDate(value string) (models.Date, error) {
	value = strings.TrimSpace(value)
	switch len(value) {
	case 4:
		value += "-01-01"
	case 7:
		value += "-01"
	}
	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, fmt.Errorf("%w: date %q", ErrInvalidDocument, value)
	}
	return d, nil
}

func imageName(value string) string {
	return strings.Trim(strings.TrimSpace(value), "/")
}

func titleType(value string) string {
	if value == "syn" {
		return "synonym"
	}
	return value
}

// attr returns the value of the attribute with the given local name,
// ignoring the namespace (xml:lang).
func attr(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
