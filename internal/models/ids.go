// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package models

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidID is returned (wrapped) when an anime identifier cannot be parsed.
var ErrInvalidID = errors.New("invalid anime id")

// AnimeID is one of AnidbID, TmdbID, TmdbSeasonID or AnimeMappingID.
type AnimeID interface {
	fmt.Stringer
	isAnimeID()
}

var (
	anidbIDPattern      = regexp.MustCompile(`^A[0-9]+$`)
	tmdbIDPattern       = regexp.MustCompile(`^T[0-9]+$`)
	tmdbSeasonPattern   = regexp.MustCompile(`^T([0-9]+)S([0-9]+)$`)
	tmdbLoosePattern    = regexp.MustCompile(`(?i)^T([0-9]+)(?:S[0-9]+)?$`)
	animeMappingPattern = regexp.MustCompile(`^A([0-9]+)-T([0-9]+)S([0-9]+)$`)
)

// AnidbID identifies an anime on AniDB. String form: A123.
type AnidbID struct {
	Anime int
}

func (AnidbID) isAnimeID() {}

func (id AnidbID) String() string {
	return "A" + strconv.Itoa(id.Anime)
}

// Digits returns the bare numeric AniDB id as used by the AniDB API.
func (id AnidbID) Digits() string {
	return strconv.Itoa(id.Anime)
}

// ParseAnidbID accepts "123" or "A123" (the prefix is case-insensitive).
func ParseAnidbID(value string) (AnidbID, error) {
	if value == "" {
		return AnidbID{}, fmt.Errorf("%w: anidb id must not be empty", ErrInvalidID)
	}
	digits := value
	if value[0] == 'A' || value[0] == 'a' {
		digits = value[1:]
	}
	n, ok := parseDecimal(digits)
	if !ok {
		return AnidbID{}, fmt.Errorf("%w: anidb id %q must be decimal", ErrInvalidID, value)
	}
	return AnidbID{Anime: n}, nil
}

// TmdbID identifies a TV show on TMDB. String form: T123.
type TmdbID struct {
	Show int
}

func (TmdbID) isAnimeID() {}

func (id TmdbID) String() string {
	return "T" + strconv.Itoa(id.Show)
}

// ParseTmdbID accepts "123", "T123" or "T123S4" (the season is dropped).
func ParseTmdbID(value string) (TmdbID, error) {
	if value == "" {
		return TmdbID{}, fmt.Errorf("%w: tmdb id must not be empty", ErrInvalidID)
	}
	if n, ok := parseDecimal(value); ok {
		return TmdbID{Show: n}, nil
	}
	if m := tmdbLoosePattern.FindStringSubmatch(value); m != nil {
		n, _ := strconv.Atoi(m[1])
		return TmdbID{Show: n}, nil
	}
	return TmdbID{}, fmt.Errorf("%w: tmdb id %q must be decimal", ErrInvalidID, value)
}

// TmdbSeasonID identifies one season of a TMDB show. String form: T123S1.
type TmdbSeasonID struct {
	Show   int
	Season int
}

func (TmdbSeasonID) isAnimeID() {}

func (id TmdbSeasonID) String() string {
	return fmt.Sprintf("T%dS%d", id.Show, id.Season)
}

// ParseTmdbSeasonID accepts only the T##S## form.
func ParseTmdbSeasonID(value string) (TmdbSeasonID, error) {
	m := tmdbSeasonPattern.FindStringSubmatch(value)
	if m == nil {
		return TmdbSeasonID{}, fmt.Errorf("%w: tmdb season id %q, expected T##S##", ErrInvalidID, value)
	}
	show, _ := strconv.Atoi(m[1])
	season, _ := strconv.Atoi(m[2])
	return TmdbSeasonID{Show: show, Season: season}, nil
}

// AnimeMappingID pairs an AniDB anime with a TMDB season. String form: A1-T2S3.
type AnimeMappingID struct {
	Anidb AnidbID
	Tmdb  TmdbSeasonID
}

func (AnimeMappingID) isAnimeID() {}

func (id AnimeMappingID) String() string {
	return id.Anidb.String() + "-" + id.Tmdb.String()
}

// ParseAnimeMappingID parses "<anidb>-<tmdb season>", e.g. "A1-T2S3" or "1-T2S3".
func ParseAnimeMappingID(value string) (AnimeMappingID, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return AnimeMappingID{}, fmt.Errorf("%w: expected two parts in %q", ErrInvalidID, value)
	}
	anidb, err := ParseAnidbID(parts[0])
	if err != nil {
		return AnimeMappingID{}, err
	}
	tmdb, err := ParseTmdbSeasonID(parts[1])
	if err != nil {
		return AnimeMappingID{}, err
	}
	return AnimeMappingID{Anidb: anidb, Tmdb: tmdb}, nil
}

// ParseAnimeID dispatches on the exact id forms used in API paths:
// A123, T123, T123S1 and A123-T456S1.
func ParseAnimeID(value string) (AnimeID, error) {
	switch {
	case anidbIDPattern.MatchString(value):
		id, err := ParseAnidbID(value)
		if err != nil {
			return nil, err
		}
		return id, nil
	case tmdbIDPattern.MatchString(value):
		id, err := ParseTmdbID(value)
		if err != nil {
			return nil, err
		}
		return id, nil
	case tmdbSeasonPattern.MatchString(value):
		id, err := ParseTmdbSeasonID(value)
		if err != nil {
			return nil, err
		}
		return id, nil
	}
	if m := animeMappingPattern.FindStringSubmatch(value); m != nil {
		anidb, _ := strconv.Atoi(m[1])
		show, _ := strconv.Atoi(m[2])
		season, _ := strconv.Atoi(m[3])
		return AnimeMappingID{
			Anidb: AnidbID{Anime: anidb},
			Tmdb:  TmdbSeasonID{Show: show, Season: season},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidID, value)
}

// parseDecimal accepts a non-empty string of ASCII digits.
func parseDecimal(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
