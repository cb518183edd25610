// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package mapping

import (
	"context"
	"strings"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/metrics"
	"github.com/tomtom215/amc2/internal/models"
)

// AnidbTitleMatcher finds TMDB seasons for a title, using AniDB as the
// primary source.
//
// The title is looked up on AniDB first. Every anime found is mapped with
// the stored mappings if there are any, otherwise by searching TMDB for its
// titles. A title can name several anime and an anime can map to several
// seasons, so the result may contain wrong candidates for the user to
// choose from. Perfect matches are flagged with IsFromMatch so that the
// caller can remember them.
type AnidbTitleMatcher struct {
	anidb    models.TitleRepo
	tmdb     models.TitleRepo
	mappings Repo
}

// NewAnidbTitleMatcher creates the matcher.
func NewAnidbTitleMatcher(anidb, tmdb models.TitleRepo, mappings Repo) *AnidbTitleMatcher {
	return &AnidbTitleMatcher{anidb: anidb, tmdb: tmdb, mappings: mappings}
}

// MatchTitle matches query.Value. query.AID restricts the AniDB lookup to
// one anime and query.Lang is the language for both title repos.
func (m *AnidbTitleMatcher) MatchTitle(ctx context.Context, query models.Title) ([]TitleMappingResult, error) {
	found, err := m.anidb.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	aids, byAID := indexTitles(found)

	result := []TitleMappingResult{}
	pending := make([]string, 0, len(aids))
	for _, aid := range aids {
		stored, err := m.storedMatches(ctx, mainTitle(byAID[aid]))
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			result = append(result, stored...)
			continue
		}
		pending = append(pending, aid)
	}
	if len(result) > 0 {
		metrics.RecordTitleMatch("storage")
	}

	for _, aid := range pending {
		titles, err := m.anidb.Find(ctx, models.Title{AID: aid})
		if err != nil {
			return nil, err
		}
		matches, err := m.tmdbMatches(ctx, titles, query.Lang)
		if err != nil {
			return nil, err
		}
		result = append(result, matches...)
	}

	logging.Ctx(ctx).Debug().Str("title", query.Value).Int("anime", len(aids)).
		Int("searched", len(pending)).Int("results", len(result)).Msg("Matched title")
	return result, nil
}

func (m *AnidbTitleMatcher) storedMatches(ctx context.Context, entry models.TitleEntry) ([]TitleMappingResult, error) {
	mappings, err := m.mappings.ResolveTmdb(ctx, AnimeMapping{Anidb: entry.Title.AID})
	if err != nil {
		return nil, err
	}
	result := make([]TitleMappingResult, 0, len(mappings))
	for _, mapping := range mappings {
		result = append(result, TitleMappingResult{
			Anidb:         entry.Title,
			Tmdb:          models.Title{AID: mapping.Tmdb},
			IsFromStorage: true,
		})
	}
	return result, nil
}

// tmdbMatches searches TMDB with the mapping titles of one anime. Each
// attempt costs a TMDB search request. A perfect match ends the search and
// is the only result; otherwise every hit of every attempt is a candidate.
func (m *AnidbTitleMatcher) tmdbMatches(ctx context.Context, anidbTitles []models.TitleEntry, lang string) ([]TitleMappingResult, error) {
	var result []TitleMappingResult
	for _, candidate := range mappingTitles(anidbTitles) {
		tmdbTitles, err := m.tmdb.Find(ctx, models.Title{Value: candidate.Title.Value, Lang: lang})
		if err != nil {
			return nil, err
		}

		if match, ok := perfectMatch(anidbTitles, tmdbTitles); ok {
			metrics.RecordTitleMatch("perfect")
			return []TitleMappingResult{match}, nil
		}
		for _, t := range tmdbTitles {
			result = append(result, TitleMappingResult{Anidb: candidate.Title, Tmdb: t.Title})
		}
	}
	if len(result) > 0 {
		metrics.RecordTitleMatch("candidate")
	}
	return result, nil
}

// perfectMatch looks for equal titles across both lists. The comparison is
// strict apart from case and surrounding space, since sequels often differ
// in a single character.
func perfectMatch(anidbTitles, tmdbTitles []models.TitleEntry) (TitleMappingResult, bool) {
	for _, a := range anidbTitles {
		t1 := normalizeTitle(a.Title.Value)
		if t1 == "" {
			continue
		}
		for _, t := range tmdbTitles {
			if t1 == normalizeTitle(t.Title.Value) {
				return TitleMappingResult{Anidb: a.Title, Tmdb: t.Title, IsFromMatch: true}, true
			}
		}
	}
	return TitleMappingResult{}, false
}

func normalizeTitle(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// indexTitles groups titles by aid, keeping the order of first appearance.
func indexTitles(titles []models.TitleEntry) ([]string, map[string][]models.TitleEntry) {
	var order []string
	index := map[string][]models.TitleEntry{}
	for _, t := range titles {
		if _, ok := index[t.Title.AID]; !ok {
			order = append(order, t.Title.AID)
		}
		index[t.Title.AID] = append(index[t.Title.AID], t)
	}
	return order, index
}

// mainTitle picks the title shown for an anime: the main title, else the
// official English one, else the official Japanese one, else the first.
func mainTitle(titles []models.TitleEntry) models.TitleEntry {
	preferences := []func(models.Title) bool{
		func(t models.Title) bool { return t.Type == "main" },
		func(t models.Title) bool { return t.Type == "official" && t.Lang == "en" },
		func(t models.Title) bool { return t.Type == "official" && t.Lang == "ja" },
	}
	for _, prefer := range preferences {
		for _, t := range titles {
			if prefer(t.Title) {
				return t
			}
		}
	}
	return titles[0]
}

// mappingTitles returns the titles to search TMDB with, in order: official
// English, main, official Japanese.
func mappingTitles(titles []models.TitleEntry) []models.TitleEntry {
	var out []models.TitleEntry
	for _, t := range titles {
		if t.Title.Type == "official" && t.Title.Lang == "en" {
			out = append(out, t)
		}
	}
	for _, t := range titles {
		if t.Title.Type == "main" {
			out = append(out, t)
		}
	}
	for _, t := range titles {
		if t.Title.Type == "official" && t.Title.Lang == "ja" {
			out = append(out, t)
		}
	}
	return out
}
