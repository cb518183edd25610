// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/amc2/internal/models"
	"github.com/tomtom215/amc2/internal/objstore"
)

const searchRequestInterval = time.Second

// ErrMissingValue is returned by searches without a title value.
var ErrMissingValue = errors.New("expected a title value")

var genericSeasonName = regexp.MustCompile(`(?i)^season\s+([0-9]+)`)

// SearchHTTPConfig returns the upstream settings of the title search.
func SearchHTTPConfig() objstore.HTTPConfig {
	return objstore.HTTPConfig{
		Name:            "tmdb-search",
		UserAgent:       UserAgent,
		RequestInterval: searchRequestInterval,
	}
}

// TitleRepo searches TMDB shows by name and returns one title per season,
// with ids of the form TxxSyy. Only the title value of a query is used.
//
// A season named "Specials" is skipped. A generic season name like
// "Season 2" becomes "<show> Season 2", and "Season 1" becomes the show
// name. Every season of a matching show is returned, so a perfect match
// comes with its related seasons.
type TitleRepo struct {
	client *objstore.HTTPClient
	base   *url.URL
	now    func() time.Time
}

// NewTitleRepo creates the search repo for an API URL with api_key.
func NewTitleRepo(raw string, cfg objstore.HTTPConfig) (*TitleRepo, error) {
	base, err := apiURL(raw)
	if err != nil {
		return nil, err
	}
	return &TitleRepo{client: objstore.NewHTTPClient(cfg), base: base, now: time.Now}, nil
}

// Find searches for query.Value.
func (r *TitleRepo) Find(ctx context.Context, query models.Title) ([]models.TitleEntry, error) {
	if query.Value == "" {
		return nil, ErrMissingValue
	}

	ids, err := r.search(ctx, query.Value)
	if err != nil {
		return nil, err
	}

	entries := []models.TitleEntry{}
	for _, id := range ids {
		show, err := r.show(ctx, id)
		if err != nil {
			return nil, err
		}
		if show != nil {
			entries = append(entries, r.seasonTitles(show)...)
		}
	}
	return entries, nil
}

// Store implements models.TitleRepo; the search is read-only.
func (r *TitleRepo) Store(context.Context, models.TitleEntry) error {
	return fmt.Errorf("tmdb search: %w", models.ErrNotSupported)
}

// Purge implements models.TitleRepo; the search is read-only.
func (r *TitleRepo) Purge(context.Context) error {
	return fmt.Errorf("tmdb search: %w", models.ErrNotSupported)
}

// Remove implements models.TitleRepo; the search is read-only.
func (r *TitleRepo) Remove(context.Context, models.Title) error {
	return fmt.Errorf("tmdb search: %w", models.ErrNotSupported)
}

type searchShow struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Seasons []struct {
		Name         string `json:"name"`
		SeasonNumber int    `json:"season_number"`
	} `json:"seasons"`
}

// search returns the ids of the first result page. Failed requests yield
// no results.
func (r *TitleRepo) search(ctx context.Context, value string) ([]int, error) {
	var result struct {
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	found, err := r.getJSON(ctx, endpoint(r.base, url.Values{"query": {value}}, "search", "tv"), &result)
	if err != nil || !found {
		return nil, err
	}
	ids := make([]int, 0, len(result.Results))
	for _, res := range result.Results {
		ids = append(ids, res.ID)
	}
	return ids, nil
}

func (r *TitleRepo) show(ctx context.Context, id int) (*searchShow, error) {
	var show searchShow
	found, err := r.getJSON(ctx, endpoint(r.base, nil, "tv", strconv.Itoa(id)), &show)
	if err != nil || !found {
		return nil, err
	}
	return &show, nil
}

// getJSON decodes the response into v. Unsuccessful responses report
// found = false.
func (r *TitleRepo) getJSON(ctx context.Context, u string, v any) (bool, error) {
	resp, err := r.client.Do(ctx, http.MethodGet, u, nil)
	if objstore.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("%s: decode response: %w", r.client.Name(), err)
	}
	return true, nil
}

func (r *TitleRepo) seasonTitles(show *searchShow) []models.TitleEntry {
	age := r.now().UTC()
	var entries []models.TitleEntry
	for _, s := range show.Seasons {
		if isSpecialsName(s.Name) {
			continue
		}
		value := s.Name
		if n, ok := genericSeasonNumber(s.Name); ok {
			if n == 1 {
				value = show.Name
			} else {
				value = show.Name + " " + s.Name
			}
		}
		id := models.TmdbSeasonID{Show: show.ID, Season: s.SeasonNumber}
		entries = append(entries, models.TitleEntry{
			Title: models.Title{Value: value, AID: id.String()},
			Age:   age,
		})
	}
	return entries
}

func isSpecialsName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "specials")
}

func genericSeasonNumber(name string) (int, bool) {
	m := genericSeasonName.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
