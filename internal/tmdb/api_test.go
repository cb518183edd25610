// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package tmdb

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/amc2/internal/objstore"
)

const testAPIKey = "secret"

func testHTTPConfig(name string) objstore.HTTPConfig {
	return objstore.HTTPConfig{Name: name, UserAgent: UserAgent, ErrorInterval: time.Hour}
}

// fakeAPI serves canned TMDB API responses keyed by path below /3.
type fakeAPI struct {
	t         *testing.T
	responses map[string]string

	mu       sync.Mutex
	requests []*http.Request
}

func newFakeAPI(t *testing.T, responses map[string]string) (*fakeAPI, string) {
	t.Helper()
	api := &fakeAPI{t: t, responses: responses}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return api, server.URL + "/3?api_key=" + testAPIKey
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	if got := r.URL.Query().Get("api_key"); got != testAPIKey {
		f.t.Errorf("%s: api_key = %q", r.URL.Path, got)
	}
	body, ok := f.responses[strings.TrimPrefix(r.URL.Path, "/3/")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (f *fakeAPI) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, strings.TrimPrefix(r.URL.Path, "/3/"))
	}
	return out
}

func (f *fakeAPI) query(path string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if strings.TrimPrefix(r.URL.Path, "/3/") == path {
			q := map[string]string{}
			for k := range r.URL.Query() {
				q[k] = r.URL.Query().Get(k)
			}
			return q
		}
	}
	return nil
}

// showResponses is a show with a specials season and one regular season of
// two episodes.
func showResponses() map[string]string {
	return map[string]string{
		"tv/100": `{"id": 100, "name": "Cowboy Bebop", "overview": "Space bounty hunters.",
			"genres": [{"id": 16, "name": "Animation"}, {"id": 1, "name": ""}],
			"seasons": [
				{"season_number": 0, "name": "Specials"},
				{"season_number": 1, "name": "Season 1"},
				{"name": "no number"}
			]}`,
		"tv/100/images":             `{"posters": [{"file_path": "/show-poster.jpg"}], "backdrops": [{"file_path": "/show-backdrop.jpg"}]}`,
		"tv/100/alternative_titles": `{"results": [{"iso_3166_1": "JP", "title": "Kaubōi Bibappu"}]}`,

		"tv/100/season/0": `{"season_number": 0, "name": "Specials", "overview": "",
			"episodes": [{"episode_number": 1, "name": "Session XX"}]}`,
		"tv/100/season/0/images":            `{"posters": []}`,
		"tv/100/season/0/aggregate_credits": `{"cast": [], "crew": []}`,
		"tv/100/season/0/episode/1":         `{"episode_number": 1, "name": "Session XX", "overview": "Mushroom samba.", "runtime": 25, "air_date": "1999-06-26", "vote_average": 7.5, "vote_count": 12}`,
		"tv/100/season/0/episode/1/images":  `{"stills": [{"file_path": "/sp1.jpg"}]}`,

		"tv/100/season/1": `{"season_number": 1, "name": "Season 1", "overview": "The first season.", "air_date": "1998-04-03",
			"episodes": [{"episode_number": 2}, {"episode_number": 1}]}`,
		"tv/100/season/1/images": `{"posters": [{"file_path": "/s1-poster.jpg"}]}`,
		"tv/100/season/1/aggregate_credits": `{
			"cast": [
				{"name": "Koichi Yamadera", "profile_path": "/yamadera.jpg", "roles": [{"character": "Spike Spiegel"}]},
				{"name": "Unh Unijiro", "profile_path": null, "roles": [{"character": "Ein"}]},
				{"name": "No Role", "roles": []}
			],
			"crew": [
				{"name": "Shinichiro Watanabe", "department": "Directing", "known_for_department": "Directing", "jobs": [{"job": "Director"}, {"job": ""}]},
				{"name": "Yoko Kanno", "department": "Sound", "known_for_department": null, "jobs": [{"job": "Music"}, {"job": "Theme Song Performance"}]},
				{"name": "", "department": "Writing", "jobs": [{"job": "Writer"}]}
			]}`,
		"tv/100/season/1/episode/1":        `{"episode_number": 1, "name": "Asteroid Blues", "overview": "Spike and Jet.", "runtime": 24, "air_date": "1998-04-03", "vote_average": 8.1, "vote_count": 40}`,
		"tv/100/season/1/episode/1/images": `{"stills": [{"file_path": "/e1.jpg"}]}`,
		"tv/100/season/1/episode/2":        `{"episode_number": 2, "name": "Stray Dog Strut", "runtime": null, "air_date": null}`,
		"tv/100/season/1/episode/2/images": `{"stills": []}`,
	}
}
