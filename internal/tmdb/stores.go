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
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/amc2/internal/objstore"
	"github.com/tomtom215/amc2/internal/throttle"
)

const (
	// DefaultAPIURL is the TMDB v3 API endpoint.
	DefaultAPIURL = "https://api.themoviedb.org/3"

	// UserAgent is sent to TMDB.
	UserAgent = "animemetacache"

	// ConfigRefreshInterval is how long the image base URL is reused.
	ConfigRefreshInterval = 2 * 24 * time.Hour

	showRequestInterval  = 250 * time.Millisecond
	showErrorInterval    = 15 * time.Minute
	imageRequestInterval = 4 * time.Second
	imageErrorInterval   = 30 * time.Minute

	imageLanguages = "en,null,ja"
)

// Languages are the show languages the store fetches.
var Languages = []string{"de", "en"}

// ErrMissingAPIKey is returned for TMDB API URLs without an api_key.
var ErrMissingAPIKey = errors.New("the TMDB API URL must contain the api_key query parameter")

// ShowHTTPConfig returns the upstream settings of the show store.
func ShowHTTPConfig() objstore.HTTPConfig {
	return objstore.HTTPConfig{
		Name:            "tmdb-api",
		UserAgent:       UserAgent,
		RequestInterval: showRequestInterval,
		ErrorInterval:   showErrorInterval,
	}
}

// ImageHTTPConfig returns the upstream settings of the image store.
func ImageHTTPConfig() objstore.HTTPConfig {
	return objstore.HTTPConfig{
		Name:            "tmdb-images",
		UserAgent:       UserAgent,
		RequestInterval: imageRequestInterval,
		ErrorInterval:   imageErrorInterval,
	}
}

// APIURL returns the API base URL with the api_key query parameter set.
func APIURL(base, apiKey string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse TMDB API URL: %w", err)
	}
	q := u.Query()
	q.Set("api_key", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isHTTPURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// apiURL parses an API URL and requires the api_key.
func apiURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse TMDB API URL: %w", err)
	}
	if u.Query().Get("api_key") == "" {
		return nil, ErrMissingAPIKey
	}
	return u, nil
}

// endpoint returns base joined with elements, keeping the base query and
// adding params.
func endpoint(base *url.URL, params url.Values, elem ...string) string {
	u := *base
	u.Path = path.Join(append([]string{u.Path}, elem...)...)
	q := u.Query()
	for k, values := range params {
		for _, v := range values {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ShowStore assembles show documents named "<lang>/<id>.json".
type ShowStore struct {
	*objstore.HTTPClient
	base *url.URL
}

// NewShowStore creates the show store. http(s) URLs must carry the
// api_key; any other URL goes to the object store factory.
func NewShowStore(raw string, opts objstore.FactoryOptions) (objstore.Store, error) {
	if isHTTPURL(raw) {
		return NewShowAPIStore(raw, ShowHTTPConfig())
	}
	return objstore.NewStore(raw, opts)
}

// NewShowAPIStore creates the show store for the TMDB API.
func NewShowAPIStore(raw string, cfg objstore.HTTPConfig) (*ShowStore, error) {
	base, err := apiURL(raw)
	if err != nil {
		return nil, err
	}
	return &ShowStore{HTTPClient: objstore.NewHTTPClient(cfg), base: base}, nil
}

// showRequest is a parsed object name.
type showRequest struct {
	lang   string
	showID string
}

func parseShowName(name string) (showRequest, error) {
	lang, file, ok := strings.Cut(name, "/")
	if !ok {
		return showRequest{}, objstore.NotFound(name, "expected <lang>/<id>.json")
	}
	valid := false
	for _, l := range Languages {
		if lang == l {
			valid = true
		}
	}
	if !valid {
		return showRequest{}, objstore.NotFound(name, fmt.Sprintf("invalid language %q, expected %v", lang, Languages))
	}
	ext := path.Ext(file)
	if !strings.EqualFold(ext, ".json") {
		return showRequest{}, objstore.NotFound(name, fmt.Sprintf("not a json file, ends with %q", ext))
	}
	id := strings.TrimSuffix(file, ext)
	if _, err := strconv.Atoi(id); err != nil || strings.ContainsAny(id, "+-") {
		return showRequest{}, objstore.NotFound(name, "the show id is digits only")
	}
	return showRequest{lang: lang, showID: id}, nil
}

// Stat never reaches out to the API; the API is by definition fresh.
func (s *ShowStore) Stat(_ context.Context, name string) (objstore.Stat, error) {
	if _, err := parseShowName(name); err != nil {
		return objstore.Stat{}, err
	}
	return objstore.NewStat("text/json", time.Time{}), nil
}

// Get fetches the show with every season and episode and returns them as
// one JSON document.
func (s *ShowStore) Get(ctx context.Context, name string) (*objstore.Object, error) {
	req, err := parseShowName(name)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	if req.lang != "en" {
		params.Set("language", req.lang)
	}
	show := []string{"tv", req.showID}

	main, err := s.apiJSON(ctx, params, show...)
	if err != nil {
		return nil, err
	}
	if main["images"], err = s.apiImages(ctx, params, show...); err != nil {
		return nil, err
	}
	if main["alternative_titles"], err = s.apiJSON(ctx, params, subpath(show, "alternative_titles")...); err != nil {
		return nil, err
	}

	for _, item := range iterCollection(main, "seasons", "season_number") {
		seasonPath := subpath(show, "season", item.number)
		full, err := s.apiJSON(ctx, params, seasonPath...)
		if err != nil {
			return nil, err
		}
		replaceMap(item.obj, full)
		if item.obj["images"], err = s.apiImages(ctx, params, seasonPath...); err != nil {
			return nil, err
		}
		if item.obj["credits"], err = s.apiJSON(ctx, params, subpath(seasonPath, "aggregate_credits")...); err != nil {
			return nil, err
		}

		for _, ep := range iterCollection(item.obj, "episodes", "episode_number") {
			episodePath := subpath(seasonPath, "episode", ep.number)
			full, err := s.apiJSON(ctx, params, episodePath...)
			if err != nil {
				return nil, err
			}
			replaceMap(ep.obj, full)
			if ep.obj["images"], err = s.apiImages(ctx, params, episodePath...); err != nil {
				return nil, err
			}
		}
	}

	data, err := json.Marshal(main)
	if err != nil {
		return nil, fmt.Errorf("%s: encode %s: %w", s.Name(), name, err)
	}
	return objstore.NewObject(objstore.NewStat("text/json", time.Time{}), data), nil
}

// Put implements objstore.Store; the API is read-only.
func (s *ShowStore) Put(context.Context, string, *objstore.Object) error {
	return fmt.Errorf("%s: %w", s.Name(), objstore.ErrWriteNotSupported)
}

func (s *ShowStore) apiImages(ctx context.Context, params url.Values, elem ...string) (map[string]interface{}, error) {
	withLang := url.Values{"include_image_language": {imageLanguages}}
	for k, v := range params {
		withLang[k] = v
	}
	return s.apiJSON(ctx, withLang, subpath(elem, "images")...)
}

func subpath(parent []string, elem ...string) []string {
	return append(append(make([]string, 0, len(parent)+len(elem)), parent...), elem...)
}

func (s *ShowStore) apiJSON(ctx context.Context, params url.Values, elem ...string) (map[string]interface{}, error) {
	u := endpoint(s.base, params, elem...)
	resp, err := s.Do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var obj map[string]interface{}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, objstore.NotFound(path.Join(elem...), "error decoding API JSON")
	}
	return obj, nil
}

type collectionItem struct {
	obj    map[string]interface{}
	number string
}

// iterCollection returns the objects of obj[collection] that carry a
// numeric key.
func iterCollection(obj map[string]interface{}, collection, key string) []collectionItem {
	list, _ := obj[collection].([]interface{})
	items := make([]collectionItem, 0, len(list))
	for _, raw := range list {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		switch n := item[key].(type) {
		case json.Number:
			items = append(items, collectionItem{obj: item, number: n.String()})
		case float64:
			items = append(items, collectionItem{obj: item, number: strconv.FormatFloat(n, 'f', -1, 64)})
		}
	}
	return items
}

func replaceMap(dst, src map[string]interface{}) {
	for k := range dst {
		delete(dst, k)
	}
	for k, v := range src {
		dst[k] = v
	}
}

// ImageStore serves image files from the TMDB image CDN. The CDN base URL
// is read from the /configuration endpoint, which needs the api_key; the
// image files do not.
type ImageStore struct {
	*objstore.HTTPStore
	api *url.URL

	mu      sync.Mutex
	baseURL *url.URL
	refresh *throttle.Throttler
}

// NewImageStore creates the image store for an API URL, or any other
// object store URL.
func NewImageStore(raw string, opts objstore.FactoryOptions) (objstore.Store, error) {
	if isHTTPURL(raw) {
		return NewImageAPIStore(raw, ImageHTTPConfig())
	}
	return objstore.NewStore(raw, opts)
}

// NewImageAPIStore creates the image store for the TMDB API.
func NewImageAPIStore(raw string, cfg objstore.HTTPConfig) (*ImageStore, error) {
	api, err := apiURL(raw)
	if err != nil {
		return nil, err
	}
	refresh, err := throttle.New(ConfigRefreshInterval)
	if err != nil {
		return nil, err
	}
	s := &ImageStore{api: api, refresh: refresh}
	s.HTTPStore = objstore.NewHTTPStore(cfg, s.imageURL)
	return s, nil
}

func (s *ImageStore) imageURL(ctx context.Context, name string) (string, error) {
	base, err := s.imageBase(ctx)
	if err != nil {
		return "", err
	}
	u := *base
	u.Path = path.Join(u.Path, "original", strings.Trim(name, "/"))
	return u.String(), nil
}

// imageBase returns the secure_base_url, refreshing it every
// ConfigRefreshInterval.
func (s *ImageStore) imageBase(ctx context.Context) (*url.URL, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.baseURL != nil && !s.refresh.Check() {
		return s.baseURL, nil
	}

	resp, err := s.Do(ctx, http.MethodGet, endpoint(s.api, nil, "configuration"), nil)
	if err != nil {
		if objstore.IsNotFound(err) {
			return nil, objstore.NotFound("configuration", "failed to contact the TMDB API /configuration endpoint")
		}
		return nil, err
	}
	defer resp.Body.Close()

	var cfg struct {
		Images struct {
			SecureBaseURL string `json:"secure_base_url"`
		} `json:"images"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil || cfg.Images.SecureBaseURL == "" {
		return nil, objstore.NotFound("configuration", "invalid TMDB configuration response")
	}
	base, err := url.Parse(cfg.Images.SecureBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse TMDB image base URL: %w", err)
	}

	s.baseURL = base
	s.refresh.Mark()
	return base, nil
}
