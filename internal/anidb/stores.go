// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package anidb

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/objstore"
)

const (
	// DefaultAPIURL is the AniDB HTTP API endpoint.
	DefaultAPIURL = "http://api.anidb.net:9001/httpapi"

	// DefaultImageURL is the AniDB image CDN.
	DefaultImageURL = "https://cdn-eu.anidb.net/images/main"

	// DefaultTitlesURL is the daily titles dump.
	DefaultTitlesURL = "http://anidb.net/api/anime-titles.xml.gz"

	// TitlesName is the object name of the titles dump in the cache store.
	TitlesName = "anime-titles.xml"

	// UserAgent is sent to AniDB, which also requires it as client name.
	UserAgent = "animemetacache"

	clientVersion   = "1"
	protocolVersion = "1"

	requestInterval = 4 * time.Second
	errorInterval   = 30 * time.Minute
)

// ErrAPI is returned (wrapped) for errors reported by the AniDB API that
// are not a missing anime or a ban.
var ErrAPI = errors.New("anidb api error")

// HTTPConfig returns the upstream settings AniDB expects from clients.
func HTTPConfig(name string) objstore.HTTPConfig {
	return objstore.HTTPConfig{
		Name:            name,
		UserAgent:       UserAgent,
		RequestInterval: requestInterval,
		ErrorInterval:   errorInterval,
	}
}

// IsHTTPURL reports whether raw is an http:// or https:// URL.
func IsHTTPURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// AnimeStore reads "<aid>.xml" objects from the AniDB HTTP API.
// The API is not asked whether an anime exists before a request; callers
// check the titles first.
type AnimeStore struct {
	*objstore.HTTPClient
	base *url.URL
}

// NewAnimeStore creates the anime store for an API base URL. Any other URL
// is handed to the object store factory, e.g. a mirror in an S3 bucket.
func NewAnimeStore(raw string, opts objstore.FactoryOptions) (objstore.Store, error) {
	if IsHTTPURL(raw) {
		return NewAnimeAPIStore(raw, HTTPConfig("anidb-api"))
	}
	return objstore.NewStore(raw, opts)
}

// NewAnimeAPIStore creates the anime store for the AniDB HTTP API.
func NewAnimeAPIStore(baseURL string, cfg objstore.HTTPConfig) (*AnimeStore, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse anidb api URL: %w", err)
	}
	return &AnimeStore{HTTPClient: objstore.NewHTTPClient(cfg), base: base}, nil
}

func (s *AnimeStore) animeURL(name string) (string, error) {
	aid := strings.TrimSuffix(name, ".xml")
	if !isDigits(aid) {
		return "", objstore.NotFound(name, "anidb aid is digits only")
	}
	u := *s.base
	q := u.Query()
	q.Set("request", "anime")
	q.Set("client", UserAgent)
	q.Set("clientver", clientVersion)
	q.Set("protover", protocolVersion)
	q.Set("aid", aid)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Stat never reaches out to the API; the API is by definition fresh.
func (s *AnimeStore) Stat(_ context.Context, name string) (objstore.Stat, error) {
	if _, err := s.animeURL(name); err != nil {
		return objstore.Stat{}, err
	}
	return objstore.NewStat("text/xml", time.Time{}), nil
}

// Get fetches the anime XML and checks it for API errors.
func (s *AnimeStore) Get(ctx context.Context, name string) (*objstore.Object, error) {
	u, err := s.animeURL(name)
	if err != nil {
		return nil, err
	}
	resp, err := s.Do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", s.Name(), name, err)
	}
	if err := s.checkAPIError(ctx, name, data); err != nil {
		return nil, err
	}
	return objstore.NewObject(objstore.StatFromResponse(ctx, resp), data), nil
}

func (s *AnimeStore) checkAPIError(ctx context.Context, name string, data []byte) error {
	switch msg := ParseAPIError(data); msg {
	case "":
		return nil
	case "anime not found":
		logging.Ctx(ctx).Error().Str("name", name).Msg("Anime not found in the AniDB API")
		return objstore.NotFound(name, "anime not found")
	case "banned":
		logging.Ctx(ctx).Error().Msg("AniDB client got banned")
		s.MarkError()
		return objstore.NotFound(name, "anidb client got banned")
	default:
		logging.Ctx(ctx).Error().Str("error", msg).Msg("Unknown AniDB error")
		s.MarkError()
		return fmt.Errorf("%w: %q", ErrAPI, msg)
	}
}

// Put implements objstore.Store; the API is read-only.
func (s *AnimeStore) Put(context.Context, string, *objstore.Object) error {
	return fmt.Errorf("%s: %w", s.Name(), objstore.ErrWriteNotSupported)
}

// NewImageStore creates the image store for a CDN base URL, or any other
// object store URL.
func NewImageStore(raw string, opts objstore.FactoryOptions) (objstore.Store, error) {
	if IsHTTPURL(raw) {
		return NewImageAPIStore(raw, HTTPConfig("anidb-images"))
	}
	return objstore.NewStore(raw, opts)
}

// NewImageAPIStore creates a read-only store for the AniDB image CDN.
func NewImageAPIStore(baseURL string, cfg objstore.HTTPConfig) (*objstore.HTTPStore, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse anidb image URL: %w", err)
	}
	return objstore.NewHTTPStore(cfg, func(_ context.Context, name string) (string, error) {
		u := *base
		u.Path = path.Join(u.Path, name)
		return u.String(), nil
	}), nil
}

// TitlesStore reads the gzip compressed titles dump. Every name maps to
// the dump.
type TitlesStore struct {
	*objstore.HTTPClient
	url string
}

// NewTitlesStore creates the titles store: http(s) URLs fetch the dump,
// file:// URLs and absolute paths read a local copy.
func NewTitlesStore(raw string) (objstore.Store, error) {
	switch {
	case IsHTTPURL(raw):
		return NewTitlesAPIStore(raw, HTTPConfig("anidb-titles")), nil
	case strings.HasPrefix(raw, "file://"), strings.HasPrefix(raw, "/"):
		return objstore.NewSingleFileStore(raw)
	}
	return nil, fmt.Errorf("invalid titles URL %q, expected http://, file:// or an absolute path", raw)
}

// NewTitlesAPIStore creates the titles store for the dump URL.
func NewTitlesAPIStore(titlesURL string, cfg objstore.HTTPConfig) *TitlesStore {
	return &TitlesStore{HTTPClient: objstore.NewHTTPClient(cfg), url: titlesURL}
}

// Stat never reaches out to AniDB.
func (s *TitlesStore) Stat(context.Context, string) (objstore.Stat, error) {
	return objstore.NewStat("text/xml", time.Time{}), nil
}

// Get downloads and decompresses the dump.
func (s *TitlesStore) Get(ctx context.Context, name string) (*objstore.Object, error) {
	resp, err := s.Do(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", s.Name(), name, err)
	}
	data, err = gunzip(data)
	if err != nil {
		return nil, fmt.Errorf("%s: decompress %s: %w", s.Name(), name, err)
	}

	stat := objstore.StatFromResponse(ctx, resp)
	stat.ContentType = "text/xml"
	return objstore.NewObject(stat, data), nil
}

// Put implements objstore.Store; the dump is read-only.
func (s *TitlesStore) Put(context.Context, string, *objstore.Object) error {
	return fmt.Errorf("%s: no upload to the titles dump: %w", s.Name(), objstore.ErrWriteNotSupported)
}

// gunzip decompresses data. Data without the gzip magic is returned as is,
// since the transport may already have removed a gzip content encoding.
func gunzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
