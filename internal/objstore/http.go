// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/metrics"
	"github.com/tomtom215/amc2/internal/throttle"
	"github.com/tomtom215/amc2/internal/upstream"
)

// HTTPConfig configures the HTTP core of an upstream store.
type HTTPConfig struct {
	// Name labels logs, metrics and the circuit breaker.
	Name string

	// UserAgent is sent with every request.
	UserAgent string

	// RequestInterval is the minimum time between two requests. <= 0 disables it.
	RequestInterval time.Duration

	// ErrorInterval is the cool-down after a failed request. <= 0 disables it.
	ErrorInterval time.Duration

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// HTTPClient is the request core shared by the read-only upstream stores.
//
// It spaces requests by RequestInterval and refuses requests for
// ErrorInterval after a failure other than 404, because one error never
// comes alone and upstream APIs ban clients that keep hammering them.
type HTTPClient struct {
	name   string
	client *upstream.Client
	req    *throttle.MaybeThrottler
	err    *throttle.MaybeThrottler
}

// NewHTTPClient creates the HTTP core for an upstream store.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	return &HTTPClient{
		name: cfg.Name,
		client: upstream.NewClient(upstream.Config{
			Name:      cfg.Name,
			UserAgent: cfg.UserAgent,
			Transport: cfg.Transport,
		}),
		req: throttle.NewMaybe(cfg.RequestInterval),
		err: throttle.NewMaybe(cfg.ErrorInterval),
	}
}

// Name returns the upstream name.
func (c *HTTPClient) Name() string {
	return c.name
}

// MarkError starts the error cool-down, e.g. after an error reported in a 200 body.
func (c *HTTPClient) MarkError() {
	c.err.Mark()
}

// Do sends a request and returns the successful response. 404 and other
// unsuccessful status codes are mapped to ErrNotFound. The caller must close
// the body of the returned response.
func (c *HTTPClient) Do(ctx context.Context, method, rawURL string, header http.Header) (*http.Response, error) {
	if !c.err.Check() {
		metrics.RecordUpstreamThrottled(c.name)
		return nil, NotFound(rawURL, "too many requests after the last error")
	}

	if err := c.req.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.err.Mark()
		}
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		c.err.Reset()
		logging.Ctx(ctx).Debug().Str("upstream", c.name).Str("method", method).Str("url", rawURL).
			Int("status", resp.StatusCode).Msg("Upstream request")
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NotFound(rawURL, "")
	}
	c.err.Mark()
	logging.Ctx(ctx).Warn().Str("upstream", c.name).Str("method", method).Str("url", rawURL).
		Int("status", resp.StatusCode).Msg("Unexpected upstream response")
	return nil, NotFound(rawURL, fmt.Sprintf("unexpected HTTP %d error: %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
}

// StatFromResponse builds a stat from the response headers.
func StatFromResponse(ctx context.Context, resp *http.Response) Stat {
	stat := NewStat(resp.Header.Get("Content-Type"), ParseLastModified(ctx, resp.Header))
	switch {
	case resp.ContentLength > 0:
		stat.Size = resp.ContentLength
	default:
		if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil && n > 0 {
			stat.Size = n
		}
	}
	return stat
}

// ParseLastModified reads the Last-Modified header as an HTTP date.
// Missing or malformed values yield the zero time.
func ParseLastModified(ctx context.Context, header http.Header) time.Time {
	value := header.Get("Last-Modified")
	if value == "" {
		return time.Time{}
	}
	t, err := http.ParseTime(value)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("value", value).Msg("Error parsing Last-Modified header")
		return time.Time{}
	}
	return t
}

// URLFunc resolves an object name to an upstream URL.
type URLFunc func(ctx context.Context, name string) (string, error)

// HTTPStore is a read-only store that maps names to URLs.
type HTTPStore struct {
	*HTTPClient
	url URLFunc
}

// NewHTTPStore creates a read-only HTTP store.
func NewHTTPStore(cfg HTTPConfig, url URLFunc) *HTTPStore {
	return &HTTPStore{HTTPClient: NewHTTPClient(cfg), url: url}
}

// Stat implements Store with a HEAD request.
func (s *HTTPStore) Stat(ctx context.Context, name string) (Stat, error) {
	u, err := s.url(ctx, name)
	if err != nil {
		return Stat{}, err
	}
	resp, err := s.Do(ctx, http.MethodHead, u, nil)
	if err != nil {
		return Stat{}, err
	}
	defer resp.Body.Close()
	return StatFromResponse(ctx, resp), nil
}

// Get implements Store with a GET request.
func (s *HTTPStore) Get(ctx context.Context, name string) (*Object, error) {
	u, err := s.url(ctx, name)
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
		return nil, fmt.Errorf("%s: read %s: %w", s.name, u, err)
	}
	return NewObject(StatFromResponse(ctx, resp), data), nil
}

// Put implements Store; uploads are not supported.
func (s *HTTPStore) Put(context.Context, string, *Object) error {
	return fmt.Errorf("%s: %w", s.name, ErrWriteNotSupported)
}
