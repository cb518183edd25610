// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

// Package upstream provides the HTTP client used to reach AniDB and TMDB.
//
// Every upstream gets its own Client with its own circuit breaker, so an
// unavailable image CDN does not stop requests to the metadata API.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/amc2/internal/logging"
	"github.com/tomtom215/amc2/internal/metrics"
)

// DefaultTimeout bounds a single upstream request including the body transfer.
const DefaultTimeout = 60 * time.Second

// errServerStatus marks 5xx responses as failures for the breaker while the
// response itself is still handed to the caller.
var errServerStatus = errors.New("upstream server error")

// Config holds the settings of one upstream client.
type Config struct {
	// Name labels logs and metrics, e.g. "anidb-api".
	Name string

	// UserAgent is sent when the request does not set one.
	UserAgent string

	// Timeout for a single request. Default: DefaultTimeout
	Timeout time.Duration

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client sends requests to one upstream through a circuit breaker.
type Client struct {
	name      string
	userAgent string
	http      *http.Client
	cb        *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient creates an upstream client.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	name := cfg.Name
	if name == "" {
		name = "upstream"
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Str("upstream", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening upstream circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("upstream", name).Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Client{
		name:      name,
		userAgent: cfg.UserAgent,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		cb: cb,
	}
}

// Name returns the upstream name used for logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// Do sends the request. Redirects are followed. Responses with any status
// are returned; only transport errors, 5xx responses and open breakers count
// as failures. When err is nil the caller must close the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.cb.Execute(func() (*http.Response, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	status := "0"
	if resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	metrics.RecordUpstreamRequest(c.name, req.Method, status, time.Since(start))

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(0)
		return resp, nil
	case errors.Is(err, errServerStatus):
		c.recordFailure()
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		logging.Ctx(req.Context()).Warn().Err(err).Str("upstream", c.name).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, fmt.Errorf("%s: %w", c.name, err)
	default:
		c.recordFailure()
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}
}

func (c *Client) recordFailure() {
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
	counts := c.cb.Counts()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(c.name).Set(float64(counts.ConsecutiveFailures))
}

// State returns the breaker state as a string (closed, half-open, open).
func (c *Client) State() string {
	return stateToString(c.cb.State())
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
