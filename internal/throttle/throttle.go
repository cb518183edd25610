// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

// Package throttle spaces out requests to upstream APIs.
//
// A Throttler remembers the last time it was marked. Upstream stores use two of
// them: one enforcing a minimum interval between requests and one enforcing a
// cool-down after an error.
package throttle

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrInvalidInterval is returned by New for intervals <= 0.
var ErrInvalidInterval = errors.New("throttle interval must be strictly positive")

// Throttler enforces a minimum interval after the last mark.
// The zero value is not usable; create one with New.
type Throttler struct {
	mu       sync.Mutex
	interval time.Duration
	marked   bool

	// lim holds a single token. Marking consumes it and the token refills
	// after interval. time.Now carries a monotonic reading so wall clock
	// jumps do not affect the limiter.
	lim *rate.Limiter
}

// New creates a throttler with the given interval.
func New(interval time.Duration) (*Throttler, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	return &Throttler{
		interval: interval,
		lim:      rate.NewLimiter(rate.Every(interval), 1),
	}, nil
}

// Interval returns the configured interval.
func (t *Throttler) Interval() time.Duration {
	return t.interval
}

// Mark records the current time as the last event.
func (t *Throttler) Mark() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markLocked(time.Now())
}

func (t *Throttler) markLocked(now time.Time) {
	lim := rate.NewLimiter(rate.Every(t.interval), 1)
	lim.AllowN(now, 1)
	t.lim = lim
	t.marked = true
}

// Reset forgets the last mark.
func (t *Throttler) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lim = rate.NewLimiter(rate.Every(t.interval), 1)
	t.marked = false
}

// Check reports whether an event is allowed now: nothing was marked yet or
// the interval has elapsed since the last mark.
func (t *Throttler) Check() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.marked {
		return true
	}
	return t.lim.TokensAt(time.Now()) >= 1
}

// Wait blocks until the interval has elapsed since the last mark and marks
// again. Concurrent callers are released one interval apart.
func (t *Throttler) Wait(ctx context.Context) error {
	t.mu.Lock()
	lim := t.lim
	t.mu.Unlock()

	if err := lim.Wait(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lim == lim {
		t.marked = true
		return nil
	}
	// Mark or Reset replaced the limiter while we waited
	t.markLocked(time.Now())
	return nil
}

// MaybeThrottler is a Throttler that can be disabled.
// A nil *MaybeThrottler or one created with an interval <= 0 never throttles.
type MaybeThrottler struct {
	t *Throttler
}

// NewMaybe creates a throttler that is a no-op for intervals <= 0.
func NewMaybe(interval time.Duration) *MaybeThrottler {
	t, err := New(interval)
	if err != nil {
		return &MaybeThrottler{}
	}
	return &MaybeThrottler{t: t}
}

// Enabled reports whether the throttler has a positive interval.
func (m *MaybeThrottler) Enabled() bool {
	return m != nil && m.t != nil
}

// Interval returns the interval, or zero when disabled.
func (m *MaybeThrottler) Interval() time.Duration {
	if !m.Enabled() {
		return 0
	}
	return m.t.Interval()
}

// Mark records the current time.
func (m *MaybeThrottler) Mark() {
	if m.Enabled() {
		m.t.Mark()
	}
}

// Reset forgets the last mark.
func (m *MaybeThrottler) Reset() {
	if m.Enabled() {
		m.t.Reset()
	}
}

// Check reports whether an event is allowed now. Always true when disabled.
func (m *MaybeThrottler) Check() bool {
	if !m.Enabled() {
		return true
	}
	return m.t.Check()
}

// Wait blocks until the next event is allowed. Returns at once when disabled.
func (m *MaybeThrottler) Wait(ctx context.Context) error {
	if !m.Enabled() {
		return ctx.Err()
	}
	return m.t.Wait(ctx)
}
