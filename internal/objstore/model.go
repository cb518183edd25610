// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultContentType is used when a store cannot tell the content type.
const DefaultContentType = "application/octet-stream"

// NoExpiry as TTL means the object never expires. As max age it accepts
// cache entries of any age.
const NoExpiry time.Duration = -1

var (
	// ErrNotFound is returned (wrapped) when an object does not exist or
	// cannot be fetched from an upstream right now.
	ErrNotFound = errors.New("object not found")

	// ErrWriteNotSupported is returned by read-only stores on Put.
	ErrWriteNotSupported = errors.New("write not supported")
)

// NotFound wraps ErrNotFound with the object name and an optional reason.
func NotFound(name, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("%w: %s: %s", ErrNotFound, name, reason)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Stat describes a persisted object.
type Stat struct {
	ContentType  string
	LastModified time.Time
	LastFetched  time.Time

	// TTL is the time after LastFetched at which the object should be
	// refreshed. Negative values never expire.
	TTL time.Duration

	Size int64
}

// NewStat returns a stat fetched now that never expires. A zero lastModified
// defaults to now and an empty content type to DefaultContentType.
func NewStat(contentType string, lastModified time.Time) Stat {
	now := time.Now()
	if contentType == "" {
		contentType = DefaultContentType
	}
	if lastModified.IsZero() {
		lastModified = now
	}
	return Stat{
		ContentType:  contentType,
		LastModified: lastModified,
		LastFetched:  now,
		TTL:          NoExpiry,
	}
}

// IsExpired reports whether the object is older than ttl at now.
// A negative ttl never expires.
func (s Stat) IsExpired(ttl time.Duration, now time.Time) bool {
	if ttl < 0 {
		return false
	}
	return !now.Before(s.LastFetched.Add(ttl))
}

// ExpiryTime returns LastFetched + TTL, or a far future time for negative TTLs.
func (s Stat) ExpiryTime() time.Time {
	if s.TTL < 0 {
		return farFuture
	}
	return s.LastFetched.Add(s.TTL)
}

// MediaType returns the content type without parameters, lower-cased.
func (s Stat) MediaType() string {
	mt, _, _ := strings.Cut(s.ContentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

var farFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Object is a persisted object with its data.
type Object struct {
	Stat
	Data []byte
}

// NewObject returns an object with the given stat and data. Size is taken
// from the data.
func NewObject(stat Stat, data []byte) *Object {
	stat.Size = int64(len(data))
	return &Object{Stat: stat, Data: data}
}

// Store is a flat namespace of objects. Names are store specific, usually
// relative paths like "123.xml" or "en/456.json".
type Store interface {
	// Stat returns the object metadata without the data.
	Stat(ctx context.Context, name string) (Stat, error)

	// Get returns the object with its data.
	Get(ctx context.Context, name string) (*Object, error)

	// Put creates or replaces the object. Read-only stores return ErrWriteNotSupported.
	Put(ctx context.Context, name string, obj *Object) error
}

// ParseMTime parses an ISO-8601 timestamp. Values without a zone are UTC.
// Invalid or empty values yield fallback.
func ParseMTime(value string, fallback time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	for _, layout := range mtimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return fallback
}

var mtimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// FormatMTime formats t as ISO-8601 in UTC.
func FormatMTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
