// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"testing"
	"time"
)

func TestStatIsExpired(t *testing.T) {
	t.Parallel()

	fetched := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stat := Stat{LastFetched: fetched, TTL: time.Hour}

	tests := []struct {
		name string
		ttl  time.Duration
		now  time.Time
		want bool
	}{
		{"negative ttl never expires", NoExpiry, fetched.Add(1000 * time.Hour), false},
		{"before ttl", time.Hour, fetched.Add(59 * time.Minute), false},
		{"exactly at ttl", time.Hour, fetched.Add(time.Hour), true},
		{"after ttl", time.Hour, fetched.Add(2 * time.Hour), true},
		{"zero ttl", 0, fetched, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := stat.IsExpired(tt.ttl, tt.now); got != tt.want {
				t.Errorf("IsExpired(%v, %v) = %v, want %v", tt.ttl, tt.now, got, tt.want)
			}
		})
	}
}

func TestStatExpiryTime(t *testing.T) {
	t.Parallel()

	fetched := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := (Stat{LastFetched: fetched, TTL: time.Hour}).ExpiryTime(); !got.Equal(fetched.Add(time.Hour)) {
		t.Errorf("ExpiryTime = %v", got)
	}
	if got := (Stat{LastFetched: fetched, TTL: NoExpiry}).ExpiryTime(); got.Year() != 9999 {
		t.Errorf("ExpiryTime without TTL = %v, want far future", got)
	}
}

func TestNewStatDefaults(t *testing.T) {
	t.Parallel()

	stat := NewStat("", time.Time{})
	if stat.ContentType != DefaultContentType {
		t.Errorf("content type = %q", stat.ContentType)
	}
	if stat.LastModified.IsZero() || stat.LastFetched.IsZero() {
		t.Error("timestamps should default to now")
	}
	if stat.TTL != NoExpiry {
		t.Errorf("TTL = %v, want NoExpiry", stat.TTL)
	}
}

func TestNewObjectSetsSize(t *testing.T) {
	t.Parallel()

	obj := NewObject(Stat{Size: 99}, []byte("abc"))
	if obj.Size != 3 {
		t.Errorf("size = %d, want 3", obj.Size)
	}
}

func TestMTimeRoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, 5, 6, 7, 8, 9, 123456000, time.FixedZone("CEST", 2*3600))
	parsed := ParseMTime(FormatMTime(ts), time.Time{})
	if !parsed.Equal(ts) {
		t.Errorf("round trip = %v, want %v", parsed, ts)
	}
}

func TestParseMTime(t *testing.T) {
	t.Parallel()

	fallback := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2023-01-02T03:04:05+00:00", time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"2023-01-02T03:04:05.5Z", time.Date(2023, 1, 2, 3, 4, 5, 500000000, time.UTC)},
		{"2023-01-02T03:04:05", time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"", fallback},
		{"yesterday", fallback},
	}
	for _, tt := range tests {
		if got := ParseMTime(tt.input, fallback); !got.Equal(tt.want) {
			t.Errorf("ParseMTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMediaType(t *testing.T) {
	t.Parallel()

	if got := (Stat{ContentType: "Text/XML; charset=utf-8"}).MediaType(); got != "text/xml" {
		t.Errorf("MediaType = %q", got)
	}
}
