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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/amc2/internal/objstore"
)

// testHTTPConfig disables request spacing but keeps the error cool-down.
func testHTTPConfig(name string) objstore.HTTPConfig {
	return objstore.HTTPConfig{Name: name, UserAgent: UserAgent, ErrorInterval: time.Hour}
}

func TestAnimeStore_Get(t *testing.T) {
	t.Parallel()

	fixture := readFixture(t, "anime-1.xml")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		want := map[string]string{
			"request": "anime", "client": "animemetacache", "clientver": "1", "protover": "1", "aid": "1",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("query %s = %q, want %q", k, q.Get(k), v)
			}
		}
		if ua := r.Header.Get("User-Agent"); ua != UserAgent {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Header().Set("Last-Modified", "Wed, 04 Mar 2026 02:00:00 GMT")
		_, _ = w.Write(fixture)
	}))
	defer server.Close()

	store, err := NewAnimeAPIStore(server.URL+"/httpapi", testHTTPConfig("anidb-api-test"))
	if err != nil {
		t.Fatalf("NewAnimeAPIStore() error = %v", err)
	}

	obj, err := store.Get(context.Background(), "1.xml")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(obj.Data, fixture) {
		t.Error("Get() returned different data")
	}
	if want := time.Date(2026, 3, 4, 2, 0, 0, 0, time.UTC); !obj.LastModified.Equal(want) {
		t.Errorf("LastModified = %v, want %v", obj.LastModified, want)
	}
}

func TestAnimeStore_InvalidName(t *testing.T) {
	t.Parallel()

	store, err := NewAnimeAPIStore("http://127.0.0.1:1/httpapi", testHTTPConfig("anidb-api-invalid"))
	if err != nil {
		t.Fatalf("NewAnimeAPIStore() error = %v", err)
	}
	ctx := context.Background()
	if _, err := store.Get(ctx, "abc.xml"); !objstore.IsNotFound(err) {
		t.Errorf("Get() expected not found, got %v", err)
	}
	if _, err := store.Stat(ctx, "../1.xml"); !objstore.IsNotFound(err) {
		t.Errorf("Stat() expected not found, got %v", err)
	}
}

func TestAnimeStore_StatDoesNotCallAPI(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	store, err := NewAnimeAPIStore(server.URL, testHTTPConfig("anidb-api-stat"))
	if err != nil {
		t.Fatalf("NewAnimeAPIStore() error = %v", err)
	}
	stat, err := store.Stat(context.Background(), "1.xml")
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if stat.ContentType != "text/xml" || stat.TTL != objstore.NoExpiry {
		t.Errorf("Stat() = %+v", stat)
	}
	if calls.Load() != 0 {
		t.Errorf("Stat() made %d requests", calls.Load())
	}
}

func TestAnimeStore_APIErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wantNotFound bool
		wantAPIError bool
		wantCooldown bool
	}{
		{name: "anime not found", body: "<error>Anime not found</error>", wantNotFound: true},
		{name: "banned", body: "<error>Banned</error>", wantNotFound: true, wantCooldown: true},
		{name: "unknown error", body: "<error>client version missing or invalid</error>", wantAPIError: true, wantCooldown: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "text/xml")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			store, err := NewAnimeAPIStore(server.URL, testHTTPConfig("anidb-api-"+tt.name))
			if err != nil {
				t.Fatalf("NewAnimeAPIStore() error = %v", err)
			}
			ctx := context.Background()

			_, err = store.Get(ctx, "1.xml")
			if got := objstore.IsNotFound(err); got != tt.wantNotFound {
				t.Errorf("IsNotFound = %v, want %v (err %v)", got, tt.wantNotFound, err)
			}
			if got := errors.Is(err, ErrAPI); got != tt.wantAPIError {
				t.Errorf("errors.Is(ErrAPI) = %v, want %v (err %v)", got, tt.wantAPIError, err)
			}

			_, err = store.Get(ctx, "2.xml")
			if err == nil {
				t.Fatal("second Get() should fail as well")
			}
			wantCalls := int32(2)
			if tt.wantCooldown {
				wantCalls = 1
			}
			if calls.Load() != wantCalls {
				t.Errorf("upstream calls = %d, want %d", calls.Load(), wantCalls)
			}
		})
	}
}

func TestAnimeStore_PutNotSupported(t *testing.T) {
	t.Parallel()

	store, err := NewAnimeAPIStore("http://127.0.0.1:1", testHTTPConfig("anidb-api-put"))
	if err != nil {
		t.Fatalf("NewAnimeAPIStore() error = %v", err)
	}
	err = store.Put(context.Background(), "1.xml", objstore.NewObject(objstore.NewStat("text/xml", time.Time{}), nil))
	if !errors.Is(err, objstore.ErrWriteNotSupported) {
		t.Errorf("expected ErrWriteNotSupported, got %v", err)
	}
}

func TestImageStore(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/main/440.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg"))
	}))
	defer server.Close()

	store, err := NewImageAPIStore(server.URL+"/images/main", testHTTPConfig("anidb-images-test"))
	if err != nil {
		t.Fatalf("NewImageAPIStore() error = %v", err)
	}
	ctx := context.Background()

	obj, err := store.Get(ctx, "440.jpg")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(obj.Data) != "jpeg" || obj.ContentType != "image/jpeg" {
		t.Errorf("Get() = %q %q", obj.Data, obj.ContentType)
	}
	if _, err := store.Get(ctx, "missing.jpg"); !objstore.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func gzipData(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestTitlesStore_Get(t *testing.T) {
	t.Parallel()

	fixture := readFixture(t, "anime-titles.xml")
	compressed := gzipData(t, fixture)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-gzip")
		_, _ = w.Write(compressed)
	}))
	defer server.Close()

	store := NewTitlesAPIStore(server.URL+"/api/anime-titles.xml.gz", testHTTPConfig("anidb-titles-test"))
	obj, err := store.Get(context.Background(), TitlesName)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(obj.Data, fixture) {
		t.Error("Get() did not decompress the dump")
	}
	if obj.ContentType != "text/xml" {
		t.Errorf("ContentType = %q, want text/xml", obj.ContentType)
	}

	err = store.Put(context.Background(), TitlesName, obj)
	if !errors.Is(err, objstore.ErrWriteNotSupported) {
		t.Errorf("expected ErrWriteNotSupported, got %v", err)
	}
}

func TestGunzip_Plain(t *testing.T) {
	t.Parallel()

	data := []byte("<animetitles/>")
	got, err := gunzip(data)
	if err != nil {
		t.Fatalf("gunzip() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("plain data should pass through, got %q", got)
	}
}

func TestNewTitlesStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"http://anidb.net/api/anime-titles.xml.gz", false},
		{"file:///var/lib/amc2/anime-titles.xml", false},
		{"/var/lib/amc2/anime-titles.xml", false},
		{"s3://host/bucket/titles.xml", true},
		{"relative/titles.xml", true},
	}
	for _, tt := range tests {
		_, err := NewTitlesStore(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewTitlesStore(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
	}
}

func TestNewAnimeStore_Factory(t *testing.T) {
	t.Parallel()

	store, err := NewAnimeStore("http://api.anidb.net:9001/httpapi", objstore.FactoryOptions{})
	if err != nil {
		t.Fatalf("NewAnimeStore(http) error = %v", err)
	}
	if _, ok := store.(*AnimeStore); !ok {
		t.Errorf("expected *AnimeStore, got %T", store)
	}

	store, err = NewAnimeStore("file://"+t.TempDir(), objstore.FactoryOptions{})
	if err != nil {
		t.Fatalf("NewAnimeStore(file) error = %v", err)
	}
	if _, ok := store.(*objstore.FileStore); !ok {
		t.Errorf("expected *objstore.FileStore, got %T", store)
	}

	if _, err := NewImageStore("ftp://example.com/images", objstore.FactoryOptions{}); err == nil {
		t.Error("expected an error for an unknown scheme")
	}
}
