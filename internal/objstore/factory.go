// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"fmt"
	"net/url"
	"strings"
)

// FactoryOptions carries settings that cannot be expressed in a store URL.
type FactoryOptions struct {
	S3 S3Credentials
}

// NewStore creates a store from a URL:
//
//	file:///var/cache/amc2/anidb    files with xattr metadata
//	s3://host:9000/bucket/prefix     S3 bucket (s3s:// for TLS)
//	badger:///var/cache/amc2/kv      embedded badger database
//	redis://host:6379/0              Redis hashes (rediss:// for TLS)
//	memory:                          process memory, lost on restart
//	null:                            discards writes, finds nothing
func NewStore(raw string, opts FactoryOptions) (Store, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse store URL %q: %w", raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		return NewFileStore(raw)
	case "s3", "s3s":
		return NewS3Store(raw, opts.S3)
	case "null":
		return NullStore{}, nil
	case "memory":
		return NewMemoryStore(), nil
	case "badger":
		return NewBadgerStore(raw)
	case "redis", "rediss":
		return NewRedisStore(raw)
	}
	return nil, fmt.Errorf("unknown URL scheme %q", u.Scheme)
}

// cutQueryParam removes key from the URL query and returns its value.
func cutQueryParam(raw, key string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	q := u.Query()
	value := q.Get(key)
	q.Del(key)
	u.RawQuery = q.Encode()
	return u.String(), value, nil
}
