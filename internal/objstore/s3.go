// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 user metadata keys (sent as X-Amz-Meta-*).
const (
	s3MetaLastModified = "Last-Modified"
	s3MetaLastFetched  = "Last-Fetched"
)

// S3Credentials are the static keys used when the URL carries none.
type S3Credentials struct {
	AccessKey string
	SecretKey string
}

// S3Store keeps objects in an S3 compatible bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	prefix string

	// emptyIsAbsent treats zero-size objects as missing
	emptyIsAbsent bool
}

// NewS3Store creates a store from s3://host[:port]/bucket[/prefix] or s3s://
// (TLS). User info in the URL takes precedence over creds.
func NewS3Store(raw string, creds S3Credentials) (*S3Store, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse s3 URL: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "s3" && scheme != "s3s" {
		return nil, fmt.Errorf("not an s3:// URL %q", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in s3 URL %q", raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("missing bucket name in s3 URL %q", raw)
	}

	if u.User != nil {
		creds.AccessKey = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			creds.SecretKey = pw
		}
	}
	var provider *credentials.Credentials
	if creds.AccessKey != "" || creds.SecretKey != "" {
		provider = credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, "")
	} else {
		provider = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	}

	client, err := minio.New(u.Host, &minio.Options{
		Creds:  provider,
		Secure: scheme == "s3s",
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Store{
		client:        client,
		bucket:        parts[0],
		prefix:        strings.Join(parts[1:], "/"),
		emptyIsAbsent: true,
	}, nil
}

// Bucket returns the bucket name.
func (s *S3Store) Bucket() string {
	return s.bucket
}

// Prefix returns the key prefix inside the bucket.
func (s *S3Store) Prefix() string {
	return s.prefix
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Stat implements Store. The timestamps kept in the user metadata take
// precedence over the S3 object timestamps.
func (s *S3Store) Stat(ctx context.Context, name string) (Stat, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err != nil {
		return Stat{}, s.mapError(name, err)
	}
	if s.emptyIsAbsent && info.Size == 0 {
		return Stat{}, NotFound(name, "empty object")
	}

	objMTime := info.LastModified
	if objMTime.IsZero() {
		objMTime = time.Now()
	}
	mtime := ParseMTime(info.Metadata.Get("X-Amz-Meta-"+s3MetaLastModified), objMTime)
	ftime := ParseMTime(info.Metadata.Get("X-Amz-Meta-"+s3MetaLastFetched), mtime)

	contentType := info.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	return Stat{
		ContentType:  contentType,
		LastModified: mtime,
		LastFetched:  ftime,
		TTL:          NoExpiry,
		Size:         info.Size,
	}, nil
}

// Get implements Store.
func (s *S3Store) Get(ctx context.Context, name string) (*Object, error) {
	stat, err := s.Stat(ctx, name)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(name, err)
	}
	return NewObject(stat, data), nil
}

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, name string, obj *Object) error {
	contentType := obj.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(obj.Data), int64(len(obj.Data)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				s3MetaLastModified: FormatMTime(obj.LastModified),
				s3MetaLastFetched:  FormatMTime(obj.LastFetched),
			},
		})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", s.bucket, s.key(name), err)
	}
	return nil
}

func (s *S3Store) mapError(name string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return NotFound(name, "")
	}
	return fmt.Errorf("s3 %s/%s: %w", s.bucket, s.key(name), err)
}
