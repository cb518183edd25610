// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Hash fields of a stored object.
const (
	redisFieldContentType  = "content_type"
	redisFieldLastModified = "last_modified"
	redisFieldLastFetched  = "last_fetched"
	redisFieldData         = "data"
)

// RedisStore keeps objects as hashes in Redis so several instances can share
// one cache. Keys carry no native TTL so stale objects remain available as a
// fallback.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects to redis://[user:pass@]host:port/db or rediss://.
// An optional ?prefix= namespaces keys (default "amc2:").
func NewRedisStore(raw string) (*RedisStore, error) {
	// go-redis rejects query options it does not know
	stripped, p, err := cutQueryParam(raw, "prefix")
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts, err := redis.ParseURL(stripped)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	prefix := "amc2:"
	if p != "" {
		prefix = p
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{opts.Addr},
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		TLSConfig:    opts.TLSConfig,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		MaxRetries:   2,
	})
	return &RedisStore{client: client, prefix: prefix}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Stat implements Store.
func (s *RedisStore) Stat(ctx context.Context, name string) (Stat, error) {
	key := s.key(name)
	pipe := s.client.Pipeline()
	fields := pipe.HMGet(ctx, key, redisFieldContentType, redisFieldLastModified, redisFieldLastFetched)
	size := redis.NewIntCmd(ctx, "hstrlen", key, redisFieldData)
	if err := pipe.Process(ctx, size); err != nil {
		return Stat{}, fmt.Errorf("redis stat %s: %w", key, err)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return Stat{}, fmt.Errorf("redis stat %s: %w", key, err)
	}

	vals := fields.Val()
	if len(vals) != 3 || vals[0] == nil {
		return Stat{}, NotFound(name, "")
	}
	return redisStat(asString(vals[0]), asString(vals[1]), asString(vals[2]), size.Val()), nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, name string) (*Object, error) {
	key := s.key(name)
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	contentType, ok := vals[redisFieldContentType]
	if !ok {
		return nil, NotFound(name, "")
	}
	data := []byte(vals[redisFieldData])
	stat := redisStat(contentType, vals[redisFieldLastModified], vals[redisFieldLastFetched], int64(len(data)))
	return NewObject(stat, data), nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, name string, obj *Object) error {
	contentType := obj.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	key := s.key(name)
	err := s.client.HSet(ctx, key,
		redisFieldContentType, contentType,
		redisFieldLastModified, FormatMTime(obj.LastModified),
		redisFieldLastFetched, FormatMTime(obj.LastFetched),
		redisFieldData, obj.Data,
	).Err()
	if err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	return nil
}

func redisStat(contentType, lastModified, lastFetched string, size int64) Stat {
	now := time.Now()
	mtime := ParseMTime(lastModified, now)
	return Stat{
		ContentType:  contentType,
		LastModified: mtime,
		LastFetched:  ParseMTime(lastFetched, mtime),
		TTL:          NoExpiry,
		Size:         size,
	}
}

func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
