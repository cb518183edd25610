// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// badgerRecord is the persisted form of an object in badger.
type badgerRecord struct {
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
	LastFetched  time.Time `json:"last_fetched"`
	Data         []byte    `json:"data"`
}

// BadgerStore keeps objects in an embedded badger database. Entries carry
// no native TTL so stale objects remain available as a fallback.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

// NewBadgerStore opens badger:///path/to/dir. An optional ?prefix= namespaces keys.
func NewBadgerStore(raw string) (*BadgerStore, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse badger URL: %w", err)
	}
	if u.Path == "" {
		return nil, fmt.Errorf("the URL %q must contain a path", raw)
	}

	opts := badger.DefaultOptions(u.Path)
	opts.SyncWrites = false

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", u.Path, err)
	}
	return &BadgerStore{db: db, prefix: u.Query().Get("prefix")}, nil
}

// NewBadgerStoreFromDB wraps an already opened database.
func NewBadgerStoreFromDB(db *badger.DB, prefix string) *BadgerStore {
	return &BadgerStore{db: db, prefix: prefix}
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) key(name string) []byte {
	return []byte(s.prefix + name)
}

func (s *BadgerStore) load(name string) (*badgerRecord, error) {
	var rec badgerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, NotFound(name, "")
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", name, err)
	}
	return &rec, nil
}

func (r *badgerRecord) stat() Stat {
	return Stat{
		ContentType:  r.ContentType,
		LastModified: r.LastModified,
		LastFetched:  r.LastFetched,
		TTL:          NoExpiry,
		Size:         int64(len(r.Data)),
	}
}

// Stat implements Store.
func (s *BadgerStore) Stat(_ context.Context, name string) (Stat, error) {
	rec, err := s.load(name)
	if err != nil {
		return Stat{}, err
	}
	return rec.stat(), nil
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, name string) (*Object, error) {
	rec, err := s.load(name)
	if err != nil {
		return nil, err
	}
	return NewObject(rec.stat(), rec.Data), nil
}

// Put implements Store.
func (s *BadgerStore) Put(_ context.Context, name string, obj *Object) error {
	contentType := obj.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	val, err := json.Marshal(badgerRecord{
		ContentType:  contentType,
		LastModified: obj.LastModified,
		LastFetched:  obj.LastFetched,
		Data:         obj.Data,
	})
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(name), val)
	}); err != nil {
		return fmt.Errorf("badger put %s: %w", name, err)
	}
	return nil
}
