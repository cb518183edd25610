// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"
	"sync"
)

// MemoryStore keeps objects in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*Object
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]*Object)}
}

// Stat implements Store.
func (s *MemoryStore) Stat(_ context.Context, name string) (Stat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return Stat{}, NotFound(name, "")
	}
	return obj.Stat, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, name string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, NotFound(name, "")
	}
	return NewObject(obj.Stat, append([]byte(nil), obj.Data...)), nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, name string, obj *Object) error {
	stat := obj.Stat
	if stat.ContentType == "" {
		stat.ContentType = DefaultContentType
	}
	stat.TTL = NoExpiry
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = NewObject(stat, append([]byte(nil), obj.Data...))
	return nil
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
