// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"
	"time"

	"github.com/tomtom215/amc2/internal/metrics"
)

// Instrumented records Prometheus metrics for every operation of a store.
type Instrumented struct {
	name  string
	store Store
}

// Instrument wraps store so its operations are counted under name.
func Instrument(name string, store Store) *Instrumented {
	return &Instrumented{name: name, store: store}
}

// Unwrap returns the wrapped store.
func (s *Instrumented) Unwrap() Store {
	return s.store
}

// Stat implements Store.
func (s *Instrumented) Stat(ctx context.Context, name string) (Stat, error) {
	start := time.Now()
	stat, err := s.store.Stat(ctx, name)
	s.record("stat", start, err)
	return stat, err
}

// Get implements Store.
func (s *Instrumented) Get(ctx context.Context, name string) (*Object, error) {
	start := time.Now()
	obj, err := s.store.Get(ctx, name)
	s.record("get", start, err)
	return obj, err
}

// Put implements Store.
func (s *Instrumented) Put(ctx context.Context, name string, obj *Object) error {
	start := time.Now()
	err := s.store.Put(ctx, name, obj)
	s.record("put", start, err)
	return err
}

func (s *Instrumented) record(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case err == nil:
	case IsNotFound(err):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.RecordObjectStoreOp(s.name, op, result, time.Since(start))
}
