// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService counts its starts and fails the first maxFails of them.
type mockService struct {
	name       string
	startCount atomic.Int32
	failCount  atomic.Int32
	maxFails   atomic.Int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) setFailCount(n int32) {
	m.maxFails.Store(n)
}

func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	if maxFails := m.maxFails.Load(); maxFails > 0 {
		if m.failCount.Add(1) <= maxFails {
			return errors.New("simulated failure")
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
