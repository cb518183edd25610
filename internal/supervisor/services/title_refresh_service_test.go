// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockTitleLoader fails the first failLoads calls.
type mockTitleLoader struct {
	calls     atomic.Int32
	failLoads int32
}

func (m *mockTitleLoader) Load(context.Context) error {
	if n := m.calls.Add(1); n <= m.failLoads {
		return errors.New("titles dump unavailable")
	}
	return nil
}

func (m *mockTitleLoader) ValidUntil() time.Time {
	return time.Now().Add(time.Hour)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTitleRefreshService_Interface(t *testing.T) {
	var _ suture.Service = (*TitleRefreshService)(nil)
}

func TestTitleRefreshService_LoadsOnStart(t *testing.T) {
	t.Parallel()

	loader := &mockTitleLoader{}
	svc := NewTitleRefreshService(loader, time.Hour)

	if err := svc.Ready(context.Background()); !errors.Is(err, ErrTitlesNotLoaded) {
		t.Fatalf("Ready() before start = %v, want ErrTitlesNotLoaded", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return svc.Ready(context.Background()) == nil })
	if got := loader.calls.Load(); got != 1 {
		t.Errorf("Load calls = %d, want 1", got)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestTitleRefreshService_RetriesFailedLoads(t *testing.T) {
	t.Parallel()

	loader := &mockTitleLoader{failLoads: 2}
	svc := NewTitleRefreshService(loader, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Serve(ctx) }()

	waitFor(t, func() bool { return svc.Ready(context.Background()) == nil })
	if got := loader.calls.Load(); got < 3 {
		t.Errorf("Load calls = %d, want at least 3", got)
	}
}

func TestTitleRefreshService_String(t *testing.T) {
	svc := NewTitleRefreshService(&mockTitleLoader{}, time.Minute)
	if svc.String() != "title-refresh" {
		t.Errorf("expected 'title-refresh', got %q", svc.String())
	}
}
