// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// listenerServer serves an *http.Server on a listener opened by the test, so
// the address is known before Serve starts.
type listenerServer struct {
	*http.Server
	ln net.Listener
}

func (s *listenerServer) ListenAndServe() error {
	return s.Serve(s.ln)
}

// newTestServer returns an unstarted server with /healthz and a
// /slow route that blocks until release is closed.
func newTestServer(t *testing.T, release <-chan struct{}, inSlow chan<- struct{}) *listenerServer {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		inSlow <- struct{}{}
		<-release
		_, _ = io.WriteString(w, "done")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	return &listenerServer{
		Server: &http.Server{Handler: r, ReadHeaderTimeout: time.Second},
		ln:     ln,
	}
}

func (s *listenerServer) url(path string) string {
	return "http://" + s.ln.Addr().String() + path
}

// waitHealthy polls /healthz until the server answers.
func waitHealthy(t *testing.T, srv *listenerServer) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(srv.url("/healthz"))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("/healthz status = %d", resp.StatusCode)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server never became healthy")
}

func TestNewHTTPServerService_ShutdownTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"configured", 3 * time.Second, 3 * time.Second},
		{"zero uses default", 0, defaultShutdownTimeout},
		{"negative uses default", -time.Second, defaultShutdownTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewHTTPServerService(&http.Server{}, "0.0.0.0:8000", tt.timeout)
			if svc.shutdownTimeout != tt.want {
				t.Errorf("shutdownTimeout = %v, want %v", svc.shutdownTimeout, tt.want)
			}
			if svc.String() != "http-server" {
				t.Errorf("String() = %q", svc.String())
			}
		})
	}
}

func TestHTTPServerService_ServesUntilCanceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	close(release)
	srv := newTestServer(t, release, make(chan struct{}, 1))
	svc := NewHTTPServerService(srv, srv.ln.Addr().String(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	waitHealthy(t, srv)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if _, err := http.Get(srv.url("/healthz")); err == nil {
		t.Error("server still accepting connections after shutdown")
	}
}

func TestHTTPServerService_DrainsInFlightRequests(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	inSlow := make(chan struct{}, 1)
	srv := newTestServer(t, release, inSlow)
	svc := NewHTTPServerService(srv, srv.ln.Addr().String(), 2*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	waitHealthy(t, srv)

	bodyCh := make(chan string, 1)
	go func() {
		resp, err := http.Get(srv.url("/slow"))
		if err != nil {
			bodyCh <- "error: " + err.Error()
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		bodyCh <- string(b)
	}()
	<-inSlow

	cancel()
	time.Sleep(50 * time.Millisecond)
	close(release)

	if body := <-bodyCh; body != "done" {
		t.Errorf("in-flight response = %q, want done", body)
	}
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestHTTPServerService_ShutdownTimeoutExceeded(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)
	inSlow := make(chan struct{}, 1)
	srv := newTestServer(t, release, inSlow)
	svc := NewHTTPServerService(srv, srv.ln.Addr().String(), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	waitHealthy(t, srv)

	go func() {
		if resp, err := http.Get(srv.url("/slow")); err == nil {
			resp.Body.Close()
		}
	}()
	<-inSlow
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() = %v, want shutdown deadline error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not honour the shutdown timeout")
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	t.Parallel()

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()

	server := &http.Server{Addr: taken.Addr().String(), ReadHeaderTimeout: time.Second}
	svc := NewHTTPServerService(server, server.Addr, time.Second)

	err = svc.Serve(context.Background())
	if err == nil {
		t.Fatal("Serve() on a taken address returned nil")
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Errorf("Serve() = %v, want a wrapped listen error", err)
	}
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	close(release)
	srv := newTestServer(t, release, make(chan struct{}, 1))

	sup := suture.New("api-layer", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(NewHTTPServerService(srv, srv.ln.Addr().String(), time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	waitHealthy(t, srv)
	cancel()
	<-errCh

	if _, err := http.Get(srv.url("/healthz")); err == nil {
		t.Error("server still accepting connections after supervisor stop")
	}
}
