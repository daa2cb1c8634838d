package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"superstore-analytics/internal/config"
	"superstore-analytics/internal/format"
	"superstore-analytics/internal/models"
	"superstore-analytics/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(loaded bool) *Server {
	a := services.NewAnalytics(testLogger())
	if loaded {
		a.SetData([]models.Order{
			{OrderID: "CA-1", CustomerID: "C1", OrderDate: time.Date(2016, 1, 5, 0, 0, 0, 0, time.UTC), Region: "West",
				Category: "Technology", SubCategory: "Phones", ProductName: "Phone", Sales: 200, Profit: 20, Quantity: 1},
		})
	}
	return NewServer(a, format.Default(), testLogger())
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(true)

	tests := []struct {
		method      string
		path        string
		status      int
		contentType string
	}{
		{"GET", "/", http.StatusOK, "text/html"},
		{"GET", "/health", http.StatusOK, "application/json"},
		{"GET", "/admin/stats", http.StatusOK, "application/json"},
		{"GET", "/api/reports", http.StatusOK, "application/json"},
		{"GET", "/api/reports/sales-by-region", http.StatusOK, "application/json"},
		{"GET", "/api/reports/12?format=table", http.StatusOK, "application/json"},
		{"GET", "/api/reports/unknown", http.StatusNotFound, "application/json"},
		{"GET", "/sse/reports/yearly-growth", http.StatusOK, "text/event-stream"},
		{"GET", "/sse/refresh-all", http.StatusOK, "text/event-stream"},
		{"GET", "/nowhere", http.StatusNotFound, "text/plain"},
		{"POST", "/api/reports/1", http.StatusMethodNotAllowed, "text/plain"},
		{"PUT", "/", http.StatusMethodNotAllowed, "text/plain"},
		{"DELETE", "/health", http.StatusMethodNotAllowed, "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}
			if tt.contentType == "application/json" {
				var result any
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Errorf("invalid json: %v", err)
				}
			}
		})
	}
}

func TestServer_NotLoaded(t *testing.T) {
	srv := newTestServer(false)

	for _, path := range []string{"/api/reports/1", "/sse/reports/1", "/sse/refresh-all"} {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200 while loading", w.Code)
	}
}

func serverConfig() config.ServerConfig {
	return config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second, ShutdownTimeout: 2 * time.Second}
}

func TestGracefulServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	httpServer := &http.Server{Handler: newTestServer(true)}
	gs := NewGracefulServer(httpServer, testLogger(), serverConfig())

	var hookRan, backgroundStopped atomic.Bool
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		hookRan.Store(true)
		return nil
	})
	gs.Go(func(ctx context.Context) error {
		<-ctx.Done()
		backgroundStopped.Store(true)
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	if !hookRan.Load() {
		t.Error("shutdown hook did not run")
	}
	if !backgroundStopped.Load() {
		t.Error("background task was not stopped")
	}
}

func TestGracefulServer_HookErrorIsReturned(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	gs := NewGracefulServer(&http.Server{Handler: http.NotFoundHandler()}, testLogger(), serverConfig())
	boom := errors.New("flush failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := gs.Serve(ctx, ln); !errors.Is(err, boom) {
		t.Errorf("Serve() error = %v, want %v", err, boom)
	}
}

func TestGracefulServer_BackgroundFailureStopsServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	gs := NewGracefulServer(&http.Server{Handler: http.NotFoundHandler()}, testLogger(), serverConfig())
	boom := errors.New("reload failed")
	gs.Go(func(ctx context.Context) error { return boom })

	done := make(chan error, 1)
	go func() { done <- gs.Serve(context.Background(), ln) }()

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Errorf("Serve() error = %v, want %v", err, boom)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server kept running after background failure")
	}
}

func TestGracefulServer_ListenError(t *testing.T) {
	gs := NewGracefulServer(&http.Server{Addr: "256.0.0.1:99999"}, testLogger(), serverConfig())
	if err := gs.ListenAndServe(context.Background()); err == nil {
		t.Error("ListenAndServe() should fail on an invalid address")
	}
}
