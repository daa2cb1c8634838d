package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"superstore-analytics/internal/config"
	"superstore-analytics/internal/format"
	"superstore-analytics/internal/middleware"
	"superstore-analytics/internal/services"
	"superstore-analytics/internal/source"
)

const csvHeader = "Order ID,Order Date,Customer ID,Region,Category,Sub-Category,Product Name,Sales,Quantity,Discount,Profit\n"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "superstore.csv")
	if err := os.WriteFile(path, []byte(csvHeader+body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  100,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	path := writeCSV(t,
		"CA-1,2016-01-05,C1,West,Technology,Phones,Phone,200,1,0,20\n"+
			"CA-2,2016-02-09,C2,East,Furniture,Chairs,Chair,150,2,0.1,5\n"+
			"CA-3,2017-02-10,C2,East,Furniture,Chairs,Chair,300,2,0.1,-15\n")

	analytics := services.NewAnalytics(testLogger())
	if err := load(context.Background(), analytics, source.NewCSVSource(path), time.Second); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	return newHandler(cfg, analytics, format.Default(), middleware.NewRateLimiter(cfg.Security), testLogger())
}

func TestHandler_Routes(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/reports", http.StatusOK, "application/json"},
		{"/api/reports/yearly-growth", http.StatusOK, "application/json"},
		{"/api/reports/8?format=table", http.StatusOK, "application/json"},
		{"/api/reports/nope", http.StatusNotFound, "application/json"},
		{"/api/reports/1?limit=-2", http.StatusBadRequest, "application/json"},
		{"/sse/reports/sales-by-region", http.StatusOK, "text/event-stream"},
		{"/sse/refresh-all", http.StatusOK, "text/event-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("content-type = %q, want %q", ct, tt.contentType)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID")
			}
			if w.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing security headers")
			}
		})
	}
}

func TestHandler_YearlyGrowth(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/yearly-growth", nil))

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Rows []struct {
				Year       int      `json:"year"`
				TotalSales float64  `json:"total_sales"`
				GrowthPct  *float64 `json:"growth_pct"`
			} `json:"rows"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if !response.Success {
		t.Fatal("expected success=true in response")
	}

	rows := response.Data.Rows
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2016 and 2017", rows)
	}
	if rows[0].Year != 2016 || rows[0].GrowthPct != nil {
		t.Errorf("first year = %+v, want nil growth", rows[0])
	}
	if rows[1].GrowthPct == nil || *rows[1].GrowthPct < -14.29 || *rows[1].GrowthPct > -14.28 {
		t.Errorf("2017 growth = %v, want about -14.29", rows[1].GrowthPct)
	}
}

func TestHandler_ErrorEnvelopeCarriesRequestID(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/reports/nope", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var response struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if response.Error.Code != "NOT_FOUND" || response.Error.RequestID != "trace-42" {
		t.Errorf("error = %+v", response.Error)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	for _, tt := range []struct{ method, path string }{
		{"POST", "/api/reports/1"},
		{"PUT", "/"},
		{"DELETE", "/health"},
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tt.method, tt.path, w.Code)
		}
	}
}

func TestLoad_Failure(t *testing.T) {
	analytics := services.NewAnalytics(testLogger())
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	err := load(context.Background(), analytics, source.NewCSVSource(path), time.Second)
	if !errors.Is(err, source.ErrEmptyFile) {
		t.Errorf("load() error = %v, want ErrEmptyFile", err)
	}
	if analytics.Loaded() {
		t.Error("analytics should stay unloaded")
	}
}

func TestReloadLoop(t *testing.T) {
	path := writeCSV(t, "CA-1,2016-01-05,C1,West,Technology,Phones,Phone,200,1,0,20\n")
	analytics := services.NewAnalytics(testLogger())
	src := source.NewCSVSource(path)
	if err := load(context.Background(), analytics, src, time.Second); err != nil {
		t.Fatal(err)
	}

	trigger := make(chan os.Signal)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reloadLoop(ctx, trigger, analytics, src, time.Second, testLogger())
		close(done)
	}()

	if err := os.WriteFile(path, []byte(csvHeader+
		"CA-1,2016-01-05,C1,West,Technology,Phones,Phone,200,1,0,20\n"+
		"CA-2,2016-01-06,C2,East,Technology,Phones,Phone,100,1,0,10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Each send is received only after the previous reload finished.
	for i := 0; i < 3; i++ {
		trigger <- syscall.SIGHUP
	}
	if got := analytics.Engine().Len(); got != 2 {
		t.Fatalf("records after reload = %d, want 2", got)
	}

	// A broken file must not replace the loaded data.
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	trigger <- syscall.SIGHUP
	trigger <- syscall.SIGHUP

	cancel()
	<-done

	if got := analytics.Engine().Len(); got != 2 {
		t.Errorf("records after reloads = %d, want 2", got)
	}
}
