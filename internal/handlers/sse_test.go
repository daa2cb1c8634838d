package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"superstore-analytics/internal/format"
	"superstore-analytics/internal/models"
	"superstore-analytics/internal/reports"
	"superstore-analytics/internal/services"
)

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()
	handlers := NewSSEHandlers(analytics, format.Default(), logger)

	if handlers.analytics != analytics {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestSSEHandlers_renderReport(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), format.Default(), testLogger())
	report, _ := reports.Lookup("sales-by-region")

	html, err := handlers.renderReport(context.Background(), report, maxTableRows)
	if err != nil {
		t.Fatalf("renderReport() failed: %v", err)
	}

	expected := []string{
		`<div id="report-sales-by-region">`,
		`<table class="report-table">`,
		"<th class=\"left\">Region</th>",
		"<th class=\"right\">Total Sales</th>",
		"West",
		"$200.00",
		"East",
		"$150.00",
	}
	for _, content := range expected {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_renderReport_LargeDataset(t *testing.T) {
	a := services.NewAnalytics(testLogger())
	orders := make([]models.Order, 75)
	for i := range orders {
		orders[i] = models.Order{
			OrderID: "CA-1", CustomerID: "C1", Region: "West", Category: "Technology", SubCategory: "Phones",
			ProductName: "Phone", OrderDate: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), Sales: float64(i + 1), Quantity: 1,
		}
	}
	a.SetData(orders)
	handlers := NewSSEHandlers(a, format.Default(), testLogger())
	report, _ := reports.Lookup("orders-with-region-total")

	html, err := handlers.renderReport(context.Background(), report, maxTableRows)
	if err != nil {
		t.Fatal(err)
	}

	rowCount := strings.Count(html, "<tr>") - 1
	if rowCount != maxTableRows {
		t.Errorf("expected %d rows, got %d", maxTableRows, rowCount)
	}
}

func TestSSEHandlers_HandleReport(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), format.Default(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleReport(w, reportRequest("/sse/reports/margin-by-category", "margin-by-category"))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}

	body := w.Body.String()
	for _, want := range []string{"event: datastar-patch-elements", "report-margin-by-category", "10.00%"} {
		if !strings.Contains(body, want) {
			t.Errorf("response should contain %q:\n%s", want, body)
		}
	}
}

func TestSSEHandlers_HandleReport_Errors(t *testing.T) {
	tests := []struct {
		name      string
		analytics *services.Analytics
		report    string
		status    int
	}{
		{"unknown report", createTestAnalytics(), "nope", http.StatusNotFound},
		{"not loaded", services.NewAnalytics(testLogger()), "sales-by-region", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := NewSSEHandlers(tt.analytics, format.Default(), testLogger())
			w := httptest.NewRecorder()
			handlers.HandleReport(w, reportRequest("/sse/reports/"+tt.report, tt.report))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %q, want application/json", ct)
			}
		})
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), format.Default(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleRefreshAll(w, httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	if got := strings.Count(body, "event: datastar-patch-elements"); got != len(reports.Catalog()) {
		t.Errorf("element patches = %d, want %d", got, len(reports.Catalog()))
	}
	for _, r := range reports.Catalog() {
		if !strings.Contains(body, `id="report-`+r.Name+`"`) {
			t.Errorf("missing patch for %s", r.Name)
		}
	}
	for _, signal := range []string{"event: datastar-patch-signals", "catalog", "summary"} {
		if !strings.Contains(body, signal) {
			t.Errorf("response should contain %q", signal)
		}
	}
}

func TestSSEHandlers_HandleRefreshAll_NotLoaded(t *testing.T) {
	handlers := NewSSEHandlers(services.NewAnalytics(testLogger()), format.Default(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleRefreshAll(w, httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestSSEHandlers_HeaderConsistency(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(), format.Default(), testLogger())

	for _, r := range reports.Catalog() {
		t.Run(r.Name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handlers.HandleReport(w, reportRequest("/sse/reports/"+r.Name, r.Name))

			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
				t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
			}
			body := w.Body.String()
			if !strings.Contains(body, "event:") || !strings.Contains(body, "data:") {
				t.Error("response should contain SSE event format")
			}
		})
	}
}
