package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"superstore-analytics/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerTo_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"}).Info("loaded", "records", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json handler wrote %q: %v", buf.String(), err)
	}
	if entry["msg"] != "loaded" || entry["records"] != 3.0 {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "warn", Format: "text"})
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestNewLoggerTo_TagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"}).With("component", "sse")
	ctx := WithRequestID(context.Background(), "req-42")

	logger.InfoContext(ctx, "patch report", "report", "yearly-growth")
	logger.InfoContext(ctx, "request completed", "request_id", "req-42")
	logger.Info("no request")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["request_id"] != "req-42" || entry["component"] != "sse" || entry["report"] != "yearly-growth" {
		t.Errorf("entry = %v", entry)
	}
	if n := strings.Count(lines[1], `"request_id"`); n != 1 {
		t.Errorf("request_id written %d times: %s", n, lines[1])
	}
	if strings.Contains(lines[2], "request_id") {
		t.Errorf("untagged record got a request id: %s", lines[2])
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID() = %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() on empty context = %q", got)
	}
}

func TestSpan_Nesting(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "http.request")
	_, child := StartSpan(ctx, "report.run")

	if child.TraceID != parent.TraceID {
		t.Errorf("child trace %q, parent trace %q", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent id = %q, want %q", child.ParentID, parent.SpanID)
	}
	if len(parent.SpanID) != 16 || parent.SpanID == child.SpanID {
		t.Errorf("span ids %q %q", parent.SpanID, child.SpanID)
	}
	if GetSpan(ctx) != parent {
		t.Error("GetSpan did not return the started span")
	}
}

func TestSpan_End(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "debug", Format: "json"})

	ctx, span := StartSpan(context.Background(), "report.run")
	span.SetTag("report", "yearly-growth")
	span.SetError(errors.New("boom"))
	span.End(ctx, logger)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["operation"] != "report.run" || entry["report"] != "yearly-growth" || entry["status"] != "ERROR" || entry["error"] != "boom" {
		t.Errorf("entry = %v", entry)
	}
}
