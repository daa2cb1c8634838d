package errors

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"superstore-analytics/internal/observability"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{BadRequest("x"), http.StatusBadRequest},
		{RateLimit("x"), http.StatusTooManyRequests},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable},
		{Internal("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.err.StatusCode != tt.want {
			t.Errorf("%s status = %d, want %d", tt.err.Code, tt.err.StatusCode, tt.want)
		}
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := InternalWrap(cause, "save failed")
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable through errors.Is")
	}
	if err.Error() != "INTERNAL_ERROR: save failed (caused by: disk full)" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/reports/nope", nil)
	req = req.WithContext(observability.WithRequestID(req.Context(), "req-1"))
	w := httptest.NewRecorder()

	WriteError(w, req, discard(), NotFound("report not found").WithDetails("no report named %q", "nope"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string `json:"code"`
			Details   string `json:"details"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Success || body.Error.Code != "NOT_FOUND" || body.Error.RequestID != "req-1" || body.Error.Details != `no report named "nope"` {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteError_PlainErrorIsInternal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	WriteError(w, req, discard(), stderrors.New("secret detail"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != CodeInternal || body.Error.Message != "An unexpected error occurred" {
		t.Errorf("error = %+v", body.Error)
	}
}

func TestWriteSuccessWithHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	if err := WriteSuccessWithHeaders(w, []int{1, 2}, map[string]string{"Cache-Control": "no-store"}); err != nil {
		t.Fatal(err)
	}
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("headers = %v", w.Header())
	}
	if got := w.Body.String(); got != "{\"data\":[1,2],\"success\":true}\n" {
		t.Errorf("body = %q", got)
	}
}
