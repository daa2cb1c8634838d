package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"superstore-analytics/internal/errors"
	"superstore-analytics/internal/format"
	"superstore-analytics/internal/observability"
	"superstore-analytics/internal/reports"
	"superstore-analytics/internal/services"
)

const (
	version = "1.0.0"

	// The catalog is fixed at build time. Report rows change whenever the
	// data is reloaded, so clients must revalidate them.
	catalogCacheControl = "public, max-age=300"
	reportCacheControl  = "no-cache"
)

type APIHandlers struct {
	analytics *services.Analytics
	formatter *format.Formatter
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, formatter *format.Formatter, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		formatter: formatter,
		logger:    logger,
	}
}

// ReportResponse carries the typed rows of one report.
type ReportResponse struct {
	Report reports.Report `json:"report"`
	Rows   any            `json:"rows"`
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.analytics.Loaded() {
		status = "loading"
	}

	errors.WriteSuccess(w, map[string]any{
		"status":      status,
		"data_loaded": h.analytics.Loaded(),
		"timestamp":   time.Now().Format(time.RFC3339),
		"version":     version,
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}

func (h *APIHandlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, reports.Catalog(), map[string]string{"Cache-Control": catalogCacheControl})
}

// HandleReport serves GET /api/reports/{name}. ?format=table returns the
// display table instead of typed rows; ?limit=N keeps the first N rows.
func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	report, limit, err := resolveReport(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}

	view := r.URL.Query().Get("format")
	if view != "" && view != "json" && view != "table" {
		errors.WriteError(w, r, h.logger, errors.BadRequest("invalid format").WithDetails("format must be json or table, got %q", view))
		return
	}

	ctx, span := startReportSpan(r.Context(), report)
	defer span.End(ctx, h.logger)

	var data any
	if view == "table" {
		data, err = h.analytics.Table(report, h.formatter, limit)
	} else {
		var rows any
		rows, err = h.analytics.Run(report, limit)
		data = ReportResponse{Report: report, Rows: rows}
	}
	if err != nil {
		span.SetError(err)
		errors.WriteError(w, r.WithContext(ctx), h.logger, serviceError(err))
		return
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": reportCacheControl})
}

// resolveReport reads the {name} path value and the optional limit.
func resolveReport(r *http.Request) (reports.Report, int, error) {
	name := r.PathValue("name")
	report, ok := reports.Lookup(name)
	if !ok {
		return reports.Report{}, 0, errors.NotFound("report not found").WithDetails("no report named %q", name)
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return reports.Report{}, 0, errors.BadRequest("invalid limit").WithDetails("limit must be a positive integer, got %q", raw)
		}
		limit = n
	}
	return report, limit, nil
}

func serviceError(err error) error {
	if stderrors.Is(err, services.ErrNotLoaded) {
		return errors.ServiceUnavailable("order data is not loaded yet")
	}
	return errors.InternalWrap(err, "failed to compute report")
}

func startReportSpan(ctx context.Context, report reports.Report) (context.Context, *observability.Span) {
	ctx, span := observability.StartSpan(ctx, "report.run")
	span.SetTag("report", report.Name)
	return ctx, span
}
