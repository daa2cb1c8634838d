package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"superstore-analytics/internal/errors"
	"superstore-analytics/internal/format"
	"superstore-analytics/internal/reports"
	"superstore-analytics/internal/services"
	"superstore-analytics/internal/ui/templates"
)

// maxTableRows caps every table patched into the dashboard.
const maxTableRows = 50

type SSEHandlers struct {
	analytics *services.Analytics
	formatter *format.Formatter
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, formatter *format.Formatter, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		formatter: formatter,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderReport(ctx context.Context, report reports.Report, limit int) (string, error) {
	ctx, span := startReportSpan(ctx, report)
	defer span.End(ctx, h.logger)

	table, err := h.analytics.Table(report, h.formatter, limit)
	if err != nil {
		span.SetError(err)
		return "", err
	}
	return templates.Render(ctx, templates.ReportTable(table))
}

// HandleReport serves GET /sse/reports/{name}, replacing the report's
// placeholder with its table.
func (h *SSEHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	report, limit, err := resolveReport(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}
	if limit == 0 {
		limit = maxTableRows
	}

	html, err := h.renderReport(r.Context(), report, limit)
	if err != nil {
		errors.WriteError(w, r, h.logger, serviceError(err))
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(html); err != nil {
		h.logger.WarnContext(r.Context(), "patch report", "report", report.Name, "error", err)
	}
}

// HandleRefreshAll re-renders every report and pushes the catalog and
// dataset summary as signals.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	if !h.analytics.Loaded() {
		errors.WriteError(w, r, h.logger, serviceError(services.ErrNotLoaded))
		return
	}

	sse := datastar.NewSSE(w, r)

	for _, report := range reports.Catalog() {
		if r.Context().Err() != nil {
			return
		}
		html, err := h.renderReport(r.Context(), report, maxTableRows)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "render report", "report", report.Name, "error", err)
			continue
		}
		if err := sse.PatchElements(html); err != nil {
			h.logger.WarnContext(r.Context(), "patch report", "report", report.Name, "error", err)
			return
		}
	}

	signals, err := json.Marshal(map[string]any{
		"catalog": reports.Catalog(),
		"summary": h.analytics.Engine().Summary(),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(signals); err != nil {
		h.logger.WarnContext(r.Context(), "patch signals", "error", err)
	}
}
