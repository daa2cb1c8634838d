package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"superstore-analytics/internal/format"
	"superstore-analytics/internal/reports"
	"superstore-analytics/internal/services"
	"superstore-analytics/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	analytics *services.Analytics
	formatter *format.Formatter
	logger    *slog.Logger
}

func NewPageHandlers(analytics *services.Analytics, formatter *format.Formatter, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		analytics: analytics,
		formatter: formatter,
		logger:    logger,
	}
}

func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	view := templates.DashboardView{
		Title:    "Superstore Analytics",
		Subtitle: "Sales, profit and customer reports",
		Facts:    h.facts(),
		Reports:  reports.Catalog(),
	}

	page, err := templates.Render(ctx, templates.Dashboard(view))
	if err != nil {
		h.logger.ErrorContext(ctx, "render dashboard", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(page))
}

func (h *PageHandlers) facts() []templates.Fact {
	e := h.analytics.Engine()
	if e == nil {
		return []templates.Fact{{Label: "Status", Value: "Loading data"}}
	}

	s := e.Summary()
	facts := []templates.Fact{
		{Label: "Order lines", Value: h.formatter.Int(s.Records)},
		{Label: "Orders", Value: h.formatter.Int(s.Orders)},
		{Label: "Customers", Value: h.formatter.Int(s.Customers)},
		{Label: "Total sales", Value: h.formatter.Currency(s.TotalSales)},
		{Label: "Total profit", Value: h.formatter.Currency(s.TotalProfit)},
	}
	if !s.FirstOrder.IsZero() {
		facts = append(facts, templates.Fact{
			Label: "Period",
			Value: s.FirstOrder.Format(time.DateOnly) + " to " + s.LastOrder.Format(time.DateOnly),
		})
	}
	return facts
}
