package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"superstore-analytics/internal/format"
	"superstore-analytics/internal/models"
	"superstore-analytics/internal/reports"
	"superstore-analytics/internal/source"
)

// ErrNotLoaded is returned by report accessors before the first load.
var ErrNotLoaded = errors.New("no order data loaded")

type loadInfo struct {
	source   string
	loadedAt time.Time
	duration time.Duration
	summary  reports.Summary
}

// Analytics holds the current report engine. Reloads build a new engine and
// swap it in, so readers never see a partially loaded dataset.
type Analytics struct {
	engine    atomic.Pointer[reports.Engine]
	info      atomic.Pointer[loadInfo]
	loadCount atomic.Int64
	opts      []reports.Option
	logger    *slog.Logger
}

func NewAnalytics(logger *slog.Logger, opts ...reports.Option) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		opts:   opts,
		logger: logger,
	}
}

// SetData replaces the dataset directly. Used by tests and tools that
// already hold the orders in memory.
func (a *Analytics) SetData(orders []models.Order) {
	a.swap(orders, "memory", time.Now(), 0)
}

// Load reads every order from src and swaps in a new engine. On failure the
// previous engine stays in place.
func (a *Analytics) Load(ctx context.Context, src source.Source) error {
	start := time.Now()
	a.logger.Info("loading orders", "source", src.Name())

	orders, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", src.Name(), err)
	}

	duration := time.Since(start)
	a.swap(orders, src.Name(), start, duration)

	a.logger.Info("orders loaded",
		"source", src.Name(),
		"records", len(orders),
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(len(orders))/max(duration.Seconds(), 1e-9)))
	return nil
}

func (a *Analytics) swap(orders []models.Order, name string, at time.Time, duration time.Duration) {
	engine := reports.New(orders, a.opts...)
	a.info.Store(&loadInfo{
		source:   name,
		loadedAt: at,
		duration: duration,
		summary:  engine.Summary(),
	})
	a.engine.Store(engine)
	a.loadCount.Add(1)
}

// Engine returns the current engine, or nil before the first load.
func (a *Analytics) Engine() *reports.Engine {
	return a.engine.Load()
}

func (a *Analytics) Loaded() bool {
	return a.engine.Load() != nil
}

// Run computes r against the current engine, keeping at most limit rows
// when limit > 0.
func (a *Analytics) Run(r reports.Report, limit int) (any, error) {
	e := a.engine.Load()
	if e == nil {
		return nil, ErrNotLoaded
	}
	return reports.Truncate(r.Run(e), limit), nil
}

// Table computes r and formats it for display.
func (a *Analytics) Table(r reports.Report, f *format.Formatter, limit int) (reports.Table, error) {
	e := a.engine.Load()
	if e == nil {
		return reports.Table{}, ErrNotLoaded
	}
	return reports.RenderTable(e, r, f, limit)
}

// Stats reports what is loaded, for monitoring.
func (a *Analytics) Stats() map[string]any {
	info := a.info.Load()
	if info == nil {
		return map[string]any{"loaded": false}
	}

	stats := map[string]any{
		"loaded":        true,
		"source":        info.source,
		"loaded_at":     info.loadedAt,
		"load_duration": info.duration.String(),
		"loads":         a.loadCount.Load(),
		"record_count":  info.summary.Records,
		"orders":        info.summary.Orders,
		"customers":     info.summary.Customers,
		"total_sales":   info.summary.TotalSales,
		"total_profit":  info.summary.TotalProfit,
	}
	if !info.summary.FirstOrder.IsZero() {
		stats["first_order"] = info.summary.FirstOrder.Format(time.DateOnly)
		stats["last_order"] = info.summary.LastOrder.Format(time.DateOnly)
	}
	return stats
}
