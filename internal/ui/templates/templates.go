// Package templates holds the dashboard's templ components. The *_templ.go
// files are generated from the .templ sources with `templ generate`.
package templates

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"superstore-analytics/internal/reports"
)

//go:generate templ generate

// Fact is one headline figure shown above the reports.
type Fact struct {
	Label string
	Value string
}

type DashboardView struct {
	Title    string
	Subtitle string
	Facts    []Fact
	Reports  []reports.Report
}

// ReportTargetID is the element id an SSE patch replaces for a report.
func ReportTargetID(name string) string {
	return "report-" + name
}

func loadAction(name string) string {
	return "@get('/sse/reports/" + name + "')"
}

func cellAlign(t reports.Table, i int) string {
	if i < len(t.Columns) {
		return t.Columns[i].Align
	}
	return "left"
}

// Render writes c to a string, for SSE patches.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
