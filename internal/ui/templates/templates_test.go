package templates

import (
	"context"
	"strings"
	"testing"

	"superstore-analytics/internal/reports"
)

func TestDashboard(t *testing.T) {
	view := DashboardView{
		Title:    "Superstore Analytics",
		Subtitle: "Sales & profit",
		Facts:    []Fact{{Label: "Orders", Value: "5,009"}},
		Reports:  reports.Catalog(),
	}

	html, err := Render(context.Background(), Dashboard(view))
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"<!doctype html>",
		"<title>Superstore Analytics</title>",
		"Sales &amp; profit",
		"<dd>5,009</dd>",
		`id="report-sales-by-region"`,
		`data-on-load="@get(&#39;/sse/reports/monthly-sales-change&#39;)"`,
		`@get('/sse/refresh-all')`,
		`<span class="number">14</span>Year-over-Year Sales Growth`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if got := strings.Count(html, `<section class="report"`); got != len(reports.Catalog()) {
		t.Errorf("sections = %d, want %d", got, len(reports.Catalog()))
	}
}

func TestReportTable(t *testing.T) {
	table := reports.Table{
		Name:    "sales-by-region",
		Columns: []reports.Column{{Key: "region", Label: "Region", Align: "left"}, {Key: "total_sales", Label: "Total Sales", Align: "right"}},
		Rows:    [][]string{{"West", "$200.00"}, {"<East>", "$150.00"}},
	}

	html, err := Render(context.Background(), ReportTable(table))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(html, `<div id="report-sales-by-region">`) {
		t.Errorf("unexpected wrapper: %q", html)
	}
	for _, want := range []string{`<th class="right">Total Sales</th>`, `<td class="left">West</td>`, `<td class="right">$200.00</td>`, "&lt;East&gt;"} {
		if !strings.Contains(html, want) {
			t.Errorf("table missing %q", want)
		}
	}
	if strings.Count(html, "<tr>") != 3 {
		t.Errorf("rows = %d, want header + 2", strings.Count(html, "<tr>"))
	}
}

func TestReportTable_Empty(t *testing.T) {
	html, err := Render(context.Background(), ReportTable(reports.Table{Name: "profitable-categories"}))
	if err != nil {
		t.Fatal(err)
	}
	if html != `<div id="report-profitable-categories"><p class="empty">No rows</p></div>` {
		t.Errorf("html = %q", html)
	}
}

func TestDashboard_EscapesViewText(t *testing.T) {
	view := DashboardView{
		Title:    `<script>alert("x")</script>`,
		Subtitle: "a < b",
		Facts:    []Fact{{Label: "<b>", Value: "\"quoted\""}},
	}

	html, err := Render(context.Background(), Dashboard(view))
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(html, "<script>alert") || strings.Contains(html, "<b>") {
		t.Errorf("unescaped view text in %q", html)
	}
	for _, want := range []string{
		"<title>&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</title>",
		`<p class="subtitle">a &lt; b</p>`,
		"<dt>&lt;b&gt;</dt><dd>&#34;quoted&#34;</dd>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(html, "<main class=\"reports\"><section") {
		t.Error("sections rendered without reports")
	}
}

func TestReportTable_ExtraCellsAlignLeft(t *testing.T) {
	table := reports.Table{
		Name:    "x",
		Columns: []reports.Column{{Key: "a", Label: "A", Align: "right"}},
		Rows:    [][]string{{"1", "extra"}},
	}

	html, err := Render(context.Background(), ReportTable(table))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `<td class="right">1</td><td class="left">extra</td>`) {
		t.Errorf("html = %q", html)
	}
}
