package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"superstore-analytics/internal/config"
	"superstore-analytics/internal/format"
	"superstore-analytics/internal/observability"
	"superstore-analytics/internal/reports"
	"superstore-analytics/internal/services"
	"superstore-analytics/internal/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

type runFlags struct {
	file   string
	format string
	all    bool
	limit  int
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "report",
		Short:        "Run Superstore analytics reports from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newListCommand(), newRunCommand())
	return root
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every report in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, r := range reports.Catalog() {
				fmt.Fprintf(out, "%2d  %-28s %s\n", r.Number, r.Name, r.Title)
			}
			return nil
		},
	}
}

func newRunCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [name|number...]",
		Short: "Compute reports and print them in catalog order",
		Long: `Compute one or more reports against the configured data source.

Reports are selected by name (see "report list") or by catalog number.
With --all every report is computed concurrently. Output is always printed
in catalog order.

Output formats:
  text   aligned, human readable tables
  json   the typed report rows, undefined values as null
  csv    one CSV block per report with formatted cells`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReports(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "CSV file to read (defaults to CSV_FILE)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "Output format: text, json or csv")
	cmd.Flags().BoolVar(&flags.all, "all", false, "Run every report in the catalog")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Keep at most this many rows per report (0 keeps all)")
	return cmd
}

func runReports(cmd *cobra.Command, args []string, flags runFlags) error {
	switch flags.format {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("unknown format %q, must be one of: text, json, csv", flags.format)
	}
	if flags.limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", flags.limit)
	}

	selected, err := selectReports(args, flags.all)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flags.file != "" {
		cfg.Data.CSVFile = flags.file
		cfg.Data.DatabaseURL = ""
	}

	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logger)
	formatter, err := cfg.Formatter()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Data.LoadTimeout)
	defer cancel()

	src, closeSource, err := source.Open(ctx, cfg.Data, logger)
	if err != nil {
		return fmt.Errorf("open data source: %w", err)
	}
	defer closeSource()

	analytics := services.NewAnalytics(logger, cfg.EngineOptions()...)
	if err := analytics.Load(ctx, src); err != nil {
		return err
	}

	results, err := compute(ctx, analytics, selected, flags.limit)
	if err != nil {
		return err
	}
	logger.Debug("reports computed", "count", len(results))

	return write(cmd.OutOrStdout(), flags.format, results, formatter)
}

// selectReports resolves the requested names or numbers, dropping duplicates
// and sorting by catalog number.
func selectReports(args []string, all bool) ([]reports.Report, error) {
	if all {
		return reports.Catalog(), nil
	}
	if len(args) == 0 {
		return nil, errors.New("no report selected: pass a report name or number, or --all")
	}

	seen := make(map[int]bool, len(args))
	var selected []reports.Report
	for _, arg := range args {
		r, ok := reports.Lookup(arg)
		if !ok {
			return nil, fmt.Errorf("unknown report %q", arg)
		}
		if seen[r.Number] {
			continue
		}
		seen[r.Number] = true
		selected = append(selected, r)
	}
	slices.SortFunc(selected, func(a, b reports.Report) int { return a.Number - b.Number })
	return selected, nil
}

type result struct {
	report reports.Report
	rows   any
}

// compute runs the reports concurrently against the loaded engine. Results
// keep the order of rs.
func compute(ctx context.Context, analytics *services.Analytics, rs []reports.Report, limit int) ([]result, error) {
	results := make([]result, len(rs))

	g, ctx := errgroup.WithContext(ctx)
	for i, r := range rs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := analytics.Run(r, limit)
			if err != nil {
				return fmt.Errorf("report %s: %w", r.Name, err)
			}
			results[i] = result{report: r, rows: rows}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func write(w io.Writer, outputFormat string, results []result, f *format.Formatter) error {
	switch outputFormat {
	case "json":
		return writeJSON(w, results)
	case "csv":
		return writeCSV(w, results, f)
	default:
		return writeText(w, results, f)
	}
}

type jsonReport struct {
	Number int    `json:"number"`
	Report string `json:"report"`
	Title  string `json:"title"`
	Rows   any    `json:"rows"`
}

func writeJSON(w io.Writer, results []result) error {
	out := make([]jsonReport, len(results))
	for i, res := range results {
		out[i] = jsonReport{
			Number: res.report.Number,
			Report: res.report.Name,
			Title:  res.report.Title,
			Rows:   res.rows,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeCSV(w io.Writer, results []result, f *format.Formatter) error {
	cw := csv.NewWriter(w)
	for i, res := range results {
		t, err := reports.BuildTable(res.report, res.rows, f)
		if err != nil {
			return err
		}
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		header := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			header[j] = c.Label
		}
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, results []result, f *format.Formatter) error {
	for i, res := range results {
		t, err := reports.BuildTable(res.report, res.rows, f)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := writeTable(w, res.report.Number, t); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, number int, t reports.Table) error {
	widths := make([]int, len(t.Columns))
	for j, c := range t.Columns {
		widths[j] = utf8.RuneCountInString(c.Label)
	}
	for _, row := range t.Rows {
		for j, cell := range row {
			widths[j] = max(widths[j], utf8.RuneCountInString(cell))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n", number, t.Title)

	line := func(cells []string) {
		for j, cell := range cells {
			if j > 0 {
				b.WriteString("  ")
			}
			pad := strings.Repeat(" ", widths[j]-utf8.RuneCountInString(cell))
			if t.Columns[j].Align == "right" {
				b.WriteString(pad + cell)
			} else if j < len(cells)-1 {
				b.WriteString(cell + pad)
			} else {
				b.WriteString(cell)
			}
		}
		b.WriteString("\n")
	}

	header := make([]string, len(t.Columns))
	rule := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		header[j] = c.Label
		rule[j] = strings.Repeat("-", widths[j])
	}
	line(header)
	line(rule)
	for _, row := range t.Rows {
		line(row)
	}
	if len(t.Rows) == 0 {
		b.WriteString("(no rows)\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
