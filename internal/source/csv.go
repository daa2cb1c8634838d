package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"superstore-analytics/internal/models"
)

const (
	batchSize  = 5000
	maxWorkers = 8
)

// Normalized header names. Headers are matched case-insensitively with
// spaces and hyphens read as underscores, so "Sub-Category" is sub_category.
const (
	colOrderID     = "order_id"
	colCustomerID  = "customer_id"
	colOrderDate   = "order_date"
	colRegion      = "region"
	colCategory    = "category"
	colSubCategory = "sub_category"
	colProductName = "product_name"
	colSales       = "sales"
	colProfit      = "profit"
	colDiscount    = "discount"
	colQuantity    = "quantity"
)

var requiredColumns = []string{
	colOrderID, colCustomerID, colOrderDate, colRegion, colCategory, colSubCategory,
	colProductName, colSales, colProfit, colDiscount, colQuantity,
}

var dateLayouts = []string{"2006-01-02", "1/2/2006", "1/2/06", "2006/01/02"}

// CSVSource reads a delimited Superstore export.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string { return "csv:" + s.Path }

// ModTime reports when the file last changed.
func (s *CSVSource) ModTime() (time.Time, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (s *CSVSource) Load(ctx context.Context) ([]models.Order, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return ReadCSV(ctx, file)
}

type csvLine struct {
	num    int
	fields []string
}

// ReadCSV parses a Superstore CSV stream. Extra columns are ignored; every
// required column must be present in the header. A header without data rows
// is an empty dataset, not an error.
func ReadCSV(ctx context.Context, r io.Reader) ([]models.Order, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var lines []csvLine
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		num, _ := reader.FieldPos(0)
		lines = append(lines, csvLine{num: num, fields: record})
	}
	if len(lines) == 0 {
		return []models.Order{}, nil
	}

	orders := make([]models.Order, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(lines); start += batchSize {
		end := min(start+batchSize, len(lines))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				o, err := parseLine(lines[i], cols)
				if err != nil {
					return err
				}
				orders[i] = o
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return orders, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "-", "_")
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, &LoadError{Line: 1, Column: c, Err: ErrMissingColumn}
		}
	}
	return cols, nil
}

func parseLine(l csvLine, cols map[string]int) (models.Order, error) {
	field := func(c string) string {
		return strings.TrimSpace(l.fields[cols[c]])
	}

	date, err := parseDate(field(colOrderDate))
	if err != nil {
		return models.Order{}, invalid(l.num, colOrderDate, "%v", err)
	}
	sales, err := parseAmount(field(colSales))
	if err != nil {
		return models.Order{}, invalid(l.num, colSales, "%v", err)
	}
	profit, err := parseAmount(field(colProfit))
	if err != nil {
		return models.Order{}, invalid(l.num, colProfit, "%v", err)
	}
	discount, err := parseAmount(field(colDiscount))
	if err != nil {
		return models.Order{}, invalid(l.num, colDiscount, "%v", err)
	}
	quantity, err := strconv.Atoi(field(colQuantity))
	if err != nil {
		return models.Order{}, invalid(l.num, colQuantity, "%v", err)
	}

	o := models.Order{
		OrderID:     field(colOrderID),
		CustomerID:  field(colCustomerID),
		OrderDate:   date,
		Region:      field(colRegion),
		Category:    field(colCategory),
		SubCategory: field(colSubCategory),
		ProductName: field(colProductName),
		Sales:       sales,
		Profit:      profit,
		Discount:    discount,
		Quantity:    quantity,
	}
	if err := validate(o, l.num); err != nil {
		return models.Order{}, err
	}
	return o, nil
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}

// parseAmount reads a plain decimal number. Currency symbols, grouping
// separators, NaN and infinities are rejected.
func parseAmount(v string) (float64, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0, fmt.Errorf("not a number %q", v)
	}
	return d.InexactFloat64(), nil
}
