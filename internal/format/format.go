// Package format renders report values for display. Computation never goes
// through these strings: reports carry raw float64 values and are formatted
// only at the presentation boundary.
package format

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"superstore-analytics/internal/aggregate"
)

// NotAvailable is shown for undefined values such as a margin over zero
// sales or the growth of the first year.
const NotAvailable = "n/a"

type Formatter struct {
	printer *message.Printer
	symbol  string
}

// New returns a formatter for a BCP 47 locale (e.g. "en-US") and an ISO 4217
// currency code (e.g. "USD").
func New(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}

	p := message.NewPrinter(tag)
	symbol := strings.TrimSpace(p.Sprint(currency.Symbol(unit)))
	if symbol == "" {
		symbol = unit.String() + " "
	}
	return &Formatter{printer: p, symbol: symbol}, nil
}

// Default is the en-US / USD formatter.
func Default() *Formatter {
	f, err := New("en-US", "USD")
	if err != nil {
		panic(err)
	}
	return f
}

// Currency formats an amount with grouping separators, two decimals and the
// currency symbol, e.g. "$1,000,000.00" or "-$12.50".
func (f *Formatter) Currency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	// Round before taking the sign so amounts that display as zero are
	// never shown as "-$0.00".
	v = aggregate.Round2(v)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + f.symbol + f.printer.Sprintf("%.2f", v)
}

// CurrencyPtr formats a nullable amount.
func (f *Formatter) CurrencyPtr(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return f.Currency(*v)
}

// Percent formats a nullable percentage with two decimals, e.g. "42.86%".
func (f *Formatter) Percent(v *float64) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NotAvailable
	}
	return f.printer.Sprintf("%.2f", aggregate.Round2(*v)) + "%"
}

// Decimal formats a plain number with two decimals.
func (f *Formatter) Decimal(v float64) string {
	return f.printer.Sprintf("%.2f", aggregate.Round2(v))
}

// Int formats an integer with grouping separators.
func (f *Formatter) Int(n int) string {
	return f.printer.Sprintf("%d", n)
}
