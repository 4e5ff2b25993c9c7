package tradebook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// this file contains functions to handle broker statements in CSV.
// Importing is tolerant to the many variants found in exports: delimiter, headers, number locale.

// ErrNotATrade reports a CSV row for an operation that is not a trade, such as a deposit or a dividend.
var ErrNotATrade = errors.New("not a trade")

// ImportError locates an error in a CSV document.
type ImportError struct {
	Line int // Line is the 1-based line number, the header being line 1.
	Err  error
}

func (e *ImportError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *ImportError) Unwrap() error { return e.Err }

// column aliases, compared case insensitively.
var csvColumns = map[string][]string{
	"date":     {"Date"},
	"side":     {"Operation", "Type", "Side"},
	"ticker":   {"Ticker"},
	"quantity": {"Qty", "Quantity"},
	"price":    {"Price", "Unit_Price"},
	"note":     {"Note", "Memo", "Company"},
	"id":       {"ID"},
}

// ImportCSV reads trades from a CSV document.
//
// The delimiter is sniffed from the header line: tab, then ';', then ','. The header must
// provide the date, side, ticker, quantity and price columns under one of their aliases.
// Rows that cannot be parsed, and rows that are not trades (wrapping ErrNotATrade), are
// reported as *ImportError and skipped; the remaining trades are returned in file order.
// Trades are not validated, see Book.Import.
func ImportCSV(r io.Reader) ([]Trade, []error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, []error{fmt.Errorf("cannot read CSV: %w", err)}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, []error{errors.New("CSV file is empty")}
	}

	header, _, _ := bytes.Cut(data, []byte("\n"))
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(string(header))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("cannot read CSV header: %w", err)}
	}
	cols, err := mapColumns(headers)
	if err != nil {
		return nil, []error{err}
	}

	var trades []Trade
	var errs []error
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			errs = append(errs, &ImportError{Line: line, Err: err})
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		record = joinOverflow(record, len(headers), cr.Comma)
		if len(record) != len(headers) {
			errs = append(errs, &ImportError{Line: line, Err: fmt.Errorf("expected %d columns, got %d", len(headers), len(record))})
			continue
		}
		t, err := cols.trade(record)
		if err != nil {
			errs = append(errs, &ImportError{Line: line, Err: err})
			continue
		}
		trades = append(trades, t)
	}
	return trades, errs
}

func sniffDelimiter(header string) rune {
	switch {
	case strings.Contains(header, "\t"):
		return '\t'
	case strings.Contains(header, ";"):
		return ';'
	default:
		return ','
	}
}

// joinOverflow rebuilds the last column when a row has more fields than the header.
//
// Statements write amounts like "-1,010.00 MAD" unquoted, using the delimiter as a
// thousands separator in the last column.
func joinOverflow(record []string, n int, comma rune) []string {
	if len(record) <= n || n == 0 {
		return record
	}
	fixed := make([]string, n)
	copy(fixed, record[:n-1])
	fixed[n-1] = strings.Join(record[n-1:], string(comma))
	return fixed
}

// csvLayout maps logical columns to their index in a record, -1 when absent.
type csvLayout map[string]int

func mapColumns(headers []string) (csvLayout, error) {
	layout := make(csvLayout)
	for key, aliases := range csvColumns {
		layout[key] = -1
	search:
		for _, alias := range aliases {
			for i, h := range headers {
				if strings.EqualFold(strings.TrimSpace(h), alias) {
					layout[key] = i
					break search
				}
			}
		}
	}
	var missing []string
	for _, key := range []string{"date", "side", "ticker", "quantity", "price"} {
		if layout[key] < 0 {
			missing = append(missing, csvColumns[key][0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing CSV columns: %s", strings.Join(missing, ", "))
	}
	return layout, nil
}

func (l csvLayout) get(record []string, key string) string {
	if i := l[key]; i >= 0 && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func (l csvLayout) trade(record []string) (Trade, error) {
	op := l.get(record, "side")
	side, err := ParseSide(op)
	if err != nil {
		return Trade{}, fmt.Errorf("operation %q: %w", op, ErrNotATrade)
	}
	day, err := date.Parse(l.get(record, "date"))
	if err != nil {
		return Trade{}, fmt.Errorf("invalid date %q: %w", l.get(record, "date"), err)
	}
	qty, ok := parseNumber(l.get(record, "quantity"))
	if !ok {
		return Trade{}, fmt.Errorf("invalid quantity %q", l.get(record, "quantity"))
	}
	price, ok := parseNumber(l.get(record, "price"))
	if !ok {
		return Trade{}, fmt.Errorf("invalid price %q", l.get(record, "price"))
	}
	return Trade{
		ID:       l.get(record, "id"),
		Date:     day,
		Side:     side,
		Ticker:   strings.ToUpper(l.get(record, "ticker")),
		Quantity: Q(qty),
		Price:    M(price, DefaultCurrency),
		Note:     l.get(record, "note"),
	}, nil
}

// parseNumber parses an amount as written in statements: "1.234,56", "1,234.56", "1,000",
// "12,5" or "-1,010.00 MAD". A lone "-" is zero.
func parseNumber(s string) (decimal.Decimal, bool) {
	clean := strings.TrimSpace(s)
	if i := strings.Index(strings.ToUpper(clean), "MAD"); i >= 0 {
		clean = strings.TrimSpace(clean[:i] + clean[i+3:])
	}
	switch clean {
	case "":
		return decimal.Zero, false
	case "-":
		return decimal.Zero, true
	}

	comma, period := strings.LastIndex(clean, ","), strings.LastIndex(clean, ".")
	switch {
	case comma >= 0 && period >= 0 && comma > period:
		// 1.234,56
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case comma >= 0 && period >= 0:
		// 1,234.56
		clean = strings.ReplaceAll(clean, ",", "")
	case strings.Count(clean, ",") == 1:
		// a single comma is a thousands separator when followed by exactly 3 digits.
		before, after, _ := strings.Cut(clean, ",")
		if len(after) == 3 && before != "" && before != "-" {
			clean = before + after
		} else {
			clean = before + "." + after
		}
	case comma >= 0:
		// 1,000,000
		clean = strings.ReplaceAll(clean, ",", "")
	case strings.Count(clean, ".") > 1:
		// 1.000.000
		clean = strings.ReplaceAll(clean, ".", "")
	}
	clean = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, clean)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ExportCSV writes enriched trades as CSV, with the computed amounts.
//
// Net Amount is the signed cash flow, negative for buys. Realized P&L is empty for buys.
// The output can be read back by ImportCSV.
func ExportCSV(w io.Writer, trades []EnrichedTrade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Type", "Ticker", "Qty", "Price", "Fees", "Tax", "Net Amount", "Realized P&L"}); err != nil {
		return err
	}
	amount := func(m Money) string { return m.Round2().Decimal().StringFixed(2) }
	for _, t := range trades {
		realized := ""
		if t.RealizedPnL != nil {
			realized = amount(*t.RealizedPnL)
		}
		record := []string{
			t.Date.String(),
			strings.ToUpper(t.Side.String()),
			t.Ticker,
			t.Quantity.String(),
			t.Price.Decimal().String(),
			amount(t.Fees),
			amount(t.Tax),
			amount(t.CashFlow()),
			realized,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
