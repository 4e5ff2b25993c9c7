package tradebook

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// Prices maps a ticker to its current unit price.
//
// A missing ticker is unpriced, which is different from a price of zero.
type Prices map[string]Money

// Lookup returns the price of ticker and whether it is known.
func (p Prices) Lookup(ticker string) (Money, bool) {
	price, ok := p[ticker]
	return price, ok
}

// Tickers returns the priced tickers in alphabetical order.
func (p Prices) Tickers() []string {
	return slices.Sorted(maps.Keys(p))
}

// DecodePrices reads a JSON object mapping tickers to prices, in currency cur.
//
//	{"ATW": 512.3, "IAM": 98.9}
func DecodePrices(r io.Reader, cur string) (Prices, error) {
	var doc map[string]decimal.Decimal
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Prices{}, nil
		}
		return nil, fmt.Errorf("cannot decode prices: %w", err)
	}
	prices := make(Prices, len(doc))
	for ticker, v := range doc {
		if v.IsNegative() {
			return nil, fmt.Errorf("price of %q must not be negative, got %s", ticker, v)
		}
		prices[ticker] = M(v, cur)
	}
	return prices, nil
}

// EncodePrices writes prices as a JSON object, one ticker per line.
func EncodePrices(w io.Writer, prices Prices) error {
	var b strings.Builder
	b.WriteString("{\n")
	for i, ticker := range prices.Tickers() {
		key, err := json.Marshal(ticker)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "  %s: %s", key, prices[ticker].Decimal().String())
		if i < len(prices)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// TickerPlaceholder is replaced by the quoted ticker in ExtractPrices expressions.
const TickerPlaceholder = "{ticker}"

// ExtractPrices reads the prices of tickers from a market data document.
//
// expr is a JSONPath expression evaluated once per ticker after replacing
// TickerPlaceholder with the quoted ticker, for instance
//
//	$.data[?(@.symbol == {ticker})].last
//
// A filter expression yields a list, its first element is used. Tickers the document
// does not quote are left out of the result and reported in the error.
func ExtractPrices(r io.Reader, tickers []string, expr, cur string) (Prices, error) {
	var doc any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode market data document: %w", err)
	}

	prices := make(Prices)
	var missing []string
	for _, ticker := range tickers {
		quoted, _ := json.Marshal(ticker)
		path := strings.ReplaceAll(expr, TickerPlaceholder, string(quoted))
		v, err := jsonpath.Get(path, doc)
		if err != nil {
			missing = append(missing, ticker)
			continue
		}
		price, ok := asDecimal(v)
		if !ok || price.IsNegative() {
			missing = append(missing, ticker)
			continue
		}
		prices[ticker] = M(price, cur)
	}
	if len(missing) > 0 {
		return prices, fmt.Errorf("no price found for %s", strings.Join(missing, ", "))
	}
	return prices, nil
}

// asDecimal converts a value extracted from a JSON document to a decimal.
func asDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case []any:
		if len(x) == 0 {
			return decimal.Zero, false
		}
		return asDecimal(x[0])
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		n, ok := parseNumber(x)
		return n, ok
	default:
		return decimal.Zero, false
	}
}
