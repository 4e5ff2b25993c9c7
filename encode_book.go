package tradebook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// tradeCmd is the JSON form of a trade: the price is split in amount and currency.
type tradeCmd struct {
	ID       string          `json:"id"`
	Date     date.Date       `json:"date"`
	Side     Side            `json:"side"`
	Ticker   string          `json:"ticker"`
	Quantity Quantity        `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Note     string          `json:"note"`
}

func (c tradeCmd) Trade() Trade {
	cur := c.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	return Trade{
		ID:       c.ID,
		Date:     c.Date,
		Side:     c.Side,
		Ticker:   c.Ticker,
		Quantity: c.Quantity,
		Price:    M(c.Price, cur),
		Note:     c.Note,
	}
}

// MarshalJSON writes the trade fields in a fixed order.
func (t Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID).
		Append("date", t.Date).
		Append("side", t.Side).
		Append("ticker", t.Ticker).
		Append("quantity", t.Quantity).
		Append("price", t.Price.Decimal()).
		Append("currency", t.Price.Currency()).
		Optional("note", t.Note)
	return w.MarshalJSON()
}

func (t *Trade) UnmarshalJSON(data []byte) error {
	var c tradeCmd
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*t = c.Trade()
	return nil
}

// DecodeBook decodes trades from a stream of JSONL data, one trade per line.
//
// Empty lines are skipped. Decoding stops at the first malformed or invalid trade.
func DecodeBook(r io.Reader) (*Book, error) {
	book := NewBook()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var t Trade
		if err := json.Unmarshal(lineBytes, &t); err != nil {
			return nil, fmt.Errorf("line %d: could not decode trade %q: %w", line, string(lineBytes), err)
		}
		if _, err := book.Add(t); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}
	return book, nil
}

// EncodeTrade writes t as a single JSON line.
func EncodeTrade(w io.Writer, t Trade) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal trade %s: %w", t.ID, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write trade: %w", err)
	}
	return nil
}

// EncodeBook persists the book to w in JSONL format, in chronological order.
func EncodeBook(w io.Writer, book *Book) error {
	for _, t := range book.trades {
		if err := EncodeTrade(w, t); err != nil {
			return err
		}
	}
	return nil
}
