package tradebook

import (
	"fmt"

	"github.com/etnz/tradebook/date"
	"github.com/google/uuid"
)

// Trade is an atomic buy or sell event.
//
// Trades are values: an edit replaces the whole record under the same ID.
type Trade struct {
	ID       string
	Date     date.Date
	Side     Side
	Ticker   string
	Quantity Quantity // Quantity is the number of shares, always positive.
	Price    Money    // Price is the unit price.
	Note     string
}

// NewBuy creates a new Buy trade with a fresh ID.
func NewBuy(day date.Date, ticker string, quantity Quantity, price Money, note string) Trade {
	return Trade{ID: NewID(), Date: day, Side: Buy, Ticker: ticker, Quantity: quantity, Price: price, Note: note}
}

// NewSell creates a new Sell trade with a fresh ID.
func NewSell(day date.Date, ticker string, quantity Quantity, price Money, note string) Trade {
	return Trade{ID: NewID(), Date: day, Side: Sell, Ticker: ticker, Quantity: quantity, Price: price, Note: note}
}

// NewID returns a new random trade identifier.
func NewID() string { return uuid.NewString() }

// Gross returns quantity × price.
func (t Trade) Gross() Money { return t.Price.Mul(t.Quantity) }

func (t Trade) String() string {
	return fmt.Sprintf("%s %s %s %s @ %s", t.Date, t.Side, t.Quantity, t.Ticker, t.Price)
}

// Validate checks that the trade can be processed by the ledger.
//
// It never fixes the trade: a non-positive quantity or price, an unknown side, a missing
// ticker or date are reported as a *ValidationError.
func (t Trade) Validate() error {
	fail := func(field, reason string) error {
		return &ValidationError{ID: t.ID, Index: -1, Field: field, Reason: reason}
	}
	switch {
	case t.Date.IsZero():
		return fail("date", "date is missing")
	case t.Side != Buy && t.Side != Sell:
		return fail("side", fmt.Sprintf("unknown side %d", int(t.Side)))
	case t.Ticker == "":
		return fail("ticker", "ticker is missing")
	case !t.Quantity.IsPositive():
		return fail("quantity", fmt.Sprintf("quantity must be positive, got %s", t.Quantity))
	case !t.Price.IsPositive():
		return fail("price", fmt.Sprintf("price must be positive, got %s", t.Price.Decimal()))
	}
	return nil
}

// ValidationError identifies a trade rejected by Validate.
type ValidationError struct {
	ID     string // ID of the offending trade, may be empty.
	Index  int    // Index in the input list, -1 when unknown.
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	var where string
	switch {
	case e.Index >= 0 && e.ID != "":
		where = fmt.Sprintf("trade #%d (%s)", e.Index, e.ID)
	case e.Index >= 0:
		where = fmt.Sprintf("trade #%d", e.Index)
	case e.ID != "":
		where = fmt.Sprintf("trade %s", e.ID)
	default:
		where = "trade"
	}
	return fmt.Sprintf("invalid %s: %s: %s", where, e.Field, e.Reason)
}

// validateAt validates t and records its index in the error.
func validateAt(i int, t Trade) error {
	err := t.Validate()
	if verr, ok := err.(*ValidationError); ok {
		verr.Index = i
	}
	return err
}
