package tradebook

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/etnz/tradebook/date"
)

// ErrTradeNotFound is returned when a trade ID is not in the book.
var ErrTradeNotFound = errors.New("trade not found")

// Book is the set of recorded trades.
//
// In a Book trades are always in chronological order, trades on the same day
// keep their insertion order. A Book is not safe for concurrent mutation.
type Book struct {
	trades []Trade
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{trades: make([]Trade, 0)}
}

// Len returns the number of trades.
func (b *Book) Len() int { return len(b.trades) }

// Add validates t and appends it to the book.
//
// A trade without ID receives a fresh one. Nothing is added if t is invalid or its
// ID is already used. The recorded trade is returned.
func (b *Book) Add(t Trade) (Trade, error) {
	if t.ID == "" {
		t.ID = NewID()
	}
	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	if b.index(t.ID) >= 0 {
		return Trade{}, fmt.Errorf("trade %s already exists", t.ID)
	}
	b.trades = append(b.trades, t)
	b.stableSort()
	return t, nil
}

// Replace replaces the trade id with t, keeping the identity.
//
// The book is left unchanged if t is invalid.
func (b *Book) Replace(id string, t Trade) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("cannot replace %s: %w", id, ErrTradeNotFound)
	}
	t.ID = id
	if err := t.Validate(); err != nil {
		return err
	}
	b.trades[i] = t
	b.stableSort()
	return nil
}

// Remove deletes the trade id.
func (b *Book) Remove(id string) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("cannot remove %s: %w", id, ErrTradeNotFound)
	}
	b.trades = slices.Delete(b.trades, i, i+1)
	return nil
}

// Import appends trades in bulk.
//
// Invalid trades are reported, not added, and do not prevent the valid ones from being
// added. It returns the number of trades added and the joined errors.
func (b *Book) Import(trades []Trade) (int, error) {
	var errs error
	n := 0
	for i, t := range trades {
		if t.ID == "" {
			t.ID = NewID()
		}
		if err := validateAt(i, t); err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if b.index(t.ID) >= 0 {
			errs = errors.Join(errs, &ValidationError{ID: t.ID, Index: i, Field: "id", Reason: "duplicate trade id"})
			continue
		}
		b.trades = append(b.trades, t)
		n++
	}
	b.stableSort()
	return n, errs
}

// Get returns the trade id.
func (b *Book) Get(id string) (Trade, error) {
	i := b.index(id)
	if i < 0 {
		return Trade{}, fmt.Errorf("cannot get %s: %w", id, ErrTradeNotFound)
	}
	return b.trades[i], nil
}

// Trades returns a copy of the trades in chronological order.
func (b *Book) Trades() []Trade { return slices.Clone(b.trades) }

// Select returns an iterator over trades accepted by all the filters, in chronological order.
func (b *Book) Select(filters ...func(Trade) bool) iter.Seq2[int, Trade] {
	return func(yield func(int, Trade) bool) {
		for i, t := range b.trades {
			if !accept(t, filters) {
				continue
			}
			if !yield(i, t) {
				return
			}
		}
	}
}

func accept(t Trade, filters []func(Trade) bool) bool {
	for _, f := range filters {
		if !f(t) {
			return false
		}
	}
	return true
}

// ByTicker selects trades on ticker.
func ByTicker(ticker string) func(Trade) bool {
	return func(t Trade) bool { return t.Ticker == ticker }
}

// During selects trades within r.
func During(r date.Range) func(Trade) bool {
	return func(t Trade) bool { return r.Contains(t.Date) }
}

// Tickers returns the tickers traded, in order of first appearance.
func (b *Book) Tickers() []string {
	var tickers []string
	for _, t := range b.trades {
		if !slices.Contains(tickers, t.Ticker) {
			tickers = append(tickers, t.Ticker)
		}
	}
	return tickers
}

func (b *Book) index(id string) int {
	return slices.IndexFunc(b.trades, func(t Trade) bool { return t.ID == id })
}

// stableSort sorts the book by trade date. Trades on the same day maintain
// their relative order.
func (b *Book) stableSort() {
	slices.SortStableFunc(b.trades, func(x, y Trade) int { return x.Date.Compare(y.Date) })
}
