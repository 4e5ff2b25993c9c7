package tradebook

import (
	"testing"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// MAD is a helper for test to create dirham money from const
func MAD(v float64) Money { return M(v, DefaultCurrency) }

// day is a helper for test to create dates from ISO strings.
func day(s string) date.Date { return date.MustParse(s) }

// buy and sell are helpers to create trades with a fixed ID.
func buy(id, on, ticker string, qty, price float64) Trade {
	return Trade{ID: id, Date: day(on), Side: Buy, Ticker: ticker, Quantity: Q(qty), Price: MAD(price)}
}

func sell(id, on, ticker string, qty, price float64) Trade {
	return Trade{ID: id, Date: day(on), Side: Sell, Ticker: ticker, Quantity: Q(qty), Price: MAD(price)}
}

// checkMoney fails if got is not exactly want.
func checkMoney(t *testing.T, name string, got Money, want string) {
	t.Helper()
	if !got.Decimal().Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", name, got.Decimal(), want)
	}
}

// checkRounded fails if got, rounded to 2 places, is not want.
func checkRounded(t *testing.T, name string, got Money, want string) {
	t.Helper()
	checkMoney(t, name, got.Round2(), want)
}
