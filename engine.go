package tradebook

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// highFeeRatio is the fee to gross ratio above which a trade fee is reported as suspicious.
var highFeeRatio = decimal.RequireFromString("0.05")

// Report is the outcome of one accounting pass over a full trade history.
type Report struct {
	Schedule      FeeSchedule
	Positions     []Position      // one per ticker ever traded, open positions first
	Trades        []EnrichedTrade // in chronological order
	Summary       Summary
	Concentration Concentration
}

// Position returns the position of ticker.
func (r *Report) Position(ticker string) (Position, bool) {
	for _, p := range r.Positions {
		if p.Ticker == ticker {
			return p, true
		}
	}
	return Position{}, false
}

// Option configures an accounting pass.
type Option func(*engine)

// WithSchedule sets the fee schedule, DefaultSchedule() otherwise.
func WithSchedule(s FeeSchedule) Option {
	return func(e *engine) { e.schedule = s }
}

// WithLogger sets the logger used to report data quality issues, such as oversells.
func WithLogger(l zerolog.Logger) Option {
	return func(e *engine) { e.log = l }
}

type engine struct {
	schedule FeeSchedule
	log      zerolog.Logger
}

func newEngine(opts []Option) *engine {
	e := &engine{schedule: DefaultSchedule(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute runs the accounting engine over the whole trade history.
//
// Trades may come in any order, they are stably sorted by date before being folded:
// trades on the same day keep their input order. Prices holds the current unit price
// of each ticker, missing tickers are reported unpriced.
//
// Compute is strict: if any trade is invalid, it returns no report and an error joining
// every *ValidationError. The input slice is never modified.
func Compute(trades []Trade, prices Prices, opts ...Option) (*Report, error) {
	e := newEngine(opts)
	var errs error
	for i, t := range trades {
		errs = errors.Join(errs, e.validate(i, t))
	}
	if errs != nil {
		return nil, errs
	}
	return e.run(trades, prices), nil
}

// ComputeLenient is like Compute but skips invalid trades instead of failing.
//
// It always returns a report, built from the valid trades, along with the joined
// validation errors of the skipped ones.
func ComputeLenient(trades []Trade, prices Prices, opts ...Option) (*Report, error) {
	e := newEngine(opts)
	var errs error
	valid := make([]Trade, 0, len(trades))
	for i, t := range trades {
		if err := e.validate(i, t); err != nil {
			errs = errors.Join(errs, err)
			e.log.Warn().Err(err).Msg("skipping invalid trade")
			continue
		}
		valid = append(valid, t)
	}
	return e.run(valid, prices), errs
}

func (e *engine) validate(i int, t Trade) error {
	if err := validateAt(i, t); err != nil {
		return err
	}
	if c := t.Price.Currency(); c != "" && c != e.schedule.Currency {
		return &ValidationError{ID: t.ID, Index: i, Field: "price",
			Reason: fmt.Sprintf("currency %s does not match the market currency %s", c, e.schedule.Currency)}
	}
	return nil
}

func (e *engine) run(trades []Trade, prices Prices) *Report {
	sorted := slices.Clone(trades)
	slices.SortStableFunc(sorted, func(a, b Trade) int { return a.Date.Compare(b.Date) })

	cur := e.schedule.Currency
	index := make(map[string]*Position)
	var tickers []string
	enriched := make([]EnrichedTrade, 0, len(sorted))
	for _, t := range sorted {
		p, ok := index[t.Ticker]
		if !ok {
			p = newPosition(t.Ticker, cur)
			index[t.Ticker] = p
			tickers = append(tickers, t.Ticker)
		}
		et := p.apply(e.schedule, t)
		e.check(et)
		enriched = append(enriched, et)
	}

	positions := make([]Position, 0, len(tickers))
	for _, ticker := range tickers {
		p := index[ticker]
		price, priced := prices.Lookup(ticker)
		p.value(price, priced)
		positions = append(positions, *p)
	}

	summary := summarize(cur, positions, enriched)
	for i := range positions {
		positions[i].allocate(summary.TotalMarketValue)
	}
	slices.SortStableFunc(positions, comparePositions)

	return &Report{
		Schedule:      e.schedule,
		Positions:     positions,
		Trades:        enriched,
		Summary:       summary,
		Concentration: Concentrate(positions),
	}
}

// check logs data quality issues of an enriched trade.
func (e *engine) check(t EnrichedTrade) {
	if t.Oversold {
		e.log.Warn().
			Str("ticker", t.Ticker).
			Str("date", t.Date.String()).
			Str("trade", t.ID).
			Str("quantity", t.Holding.String()).
			Msg("sell exceeds the quantity held, trade history may be incomplete")
	}
	if t.Fees.Decimal().GreaterThan(t.Gross().Decimal().Mul(highFeeRatio)) {
		e.log.Warn().
			Str("ticker", t.Ticker).
			Str("date", t.Date.String()).
			Str("trade", t.ID).
			Str("fees", t.Fees.String()).
			Str("gross", t.Gross().String()).
			Msg("fees exceed 5% of the traded amount")
	}
	e.log.Debug().
		Str("ticker", t.Ticker).
		Str("date", t.Date.String()).
		Str("side", t.Side.String()).
		Str("net", t.NetAmount.String()).
		Str("holding", t.Holding.String()).
		Msg("trade applied")
}

// comparePositions orders open positions by market value, largest first, then closed ones.
func comparePositions(a, b Position) int {
	if a.Open() != b.Open() {
		if a.Open() {
			return -1
		}
		return 1
	}
	if c := b.MarketValue.Decimal().Cmp(a.MarketValue.Decimal()); c != 0 {
		return c
	}
	return cmp.Compare(a.Ticker, b.Ticker)
}
