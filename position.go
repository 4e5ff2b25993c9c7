package tradebook

import "github.com/shopspring/decimal"

// Position is the running state of one instrument.
//
// It is built by folding the instrument's trades in chronological order and is
// read-only once a Report is returned.
type Position struct {
	Ticker string

	Quantity     Quantity // Quantity held, negative after an oversell.
	AverageCost  Money    // AverageCost is the weighted average cost per share, buy fees included.
	AveragePrice Money    // AveragePrice is the weighted average price per share, fees excluded.
	BookValue    Money    // BookValue is AverageCost × Quantity.
	BreakEven    Money    // BreakEven is the unit sale price recovering AverageCost net of proportional fees.

	Price             Money // Price is the current market price, when Priced.
	Priced            bool  // Priced is false when no price is known for Ticker.
	MarketValue       Money // MarketValue is Price × Quantity for open, priced positions.
	UnrealizedPnL     Money
	UnrealizedPercent Percent // UnrealizedPercent is UnrealizedPnL relative to BookValue.
	Allocation        Percent // Allocation is the share of the portfolio market value.

	RealizedPnL Money // RealizedPnL is the cumulative realized profit, net of fees and tax.
	Fees        Money // Fees is the cumulative transaction fees.
	Taxes       Money // Taxes is the cumulative capital-gains tax.
	Buys, Sells int

	BuyVolume      Quantity
	SellVolume     Quantity
	LastTradePrice Money

	buyGross  Money // running sum of bought quantity × price
	sellGross Money // running sum of sold quantity × price
}

// newPosition returns an empty position for ticker, amounts in currency cur.
func newPosition(ticker, cur string) *Position {
	zero := M(0, cur)
	return &Position{
		Ticker:        ticker,
		AverageCost:   zero,
		AveragePrice:  zero,
		BookValue:     zero,
		BreakEven:     zero,
		Price:         zero,
		MarketValue:   zero,
		UnrealizedPnL: zero,
		RealizedPnL:   zero,
		Fees:          zero,
		Taxes:         zero,
		buyGross:      zero,
		sellGross:     zero,
	}
}

// Open reports whether the position still holds shares.
func (p Position) Open() bool { return p.Quantity.GreaterThan(ClosedEpsilon) }

// Oversold reports whether more shares were sold than bought, usually the
// symptom of an incomplete trade history.
func (p Position) Oversold() bool { return p.Quantity.LessThan(ClosedEpsilon.Neg()) }

// BuyVWAP returns the volume weighted average buy price.
func (p Position) BuyVWAP() Money {
	if p.BuyVolume.IsZero() {
		return M(0, p.buyGross.Currency())
	}
	return p.buyGross.Div(p.BuyVolume)
}

// SellVWAP returns the volume weighted average sell price.
func (p Position) SellVWAP() Money {
	if p.SellVolume.IsZero() {
		return M(0, p.sellGross.Currency())
	}
	return p.sellGross.Div(p.SellVolume)
}

// apply folds t into the position and returns the enriched trade.
//
// Trades must be applied in chronological order: the average cost and the realized
// gains are path dependent.
func (p *Position) apply(s FeeSchedule, t Trade) EnrichedTrade {
	var et EnrichedTrade
	switch t.Side {
	case Buy:
		et = p.buy(s, t)
	case Sell:
		et = p.sell(s, t)
	}
	p.BreakEven = s.BreakEven(p.AverageCost)
	p.LastTradePrice = t.Price
	et.Holding = p.Quantity
	return et
}

func (p *Position) buy(s FeeSchedule, t Trade) EnrichedTrade {
	fee := s.Fee(t.Quantity, t.Price)
	gross := t.Gross()
	acquisition := gross.Add(fee)

	held := p.Quantity
	qty := held.Add(t.Quantity)
	switch {
	case !qty.IsPositive():
		// still short after the buy, there is no basis to average.
		p.AverageCost = M(0, p.AverageCost.Currency())
		p.AveragePrice = M(0, p.AveragePrice.Currency())
	case !held.IsPositive():
		// nothing held (flat or oversold): the basis restarts with this buy.
		p.AverageCost = acquisition.Div(t.Quantity)
		p.AveragePrice = gross.Div(t.Quantity)
	default:
		p.AverageCost = p.AverageCost.Mul(held).Add(acquisition).Div(qty)
		p.AveragePrice = p.AveragePrice.Mul(held).Add(gross).Div(qty)
	}
	p.Quantity = qty
	p.BookValue = p.AverageCost.Mul(qty)

	p.Fees = p.Fees.Add(fee)
	p.Buys++
	p.BuyVolume = p.BuyVolume.Add(t.Quantity)
	p.buyGross = p.buyGross.Add(gross)

	return EnrichedTrade{
		Trade:     t,
		Fees:      fee,
		Tax:       M(0, fee.Currency()),
		NetAmount: acquisition,
	}
}

func (p *Position) sell(s FeeSchedule, t Trade) EnrichedTrade {
	fee := s.Fee(t.Quantity, t.Price)
	gross := t.Gross()
	proceeds := gross.Sub(fee)
	costOfSold := p.AverageCost.Mul(t.Quantity)
	gain := proceeds.Sub(costOfSold)
	tax := s.Tax(gain)
	realized := gain.Sub(tax)

	// the average cost is left untouched, only the quantity shrinks.
	p.Quantity = p.Quantity.Sub(t.Quantity)
	p.BookValue = p.AverageCost.Mul(p.Quantity)

	p.RealizedPnL = p.RealizedPnL.Add(realized)
	p.Taxes = p.Taxes.Add(tax)
	p.Fees = p.Fees.Add(fee)
	p.Sells++
	p.SellVolume = p.SellVolume.Add(t.Quantity)
	p.sellGross = p.sellGross.Add(gross)

	et := EnrichedTrade{
		Trade:       t,
		Fees:        fee,
		Tax:         tax,
		NetAmount:   proceeds,
		GrossGain:   &gain,
		RealizedPnL: &realized,
		Oversold:    p.Oversold(),
	}
	if gain.IsPositive() {
		taxable := gain
		et.TaxableGain = &taxable
	}
	return et
}

// value sets the market related fields from the current price.
//
// Closed and oversold positions have no market value, whatever their price.
func (p *Position) value(price Money, priced bool) {
	zero := M(0, p.AverageCost.Currency())
	p.Priced = priced
	p.Price, p.MarketValue, p.UnrealizedPnL, p.UnrealizedPercent = zero, zero, zero, 0
	if priced {
		p.Price = price
	}
	if !priced || !p.Open() {
		return
	}
	p.MarketValue = price.Mul(p.Quantity)
	p.UnrealizedPnL = p.MarketValue.Sub(p.BookValue)
	if p.BookValue.IsPositive() {
		p.UnrealizedPercent = percentOf(p.UnrealizedPnL.Ratio(p.BookValue))
	}
}

// allocate sets the allocation relative to the total market value.
func (p *Position) allocate(total Money) {
	p.Allocation = 0
	if total.IsPositive() && p.MarketValue.IsPositive() {
		p.Allocation = percentOf(p.MarketValue.Ratio(total))
	}
}

// weight returns the market value share of the position as a ratio.
func (p Position) weight(total Money) decimal.Decimal {
	return p.MarketValue.Ratio(total)
}
