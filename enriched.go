package tradebook

// EnrichedTrade is a Trade annotated with the amounts computed by the ledger.
//
// Optional amounts are nil when they do not apply: RealizedPnL and GrossGain are set
// on sells only, TaxableGain only on sells with a positive gross gain.
type EnrichedTrade struct {
	Trade

	Fees      Money // Fees is the transaction fee, VAT included.
	Tax       Money // Tax is the capital-gains tax withheld.
	NetAmount Money // NetAmount is the cash paid (buy) or received (sell), as a positive amount.

	GrossGain   *Money // GrossGain is the proceeds net of fees minus the cost of the shares sold.
	RealizedPnL *Money // RealizedPnL is GrossGain net of tax.
	TaxableGain *Money

	Holding  Quantity // Holding is the quantity held after the trade.
	Oversold bool     // Oversold is true when the sell took the position below zero.
}

// CashFlow returns the signed cash impact of the trade: negative for buys.
func (t EnrichedTrade) CashFlow() Money {
	if t.Side == Buy {
		return t.NetAmount.Neg()
	}
	return t.NetAmount
}

// Win reports whether the trade is a sell with a positive realized result.
func (t EnrichedTrade) Win() bool {
	return t.RealizedPnL != nil && t.RealizedPnL.IsPositive()
}
