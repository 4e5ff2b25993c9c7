package tradebook

import "github.com/shopspring/decimal"

// Summary holds portfolio-wide totals and trading statistics.
//
// Amounts are accumulated exactly and rounded to 2 places once, here.
type Summary struct {
	TotalBuys          Money // TotalBuys is the gross notional bought.
	TotalSells         Money // TotalSells is the gross notional sold.
	NetInvested        Money // NetInvested is the book value of open positions.
	TotalMarketValue   Money
	TotalUnrealizedPnL Money
	TotalFees          Money
	TotalTaxes         Money
	TotalRealizedPnL   Money

	Tickers       int // Tickers is the number of distinct tickers traded.
	Trades        int
	OpenPositions int

	Wins, Losses int
	WinRate      Percent
	AverageWin   Money // AverageWin is the mean realized profit of winning sells.
	AverageLoss  Money // AverageLoss is the mean loss magnitude of losing sells.
	ProfitFactor decimal.Decimal
	KellyPercent Percent // KellyPercent is the Kelly criterion allocation, negative without an edge.
	Expectancy   Money   // Expectancy is the probability weighted result per closed trade.
	FeeDrag      Percent // FeeDrag is TotalFees relative to TotalMarketValue.
}

func summarize(cur string, positions []Position, trades []EnrichedTrade) Summary {
	zero := M(0, cur)
	s := Summary{
		TotalBuys: zero, TotalSells: zero, NetInvested: zero, TotalMarketValue: zero,
		TotalUnrealizedPnL: zero, TotalFees: zero, TotalTaxes: zero, TotalRealizedPnL: zero,
		Tickers: len(positions),
		Trades:  len(trades),
	}

	wins, losses := zero, zero
	for _, t := range trades {
		s.TotalFees = s.TotalFees.Add(t.Fees)
		s.TotalTaxes = s.TotalTaxes.Add(t.Tax)
		switch t.Side {
		case Buy:
			s.TotalBuys = s.TotalBuys.Add(t.Gross())
		case Sell:
			s.TotalSells = s.TotalSells.Add(t.Gross())
			s.TotalRealizedPnL = s.TotalRealizedPnL.Add(*t.RealizedPnL)
			if t.Win() {
				s.Wins++
				wins = wins.Add(*t.RealizedPnL)
			} else {
				// losses are never taxed so the gross and the net loss are the same.
				s.Losses++
				losses = losses.Add(t.GrossGain.Abs())
			}
		}
	}

	for _, p := range positions {
		if !p.Open() {
			continue
		}
		s.OpenPositions++
		s.NetInvested = s.NetInvested.Add(p.BookValue)
		s.TotalMarketValue = s.TotalMarketValue.Add(p.MarketValue)
		s.TotalUnrealizedPnL = s.TotalUnrealizedPnL.Add(p.UnrealizedPnL)
	}

	edge := NewEdge(s.Wins, wins, s.Losses, losses)
	s.WinRate = percentOf(edge.WinRate)
	s.AverageWin = edge.AverageWin.Round2()
	s.AverageLoss = edge.AverageLoss.Round2()
	s.ProfitFactor = edge.ProfitFactor()
	s.KellyPercent = percentOf(edge.Kelly())
	s.Expectancy = edge.Expectancy().Round2()
	s.FeeDrag = percentOf(s.TotalFees.Ratio(s.TotalMarketValue))

	for _, m := range []*Money{&s.TotalBuys, &s.TotalSells, &s.NetInvested, &s.TotalMarketValue,
		&s.TotalUnrealizedPnL, &s.TotalFees, &s.TotalTaxes, &s.TotalRealizedPnL} {
		*m = m.Round2()
	}
	return s
}

// Edge describes the statistical edge of a series of closed trades.
type Edge struct {
	WinRate     decimal.Decimal // WinRate is a ratio in [0, 1].
	AverageWin  Money
	AverageLoss Money // AverageLoss is a positive magnitude.
}

// NewEdge computes the edge from win and loss counts and sums; lossSum is a magnitude.
func NewEdge(wins int, winSum Money, losses int, lossSum Money) Edge {
	e := Edge{
		WinRate:     decimal.Zero,
		AverageWin:  M(0, winSum.Currency()),
		AverageLoss: M(0, lossSum.Currency()),
	}
	if n := wins + losses; n > 0 {
		e.WinRate = decimal.NewFromInt(int64(wins)).Div(decimal.NewFromInt(int64(n)))
	}
	if wins > 0 {
		e.AverageWin = winSum.Div(Q(wins))
	}
	if losses > 0 {
		e.AverageLoss = lossSum.Div(Q(losses))
	}
	return e
}

// ProfitFactor is the average win over the average loss, 0 without losses.
func (e Edge) ProfitFactor() decimal.Decimal {
	if !e.AverageLoss.IsPositive() {
		return decimal.Zero
	}
	return e.AverageWin.Ratio(e.AverageLoss)
}

// Expectancy is winRate × avgWin − (1 − winRate) × avgLoss.
func (e Edge) Expectancy() Money {
	lossRate := decimal.NewFromInt(1).Sub(e.WinRate)
	return e.AverageWin.MulRate(e.WinRate).Sub(e.AverageLoss.MulRate(lossRate))
}

// Kelly returns the Kelly criterion fraction of the edge as a ratio.
func (e Edge) Kelly() decimal.Decimal {
	return Kelly(e.WinRate, e.ProfitFactor())
}

// Kelly returns winRate − (1 − winRate) / profitFactor, or 0 when profitFactor is not positive.
//
// The result is not clamped: a negative value means the strategy has no edge.
func Kelly(winRate, profitFactor decimal.Decimal) decimal.Decimal {
	if !profitFactor.IsPositive() {
		return decimal.Zero
	}
	return winRate.Sub(decimal.NewFromInt(1).Sub(winRate).Div(profitFactor))
}
