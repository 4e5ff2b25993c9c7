package tradebook

import (
	"slices"

	"github.com/shopspring/decimal"
)

// RiskTier classifies a concentration index.
type RiskTier int

const (
	LowRisk RiskTier = iota
	ModerateRisk
	HighRisk
)

func (t RiskTier) String() string {
	switch t {
	case LowRisk:
		return "low"
	case ModerateRisk:
		return "moderate"
	case HighRisk:
		return "high"
	default:
		return "unknown"
	}
}

// HHI thresholds, on the 0-10000 scale.
const (
	highConcentration     = 2500
	moderateConcentration = 1500
)

// TierOf returns the risk tier of a Herfindahl-Hirschman index.
func TierOf(hhi int) RiskTier {
	switch {
	case hhi > highConcentration:
		return HighRisk
	case hhi > moderateConcentration:
		return ModerateRisk
	default:
		return LowRisk
	}
}

// Concentration measures how concentrated the open positions are.
type Concentration struct {
	HHI      int // HHI is the Herfindahl-Hirschman index of market value weights, 0 to 10000.
	Tier     RiskTier
	Holdings int // Holdings is the number of positions taken into account.

	TopHolding               Percent // weight of the largest holding
	Top3                     Percent // combined weight of the 3 largest holdings
	Top5                     Percent // combined weight of the 5 largest holdings
	EffectiveDiversification Percent // (1 - HHI/10000) × 100
}

// Concentrate computes the concentration of positions.
//
// Only open positions with a positive market value count. Without any, the index is 0.
func Concentrate(positions []Position) Concentration {
	var held []Position
	var total Money
	for _, p := range positions {
		if p.Open() && p.MarketValue.IsPositive() {
			held = append(held, p)
			total = total.Add(p.MarketValue)
		}
	}
	c := Concentration{Holdings: len(held), Tier: LowRisk, EffectiveDiversification: 100}
	if !total.IsPositive() {
		return c
	}

	weights := make([]decimal.Decimal, 0, len(held))
	sum := decimal.Zero
	for _, p := range held {
		w := p.weight(total)
		weights = append(weights, w)
		sum = sum.Add(w.Mul(w))
	}
	c.HHI = int(sum.Shift(4).Round(0).IntPart())
	c.Tier = TierOf(c.HHI)
	c.EffectiveDiversification = Percent(max(0, (1-float64(c.HHI)/10000)*100))

	slices.SortFunc(weights, func(a, b decimal.Decimal) int { return b.Cmp(a) })
	top := func(n int) Percent {
		return percentOf(decimal.Sum(decimal.Zero, weights[:min(n, len(weights))]...))
	}
	c.TopHolding, c.Top3, c.Top5 = top(1), top(3), top(5)
	return c
}
