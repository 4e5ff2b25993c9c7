package tradebook

import (
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency of the default fee schedule.
const DefaultCurrency = "MAD"

// FeeSchedule holds the brokerage, settlement, VAT and capital-gains tax rules of a market.
//
// Rates are ratios (0.006 for 0.6%), minimums are amounts in Currency before VAT.
type FeeSchedule struct {
	Currency         string
	BrokerageRate    decimal.Decimal
	BrokerageMin     decimal.Decimal
	SettlementRate   decimal.Decimal
	SettlementMin    decimal.Decimal
	VATRate          decimal.Decimal
	CapitalGainsRate decimal.Decimal
}

// DefaultSchedule returns the standard Casablanca Stock Exchange retail schedule.
func DefaultSchedule() FeeSchedule {
	return FeeSchedule{
		Currency:         DefaultCurrency,
		BrokerageRate:    decimal.RequireFromString("0.006"),
		BrokerageMin:     decimal.RequireFromString("7.50"),
		SettlementRate:   decimal.RequireFromString("0.002"),
		SettlementMin:    decimal.RequireFromString("2.50"),
		VATRate:          decimal.RequireFromString("0.10"),
		CapitalGainsRate: decimal.RequireFromString("0.15"),
	}
}

// FeeQuote details how a transaction fee is built.
type FeeQuote struct {
	Gross      Money
	Brokerage  Money // before VAT, minimum applied
	Settlement Money // before VAT, minimum applied
	PreTax     Money // rounded to 2 places
	VAT        Money // rounded to 2 places
	Total      Money // rounded to 2 places
}

// Quote computes the fee breakdown of trading quantity shares at price.
func (s FeeSchedule) Quote(quantity Quantity, price Money) FeeQuote {
	gross := price.Mul(quantity)
	brokerage := gross.MulRate(s.BrokerageRate).Max(s.money(s.BrokerageMin))
	settlement := gross.MulRate(s.SettlementRate).Max(s.money(s.SettlementMin))
	// the pre-tax total is rounded before VAT applies.
	preTax := brokerage.Add(settlement).Round2()
	vat := preTax.MulRate(s.VATRate).Round2()
	return FeeQuote{
		Gross:      gross,
		Brokerage:  brokerage,
		Settlement: settlement,
		PreTax:     preTax,
		VAT:        vat,
		Total:      preTax.Add(vat).Round2(),
	}
}

// Fee returns the total transaction fee, VAT included, of trading quantity shares at price.
func (s FeeSchedule) Fee(quantity Quantity, price Money) Money {
	return s.Quote(quantity, price).Total
}

// Tax returns the capital-gains tax due on a realized gross gain.
//
// Losses are never taxed and never offset other gains.
func (s FeeSchedule) Tax(grossGain Money) Money {
	if !grossGain.IsPositive() {
		return s.money(decimal.Zero)
	}
	return grossGain.MulRate(s.CapitalGainsRate).Round2()
}

// CombinedFeeRate is the proportional fee rate, VAT included, ignoring minimums.
func (s FeeSchedule) CombinedFeeRate() decimal.Decimal {
	return s.BrokerageRate.Add(s.SettlementRate).Mul(decimal.NewFromInt(1).Add(s.VATRate))
}

// BreakEven returns the unit sale price at which proceeds net of proportional fees
// equal avgCost.
//
// Fee minimums are ignored, so it underestimates the break-even of small positions.
func (s FeeSchedule) BreakEven(avgCost Money) Money {
	denominator := decimal.NewFromInt(1).Sub(s.CombinedFeeRate())
	if !denominator.IsPositive() {
		return avgCost
	}
	return avgCost.DivRate(denominator)
}

// Validate checks the schedule is usable.
func (s FeeSchedule) Validate() error {
	var errs error
	check := func(name string, v decimal.Decimal) {
		if v.IsNegative() {
			errs = errors.Join(errs, fmt.Errorf("%s must not be negative, got %s", name, v))
		}
	}
	check("brokerage_rate", s.BrokerageRate)
	check("brokerage_min", s.BrokerageMin)
	check("settlement_rate", s.SettlementRate)
	check("settlement_min", s.SettlementMin)
	check("vat_rate", s.VATRate)
	check("capital_gains_rate", s.CapitalGainsRate)
	if s.CombinedFeeRate().GreaterThanOrEqual(decimal.NewFromInt(1)) {
		errs = errors.Join(errs, fmt.Errorf("combined fee rate %s must be below 100%%", s.CombinedFeeRate()))
	}
	return errs
}

func (s FeeSchedule) money(v decimal.Decimal) Money { return M(v, s.Currency) }

// DecodeFeeSchedule reads a TOML fee schedule from r.
//
// Every key is optional and overrides the default schedule:
//
//	currency = "MAD"
//	brokerage_rate = 0.006
//	brokerage_min = 7.5
//	settlement_rate = 0.002
//	settlement_min = 2.5
//	vat_rate = 0.1
//	capital_gains_rate = 0.15
func DecodeFeeSchedule(r io.Reader) (FeeSchedule, error) {
	var doc struct {
		Currency         *string  `toml:"currency"`
		BrokerageRate    *float64 `toml:"brokerage_rate"`
		BrokerageMin     *float64 `toml:"brokerage_min"`
		SettlementRate   *float64 `toml:"settlement_rate"`
		SettlementMin    *float64 `toml:"settlement_min"`
		VATRate          *float64 `toml:"vat_rate"`
		CapitalGainsRate *float64 `toml:"capital_gains_rate"`
	}
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return FeeSchedule{}, fmt.Errorf("cannot decode fee schedule: %w", err)
	}

	s := DefaultSchedule()
	if doc.Currency != nil {
		s.Currency = *doc.Currency
	}
	set := func(dst *decimal.Decimal, v *float64) {
		if v != nil {
			*dst = decimal.NewFromFloat(*v)
		}
	}
	set(&s.BrokerageRate, doc.BrokerageRate)
	set(&s.BrokerageMin, doc.BrokerageMin)
	set(&s.SettlementRate, doc.SettlementRate)
	set(&s.SettlementMin, doc.SettlementMin)
	set(&s.VATRate, doc.VATRate)
	set(&s.CapitalGainsRate, doc.CapitalGainsRate)

	if err := s.Validate(); err != nil {
		return FeeSchedule{}, fmt.Errorf("invalid fee schedule: %w", err)
	}
	return s, nil
}

// EncodeFeeSchedule writes s as TOML, in the format read by DecodeFeeSchedule.
func EncodeFeeSchedule(w io.Writer, s FeeSchedule) error {
	doc := struct {
		Currency         string  `toml:"currency"`
		BrokerageRate    float64 `toml:"brokerage_rate"`
		BrokerageMin     float64 `toml:"brokerage_min"`
		SettlementRate   float64 `toml:"settlement_rate"`
		SettlementMin    float64 `toml:"settlement_min"`
		VATRate          float64 `toml:"vat_rate"`
		CapitalGainsRate float64 `toml:"capital_gains_rate"`
	}{
		Currency:         s.Currency,
		BrokerageRate:    s.BrokerageRate.InexactFloat64(),
		BrokerageMin:     s.BrokerageMin.InexactFloat64(),
		SettlementRate:   s.SettlementRate.InexactFloat64(),
		SettlementMin:    s.SettlementMin.InexactFloat64(),
		VATRate:          s.VATRate.InexactFloat64(),
		CapitalGainsRate: s.CapitalGainsRate.InexactFloat64(),
	}
	return toml.NewEncoder(w).Encode(doc)
}
