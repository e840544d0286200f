/*
Package nav computes fund valuations: Net Asset Value and NAV-per-unit.

PURPOSE:
  The valuation side of fund accounting. Given holdings (already priced and
  FX-converted to the fund's base currency upstream) and liabilities, it
  produces the NAV-per-unit figure the unitisation engine consumes through
  fund.NAVTable.

ARITHMETIC:
  marketValue      = quantity * price * fxToBase   (per holding)
  totalAssets      = sum of market values
  totalLiabilities = sum of liability amounts
  netAssets        = totalAssets - totalLiabilities
  navPerUnit       = netAssets / unitsOutstanding

This is a pure aggregation with no state machine; all the sequential
invariants live in the fund package.

SEE ALSO:
  - fund/types.go: NAVTable, the lookup shape the engine consumes
  - report:        CSV decoding of position/liability rows
*/
package nav

import (
	"github.com/shopspring/decimal"

	"github.com/warp/fund-engine/fund"
)

// =============================================================================
// INPUT ROWS
// =============================================================================

// Position is one holding row. Price is in the instrument's quote currency
// and FXToBase converts it to the fund base currency; for base-currency
// instruments FXToBase is 1.
type Position struct {
	Instrument string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	FXToBase   decimal.Decimal
}

// MarketValueBase is the holding's value in the fund base currency.
func (p Position) MarketValueBase() decimal.Decimal {
	return p.Quantity.Mul(p.Price).Mul(p.FXToBase)
}

// Liability is one liability row (fees payable, accrued expenses, ...),
// already in the fund base currency.
type Liability struct {
	Name   string
	Amount decimal.Decimal
}

// =============================================================================
// VALUATION - Computed NAV breakdown
// =============================================================================

// ValuedPosition pairs a holding with its computed market value, for the
// valued-positions report.
type ValuedPosition struct {
	Position
	MarketValue decimal.Decimal
}

// Valuation is the full NAV breakdown for one dealing date.
type Valuation struct {
	BaseCurrency     string
	Positions        []ValuedPosition
	Liabilities      []Liability
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	NetAssets        decimal.Decimal
	UnitsOutstanding decimal.Decimal
	NAVPerUnit       decimal.Decimal
}

// Calculate aggregates holdings and liabilities into a Valuation.
// unitsOutstanding must be strictly positive; zero or negative is an
// ArgumentError (a fund with no units in issue has no per-unit price).
func Calculate(positions []Position, liabilities []Liability, unitsOutstanding decimal.Decimal, baseCurrency string) (*Valuation, error) {
	if unitsOutstanding.Sign() <= 0 {
		return nil, &fund.ArgumentError{
			Name:   "unitsOutstanding",
			Value:  unitsOutstanding.String(),
			Reason: "must be greater than 0",
		}
	}

	valued := make([]ValuedPosition, 0, len(positions))
	totalAssets := decimal.Zero
	for _, p := range positions {
		mv := p.MarketValueBase()
		valued = append(valued, ValuedPosition{Position: p, MarketValue: mv})
		totalAssets = totalAssets.Add(mv)
	}

	totalLiabilities := decimal.Zero
	for _, l := range liabilities {
		totalLiabilities = totalLiabilities.Add(l.Amount)
	}

	netAssets := totalAssets.Sub(totalLiabilities)

	return &Valuation{
		BaseCurrency:     baseCurrency,
		Positions:        valued,
		Liabilities:      append([]Liability(nil), liabilities...),
		TotalAssets:      totalAssets,
		TotalLiabilities: totalLiabilities,
		NetAssets:        netAssets,
		UnitsOutstanding: unitsOutstanding,
		NAVPerUnit:       netAssets.Div(unitsOutstanding),
	}, nil
}

// Table builds the engine's quote table from per-date valuations.
func Table(valuations map[fund.DealingDate]*Valuation) fund.NAVTable {
	t := make(fund.NAVTable, len(valuations))
	for date, v := range valuations {
		t[date] = v.NAVPerUnit
	}
	return t
}
