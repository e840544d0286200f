/*
Package fund provides the core unitisation engine for a pooled fund.

PURPOSE:
  This package contains the types and the algorithm that convert a stream
  of investor subscriptions and redemptions, priced against a per-date
  NAV-per-unit, into an auditable unit ledger, per-investor balances and
  fund-wide totals.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: An immutable dealing instruction (subscribe or redeem)
  - NAVTable:    Date -> NAV-per-unit lookup supplied by the valuation side
  - LedgerEntry: One audit-trail row per processed transaction
  - Totals:      Opening and closing unit counts for a run

DESIGN PRINCIPLES:
  1. Immutability: Ledger entries are appended, never edited
  2. Precision:    decimal.Decimal everywhere; no float drift in balances
  3. Determinism:  Processing order is canonical, not input order
  4. Auditability: Every unit movement is traceable to one transaction

SEE ALSO:
  - engine.go:    The unitisation fold
  - normalize.go: Input validation and kind normalization
  - errors.go:    Error taxonomy
*/
package fund

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION - A single dealing instruction
// =============================================================================

// Kind is the dealing direction of a transaction.
type Kind string

const (
	KindSubscription Kind = "subscription"
	KindRedemption   Kind = "redemption"
)

// Transaction is one investor dealing instruction. Amount is a currency
// value in the fund's base currency, never a unit count; units are derived
// from the NAV-per-unit on the dealing date.
type Transaction struct {
	Date     DealingDate
	Investor string
	Kind     Kind
	Amount   decimal.Decimal
}

// =============================================================================
// NAV TABLE - Date -> NAV-per-unit lookup
// =============================================================================

// NAVTable maps dealing dates to NAV-per-unit values. It is supplied by the
// valuation side (see the nav package) and is read-only during a run.
type NAVTable map[DealingDate]decimal.Decimal

// Quote resolves the NAV-per-unit for a date. A missing entry is a
// MissingQuoteError and a non-positive value is an InvalidQuoteError;
// neither is ever defaulted or clamped.
func (n NAVTable) Quote(date DealingDate) (decimal.Decimal, error) {
	navpu, ok := n[date]
	if !ok {
		return decimal.Decimal{}, &MissingQuoteError{Date: date}
	}
	if navpu.Sign() <= 0 {
		return decimal.Decimal{}, &InvalidQuoteError{Date: date, NAVPerUnit: navpu}
	}
	return navpu, nil
}

// =============================================================================
// FUND STATE - Opening position for a run
// =============================================================================

// Opening is the fund-level state at the start of a run. OpeningUnits is a
// fund-level float not attributed to any named investor; NAVPerUnit is
// informational pass-through and takes no part in the computation.
//
// Callers that need day-over-day continuity pass the previous run's closing
// units back in as the next run's opening units.
type Opening struct {
	Units      decimal.Decimal
	NAVPerUnit decimal.Decimal
}

// =============================================================================
// OUTPUTS - Ledger, summary, totals
// =============================================================================

// LedgerEntry is one row of the audit trail, appended per processed
// transaction in canonical order. All values are full precision; rounding
// happens only in emitters (report, api).
type LedgerEntry struct {
	Date               DealingDate
	Investor           string
	Kind               Kind
	Amount             decimal.Decimal
	NAVPerUnit         decimal.Decimal
	UnitsChange        decimal.Decimal // signed: + subscription, - redemption
	InvestorUnitsAfter decimal.Decimal
	TotalUnitsAfter    decimal.Decimal
}

// InvestorUnits is one investor's final balance. A zero balance is a real
// entry: it records that the investor dealt and ended flat, which is
// distinct from never having appeared at all.
type InvestorUnits struct {
	Investor string
	Units    decimal.Decimal
}

// Totals carries the fund-level unit counts for a run.
type Totals struct {
	OpeningUnits      decimal.Decimal
	OpeningNAVPerUnit decimal.Decimal
	ClosingUnits      decimal.Decimal
}

// Result is the full output of one engine run.
type Result struct {
	// Ledger in canonical processing order (date asc, investor asc, stable).
	Ledger []LedgerEntry

	// Summary sorted by investor identifier.
	Summary []InvestorUnits

	Totals Totals
}

// SummaryByInvestor returns the final balances as a map view.
func (r *Result) SummaryByInvestor() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(r.Summary))
	for _, s := range r.Summary {
		m[s.Investor] = s.Units
	}
	return m
}
