/*
engine.go - The unitisation fold

PURPOSE:
  Converts a batch of subscription/redemption transactions, priced against
  a per-date NAV-per-unit table, into the audit ledger, per-investor unit
  balances and fund-wide totals.

CRITICAL INVARIANTS:
  1. CONSERVATION:  closing units = opening units + sum of signed deltas,
     and also = opening units + sum of all final investor balances
  2. NON-NEGATIVITY: no investor balance ever goes below zero beyond
     tolerance; a violating redemption fails the whole batch
  3. DETERMINISM:   processing order is a stable sort by (date, investor),
     never the caller-supplied order
  4. ALL-OR-NOTHING: any failure returns no outputs at all

WHY CANONICAL ORDERING?
  The ledger's TotalUnitsAfter column and redemption validity are defined
  relative to the fully merged chronological order. Sorting internally
  makes a run reproducible regardless of input file order, so a re-run
  over the same data yields a byte-identical ledger.

PRECISION:
  Balances and totals accumulate at full decimal precision. Rounding to
  2dp amounts / 6dp units happens only in emitters, never here, so
  rounding error cannot compound across transactions.

SEE ALSO:
  - normalize.go: Batch validation that runs first
  - types.go:     Input and output shapes
  - nav package:  Produces the NAV-per-unit values consumed here
*/
package fund

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tolerance is the slack allowed on redemption checks: a redemption fails
// only when requested units exceed held units by more than this. It absorbs
// representation noise at the boundary (e.g. quotes that arrived through
// float64); it is never used to clamp a balance.
var Tolerance = decimal.New(1, -12) // 1e-12

// Process folds the transaction batch into a ledger, an investor summary
// and fund totals. It is a pure function of its inputs: no state survives
// the call, and identical inputs yield identical outputs.
//
// opening.Units may be zero (a newly launched fund). opening.NAVPerUnit is
// carried through to Totals untouched.
func Process(opening Opening, transactions []Transaction, quotes NAVTable) (*Result, error) {
	txs, err := Normalize(transactions)
	if err != nil {
		return nil, err
	}

	// Canonical processing order: date asc, then investor asc. The sort is
	// stable, so same-investor same-date transactions keep their relative
	// input order.
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].Investor < txs[j].Investor
	})

	balances := make(map[string]decimal.Decimal)
	totalUnits := opening.Units
	ledger := make([]LedgerEntry, 0, len(txs))

	for _, tx := range txs {
		navpu, err := quotes.Quote(tx.Date)
		if err != nil {
			return nil, err
		}

		unitsDelta := tx.Amount.Div(navpu)

		// Lazily created at zero; never deleted, so an investor who ends
		// flat still appears in the summary.
		held := balances[tx.Investor]

		var change decimal.Decimal
		switch tx.Kind {
		case KindSubscription:
			change = unitsDelta
		case KindRedemption:
			if held.Add(Tolerance).LessThan(unitsDelta) {
				return nil, &InsufficientUnitsError{
					Investor:  tx.Investor,
					Date:      tx.Date,
					Held:      held,
					Requested: unitsDelta,
				}
			}
			change = unitsDelta.Neg()
		}

		balances[tx.Investor] = held.Add(change)
		totalUnits = totalUnits.Add(change)

		ledger = append(ledger, LedgerEntry{
			Date:               tx.Date,
			Investor:           tx.Investor,
			Kind:               tx.Kind,
			Amount:             tx.Amount,
			NAVPerUnit:         navpu,
			UnitsChange:        change,
			InvestorUnitsAfter: balances[tx.Investor],
			TotalUnitsAfter:    totalUnits,
		})
	}

	summary := make([]InvestorUnits, 0, len(balances))
	for investor, units := range balances {
		summary = append(summary, InvestorUnits{Investor: investor, Units: units})
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].Investor < summary[j].Investor })

	return &Result{
		Ledger:  ledger,
		Summary: summary,
		Totals: Totals{
			OpeningUnits:      opening.Units,
			OpeningNAVPerUnit: opening.NAVPerUnit,
			ClosingUnits:      totalUnits,
		},
	}, nil
}
