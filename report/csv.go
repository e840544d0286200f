/*
Package report emits and decodes the CSV surfaces of the fund engine.

PURPOSE:
  The engine works on typed records and full-precision decimals; this
  package is the edge where those records meet files. Writers emit the
  audit reports a fund administrator distributes, readers decode the
  source-data files into typed records for the engine.

DISPLAY ROUNDING:
  Rounding happens HERE and only here: currency amounts to 2dp, units and
  NAV-per-unit to 6dp. Internal engine state is never rounded, so a value
  printed in a report can differ from the accumulator in the final decimal
  places by design.

REPORT FILES:
  unitisation_ledger.csv        One row per processed transaction
  investor_units_summary.csv    Final balance per investor
  unitisation_totals.csv        Opening/closing unit counts
  nav_positions_valued.csv      Holdings with computed market values
  nav_liabilities.csv           Liability rows as loaded
  nav_summary.csv               NAV breakdown and NAV-per-unit

SEE ALSO:
  - load.go: CSV decoding of transactions, positions, liabilities
*/
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/warp/fund-engine/fund"
	"github.com/warp/fund-engine/nav"
)

const (
	amountPlaces = 2 // currency values
	unitPlaces   = 6 // units and NAV-per-unit
)

// =============================================================================
// UNITISATION REPORTS
// =============================================================================

// WriteLedger emits the audit ledger.
func WriteLedger(w io.Writer, entries []fund.LedgerEntry) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Date", "Investor", "Type", "Amount_Base", "NAV_Per_Unit",
		"Units_Change", "Investor_Units_After", "Total_Units_After",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range entries {
		err := cw.Write([]string{
			e.Date.String(),
			e.Investor,
			displayKind(e.Kind),
			e.Amount.StringFixed(amountPlaces),
			e.NAVPerUnit.StringFixed(unitPlaces),
			e.UnitsChange.StringFixed(unitPlaces),
			e.InvestorUnitsAfter.StringFixed(unitPlaces),
			e.TotalUnitsAfter.StringFixed(unitPlaces),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummary emits the final per-investor balances.
func WriteSummary(w io.Writer, summary []fund.InvestorUnits) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Investor", "Units"}); err != nil {
		return err
	}
	for _, s := range summary {
		if err := cw.Write([]string{s.Investor, s.Units.StringFixed(unitPlaces)}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTotals emits the single totals row.
func WriteTotals(w io.Writer, totals fund.Totals) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Opening_Units", "Opening_NAV_Per_Unit", "Closing_Units"}); err != nil {
		return err
	}
	err := cw.Write([]string{
		totals.OpeningUnits.StringFixed(unitPlaces),
		totals.OpeningNAVPerUnit.StringFixed(unitPlaces),
		totals.ClosingUnits.StringFixed(unitPlaces),
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// WriteUnitisationReports writes the three unitisation files into dir,
// creating it if needed.
func WriteUnitisationReports(dir string, res *fund.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"unitisation_ledger.csv", func(w io.Writer) error { return WriteLedger(w, res.Ledger) }},
		{"investor_units_summary.csv", func(w io.Writer) error { return WriteSummary(w, res.Summary) }},
		{"unitisation_totals.csv", func(w io.Writer) error { return WriteTotals(w, res.Totals) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// NAV REPORTS
// =============================================================================

// WriteValuedPositions emits holdings with their computed market values.
func WriteValuedPositions(w io.Writer, positions []nav.ValuedPosition) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Instrument", "Quantity", "Price", "FX_to_Base", "Market_Value_Base"}); err != nil {
		return err
	}
	for _, p := range positions {
		err := cw.Write([]string{
			p.Instrument,
			p.Quantity.String(),
			p.Price.String(),
			p.FXToBase.String(),
			p.MarketValue.StringFixed(amountPlaces),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteLiabilities emits liability rows.
func WriteLiabilities(w io.Writer, liabilities []nav.Liability) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Liability", "Amount"}); err != nil {
		return err
	}
	for _, l := range liabilities {
		if err := cw.Write([]string{l.Name, l.Amount.StringFixed(amountPlaces)}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteValuationSummary emits the one-row NAV breakdown.
func WriteValuationSummary(w io.Writer, v *nav.Valuation) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Base_CCY", "Total_Assets", "Total_Liabilities", "Net_Assets",
		"Units_Outstanding", "NAV_Per_Unit",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	err := cw.Write([]string{
		v.BaseCurrency,
		v.TotalAssets.StringFixed(amountPlaces),
		v.TotalLiabilities.StringFixed(amountPlaces),
		v.NetAssets.StringFixed(amountPlaces),
		v.UnitsOutstanding.String(),
		v.NAVPerUnit.StringFixed(unitPlaces),
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// WriteValuationReports writes the three NAV files into dir.
func WriteValuationReports(dir string, v *nav.Valuation) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"nav_positions_valued.csv", func(w io.Writer) error { return WriteValuedPositions(w, v.Positions) }},
		{"nav_liabilities.csv", func(w io.Writer) error { return WriteLiabilities(w, v.Liabilities) }},
		{"nav_summary.csv", func(w io.Writer) error { return WriteValuationSummary(w, v) }},
	}
	for _, f := range files {
		if err := writeFile(filepath.Join(dir, f.name), f.write); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// displayKind renders a kind the way reports capitalize it.
func displayKind(k fund.Kind) string {
	switch k {
	case fund.KindSubscription:
		return "Subscription"
	case fund.KindRedemption:
		return "Redemption"
	default:
		return string(k)
	}
}
