package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fund-engine/fund"
	"github.com/warp/fund-engine/nav"
	"github.com/warp/fund-engine/report"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleResult() *fund.Result {
	return &fund.Result{
		Ledger: []fund.LedgerEntry{{
			Date:               fund.NewDate(2026, 1, 2),
			Investor:           "INV-001",
			Kind:               fund.KindSubscription,
			Amount:             dec("10125"),
			NAVPerUnit:         dec("1.0125"),
			UnitsChange:        dec("10000"),
			InvestorUnitsAfter: dec("10000"),
			TotalUnitsAfter:    dec("110000"),
		}},
		Summary: []fund.InvestorUnits{{Investor: "INV-001", Units: dec("10000")}},
		Totals: fund.Totals{
			OpeningUnits:      dec("100000"),
			OpeningNAVPerUnit: dec("1"),
			ClosingUnits:      dec("110000"),
		},
	}
}

func TestWriteLedger_DisplayRounding(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, report.WriteLedger(&sb, sampleResult().Ledger))

	want := "Date,Investor,Type,Amount_Base,NAV_Per_Unit,Units_Change,Investor_Units_After,Total_Units_After\n" +
		"2026-01-02,INV-001,Subscription,10125.00,1.012500,10000.000000,10000.000000,110000.000000\n"
	assert.Equal(t, want, sb.String())
}

func TestWriteSummaryAndTotals(t *testing.T) {
	res := sampleResult()

	var sb strings.Builder
	require.NoError(t, report.WriteSummary(&sb, res.Summary))
	assert.Equal(t, "Investor,Units\nINV-001,10000.000000\n", sb.String())

	sb.Reset()
	require.NoError(t, report.WriteTotals(&sb, res.Totals))
	assert.Equal(t,
		"Opening_Units,Opening_NAV_Per_Unit,Closing_Units\n100000.000000,1.000000,110000.000000\n",
		sb.String())
}

func TestWriteUnitisationReports_CreatesAllFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "outputs")
	require.NoError(t, report.WriteUnitisationReports(dir, sampleResult()))

	for _, name := range []string{"unitisation_ledger.csv", "investor_units_summary.csv", "unitisation_totals.csv"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}

func TestWriteValuationReports(t *testing.T) {
	v, err := nav.Calculate(
		[]nav.Position{{Instrument: "BOND", Quantity: dec("1000"), Price: dec("101.25"), FXToBase: dec("1")}},
		[]nav.Liability{{Name: "Fees", Amount: dec("1250")}},
		dec("100000"), "USD")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, report.WriteValuationSummary(&sb, v))
	assert.Equal(t,
		"Base_CCY,Total_Assets,Total_Liabilities,Net_Assets,Units_Outstanding,NAV_Per_Unit\n"+
			"USD,101250.00,1250.00,100000.00,100000,1.000000\n",
		sb.String())

	dir := t.TempDir()
	require.NoError(t, report.WriteValuationReports(dir, v))
	for _, name := range []string{"nav_positions_valued.csv", "nav_liabilities.csv", "nav_summary.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
