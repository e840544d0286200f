package nav_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fund-engine/fund"
	"github.com/warp/fund-engine/nav"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate(t *testing.T) {
	// GIVEN: Two holdings (one needing FX conversion) and two liabilities
	// WHEN: Valuing against 100000 units outstanding
	// THEN: NAV-per-unit = (sum of market values - liabilities) / units

	positions := []nav.Position{
		{Instrument: "GOVT-BOND-2030", Quantity: dec("1000"), Price: dec("101.25"), FXToBase: dec("1")},
		{Instrument: "EURO-EQ-FUND", Quantity: dec("500"), Price: dec("20"), FXToBase: dec("1.10")},
	}
	liabilities := []nav.Liability{
		{Name: "Management fee payable", Amount: dec("1500")},
		{Name: "Audit accrual", Amount: dec("500")},
	}

	v, err := nav.Calculate(positions, liabilities, dec("100000"), "USD")
	require.NoError(t, err)

	// 1000*101.25*1 = 101250; 500*20*1.10 = 11000
	assert.True(t, dec("112250").Equal(v.TotalAssets), "total assets %s", v.TotalAssets)
	assert.True(t, dec("2000").Equal(v.TotalLiabilities), "total liabilities %s", v.TotalLiabilities)
	assert.True(t, dec("110250").Equal(v.NetAssets), "net assets %s", v.NetAssets)
	assert.True(t, dec("1.1025").Equal(v.NAVPerUnit), "nav per unit %s", v.NAVPerUnit)

	require.Len(t, v.Positions, 2)
	assert.True(t, dec("101250").Equal(v.Positions[0].MarketValue))
	assert.True(t, dec("11000").Equal(v.Positions[1].MarketValue))
	assert.Equal(t, "USD", v.BaseCurrency)
}

func TestCalculate_UnitsOutstandingMustBePositive(t *testing.T) {
	for _, units := range []string{"0", "-1"} {
		_, err := nav.Calculate(nil, nil, dec(units), "USD")
		require.Error(t, err, "units %s", units)
		assert.True(t, errors.Is(err, fund.ErrArgument))
	}
}

func TestCalculate_EmptyInputs(t *testing.T) {
	// An empty fund values to zero; the per-unit price is simply zero,
	// and the engine will reject it as a quote if anyone tries to deal on it.
	v, err := nav.Calculate(nil, nil, dec("100000"), "USD")
	require.NoError(t, err)
	assert.True(t, v.NetAssets.IsZero())
	assert.True(t, v.NAVPerUnit.IsZero())
}

func TestCalculate_LiabilitiesCanExceedAssets(t *testing.T) {
	// Net assets may go negative; rejecting a negative NAV-per-unit is the
	// engine's quote validation, not the aggregator's.
	liabilities := []nav.Liability{{Name: "Legal settlement", Amount: dec("5000")}}
	v, err := nav.Calculate(nil, liabilities, dec("1000"), "USD")
	require.NoError(t, err)
	assert.True(t, dec("-5").Equal(v.NAVPerUnit), "nav per unit %s", v.NAVPerUnit)
}

func TestTable(t *testing.T) {
	d1 := fund.NewDate(2026, time.January, 2)
	d2 := fund.NewDate(2026, time.January, 3)

	v1, err := nav.Calculate(
		[]nav.Position{{Instrument: "X", Quantity: dec("1"), Price: dec("101250"), FXToBase: dec("1")}},
		nil, dec("100000"), "USD")
	require.NoError(t, err)
	v2, err := nav.Calculate(
		[]nav.Position{{Instrument: "X", Quantity: dec("1"), Price: dec("100800"), FXToBase: dec("1")}},
		nil, dec("100000"), "USD")
	require.NoError(t, err)

	table := nav.Table(map[fund.DealingDate]*nav.Valuation{d1: v1, d2: v2})

	q1, err := table.Quote(d1)
	require.NoError(t, err)
	assert.True(t, dec("1.0125").Equal(q1), "quote %s", q1)
	q2, err := table.Quote(d2)
	require.NoError(t, err)
	assert.True(t, dec("1.008").Equal(q2), "quote %s", q2)
}
