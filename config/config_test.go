package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fund-engine/config"
	"github.com/warp/fund-engine/fund"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeConfig(t, "fund.yaml", `
fund:
  opening_units: 100000
  opening_nav_per_unit: 1.0
quotes:
  2026-01-02: 1.0125
  2026-01-03: 1.008
inputs:
  transactions: tx.csv
output:
  dir: reports
`)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	opening := cfg.Opening()
	assert.Equal(t, "100000", opening.Units.String())
	assert.Equal(t, "tx.csv", cfg.Inputs.Transactions)
	assert.Equal(t, "reports", cfg.Output.Dir)
	assert.Equal(t, "USD", cfg.Fund.BaseCurrency, "default applied")

	table := cfg.NAVTable()
	require.Len(t, table, 2)
	q, err := table.Quote(fund.NewDate(2026, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, "1.0125", q.String())
}

func TestLoadFromFile_JSONFallback(t *testing.T) {
	path := writeConfig(t, "fund.json", `{
		"fund": {"opening_units": 50000, "opening_nav_per_unit": 1.2},
		"quotes": {"2026-02-01": 1.21}
	}`)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "outputs", cfg.Output.Dir, "default applied")
	assert.Equal(t, "50000", cfg.Opening().Units.String())
}

func TestLoadFromFile_BadQuoteDate(t *testing.T) {
	path := writeConfig(t, "fund.yaml", `
quotes:
  01/02/2026: 1.0125
`)

	_, err := config.LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "01/02/2026")
}

func TestLoadFromFile_NegativeOpeningUnits(t *testing.T) {
	path := writeConfig(t, "fund.yaml", `
fund:
  opening_units: -1
`)

	_, err := config.LoadFromFile(path)
	assert.True(t, errors.Is(err, fund.ErrArgument))
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
