/*
load.go - CSV decoding of source data

PURPOSE:
  Decodes the administrator-supplied CSV files into the typed records the
  engine and the NAV aggregator consume. This is the Transaction Normalizer
  boundary: rows leave here with all fields present and kinds canonical, or
  the whole file is rejected.

SCHEMA VALIDATION:
  Each reader checks its required columns against the header row and fails
  with a SchemaError naming every missing column. Extra columns are
  ignored, and column order does not matter.
*/
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/warp/fund-engine/fund"
	"github.com/warp/fund-engine/nav"
)

// Required columns, matching the administrator's file formats.
var (
	transactionColumns = []string{"Date", "Investor", "Type", "Amount_Base"}
	positionColumns    = []string{"Instrument", "Quantity", "Price", "Base_CCY", "FX_to_Base"}
	liabilityColumns   = []string{"Liability", "Amount", "Base_CCY"}
)

// ReadTransactions decodes and normalizes a transactions file. The returned
// batch has passed fund.Normalize: fields present, kinds canonical.
func ReadTransactions(r io.Reader) ([]fund.Transaction, error) {
	rows, cols, err := readAll(r, "transactions", transactionColumns)
	if err != nil {
		return nil, err
	}

	txs := make([]fund.Transaction, 0, len(rows))
	for i, row := range rows {
		date, err := fund.ParseDate(row[cols["Date"]])
		if err != nil {
			return nil, fmt.Errorf("transactions row %d: %w", i+2, err)
		}
		amount, err := decimal.NewFromString(row[cols["Amount_Base"]])
		if err != nil {
			return nil, fmt.Errorf("transactions row %d: invalid amount %q: %w", i+2, row[cols["Amount_Base"]], err)
		}
		txs = append(txs, fund.Transaction{
			Date:     date,
			Investor: row[cols["Investor"]],
			Kind:     fund.Kind(row[cols["Type"]]),
			Amount:   amount,
		})
	}
	return fund.Normalize(txs)
}

// ReadPositions decodes a holdings file. Base_CCY must be present in the
// schema but is not carried per row; prices arrive already FX-convertible
// to the fund base currency via FX_to_Base.
func ReadPositions(r io.Reader) ([]nav.Position, error) {
	rows, cols, err := readAll(r, "positions", positionColumns)
	if err != nil {
		return nil, err
	}

	positions := make([]nav.Position, 0, len(rows))
	for i, row := range rows {
		p := nav.Position{Instrument: row[cols["Instrument"]]}
		if p.Quantity, err = parseCell(row[cols["Quantity"]], "Quantity", i); err != nil {
			return nil, err
		}
		if p.Price, err = parseCell(row[cols["Price"]], "Price", i); err != nil {
			return nil, err
		}
		if p.FXToBase, err = parseCell(row[cols["FX_to_Base"]], "FX_to_Base", i); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// ReadLiabilities decodes a liabilities file.
func ReadLiabilities(r io.Reader) ([]nav.Liability, error) {
	rows, cols, err := readAll(r, "liabilities", liabilityColumns)
	if err != nil {
		return nil, err
	}

	liabilities := make([]nav.Liability, 0, len(rows))
	for i, row := range rows {
		l := nav.Liability{Name: row[cols["Liability"]]}
		if l.Amount, err = parseCell(row[cols["Amount"]], "Amount", i); err != nil {
			return nil, err
		}
		liabilities = append(liabilities, l)
	}
	return liabilities, nil
}

// readAll reads the full file, validates required columns against the
// header, and returns data rows plus a column name -> index map.
func readAll(r io.Reader, source string, required []string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s file: %w", source, err)
	}
	if len(records) == 0 {
		return nil, nil, &fund.SchemaError{Source: source, Missing: required}
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &fund.SchemaError{Source: source, Missing: missing}
	}

	return records[1:], cols, nil
}

func parseCell(value, column string, row int) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("row %d: invalid %s %q: %w", row+2, column, value, err)
	}
	return d, nil
}
