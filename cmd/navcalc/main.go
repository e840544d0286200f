/*
main.go - Batch NAV calculation CLI

PURPOSE:
  Computes a fund valuation from positions and liabilities files and
  writes the NAV reports. The resulting NAV-per-unit is what an operator
  enters into the quote table for that dealing date's unitisation run.

COMMAND-LINE FLAGS:
  -positions    Positions CSV (required)
  -liabilities  Liabilities CSV (required)
  -units        Units outstanding, decimal string (required, > 0)
  -ccy          Fund base currency (default: USD)
  -out          Output directory (default: outputs)

OUTPUTS:
  <out>/nav_positions_valued.csv
  <out>/nav_liabilities.csv
  <out>/nav_summary.csv

SEE ALSO:
  - nav/nav.go:     Valuation arithmetic
  - report/load.go: Positions/liabilities CSV schemas
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/warp/fund-engine/nav"
	"github.com/warp/fund-engine/report"
)

func main() {
	posPath := flag.String("positions", "", "positions CSV file")
	liabPath := flag.String("liabilities", "", "liabilities CSV file")
	unitsStr := flag.String("units", "", "units outstanding (decimal, > 0)")
	baseCCY := flag.String("ccy", "USD", "fund base currency")
	outDir := flag.String("out", "outputs", "output directory")
	flag.Parse()

	if *posPath == "" || *liabPath == "" || *unitsStr == "" {
		flag.Usage()
		os.Exit(2)
	}

	units, err := decimal.NewFromString(*unitsStr)
	if err != nil {
		log.Fatalf("Invalid -units value %q: %v", *unitsStr, err)
	}

	positions, err := readPositions(*posPath)
	if err != nil {
		log.Fatalf("Failed to read positions: %v", err)
	}
	liabilities, err := readLiabilities(*liabPath)
	if err != nil {
		log.Fatalf("Failed to read liabilities: %v", err)
	}

	valuation, err := nav.Calculate(positions, liabilities, units, *baseCCY)
	if err != nil {
		log.Fatalf("Valuation failed: %v", err)
	}

	if err := report.WriteValuationReports(*outDir, valuation); err != nil {
		log.Fatalf("Failed to write reports: %v", err)
	}

	fmt.Println("Saved outputs:")
	for _, name := range []string{"nav_positions_valued.csv", "nav_liabilities.csv", "nav_summary.csv"} {
		fmt.Printf("- %s\n", filepath.Join(*outDir, name))
	}
	fmt.Printf("\nNAV Per Unit (%s): %s\n", valuation.BaseCurrency, valuation.NAVPerUnit.StringFixed(6))
}

func readPositions(path string) ([]nav.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.ReadPositions(f)
}

func readLiabilities(path string) ([]nav.Liability, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.ReadLiabilities(f)
}
