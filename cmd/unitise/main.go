/*
main.go - Batch unitisation CLI

PURPOSE:
  Runs one unitisation batch from the command line: loads the run
  configuration (opening state and NAV quote table), decodes the
  transactions file, folds it through the engine, and writes the three
  audit reports.

COMMAND-LINE FLAGS:
  -config        Run configuration file, YAML or JSON (default: fund.yaml)
  -transactions  Transactions CSV; overrides the config's inputs.transactions
  -out           Output directory; overrides the config's output.dir

OUTPUTS:
  <out>/unitisation_ledger.csv
  <out>/investor_units_summary.csv
  <out>/unitisation_totals.csv

Any data-quality failure (unknown kind, missing or non-positive quote,
redemption exceeding units) aborts the run with no partial outputs.

SEE ALSO:
  - config/config.go: Configuration format
  - report/load.go:   Transactions CSV schema
*/
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/warp/fund-engine/config"
	"github.com/warp/fund-engine/fund"
	"github.com/warp/fund-engine/report"
)

func main() {
	cfgPath := flag.String("config", "fund.yaml", "run configuration file (YAML or JSON)")
	txPath := flag.String("transactions", "", "transactions CSV (overrides config)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	transactionsFile := cfg.Inputs.Transactions
	if *txPath != "" {
		transactionsFile = *txPath
	}
	if transactionsFile == "" {
		log.Fatalf("No transactions file: set inputs.transactions in %s or pass -transactions", *cfgPath)
	}

	dir := cfg.Output.Dir
	if *outDir != "" {
		dir = *outDir
	}

	f, err := os.Open(transactionsFile)
	if err != nil {
		log.Fatalf("Failed to open transactions file: %v", err)
	}
	transactions, err := report.ReadTransactions(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read transactions: %v", err)
	}

	result, err := fund.Process(cfg.Opening(), transactions, cfg.NAVTable())
	if err != nil {
		log.Fatalf("Unitisation failed: %v", err)
	}

	if err := report.WriteUnitisationReports(dir, result); err != nil {
		log.Fatalf("Failed to write reports: %v", err)
	}

	fmt.Println("Saved outputs:")
	for _, name := range []string{"unitisation_ledger.csv", "investor_units_summary.csv", "unitisation_totals.csv"} {
		fmt.Printf("- %s\n", filepath.Join(dir, name))
	}
	fmt.Printf("\nClosing Units: %s\n", result.Totals.ClosingUnits.StringFixed(6))
}
