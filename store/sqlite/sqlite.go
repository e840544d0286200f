/*
Package sqlite provides a SQLite-backed implementation of fund.RunStore.

PURPOSE:
  Archives completed unitisation runs for audit retrieval. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

APPEND-ONLY ENFORCEMENT:
  The store enforces append-only semantics:
  - No UPDATE statements on any table
  - No DELETE statements on any table
  - A duplicate run ID is rejected, never overwritten

KEY TABLES:
  runs:             One row per archived engine invocation
  ledger_entries:   The audit trail, one row per processed transaction,
                    ordered by seq within a run
  investor_summary: Final per-investor balances per run

PRECISION:
  All decimal values are stored as TEXT and parsed back with
  decimal.NewFromString, so nothing ever round-trips through float64.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/fund.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - fund/store.go:       RunStore interface definition
  - fund/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/fund-engine/fund"
)

// Store implements fund.RunStore using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Runs (append-only archive of engine invocations)
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		opening_units TEXT NOT NULL,
		opening_nav_per_unit TEXT NOT NULL,
		closing_units TEXT NOT NULL
	);

	-- Audit trail, one row per processed transaction
	CREATE TABLE IF NOT EXISTS ledger_entries (
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		date TEXT NOT NULL,
		investor TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		nav_per_unit TEXT NOT NULL,
		units_change TEXT NOT NULL,
		investor_units_after TEXT NOT NULL,
		total_units_after TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	-- Final balances per run
	CREATE TABLE IF NOT EXISTS investor_summary (
		run_id TEXT NOT NULL REFERENCES runs(id),
		investor TEXT NOT NULL,
		units TEXT NOT NULL,
		PRIMARY KEY (run_id, investor)
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_investor
		ON ledger_entries(run_id, investor);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_date
		ON ledger_entries(run_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN STORE IMPLEMENTATION
// =============================================================================

// Save archives a run atomically: the run row, every ledger entry and the
// investor summary either all land or none do.
func (s *Store) Save(ctx context.Context, run fund.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM runs WHERE id = ?`, run.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check run id: %w", err)
	}
	if exists > 0 {
		return fund.ErrDuplicateRun
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, opening_units, opening_nav_per_unit, closing_units)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.Opening.Units.String(),
		run.Opening.NAVPerUnit.String(),
		run.Result.Totals.ClosingUnits.String(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	entryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_entries
			(run_id, seq, date, investor, kind, amount, nav_per_unit,
			 units_change, investor_units_after, total_units_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer entryStmt.Close()

	for seq, e := range run.Result.Ledger {
		_, err = entryStmt.ExecContext(ctx,
			run.ID, seq,
			e.Date.String(), e.Investor, string(e.Kind),
			e.Amount.String(), e.NAVPerUnit.String(),
			e.UnitsChange.String(), e.InvestorUnitsAfter.String(), e.TotalUnitsAfter.String(),
		)
		if err != nil {
			return fmt.Errorf("insert ledger entry %d: %w", seq, err)
		}
	}

	for _, su := range run.Result.Summary {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO investor_summary (run_id, investor, units) VALUES (?, ?, ?)`,
			run.ID, su.Investor, su.Units.String(),
		)
		if err != nil {
			return fmt.Errorf("insert summary for %s: %w", su.Investor, err)
		}
	}

	return tx.Commit()
}

// Run loads a full run by ID.
func (s *Store) Run(ctx context.Context, id string) (*fund.Run, error) {
	var (
		run       fund.Run
		createdAt string
		opening   string
		openNAV   string
		closing   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, opening_units, opening_nav_per_unit, closing_units
		FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, &createdAt, &opening, &openNAV, &closing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fund.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for run %s: %w", id, err)
	}
	if run.Opening.Units, err = decimal.NewFromString(opening); err != nil {
		return nil, fmt.Errorf("parse opening units for run %s: %w", id, err)
	}
	if run.Opening.NAVPerUnit, err = decimal.NewFromString(openNAV); err != nil {
		return nil, fmt.Errorf("parse opening NAV for run %s: %w", id, err)
	}
	closingUnits, err := decimal.NewFromString(closing)
	if err != nil {
		return nil, fmt.Errorf("parse closing units for run %s: %w", id, err)
	}
	run.Result.Totals = fund.Totals{
		OpeningUnits:      run.Opening.Units,
		OpeningNAVPerUnit: run.Opening.NAVPerUnit,
		ClosingUnits:      closingUnits,
	}

	if run.Result.Ledger, err = s.loadLedger(ctx, id); err != nil {
		return nil, err
	}
	if run.Result.Summary, err = s.loadSummary(ctx, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns run metadata, newest first. ULIDs are time-sortable, so
// descending ID order is descending creation order.
func (s *Store) List(ctx context.Context) ([]fund.RunMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.created_at, r.opening_units, r.opening_nav_per_unit, r.closing_units,
			(SELECT COUNT(1) FROM ledger_entries e WHERE e.run_id = r.id),
			(SELECT COUNT(1) FROM investor_summary s WHERE s.run_id = r.id)
		FROM runs r
		ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var metas []fund.RunMeta
	for rows.Next() {
		var (
			m         fund.RunMeta
			createdAt string
			opening   string
			openNAV   string
			closing   string
		)
		if err := rows.Scan(&m.ID, &createdAt, &opening, &openNAV, &closing, &m.Entries, &m.Investors); err != nil {
			return nil, fmt.Errorf("scan run meta: %w", err)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if m.Totals.OpeningUnits, err = decimal.NewFromString(opening); err != nil {
			return nil, fmt.Errorf("parse opening units: %w", err)
		}
		if m.Totals.OpeningNAVPerUnit, err = decimal.NewFromString(openNAV); err != nil {
			return nil, fmt.Errorf("parse opening NAV: %w", err)
		}
		if m.Totals.ClosingUnits, err = decimal.NewFromString(closing); err != nil {
			return nil, fmt.Errorf("parse closing units: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

func (s *Store) loadLedger(ctx context.Context, runID string) ([]fund.LedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, investor, kind, amount, nav_per_unit,
			units_change, investor_units_after, total_units_after
		FROM ledger_entries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("load ledger for run %s: %w", runID, err)
	}
	defer rows.Close()

	var entries []fund.LedgerEntry
	for rows.Next() {
		var (
			e                                           fund.LedgerEntry
			date, kind                                  string
			amount, navpu, change, invAfter, totalAfter string
		)
		if err := rows.Scan(&date, &e.Investor, &kind, &amount, &navpu, &change, &invAfter, &totalAfter); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if e.Date, err = fund.ParseDate(date); err != nil {
			return nil, err
		}
		e.Kind = fund.Kind(kind)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		if e.NAVPerUnit, err = decimal.NewFromString(navpu); err != nil {
			return nil, fmt.Errorf("parse nav_per_unit: %w", err)
		}
		if e.UnitsChange, err = decimal.NewFromString(change); err != nil {
			return nil, fmt.Errorf("parse units_change: %w", err)
		}
		if e.InvestorUnitsAfter, err = decimal.NewFromString(invAfter); err != nil {
			return nil, fmt.Errorf("parse investor_units_after: %w", err)
		}
		if e.TotalUnitsAfter, err = decimal.NewFromString(totalAfter); err != nil {
			return nil, fmt.Errorf("parse total_units_after: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) loadSummary(ctx context.Context, runID string) ([]fund.InvestorUnits, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT investor, units FROM investor_summary
		WHERE run_id = ? ORDER BY investor`, runID)
	if err != nil {
		return nil, fmt.Errorf("load summary for run %s: %w", runID, err)
	}
	defer rows.Close()

	var summary []fund.InvestorUnits
	for rows.Next() {
		var (
			su    fund.InvestorUnits
			units string
		)
		if err := rows.Scan(&su.Investor, &units); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		if su.Units, err = decimal.NewFromString(units); err != nil {
			return nil, fmt.Errorf("parse units for %s: %w", su.Investor, err)
		}
		summary = append(summary, su)
	}
	return summary, rows.Err()
}
