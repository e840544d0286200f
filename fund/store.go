/*
store.go - Persistence interface for archived unitisation runs

PURPOSE:
  Defines the interface between the engine's callers and the run archive.
  The engine itself is a pure function and persists nothing; the archive is
  how the API and CLI keep an auditable record of completed runs.

APPEND-ONLY CONTRACT:
  A Run is immutable once archived:
  - Save():  The ONLY write operation
  - NO Update() or Delete() methods exist
  A bad run is superseded by re-running over corrected source data and
  archiving the new run; the old one stays on record.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - fund/store/memory.go:   In-memory for testing

SEE ALSO:
  - engine.go: Produces the Result a Run wraps
*/
package fund

import (
	"context"
	"time"
)

// =============================================================================
// RUN - One archived engine invocation
// =============================================================================

// Run is the immutable record of one completed engine invocation: what the
// fund opened with, the full ledger, and where it closed.
type Run struct {
	ID        string // ULID, time-sortable
	CreatedAt time.Time
	Opening   Opening
	Result    Result
}

// RunMeta is the listing view of a run, without the ledger payload.
type RunMeta struct {
	ID        string
	CreatedAt time.Time
	Totals    Totals
	Entries   int // ledger entries in the run
	Investors int // distinct investors in the summary
}

// Meta derives the listing view from a full run.
func (r *Run) Meta() RunMeta {
	return RunMeta{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Totals:    r.Result.Totals,
		Entries:   len(r.Result.Ledger),
		Investors: len(r.Result.Summary),
	}
}

// =============================================================================
// RUN STORE - Interface for run persistence (append-only)
// =============================================================================

// RunStore archives completed runs.
// IMPORTANT: RunStore is APPEND-ONLY. No Update, No Delete. Ever.
type RunStore interface {
	// Save archives a run. Returns ErrDuplicateRun if the ID exists.
	// This is the ONLY write operation.
	Save(ctx context.Context, run Run) error

	// Run returns a run by ID, or ErrRunNotFound.
	Run(ctx context.Context, id string) (*Run, error)

	// List returns metadata for all runs, newest first.
	List(ctx context.Context) ([]RunMeta, error)
}
