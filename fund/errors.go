/*
errors.go - Centralized error types for the unitisation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every failure aborts the whole batch: the engine returns either a fully
  consistent result or an error with enough context (date, investor,
  offending value) for an operator to fix the source data and re-run.

ERROR CATEGORIES:
  1. Schema errors    - Required fields or columns missing
  2. Quote errors     - NAV-per-unit absent or non-positive for a date
  3. Dealing errors   - Unrecognized kind, redemption exceeding balance
  4. Argument errors  - Caller-supplied scalars out of range
  5. Store errors     - Run archive failures

All failures here are data-quality issues, not transient conditions; none
are retried internally and none are silently corrected.

USAGE:
  if errors.Is(err, fund.ErrInsufficientUnits) { ... }

  var insuff *fund.InsufficientUnitsError
  if errors.As(err, &insuff) {
      fmt.Println(insuff.Investor, insuff.Held, insuff.Requested)
  }
*/
package fund

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSchema is returned when a required field or column is missing.
	ErrSchema = errors.New("schema violation")

	// ErrInvalidKind is returned when a transaction kind is neither
	// subscription nor redemption after normalization.
	ErrInvalidKind = errors.New("invalid transaction kind")

	// ErrMissingQuote is returned when no NAV-per-unit exists for a
	// transaction's dealing date.
	ErrMissingQuote = errors.New("missing NAV quote")

	// ErrInvalidQuote is returned when a NAV-per-unit is zero or negative.
	ErrInvalidQuote = errors.New("invalid NAV quote")

	// ErrInsufficientUnits is returned when a redemption would drive an
	// investor's balance below zero beyond tolerance.
	ErrInsufficientUnits = errors.New("insufficient units")

	// ErrArgument is returned when a caller-supplied scalar is out of range.
	ErrArgument = errors.New("invalid argument")

	// ErrRunNotFound is returned when a referenced run doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrDuplicateRun is returned when a run ID already exists in a store.
	// Runs are immutable once archived; there is no overwrite.
	ErrDuplicateRun = errors.New("duplicate run id")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SchemaError reports missing required fields or columns.
type SchemaError struct {
	Source  string   // e.g. "transactions", "positions", "liabilities"
	Missing []string // field or column names
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required fields in %s: %s",
		e.Source, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// InvalidKindError reports an unrecognized transaction kind.
type InvalidKindError struct {
	Kind     string // as supplied, before normalization
	Investor string
	Date     DealingDate
}

func (e *InvalidKindError) Error() string {
	return fmt.Sprintf("transaction kind must be %q or %q, got %q (investor %s, date %s)",
		KindSubscription, KindRedemption, e.Kind, e.Investor, e.Date)
}

func (e *InvalidKindError) Unwrap() error { return ErrInvalidKind }

// MissingQuoteError reports a dealing date with no NAV-per-unit entry.
type MissingQuoteError struct {
	Date DealingDate
}

func (e *MissingQuoteError) Error() string {
	return fmt.Sprintf("NAV per unit missing for date %s", e.Date)
}

func (e *MissingQuoteError) Unwrap() error { return ErrMissingQuote }

// InvalidQuoteError reports a non-positive NAV-per-unit.
type InvalidQuoteError struct {
	Date       DealingDate
	NAVPerUnit decimal.Decimal
}

func (e *InvalidQuoteError) Error() string {
	return fmt.Sprintf("NAV per unit must be > 0 for date %s, got %s", e.Date, e.NAVPerUnit)
}

func (e *InvalidQuoteError) Unwrap() error { return ErrInvalidQuote }

// InsufficientUnitsError reports a redemption exceeding the investor's
// held units beyond tolerance.
type InsufficientUnitsError struct {
	Investor  string
	Date      DealingDate
	Held      decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientUnitsError) Error() string {
	return fmt.Sprintf("redemption exceeds available units for %s on %s: has %s, trying to redeem %s",
		e.Investor, e.Date, e.Held.StringFixed(6), e.Requested.StringFixed(6))
}

func (e *InsufficientUnitsError) Unwrap() error { return ErrInsufficientUnits }

// ArgumentError reports an out-of-range caller-supplied scalar.
type ArgumentError struct {
	Name   string
	Value  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %s = %s: %s", e.Name, e.Value, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrArgument }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid input data
// rather than an internal failure. The API layer maps these to 400.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSchema) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrMissingQuote) ||
		errors.Is(err, ErrInvalidQuote) ||
		errors.Is(err, ErrInsufficientUnits) ||
		errors.Is(err, ErrArgument)
}

// IsNotFound returns true if the error indicates a missing run.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
