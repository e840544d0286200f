package fund

import (
	"fmt"
	"time"
)

// =============================================================================
// DEALING DATE - Calendar date abstraction (this IS a daily-dealt fund)
// =============================================================================

// DealingDate is a calendar date with no time component. Subscriptions,
// redemptions and NAV quotes are all keyed by dealing date.
//
// The underlying time.Time is always normalized to midnight UTC, so
// DealingDate values are safe to compare with == and to use as map keys.
type DealingDate struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// Constructors

func NewDate(year int, month time.Month, day int) DealingDate {
	return DealingDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (DealingDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return DealingDate{}, fmt.Errorf("invalid dealing date %q: %w", s, err)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// DateOf truncates an arbitrary timestamp to its calendar date.
func DateOf(t time.Time) DealingDate {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// Comparison

func (d DealingDate) Before(other DealingDate) bool { return d.t.Before(other.t) }
func (d DealingDate) After(other DealingDate) bool  { return d.t.After(other.t) }
func (d DealingDate) Equal(other DealingDate) bool  { return d.t.Equal(other.t) }
func (d DealingDate) IsZero() bool                  { return d.t.IsZero() }

// Properties

func (d DealingDate) Year() int         { return d.t.Year() }
func (d DealingDate) Month() time.Month { return d.t.Month() }
func (d DealingDate) Day() int          { return d.t.Day() }

func (d DealingDate) AddDays(n int) DealingDate {
	return DateOf(d.t.AddDate(0, 0, n))
}

func (d DealingDate) String() string {
	return d.t.Format(dateLayout)
}
