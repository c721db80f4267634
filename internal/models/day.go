// ABOUTME: Calendar-day helpers. All day arithmetic uses the UTC calendar.
// ABOUTME: A day is represented as a time.Time at UTC midnight.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// DayLayout is the wire and storage format for calendar days.
const DayLayout = "2006-01-02"

// Day truncates t to midnight of its UTC calendar day.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a UTC day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return t, nil
}

// DaysBetween returns the whole number of UTC calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(Day(b).Sub(Day(a)).Hours() / 24))
}

// checker accumulates validation failures.
type checker struct {
	err error
}

func (c *checker) check(ok bool, format string, args ...any) {
	if !ok {
		c.err = multierr.Append(c.err, fmt.Errorf(format, args...))
	}
}

func (c *checker) finite(name string, v float64) bool {
	ok := !math.IsNaN(v) && !math.IsInf(v, 0)
	c.check(ok, "%s must be a finite number", name)
	return ok
}

func (c *checker) positive(name string, v float64) {
	if c.finite(name, v) {
		c.check(v > 0, "%s must be greater than 0", name)
	}
}

func (c *checker) nonNegative(name string, v float64) {
	if c.finite(name, v) {
		c.check(v >= 0, "%s must not be negative", name)
	}
}

func (c *checker) notBlank(name, v string) {
	c.check(strings.TrimSpace(v) != "", "%s is required", name)
}

func (c *checker) timeSet(name string, t time.Time) {
	c.check(!t.IsZero(), "%s is required", name)
}
