// Package recurrence turns a bounded recurrence rule into concrete time
// windows. Rules use a compact RRULE-style expression
// ("FREQ=WEEKLY;INTERVAL=2;COUNT=8").
//
// Unbounded rules are rejected outright: every rule must carry UNTIL or
// COUNT, and every expansion takes a mandatory horizon, so expansion cost
// is horizon-bounded no matter how broad the rule is.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/greenroomhq/greenroom/server/scheduler/window"
	"github.com/greenroomhq/greenroom/server/timezone"
	"github.com/greenroomhq/greenroom/store"
)

// Freq is the recurrence frequency.
type Freq string

const (
	FreqNone    Freq = "NONE"
	FreqDaily   Freq = "DAILY"
	FreqWeekly  Freq = "WEEKLY"
	FreqMonthly Freq = "MONTHLY"
)

// untilLayout is the RFC 5545 UTC date-time format used for UNTIL.
const untilLayout = "20060102T150405Z"

// Validation errors, checkable with errors.Is.
var (
	ErrUnknownFreq     = errors.New("recurrence: unknown frequency")
	ErrInvalidInterval = errors.New("recurrence: interval must be a positive integer")
	ErrUnbounded       = errors.New("recurrence: rule must be bounded by UNTIL or COUNT")
	ErrDoubleBounded   = errors.New("recurrence: UNTIL and COUNT are mutually exclusive")
)

// Rule is a bounded recurrence rule.
type Rule struct {
	Freq     Freq
	Interval int
	Until    *time.Time // inclusive of an occurrence starting exactly at Until
	Count    int        // total number of occurrences, including the base
}

// Validate checks the rule invariants: a known repeating frequency, a
// positive interval, and exactly one of UNTIL/COUNT.
func (r *Rule) Validate() error {
	switch r.Freq {
	case FreqDaily, FreqWeekly, FreqMonthly:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFreq, r.Freq)
	}
	if r.Interval < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, r.Interval)
	}
	hasUntil := r.Until != nil && !r.Until.IsZero()
	hasCount := r.Count > 0
	if !hasUntil && !hasCount {
		return ErrUnbounded
	}
	if hasUntil && hasCount {
		return ErrDoubleBounded
	}
	return nil
}

// Parse parses a rule expression such as "FREQ=DAILY;INTERVAL=3;COUNT=10"
// and validates it.
func Parse(expr string) (*Rule, error) {
	rule := &Rule{Interval: 1}

	for _, part := range strings.Split(expr, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		value := strings.TrimSpace(kv[1])

		switch key {
		case "FREQ":
			rule.Freq = Freq(value)
		case "INTERVAL":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, value)
			}
			rule.Interval = n
		case "COUNT":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("recurrence: invalid COUNT %q", value)
			}
			rule.Count = n
		case "UNTIL":
			t, err := time.Parse(untilLayout, value)
			if err != nil {
				return nil, fmt.Errorf("recurrence: invalid UNTIL %q", value)
			}
			rule.Until = &t
		}
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

// String returns the rule expression. Parse(r.String()) round-trips.
func (r *Rule) String() string {
	parts := []string{fmt.Sprintf("FREQ=%s", r.Freq)}
	if r.Interval > 1 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}
	if r.Count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", r.Count))
	}
	if r.Until != nil && !r.Until.IsZero() {
		parts = append(parts, fmt.Sprintf("UNTIL=%s", r.Until.UTC().Format(untilLayout)))
	}
	return strings.Join(parts, ";")
}

// Iter is a lazy occurrence iterator. It applies the rule's own UNTIL/COUNT
// bounds; horizon clipping is the caller's job (see Expand).
type Iter struct {
	rule *Rule
	base window.Window
	n    int
}

// Iter returns an iterator over the rule's occurrences of base.
func (r *Rule) Iter(base window.Window) *Iter {
	return &Iter{rule: r, base: base}
}

// Next returns the next occurrence, or false when the rule is exhausted.
// Occurrence n is computed directly from the base window so monthly
// clamping never drifts: Jan 31 yields Feb 28 (29 in leap years) and is
// back on Mar 31 the month after.
func (it *Iter) Next() (window.Window, bool) {
	if it.rule.Count > 0 && it.n >= it.rule.Count {
		return window.Window{}, false
	}

	occ := window.Window{
		Start: step(it.base.Start, it.rule.Freq, it.rule.Interval, it.n),
		End:   step(it.base.End, it.rule.Freq, it.rule.Interval, it.n),
	}
	if it.rule.Until != nil && occ.Start.After(*it.rule.Until) {
		return window.Window{}, false
	}

	it.n++
	return occ, true
}

// Expand returns the rule's occurrences of base that intersect the horizon,
// in ascending order. Occurrences past the horizon are never materialized,
// even when UNTIL/COUNT would allow more.
func (r *Rule) Expand(base window.Window, horizon window.Window) []window.Window {
	var out []window.Window
	it := r.Iter(base)
	for {
		occ, ok := it.Next()
		if !ok {
			return out
		}
		// Occurrence starts are strictly increasing, so once one starts
		// at or past the horizon end nothing later can intersect it.
		if !occ.Start.Before(horizon.End) {
			return out
		}
		if occ.Overlaps(horizon) {
			out = append(out, occ)
		}
	}
}

// ExpandEvent expands a stored event into the concrete windows intersecting
// the horizon. A non-recurring event yields its own window if it intersects,
// else nothing.
func ExpandEvent(ev *store.Event, horizon window.Window) ([]window.Window, error) {
	loc, err := timezone.ParseTimezone(ev.Timezone)
	if err != nil {
		loc = time.UTC
	}

	base, err := window.FromUnix(ev.StartTs, ev.EndTs, loc)
	if err != nil {
		return nil, err
	}

	if !ev.IsRecurring() {
		if base.Overlaps(horizon) {
			return []window.Window{base}, nil
		}
		return nil, nil
	}

	rule, err := Parse(*ev.Recurrence)
	if err != nil {
		return nil, err
	}
	return rule.Expand(base, horizon), nil
}

// step advances t by n rule intervals in t's own location, preserving the
// wall clock across DST changes.
func step(t time.Time, freq Freq, interval, n int) time.Time {
	switch freq {
	case FreqDaily:
		return t.AddDate(0, 0, n*interval)
	case FreqWeekly:
		return t.AddDate(0, 0, n*interval*7)
	case FreqMonthly:
		return stepMonths(t, n*interval)
	default:
		return t
	}
}

// stepMonths adds whole calendar months, clamping an overflowed day of
// month to the last valid day of the target month.
func stepMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	total := int(month) - 1 + months
	year += total / 12
	month = time.Month(total%12 + 1)

	if max := daysInMonth(year, int(month)); day > max {
		day = max
	}

	hour, min, sec := t.Clock()
	return time.Date(year, month, day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	}
	return 30
}

func isLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 != 0 {
		return true
	}
	return year%400 == 0
}
