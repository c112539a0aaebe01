// Package window provides the half-open time interval primitive used
// throughout the scheduling core.
//
// A Window is the range [Start, End): it includes Start and excludes End,
// so back-to-back windows never overlap. All comparisons operate on the
// underlying UTC instants; the location carried by Start/End is display
// identity only and never affects the outcome.
package window

import (
	"fmt"
	"sort"
	"time"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// New creates a window and validates its invariant: Start must be strictly
// before End. Zero-length windows are rejected.
func New(start, end time.Time) (Window, error) {
	if !start.Before(end) {
		return Window{}, fmt.Errorf("invalid window: start %s must be before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Window{Start: start, End: end}, nil
}

// FromUnix creates a window from Unix second timestamps interpreted in loc.
// A nil loc defaults to UTC.
func FromUnix(startTs, endTs int64, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	return New(time.Unix(startTs, 0).In(loc), time.Unix(endTs, 0).In(loc))
}

// IsZero reports whether the window is the zero value.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// Overlaps reports whether two half-open windows share any instant.
// [s1, e1) and [s2, e2) overlap iff s1 < e2 AND s2 < e1, so a window
// ending exactly when another starts does not overlap it.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Contains reports whether the instant t falls inside the window.
// The start is included, the end is not.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Intersect returns the overlapping portion of two windows.
// The second return value is false when they do not overlap.
func (w Window) Intersect(o Window) (Window, bool) {
	if !w.Overlaps(o) {
		return Window{}, false
	}
	start := w.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := w.End
	if o.End.Before(end) {
		end = o.End
	}
	return Window{Start: start, End: end}, true
}

// In returns a copy of the window with both endpoints converted to loc.
// This changes presentation only; the instants are unchanged.
func (w Window) In(loc *time.Location) Window {
	return Window{Start: w.Start.In(loc), End: w.End.In(loc)}
}

// String formats the window for logs and error messages.
func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// Merge sorts the given windows by start and coalesces overlapping or
// back-to-back entries into maximal disjoint windows. The input slice is
// not modified. The result is sorted by start time.
func Merge(windows []Window) []Window {
	if len(windows) == 0 {
		return nil
	}

	sorted := make([]Window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		// Adjacent windows coalesce too: a busy block ending at T and
		// another starting at T form one continuous busy span.
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
