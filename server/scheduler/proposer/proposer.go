// Package proposer searches a bounded horizon for time slots that satisfy
// duration, participant availability, and preference constraints.
package proposer

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/greenroomhq/greenroom/server/scheduler/availability"
	"github.com/greenroomhq/greenroom/server/scheduler/window"
	"github.com/greenroomhq/greenroom/store"
)

// DefaultMaxResults caps the returned candidates when the request does not
// say otherwise.
const DefaultMaxResults = 5

// ErrInvalidDuration is returned when the requested duration is not positive.
var ErrInvalidDuration = errors.New("proposer: duration must be positive")

// Request describes a slot search.
type Request struct {
	Duration     time.Duration
	Participants []string
	Horizon      window.Window
	// Preferred windows rank candidates; a slot overlapping them scores
	// higher. Participants' FREE_PREFERENCE blocks are added automatically.
	Preferred  []window.Window
	MaxResults int
}

// candidate pairs a slot with its preference overlap for ranking.
type candidate struct {
	slot    window.Window
	overlap time.Duration
}

// Propose returns up to MaxResults non-conflicting slots of the requested
// duration within the horizon, best first. An empty result is not an
// error: it means no free slot of sufficient length exists and the caller
// may retry with a wider horizon.
//
// The search is pure and read-only; ctx lets callers abandon it early.
func Propose(ctx context.Context, req Request, events []*store.Event, blocks []*store.AvailabilityBlock) ([]window.Window, error) {
	if req.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if req.Horizon.Duration() < req.Duration {
		return nil, nil
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	// One combined busy timeline across all participants: a slot works
	// only when every participant is free, so the union of busy time is
	// what the gap scan must avoid.
	var busy []window.Window
	preferred := append([]window.Window(nil), req.Preferred...)
	for _, person := range req.Participants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		busy = append(busy, availability.BusyWindows(person, req.Horizon, events, blocks)...)
		preferred = append(preferred, availability.PreferenceWindows(person, req.Horizon, blocks)...)
	}
	busy = window.Merge(busy)
	preferred = window.Merge(preferred)

	candidates := scanGaps(req.Horizon, req.Duration, busy, preferred)

	// Rank: preference overlap descending, then earliest start.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].overlap != candidates[j].overlap {
			return candidates[i].overlap > candidates[j].overlap
		}
		return candidates[i].slot.Start.Before(candidates[j].slot.Start)
	})

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	slots := make([]window.Window, 0, len(candidates))
	for _, c := range candidates {
		slots = append(slots, c.slot)
	}
	return slots, nil
}

// scanGaps walks the complement of the busy timeline within the horizon
// and collects candidate slots from every gap long enough.
func scanGaps(horizon window.Window, duration time.Duration, busy, preferred []window.Window) []candidate {
	var out []candidate
	current := horizon.Start

	for _, b := range busy {
		if !b.End.After(current) {
			continue
		}
		if b.Start.After(current) {
			gapEnd := b.Start
			if gapEnd.After(horizon.End) {
				gapEnd = horizon.End
			}
			out = append(out, slotsInGap(window.Window{Start: current, End: gapEnd}, duration, preferred)...)
		}
		if b.End.After(current) {
			current = b.End
		}
		if !current.Before(horizon.End) {
			return out
		}
	}

	if horizon.End.Sub(current) >= duration {
		out = append(out, slotsInGap(window.Window{Start: current, End: horizon.End}, duration, preferred)...)
	}
	return out
}

// slotsInGap yields the first-fit slot at the gap start plus one slot
// aligned to each preferred window the gap covers, deduplicated by start.
func slotsInGap(gap window.Window, duration time.Duration, preferred []window.Window) []candidate {
	if gap.Duration() < duration {
		return nil
	}

	starts := []time.Time{gap.Start}
	for _, p := range preferred {
		aligned := p.Start
		if aligned.Before(gap.Start) {
			aligned = gap.Start
		}
		if !aligned.Add(duration).After(gap.End) && !aligned.Equal(gap.Start) {
			starts = append(starts, aligned)
		}
	}

	seen := make(map[int64]bool, len(starts))
	var out []candidate
	for _, start := range starts {
		if seen[start.Unix()] {
			continue
		}
		seen[start.Unix()] = true
		slot := window.Window{Start: start, End: start.Add(duration)}
		out = append(out, candidate{slot: slot, overlap: preferenceOverlap(slot, preferred)})
	}
	return out
}

// preferenceOverlap sums the slot's overlap with the preferred windows.
// Preferred windows are pre-merged, so no span is counted twice.
func preferenceOverlap(slot window.Window, preferred []window.Window) time.Duration {
	var total time.Duration
	for _, p := range preferred {
		if overlap, ok := slot.Intersect(p); ok {
			total += overlap.Duration()
		}
	}
	return total
}
