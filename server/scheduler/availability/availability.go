// Package availability derives per-person busy/free timelines from
// confirmed events and explicit availability blocks.
//
// Busy sets are never persisted: they are recomputed from the event and
// block records on every query so they cannot drift from the source data.
package availability

import (
	"log/slog"

	"github.com/greenroomhq/greenroom/server/scheduler/recurrence"
	"github.com/greenroomhq/greenroom/server/scheduler/window"
	"github.com/greenroomhq/greenroom/store"
)

// BusyWindows returns the merged busy timeline of a person within the
// horizon: the union of the person's confirmed-event occurrences and BUSY
// availability blocks, coalesced into disjoint sorted windows.
func BusyWindows(person string, horizon window.Window, events []*store.Event, blocks []*store.AvailabilityBlock) []window.Window {
	var busy []window.Window

	for _, ev := range events {
		if ev.Status != store.Confirmed || !ev.HasParticipant(person) {
			continue
		}
		occurrences, err := recurrence.ExpandEvent(ev, horizon)
		if err != nil {
			// A stored rule that no longer parses must not silently free
			// up the person's time; treat the base window as busy.
			slog.Warn("skipping unparsable recurrence, using base window",
				"event_uid", ev.UID,
				"error", err,
			)
			if base, werr := window.FromUnix(ev.StartTs, ev.EndTs, nil); werr == nil && base.Overlaps(horizon) {
				busy = append(busy, base)
			}
			continue
		}
		busy = append(busy, occurrences...)
	}

	for _, block := range blocks {
		if block.Kind != store.BlockBusy || block.Person != person {
			continue
		}
		w, err := window.FromUnix(block.StartTs, block.EndTs, nil)
		if err != nil {
			continue
		}
		if clipped, ok := w.Intersect(horizon); ok {
			busy = append(busy, clipped)
		}
	}

	return window.Merge(busy)
}

// IsFree reports whether the person has no busy window overlapping w.
func IsFree(person string, w window.Window, events []*store.Event, blocks []*store.AvailabilityBlock) bool {
	for _, busy := range BusyWindows(person, w, events, blocks) {
		if busy.Overlaps(w) {
			return false
		}
	}
	return true
}

// PreferenceWindows returns the person's FREE_PREFERENCE windows clipped to
// the horizon, merged and sorted. These rank slot proposals; they never
// mark time busy.
func PreferenceWindows(person string, horizon window.Window, blocks []*store.AvailabilityBlock) []window.Window {
	var preferred []window.Window
	for _, block := range blocks {
		if block.Kind != store.BlockFreePreference || block.Person != person {
			continue
		}
		w, err := window.FromUnix(block.StartTs, block.EndTs, nil)
		if err != nil {
			continue
		}
		if clipped, ok := w.Intersect(horizon); ok {
			preferred = append(preferred, clipped)
		}
	}
	return window.Merge(preferred)
}
