// Package exporter serializes events into iCalendar (RFC 5545) documents
// consumable by third-party calendar applications.
//
// Output is deterministic: the same event set always produces
// byte-identical bytes, so exports can be diffed and cached. Events are
// ordered by UID and DTSTAMP comes from each event's update timestamp,
// never from the wall clock.
package exporter

import (
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/greenroomhq/greenroom/store"
)

const productID = "-//greenroom//scheduling core//EN"

// Export serializes the given events as an iCalendar document. Cancelled
// events are excluded. Recurring events carry their RRULE expression
// instead of pre-expanded occurrences, keeping output size independent of
// any horizon.
func Export(events []*store.Event) ([]byte, error) {
	sorted := make([]*store.Event, 0, len(events))
	for _, ev := range events {
		if ev.Status == store.Cancelled {
			continue
		}
		sorted = append(sorted, ev)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UID < sorted[j].UID
	})

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range sorted {
		vevent := cal.AddEvent(ev.UID)
		vevent.SetDtStampTime(time.Unix(ev.UpdatedTs, 0).UTC())
		vevent.SetCreatedTime(time.Unix(ev.CreatedTs, 0).UTC())
		vevent.SetStartAt(ev.StartTime().UTC())
		vevent.SetEndAt(ev.EndTime().UTC())
		vevent.SetSummary(ev.Title)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			vevent.SetLocation(ev.Location)
		}
		if ev.Status == store.Tentative {
			vevent.SetStatus(ics.ObjectStatusTentative)
		} else {
			vevent.SetStatus(ics.ObjectStatusConfirmed)
		}
		if ev.IsRecurring() {
			vevent.AddRrule(*ev.Recurrence)
		}
		for _, p := range ev.Participants {
			vevent.AddAttendee(p)
		}
	}

	return []byte(cal.Serialize()), nil
}
