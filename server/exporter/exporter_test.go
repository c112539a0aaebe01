package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenroomhq/greenroom/store"
)

var exportBase = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func exportEvent(uid, title string, status store.Status) *store.Event {
	return &store.Event{
		UID:          uid,
		WorkspaceID:  "ws1",
		CreatedTs:    exportBase.AddDate(0, 0, -7).Unix(),
		UpdatedTs:    exportBase.AddDate(0, 0, -1).Unix(),
		Status:       status,
		Title:        title,
		StartTs:      exportBase.Unix(),
		EndTs:        exportBase.Add(time.Hour).Unix(),
		Timezone:     "UTC",
		Participants: []string{"mara"},
		Priority:     store.PriorityNormal,
	}
}

func TestExportIsDeterministic(t *testing.T) {
	events := []*store.Event{
		exportEvent("b-event", "interview", store.Confirmed),
		exportEvent("a-event", "rehearsal", store.Tentative),
	}

	first, err := Export(events)
	require.NoError(t, err)

	// Same set, different order: the document must come out byte-identical.
	second, err := Export([]*store.Event{events[1], events[0]})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	doc := string(first)
	assert.Less(t, strings.Index(doc, "a-event"), strings.Index(doc, "b-event"), "events are ordered by uid")
	assert.Contains(t, doc, "DTSTAMP:20260301T100000Z",
		"dtstamp comes from the event's update timestamp, not the wall clock")
}

func TestExportExcludesCancelledEvents(t *testing.T) {
	doc, err := Export([]*store.Event{
		exportEvent("keep", "rehearsal", store.Confirmed),
		exportEvent("drop", "scrapped", store.Cancelled),
	})
	require.NoError(t, err)

	assert.Contains(t, string(doc), "UID:keep")
	assert.NotContains(t, string(doc), "UID:drop")
}

func TestExportStatusMapping(t *testing.T) {
	doc, err := Export([]*store.Event{
		exportEvent("a", "rehearsal", store.Confirmed),
		exportEvent("b", "maybe", store.Tentative),
	})
	require.NoError(t, err)

	assert.Contains(t, string(doc), "STATUS:CONFIRMED")
	assert.Contains(t, string(doc), "STATUS:TENTATIVE")
}

func TestExportCarriesRruleUnexpanded(t *testing.T) {
	rrule := "FREQ=WEEKLY;INTERVAL=2;COUNT=8"
	ev := exportEvent("series", "writing camp", store.Confirmed)
	ev.Recurrence = &rrule

	doc, err := Export([]*store.Event{ev})
	require.NoError(t, err)

	text := string(doc)
	assert.Contains(t, text, "RRULE:FREQ=WEEKLY;INTERVAL=2;COUNT=8")
	assert.Equal(t, 1, strings.Count(text, "BEGIN:VEVENT"), "a series is one component, not expanded occurrences")
}

func TestExportOptionalFields(t *testing.T) {
	ev := exportEvent("full", "show", store.Confirmed)
	ev.Description = "soundcheck at 16:00"
	ev.Location = "Paradiso Amsterdam"

	doc, err := Export([]*store.Event{ev})
	require.NoError(t, err)

	text := string(doc)
	assert.Contains(t, text, "SUMMARY:show")
	assert.Contains(t, text, "LOCATION:Paradiso Amsterdam")

	bare, err := Export([]*store.Event{exportEvent("bare", "quick sync", store.Confirmed)})
	require.NoError(t, err)
	assert.NotContains(t, string(bare), "LOCATION")
	assert.NotContains(t, string(bare), "DESCRIPTION")
}

func TestExportEmptySet(t *testing.T) {
	doc, err := Export(nil)
	require.NoError(t, err)

	text := string(doc)
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.Contains(t, text, "END:VCALENDAR")
	assert.NotContains(t, text, "BEGIN:VEVENT")
}
