package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenroomhq/greenroom/server/scheduler/window"
	"github.com/greenroomhq/greenroom/store"
)

var detectBase = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func testEvent(uid string, start time.Time, d time.Duration, priority store.Priority, participants ...string) *store.Event {
	return &store.Event{
		UID:          uid,
		WorkspaceID:  "ws1",
		Status:       store.Confirmed,
		Title:        uid,
		StartTs:      start.Unix(),
		EndTs:        start.Add(d).Unix(),
		Timezone:     "UTC",
		Participants: participants,
		Priority:     priority,
	}
}

func testHorizon(t *testing.T) window.Window {
	t.Helper()
	h, err := window.New(detectBase.AddDate(0, 0, -1), detectBase.AddDate(0, 2, 0))
	require.NoError(t, err)
	return h
}

func TestDetectClassifiesByPriority(t *testing.T) {
	cases := []struct {
		name      string
		candidate store.Priority
		existing  store.Priority
		want      Severity
	}{
		{"equal priority is hard", store.PriorityNormal, store.PriorityNormal, SeverityHard},
		{"candidate below existing is soft", store.PriorityLow, store.PriorityNormal, SeveritySoft},
		{"candidate above existing is hard", store.PriorityHigh, store.PriorityNormal, SeverityHard},
		{"critical vs critical is hard", store.PriorityCritical, store.PriorityCritical, SeverityHard},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			existing := testEvent("existing", detectBase, time.Hour, tc.existing, "mara")
			candidate := testEvent("candidate", detectBase.Add(30*time.Minute), time.Hour, tc.candidate, "mara")

			reports, err := Detect(candidate, []*store.Event{existing}, testHorizon(t))
			require.NoError(t, err)
			require.Len(t, reports, 1)
			assert.Equal(t, tc.want, reports[0].Severity)
			assert.Equal(t, "candidate", reports[0].CandidateUID)
			assert.Equal(t, "existing", reports[0].ExistingUID)
		})
	}
}

func TestDetectIgnoresDisjointAndUnrelatedEvents(t *testing.T) {
	horizon := testHorizon(t)

	t.Run("no shared participant", func(t *testing.T) {
		existing := testEvent("existing", detectBase, time.Hour, store.PriorityNormal, "mara")
		candidate := testEvent("candidate", detectBase, time.Hour, store.PriorityNormal, "theo")

		reports, err := Detect(candidate, []*store.Event{existing}, horizon)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("back-to-back windows", func(t *testing.T) {
		existing := testEvent("existing", detectBase, time.Hour, store.PriorityNormal, "mara")
		candidate := testEvent("candidate", detectBase.Add(time.Hour), time.Hour, store.PriorityNormal, "mara")

		reports, err := Detect(candidate, []*store.Event{existing}, horizon)
		require.NoError(t, err)
		assert.Empty(t, reports, "[start, end) windows touching at a boundary do not conflict")
	})

	t.Run("candidate's own uid", func(t *testing.T) {
		candidate := testEvent("same", detectBase, time.Hour, store.PriorityNormal, "mara")
		stored := testEvent("same", detectBase, time.Hour, store.PriorityNormal, "mara")

		reports, err := Detect(candidate, []*store.Event{stored}, horizon)
		require.NoError(t, err)
		assert.Empty(t, reports, "an event never conflicts with itself")
	})

	t.Run("tentative existing event", func(t *testing.T) {
		existing := testEvent("existing", detectBase, time.Hour, store.PriorityNormal, "mara")
		existing.Status = store.Tentative
		candidate := testEvent("candidate", detectBase, time.Hour, store.PriorityNormal, "mara")

		reports, err := Detect(candidate, []*store.Event{existing}, horizon)
		require.NoError(t, err)
		assert.Empty(t, reports, "only confirmed events block")
	})
}

func TestDetectExpandsRecurringCandidates(t *testing.T) {
	horizon := testHorizon(t)

	// Candidate repeats weekly; the existing one-off sits on the third
	// occurrence, two weeks after the candidate's base window.
	rrule := "FREQ=WEEKLY;COUNT=6"
	candidate := testEvent("candidate", detectBase, time.Hour, store.PriorityNormal, "mara")
	candidate.Recurrence = &rrule
	existing := testEvent("existing", detectBase.AddDate(0, 0, 14), time.Hour, store.PriorityNormal, "mara")

	reports, err := Detect(candidate, []*store.Event{existing}, horizon)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, detectBase.AddDate(0, 0, 14), reports[0].Overlap.Start)
}

func TestDetectReportsOnePairOnce(t *testing.T) {
	horizon := testHorizon(t)

	// Both events repeat daily over the same week: many occurrence pairs
	// overlap, but the pair gets a single report with the earliest overlap.
	rrule := "FREQ=DAILY;COUNT=7"
	candidate := testEvent("candidate", detectBase, time.Hour, store.PriorityNormal, "mara")
	candidate.Recurrence = &rrule
	other := "FREQ=DAILY;COUNT=7"
	existing := testEvent("existing", detectBase.Add(30*time.Minute), time.Hour, store.PriorityNormal, "mara")
	existing.Recurrence = &other

	reports, err := Detect(candidate, []*store.Event{existing}, horizon)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, detectBase.Add(30*time.Minute), reports[0].Overlap.Start)
	assert.Equal(t, detectBase.Add(time.Hour), reports[0].Overlap.End)
}

func TestDetectCandidateOutsideHorizon(t *testing.T) {
	horizon := testHorizon(t)

	existing := testEvent("existing", detectBase, time.Hour, store.PriorityNormal, "mara")
	candidate := testEvent("candidate", detectBase.AddDate(1, 0, 0), time.Hour, store.PriorityNormal, "mara")

	reports, err := Detect(candidate, []*store.Event{existing}, horizon)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestPartition(t *testing.T) {
	reports := []Report{
		{ExistingUID: "a", Severity: SeveritySoft},
		{ExistingUID: "b", Severity: SeverityHard},
		{ExistingUID: "c", Severity: SeveritySoft},
	}

	soft, hard := Partition(reports)
	require.Len(t, soft, 2)
	require.Len(t, hard, 1)
	assert.Equal(t, "b", hard[0].ExistingUID)
	assert.True(t, HasHard(reports))
	assert.False(t, HasHard(soft))
}
