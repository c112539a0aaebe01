// Package conflict detects overlaps between a candidate event and the
// confirmed events it shares participants with.
//
// Detection is a pure function of its inputs: no store access, no
// mutation, so re-checks are idempotent and callers may abandon them at
// any point.
package conflict

import (
	"log/slog"

	"github.com/greenroomhq/greenroom/server/scheduler/recurrence"
	"github.com/greenroomhq/greenroom/server/scheduler/window"
	"github.com/greenroomhq/greenroom/store"
)

// Severity classifies a conflict.
type Severity string

const (
	// SeveritySoft marks an overlap resolvable by priority ordering: the
	// candidate is strictly lower priority than the existing event and may
	// be auto-rescheduled. It does not block commit.
	SeveritySoft Severity = "SOFT"
	// SeverityHard marks an overlap priority cannot resolve (equal
	// priorities, or the candidate outranks an already-confirmed event).
	// It blocks commit and requires explicit resolution.
	SeverityHard Severity = "HARD"
)

// Report describes one conflicting event pair. Overlap is the first
// overlapping occurrence window found within the detection horizon.
type Report struct {
	CandidateUID string
	ExistingUID  string
	Overlap      window.Window
	Severity     Severity
}

// Detect expands the candidate over the horizon and tests every concrete
// occurrence pair against each confirmed event sharing a participant.
// One report is emitted per conflicting event pair (the earliest
// overlapping occurrence wins); self-conflicts are never reported.
// The existing slice order determines report order, so callers passing a
// deterministic order get deterministic reports.
func Detect(candidate *store.Event, existing []*store.Event, horizon window.Window) ([]Report, error) {
	candidateOccs, err := recurrence.ExpandEvent(candidate, horizon)
	if err != nil {
		return nil, err
	}
	if len(candidateOccs) == 0 {
		return nil, nil
	}

	var reports []Report
	for _, other := range existing {
		if other.UID == candidate.UID {
			continue
		}
		if other.Status != store.Confirmed {
			continue
		}
		if !candidate.SharesParticipant(other) {
			continue
		}

		otherOccs, err := recurrence.ExpandEvent(other, horizon)
		if err != nil {
			slog.Warn("skipping event with unparsable recurrence during detection",
				"event_uid", other.UID,
				"error", err,
			)
			continue
		}

		if overlap, ok := firstOverlap(candidateOccs, otherOccs); ok {
			reports = append(reports, Report{
				CandidateUID: candidate.UID,
				ExistingUID:  other.UID,
				Overlap:      overlap,
				Severity:     classify(candidate.Priority, other.Priority),
			})
		}
	}

	return reports, nil
}

// HasHard reports whether any report in the set is a hard conflict.
func HasHard(reports []Report) bool {
	for _, r := range reports {
		if r.Severity == SeverityHard {
			return true
		}
	}
	return false
}

// Partition splits reports into soft and hard sets, preserving order.
func Partition(reports []Report) (soft, hard []Report) {
	for _, r := range reports {
		if r.Severity == SeverityHard {
			hard = append(hard, r)
		} else {
			soft = append(soft, r)
		}
	}
	return soft, hard
}

// classify applies the severity rule: a candidate strictly below the
// existing event's priority is soft (the candidate occurrence is the one
// that may move); equal priority, or a candidate outranking a confirmed
// event, is hard.
func classify(candidate, existing store.Priority) Severity {
	if candidate.Rank() < existing.Rank() {
		return SeveritySoft
	}
	return SeverityHard
}

// firstOverlap finds the earliest overlapping pair between two ascending
// occurrence lists. Both lists are horizon-bounded, so the scan is too.
func firstOverlap(a, b []window.Window) (window.Window, bool) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if overlap, ok := a[i].Intersect(b[j]); ok {
			return overlap, true
		}
		// Advance whichever occurrence ends first; both lists ascend.
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return window.Window{}, false
}
