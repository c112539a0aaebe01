package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/greenroomhq/greenroom/server/scheduler/conflict"
)

// Sentinel errors, checkable with errors.Is.
var (
	// ErrInvalidWindow is returned when an event window is malformed
	// (start >= end, zero length, or an unparsable timezone).
	ErrInvalidWindow = errors.New("invalid event window")
	// ErrInvalidRecurrence is returned for unbounded rules, non-positive
	// intervals, or unknown frequencies.
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
	// ErrNotFound is returned for operations on an unknown event id.
	ErrNotFound = errors.New("event not found")
	// ErrHardConflict is returned when a commit is rejected because of
	// hard conflicts. The wrapping ConflictError carries the report set.
	ErrHardConflict = errors.New("hard conflicts detected")
	// ErrStaleConfirm is returned when the confirm-time re-check finds
	// hard conflicts introduced since the tentative creation.
	ErrStaleConfirm = errors.New("confirm blocked by conflicts introduced since tentative creation")
)

// ConflictError is a structured commit rejection. It wraps ErrHardConflict
// or ErrStaleConfirm and carries the full conflict set so the caller can
// render or resolve it.
type ConflictError struct {
	Reports []conflict.Report
	reason  error
}

func newHardConflictError(reports []conflict.Report) *ConflictError {
	return &ConflictError{Reports: reports, reason: ErrHardConflict}
}

func newStaleConfirmError(reports []conflict.Report) *ConflictError {
	return &ConflictError{Reports: reports, reason: ErrStaleConfirm}
}

func (e *ConflictError) Error() string {
	uids := make([]string, 0, len(e.Reports))
	for _, r := range e.Reports {
		uids = append(uids, r.ExistingUID)
	}
	return fmt.Sprintf("%v: conflicts with %d event(s): %s",
		e.reason, len(e.Reports), strings.Join(uids, ", "))
}

func (e *ConflictError) Unwrap() error {
	return e.reason
}
