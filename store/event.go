package store

import (
	"context"
	"time"
)

// Event is the stored representation of a calendar event.
//
// StartTs/EndTs are Unix seconds for the half-open interval [start, end).
// Timezone is the IANA identifier the event was created in; it is carried
// for display and recurrence stepping, comparisons always happen on the
// underlying instants.
type Event struct {
	ID          int32
	UID         string
	WorkspaceID string
	CreatedTs   int64
	UpdatedTs   int64
	Status      Status

	Title       string
	Description string
	Location    string

	StartTs  int64
	EndTs    int64
	Timezone string

	// Recurrence is a serialized rule expression (e.g.
	// "FREQ=WEEKLY;INTERVAL=2;COUNT=8"), nil for one-off events.
	Recurrence *string

	Participants []string
	Priority     Priority
}

// FindEvent is the find condition for events.
type FindEvent struct {
	ID          *int32
	UID         *string
	WorkspaceID *string
	Status      *Status

	// ExcludeCancelled filters out CANCELLED rows regardless of Status.
	ExcludeCancelled bool

	// StartTs/EndTs select events overlapping [StartTs, EndTs).
	StartTs *int64
	EndTs   *int64

	Limit  *int
	Offset *int
}

// UpdateEvent is the update request for an event. Nil fields are unchanged.
type UpdateEvent struct {
	ID           int32
	UpdatedTs    *int64
	Status       *Status
	Title        *string
	Description  *string
	Location     *string
	StartTs      *int64
	EndTs        *int64
	Timezone     *string
	Recurrence   *string // empty string clears the rule
	Participants []string
	Priority     *Priority
}

// StartTime returns the event start as a time instant.
func (e *Event) StartTime() time.Time {
	return time.Unix(e.StartTs, 0)
}

// EndTime returns the event end as a time instant.
func (e *Event) EndTime() time.Time {
	return time.Unix(e.EndTs, 0)
}

// HasParticipant reports whether person is among the event's participants.
func (e *Event) HasParticipant(person string) bool {
	for _, p := range e.Participants {
		if p == person {
			return true
		}
	}
	return false
}

// SharesParticipant reports whether the two events have any participant
// in common.
func (e *Event) SharesParticipant(other *Event) bool {
	for _, p := range other.Participants {
		if e.HasParticipant(p) {
			return true
		}
	}
	return false
}

// IsRecurring reports whether the event carries a recurrence rule.
func (e *Event) IsRecurring() bool {
	return e.Recurrence != nil && *e.Recurrence != ""
}

// CreateEvent creates a new event row.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	return s.driver.CreateEvent(ctx, create)
}

// ListEvents lists events matching the filter, ordered by start time.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent returns the first event matching the filter, or nil.
func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	list, err := s.driver.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateEvent applies a partial update to an event row.
func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) error {
	return s.driver.UpdateEvent(ctx, update)
}
