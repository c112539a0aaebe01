package schedule

import (
	"context"
	"time"

	"github.com/greenroomhq/greenroom/server/scheduler/conflict"
	"github.com/greenroomhq/greenroom/server/scheduler/window"
	"github.com/greenroomhq/greenroom/store"
)

// Service is the scheduling core exposed to the surrounding bot/command
// layer. All mutations on the same workspace are serialized so that
// conflict detection and commit are observed as one step.
type Service interface {
	// CreateEvent validates the request, detects conflicts, and commits
	// atomically: hard conflicts reject without persisting, soft conflicts
	// persist as TENTATIVE and are surfaced in the Result, a clean check
	// persists as CONFIRMED.
	CreateEvent(ctx context.Context, create *CreateEventRequest) (*Result, error)

	// UpdateEvent re-validates the changed event as a full re-create
	// against all other events; the event never conflicts with its own
	// prior occurrences. Same commit rule as CreateEvent.
	UpdateEvent(ctx context.Context, uid string, update *UpdateEventRequest) (*Result, error)

	// CancelEvent marks the event CANCELLED. The row is retained for
	// audit and id stability.
	CancelEvent(ctx context.Context, uid string) error

	// ConfirmEvent promotes a TENTATIVE event to CONFIRMED after re-running
	// detection to catch conflicts introduced since tentative creation.
	ConfirmEvent(ctx context.Context, uid string) (*Result, error)

	// QueryEvents returns the non-cancelled events whose expansion
	// intersects the horizon, each exactly once, ordered by start time.
	QueryEvents(ctx context.Context, find *QueryEventsRequest) ([]*store.Event, error)

	// GetEvent resolves an event by uid regardless of status, so cancelled
	// events stay reachable for audit.
	GetEvent(ctx context.Context, uid string) (*store.Event, error)

	// ProposeSlots searches the horizon for free slots for the given
	// participants. Empty result means nothing fits; it is not an error.
	ProposeSlots(ctx context.Context, propose *ProposeSlotsRequest) ([]window.Window, error)

	// AddAvailability records an explicit busy or free-preference window
	// for a person.
	AddAvailability(ctx context.Context, add *AddAvailabilityRequest) (*store.AvailabilityBlock, error)

	// ListAvailability returns a person's availability blocks, or the
	// whole workspace's when person is empty.
	ListAvailability(ctx context.Context, workspaceID, person string) ([]*store.AvailabilityBlock, error)
}

// Result is the outcome of a committed mutation. Conflicts holds the soft
// conflicts the caller still has to accept or resolve; it is empty when
// the event committed as CONFIRMED.
type Result struct {
	Event     *store.Event
	Conflicts []conflict.Report
}

// CreateEventRequest is the request to create an event.
type CreateEventRequest struct {
	WorkspaceID string
	Title       string
	Description string
	Location    string

	StartTs  int64
	EndTs    int64
	Timezone string

	// Recurrence is a rule expression; nil or empty for one-off events.
	Recurrence *string

	Participants []string
	Priority     store.Priority
}

// UpdateEventRequest is the request to update an event. Nil fields are
// unchanged.
type UpdateEventRequest struct {
	Title       *string
	Description *string
	Location    *string

	StartTs  *int64
	EndTs    *int64
	Timezone *string

	// Recurrence: empty string clears the rule.
	Recurrence *string

	Participants []string
	Priority     *store.Priority
}

// QueryEventsRequest selects events for a workspace, optionally narrowed
// to one participant, within a mandatory horizon.
type QueryEventsRequest struct {
	WorkspaceID string
	Person      string
	Horizon     window.Window
}

// ProposeSlotsRequest is the request for slot proposals.
type ProposeSlotsRequest struct {
	WorkspaceID  string
	Duration     time.Duration
	Participants []string
	Horizon      window.Window
	Preferred    []window.Window
	MaxResults   int
}

// AddAvailabilityRequest records an explicit availability block.
type AddAvailabilityRequest struct {
	WorkspaceID string
	Person      string
	StartTs     int64
	EndTs       int64
	Kind        store.BlockKind
}
