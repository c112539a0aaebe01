// Package schedule implements the scheduling core: event lifecycle with
// conflict detection at commit time, slot proposals, and availability
// management.
//
// Mutations on a workspace are serialized by an in-process lock per
// workspace id, so two concurrent creates cannot both pass detection and
// both commit. Detection itself is pure and runs on data loaded inside
// the critical section.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/greenroomhq/greenroom/internal/util"
	"github.com/greenroomhq/greenroom/server/scheduler/conflict"
	"github.com/greenroomhq/greenroom/server/scheduler/proposer"
	"github.com/greenroomhq/greenroom/server/scheduler/recurrence"
	"github.com/greenroomhq/greenroom/server/scheduler/window"
	"github.com/greenroomhq/greenroom/server/timezone"
	"github.com/greenroomhq/greenroom/store"
)

// Store is the narrow persistence interface the service needs.
type Store interface {
	CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error)
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)
	GetEvent(ctx context.Context, find *store.FindEvent) (*store.Event, error)
	UpdateEvent(ctx context.Context, update *store.UpdateEvent) error
	CreateAvailabilityBlock(ctx context.Context, create *store.AvailabilityBlock) (*store.AvailabilityBlock, error)
	ListAvailabilityBlocks(ctx context.Context, find *store.FindAvailabilityBlock) ([]*store.AvailabilityBlock, error)
}

type service struct {
	store Store
	now   func() time.Time

	mu         sync.Mutex
	workspaces map[string]*sync.Mutex
}

// NewService creates the scheduling service.
func NewService(st Store) Service {
	return &service{
		store:      st,
		now:        time.Now,
		workspaces: make(map[string]*sync.Mutex),
	}
}

// lockWorkspace serializes mutations per workspace. Cross-workspace
// operations proceed fully in parallel.
func (s *service) lockWorkspace(id string) func() {
	s.mu.Lock()
	l, ok := s.workspaces[id]
	if !ok {
		l = &sync.Mutex{}
		s.workspaces[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CreateEvent implements Service.
func (s *service) CreateEvent(ctx context.Context, create *CreateEventRequest) (*Result, error) {
	started := s.now()
	defer func() {
		slog.Debug("event create operation",
			"workspace", create.WorkspaceID,
			"title", create.Title,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}()

	if create.WorkspaceID == "" {
		return nil, fmt.Errorf("workspace id is required")
	}
	if create.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(create.Participants) == 0 {
		return nil, fmt.Errorf("at least one participant is required")
	}

	tz := create.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	if _, err := window.FromUnix(create.StartTs, create.EndTs, loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	// Fail fast on a bad rule before any detection work, and store the
	// normalized expression.
	var ruleExpr *string
	if create.Recurrence != nil && *create.Recurrence != "" {
		rule, err := recurrence.Parse(*create.Recurrence)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
		}
		normalized := rule.String()
		ruleExpr = &normalized
	}

	priority := create.Priority
	if priority == "" {
		priority = store.PriorityNormal
	}

	now := s.now().Unix()
	candidate := &store.Event{
		UID:          util.GenUUID(),
		WorkspaceID:  create.WorkspaceID,
		CreatedTs:    now,
		UpdatedTs:    now,
		Title:        create.Title,
		Description:  create.Description,
		Location:     create.Location,
		StartTs:      create.StartTs,
		EndTs:        create.EndTs,
		Timezone:     tz,
		Recurrence:   ruleExpr,
		Participants: create.Participants,
		Priority:     priority,
	}

	unlock := s.lockWorkspace(create.WorkspaceID)
	defer unlock()

	soft, err := s.detect(ctx, candidate)
	if err != nil {
		return nil, err
	}

	candidate.Status = store.Confirmed
	if len(soft) > 0 {
		candidate.Status = store.Tentative
		slog.Info("soft conflicts detected, committing tentative",
			"workspace", create.WorkspaceID,
			"title", create.Title,
			"conflict_count", len(soft),
		)
	}

	created, err := s.store.CreateEvent(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return &Result{Event: created, Conflicts: soft}, nil
}

// UpdateEvent implements Service.
func (s *service) UpdateEvent(ctx context.Context, uid string, update *UpdateEventRequest) (*Result, error) {
	existing, err := s.getByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if existing.Status == store.Cancelled {
		return nil, fmt.Errorf("cannot update a cancelled event: %w", ErrNotFound)
	}

	unlock := s.lockWorkspace(existing.WorkspaceID)
	defer unlock()

	// Re-read inside the critical section: the event may have moved
	// between the lookup and the lock.
	existing, err = s.getByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	changed := *existing
	if update.Title != nil {
		changed.Title = *update.Title
	}
	if update.Description != nil {
		changed.Description = *update.Description
	}
	if update.Location != nil {
		changed.Location = *update.Location
	}
	if update.StartTs != nil {
		changed.StartTs = *update.StartTs
	}
	if update.EndTs != nil {
		changed.EndTs = *update.EndTs
	}
	if update.Timezone != nil {
		changed.Timezone = *update.Timezone
	}
	if update.Recurrence != nil {
		if *update.Recurrence == "" {
			changed.Recurrence = nil
		} else {
			changed.Recurrence = update.Recurrence
		}
	}
	if update.Participants != nil {
		changed.Participants = update.Participants
	}
	if update.Priority != nil {
		changed.Priority = *update.Priority
	}

	loc, err := timezone.ParseTimezone(changed.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	if _, err := window.FromUnix(changed.StartTs, changed.EndTs, loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	if changed.IsRecurring() {
		rule, err := recurrence.Parse(*changed.Recurrence)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
		}
		normalized := rule.String()
		changed.Recurrence = &normalized
	}

	// Full re-create check against all other events; Detect skips the
	// event's own uid, so it never conflicts with its prior occurrences.
	soft, err := s.detect(ctx, &changed)
	if err != nil {
		return nil, err
	}

	status := store.Confirmed
	if len(soft) > 0 {
		status = store.Tentative
	}
	updatedTs := s.now().Unix()

	storeUpdate := &store.UpdateEvent{
		ID:           existing.ID,
		UpdatedTs:    &updatedTs,
		Status:       &status,
		Title:        update.Title,
		Description:  update.Description,
		Location:     update.Location,
		StartTs:      update.StartTs,
		EndTs:        update.EndTs,
		Timezone:     update.Timezone,
		Recurrence:   recurrenceUpdate(&changed, update),
		Participants: update.Participants,
		Priority:     update.Priority,
	}
	if err := s.store.UpdateEvent(ctx, storeUpdate); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	updated, err := s.getByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &Result{Event: updated, Conflicts: soft}, nil
}

// CancelEvent implements Service.
func (s *service) CancelEvent(ctx context.Context, uid string) error {
	existing, err := s.getByUID(ctx, uid)
	if err != nil {
		return err
	}

	unlock := s.lockWorkspace(existing.WorkspaceID)
	defer unlock()

	existing, err = s.getByUID(ctx, uid)
	if err != nil {
		return err
	}
	if existing.Status == store.Cancelled {
		return nil
	}

	status := store.Cancelled
	updatedTs := s.now().Unix()
	if err := s.store.UpdateEvent(ctx, &store.UpdateEvent{
		ID:        existing.ID,
		Status:    &status,
		UpdatedTs: &updatedTs,
	}); err != nil {
		return fmt.Errorf("failed to cancel event: %w", err)
	}

	slog.Info("event cancelled", "workspace", existing.WorkspaceID, "uid", uid)
	return nil
}

// ConfirmEvent implements Service.
func (s *service) ConfirmEvent(ctx context.Context, uid string) (*Result, error) {
	existing, err := s.getByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	unlock := s.lockWorkspace(existing.WorkspaceID)
	defer unlock()

	existing, err = s.getByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	switch existing.Status {
	case store.Cancelled:
		return nil, fmt.Errorf("cannot confirm a cancelled event: %w", ErrNotFound)
	case store.Confirmed:
		return &Result{Event: existing}, nil
	}

	// Stale-check: conflicts may have appeared since the tentative
	// creation. Soft ones were the reason the event is tentative and are
	// considered accepted by the caller; new hard ones block.
	horizon, err := s.detectionHorizon(existing)
	if err != nil {
		return nil, err
	}
	others, err := s.confirmedEvents(ctx, existing.WorkspaceID)
	if err != nil {
		return nil, err
	}
	reports, err := conflict.Detect(existing, others, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to re-check conflicts: %w", err)
	}
	soft, hard := conflict.Partition(reports)
	if len(hard) > 0 {
		return nil, newStaleConfirmError(hard)
	}

	status := store.Confirmed
	updatedTs := s.now().Unix()
	if err := s.store.UpdateEvent(ctx, &store.UpdateEvent{
		ID:        existing.ID,
		Status:    &status,
		UpdatedTs: &updatedTs,
	}); err != nil {
		return nil, fmt.Errorf("failed to confirm event: %w", err)
	}

	confirmed, err := s.getByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &Result{Event: confirmed, Conflicts: soft}, nil
}

// QueryEvents implements Service.
func (s *service) QueryEvents(ctx context.Context, find *QueryEventsRequest) ([]*store.Event, error) {
	list, err := s.store.ListEvents(ctx, &store.FindEvent{
		WorkspaceID:      &find.WorkspaceID,
		ExcludeCancelled: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	result := make([]*store.Event, 0, len(list))
	for _, ev := range list {
		if find.Person != "" && !ev.HasParticipant(find.Person) {
			continue
		}
		occurrences, err := recurrence.ExpandEvent(ev, find.Horizon)
		if err != nil {
			slog.Warn("skipping event with unparsable recurrence in query",
				"event_uid", ev.UID,
				"error", err,
			)
			continue
		}
		if len(occurrences) > 0 {
			result = append(result, ev)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTs < result[j].StartTs
	})
	return result, nil
}

// GetEvent implements Service.
func (s *service) GetEvent(ctx context.Context, uid string) (*store.Event, error) {
	return s.getByUID(ctx, uid)
}

// ProposeSlots implements Service. The search is read-only and runs
// outside the workspace lock.
func (s *service) ProposeSlots(ctx context.Context, propose *ProposeSlotsRequest) ([]window.Window, error) {
	events, err := s.confirmedEvents(ctx, propose.WorkspaceID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.store.ListAvailabilityBlocks(ctx, &store.FindAvailabilityBlock{
		WorkspaceID: &propose.WorkspaceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list availability blocks: %w", err)
	}

	return proposer.Propose(ctx, proposer.Request{
		Duration:     propose.Duration,
		Participants: propose.Participants,
		Horizon:      propose.Horizon,
		Preferred:    propose.Preferred,
		MaxResults:   propose.MaxResults,
	}, events, blocks)
}

// AddAvailability implements Service.
func (s *service) AddAvailability(ctx context.Context, add *AddAvailabilityRequest) (*store.AvailabilityBlock, error) {
	if add.WorkspaceID == "" || add.Person == "" {
		return nil, fmt.Errorf("workspace id and person are required")
	}
	if add.Kind != store.BlockBusy && add.Kind != store.BlockFreePreference {
		return nil, fmt.Errorf("unknown availability kind %q", add.Kind)
	}
	if _, err := window.FromUnix(add.StartTs, add.EndTs, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}

	return s.store.CreateAvailabilityBlock(ctx, &store.AvailabilityBlock{
		UID:         util.GenShortUID(),
		WorkspaceID: add.WorkspaceID,
		CreatedTs:   s.now().Unix(),
		Person:      add.Person,
		StartTs:     add.StartTs,
		EndTs:       add.EndTs,
		Kind:        add.Kind,
	})
}

// ListAvailability implements Service.
func (s *service) ListAvailability(ctx context.Context, workspaceID, person string) ([]*store.AvailabilityBlock, error) {
	find := &store.FindAvailabilityBlock{WorkspaceID: &workspaceID}
	if person != "" {
		find.Person = &person
	}
	return s.store.ListAvailabilityBlocks(ctx, find)
}

// detect loads the workspace's confirmed events and runs conflict
// detection for the candidate. Hard conflicts reject with a
// *ConflictError; soft conflicts are returned for the caller to surface.
// Must be called with the workspace lock held.
func (s *service) detect(ctx context.Context, candidate *store.Event) ([]conflict.Report, error) {
	horizon, err := s.detectionHorizon(candidate)
	if err != nil {
		return nil, err
	}

	others, err := s.confirmedEvents(ctx, candidate.WorkspaceID)
	if err != nil {
		return nil, err
	}

	reports, err := conflict.Detect(candidate, others, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to detect conflicts: %w", err)
	}

	soft, hard := conflict.Partition(reports)
	if len(hard) > 0 {
		slog.Info("hard conflicts detected, rejecting commit",
			"workspace", candidate.WorkspaceID,
			"title", candidate.Title,
			"conflict_count", len(hard),
		)
		return nil, newHardConflictError(hard)
	}
	return soft, nil
}

// confirmedEvents lists the workspace's confirmed events. Recurring events
// are fetched without a time filter: their base window can lie far before
// the horizon of interest.
func (s *service) confirmedEvents(ctx context.Context, workspaceID string) ([]*store.Event, error) {
	confirmed := store.Confirmed
	list, err := s.store.ListEvents(ctx, &store.FindEvent{
		WorkspaceID: &workspaceID,
		Status:      &confirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return list, nil
}

// detectionHorizon covers every occurrence of the candidate, walking the
// rule up to MaxOccurrencesPerCheck occurrences. A one-off event's horizon
// is its own window.
func (s *service) detectionHorizon(ev *store.Event) (window.Window, error) {
	loc, err := timezone.ParseTimezone(ev.Timezone)
	if err != nil {
		loc = nil
	}
	base, err := window.FromUnix(ev.StartTs, ev.EndTs, loc)
	if err != nil {
		return window.Window{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	if !ev.IsRecurring() {
		return base, nil
	}

	rule, err := recurrence.Parse(*ev.Recurrence)
	if err != nil {
		return window.Window{}, fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}

	end := base.End
	it := rule.Iter(base)
	for n := 0; n < MaxOccurrencesPerCheck; n++ {
		occ, ok := it.Next()
		if !ok {
			break
		}
		end = occ.End
		if n == MaxOccurrencesPerCheck-1 {
			slog.Warn("conflict horizon truncated",
				"event_uid", ev.UID,
				"limit", MaxOccurrencesPerCheck,
			)
		}
	}
	return window.Window{Start: base.Start, End: end}, nil
}

// getByUID resolves an event of any status, mapping a miss to ErrNotFound.
func (s *service) getByUID(ctx context.Context, uid string) (*store.Event, error) {
	ev, err := s.store.GetEvent(ctx, &store.FindEvent{UID: &uid})
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if ev == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	return ev, nil
}

// recurrenceUpdate translates the changed event's rule back into the
// store's update convention (empty string clears, nil leaves unchanged).
func recurrenceUpdate(changed *store.Event, update *UpdateEventRequest) *string {
	if update.Recurrence == nil {
		return nil
	}
	if *update.Recurrence == "" {
		empty := ""
		return &empty
	}
	return changed.Recurrence
}
