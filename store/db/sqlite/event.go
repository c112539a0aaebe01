package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/greenroomhq/greenroom/store"
)

func (d *DB) CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error) {
	participants, err := json.Marshal(create.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal participants: %w", err)
	}

	stmt := `INSERT INTO event (
			uid, workspace_id, created_ts, updated_ts, status,
			title, description, location,
			start_ts, end_ts, timezone, recurrence, participants, priority
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID, create.WorkspaceID, create.CreatedTs, create.UpdatedTs, create.Status,
		create.Title, create.Description, create.Location,
		create.StartTs, create.EndTs, create.Timezone, create.Recurrence, string(participants), create.Priority,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return create, nil
}

func (d *DB) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "event.id = ?"), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "event.uid = ?"), append(args, *v)
	}
	if v := find.WorkspaceID; v != nil {
		where, args = append(where, "event.workspace_id = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "event.status = ?"), append(args, *v)
	}
	if find.ExcludeCancelled {
		where, args = append(where, "event.status != ?"), append(args, store.Cancelled)
	}
	// Overlap with the query range [StartTs, EndTs): an event overlaps
	// when event.start_ts < EndTs AND event.end_ts > StartTs.
	if v := find.StartTs; v != nil {
		where, args = append(where, "event.end_ts > ?"), append(args, *v)
	}
	if v := find.EndTs; v != nil {
		where, args = append(where, "event.start_ts < ?"), append(args, *v)
	}

	query := `
		SELECT
			id, uid, workspace_id, created_ts, updated_ts, status,
			title, description, location,
			start_ts, end_ts, timezone, recurrence, participants, priority
		FROM event
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY event.start_ts ASC, event.id ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Event, 0)
	for rows.Next() {
		var event store.Event
		var recurrence sql.NullString
		var participants string

		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.WorkspaceID,
			&event.CreatedTs,
			&event.UpdatedTs,
			&event.Status,
			&event.Title,
			&event.Description,
			&event.Location,
			&event.StartTs,
			&event.EndTs,
			&event.Timezone,
			&recurrence,
			&participants,
			&event.Priority,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if recurrence.Valid && recurrence.String != "" {
			event.Recurrence = &recurrence.String
		}
		if err := json.Unmarshal([]byte(participants), &event.Participants); err != nil {
			return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
		}

		list = append(list, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateEvent(ctx context.Context, update *store.UpdateEvent) error {
	set, args := []string{}, []any{}

	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = ?"), append(args, *v)
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = ?"), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = ?"), append(args, *v)
	}
	if v := update.Location; v != nil {
		set, args = append(set, "location = ?"), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = ?"), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = ?"), append(args, *v)
	}
	if v := update.Timezone; v != nil {
		set, args = append(set, "timezone = ?"), append(args, *v)
	}
	if v := update.Recurrence; v != nil {
		if *v == "" {
			set = append(set, "recurrence = NULL")
		} else {
			set, args = append(set, "recurrence = ?"), append(args, *v)
		}
	}
	if v := update.Participants; v != nil {
		participants, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal participants: %w", err)
		}
		set, args = append(set, "participants = ?"), append(args, string(participants))
	}
	if v := update.Priority; v != nil {
		set, args = append(set, "priority = ?"), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE event SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	return nil
}
