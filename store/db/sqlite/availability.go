package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenroomhq/greenroom/store"
)

func (d *DB) CreateAvailabilityBlock(ctx context.Context, create *store.AvailabilityBlock) (*store.AvailabilityBlock, error) {
	stmt := `INSERT INTO availability_block (
			uid, workspace_id, created_ts, person, start_ts, end_ts, kind
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID, create.WorkspaceID, create.CreatedTs,
		create.Person, create.StartTs, create.EndTs, create.Kind,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create availability block: %w", err)
	}

	return create, nil
}

func (d *DB) ListAvailabilityBlocks(ctx context.Context, find *store.FindAvailabilityBlock) ([]*store.AvailabilityBlock, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	if v := find.WorkspaceID; v != nil {
		where, args = append(where, "workspace_id = ?"), append(args, *v)
	}
	if v := find.Person; v != nil {
		where, args = append(where, "person = ?"), append(args, *v)
	}
	if v := find.Kind; v != nil {
		where, args = append(where, "kind = ?"), append(args, *v)
	}
	if v := find.StartTs; v != nil {
		where, args = append(where, "end_ts > ?"), append(args, *v)
	}
	if v := find.EndTs; v != nil {
		where, args = append(where, "start_ts < ?"), append(args, *v)
	}

	query := `
		SELECT id, uid, workspace_id, created_ts, person, start_ts, end_ts, kind
		FROM availability_block
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY start_ts ASC, id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability blocks: %w", err)
	}
	defer rows.Close()

	list := make([]*store.AvailabilityBlock, 0)
	for rows.Next() {
		var block store.AvailabilityBlock
		if err := rows.Scan(
			&block.ID,
			&block.UID,
			&block.WorkspaceID,
			&block.CreatedTs,
			&block.Person,
			&block.StartTs,
			&block.EndTs,
			&block.Kind,
		); err != nil {
			return nil, fmt.Errorf("failed to scan availability block: %w", err)
		}
		list = append(list, &block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate availability blocks: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteAvailabilityBlock(ctx context.Context, delete *store.DeleteAvailabilityBlock) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM availability_block WHERE id = ?`, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete availability block: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("availability block not found")
	}
	return nil
}
