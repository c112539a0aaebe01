package store

import "context"

// AvailabilityBlock is an explicit per-person window, either BUSY or
// FREE_PREFERENCE. Explicit blocks take precedence over busy time inferred
// from confirmed events; the effective busy set is the union of both.
type AvailabilityBlock struct {
	ID          int32
	UID         string
	WorkspaceID string
	CreatedTs   int64

	Person  string
	StartTs int64
	EndTs   int64
	Kind    BlockKind
}

// FindAvailabilityBlock is the find condition for availability blocks.
type FindAvailabilityBlock struct {
	ID          *int32
	UID         *string
	WorkspaceID *string
	Person      *string
	Kind        *BlockKind

	// StartTs/EndTs select blocks overlapping [StartTs, EndTs).
	StartTs *int64
	EndTs   *int64
}

// DeleteAvailabilityBlock is the delete request for an availability block.
type DeleteAvailabilityBlock struct {
	ID int32
}

// CreateAvailabilityBlock creates a new availability block row.
func (s *Store) CreateAvailabilityBlock(ctx context.Context, create *AvailabilityBlock) (*AvailabilityBlock, error) {
	return s.driver.CreateAvailabilityBlock(ctx, create)
}

// ListAvailabilityBlocks lists availability blocks matching the filter.
func (s *Store) ListAvailabilityBlocks(ctx context.Context, find *FindAvailabilityBlock) ([]*AvailabilityBlock, error) {
	return s.driver.ListAvailabilityBlocks(ctx, find)
}

// DeleteAvailabilityBlock removes an availability block. Blocks are plain
// planning inputs, not audited records, so physical deletion is fine here.
func (s *Store) DeleteAvailabilityBlock(ctx context.Context, delete *DeleteAvailabilityBlock) error {
	return s.driver.DeleteAvailabilityBlock(ctx, delete)
}
