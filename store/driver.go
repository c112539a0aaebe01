package store

import "context"

// Driver is the interface a database backend must implement. It is the
// persistence collaborator boundary: everything above it works on domain
// records and knows nothing about SQL.
type Driver interface {
	Migrate(ctx context.Context) error
	Close() error

	CreateEvent(ctx context.Context, create *Event) (*Event, error)
	ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error)
	UpdateEvent(ctx context.Context, update *UpdateEvent) error

	CreateAvailabilityBlock(ctx context.Context, create *AvailabilityBlock) (*AvailabilityBlock, error)
	ListAvailabilityBlocks(ctx context.Context, find *FindAvailabilityBlock) ([]*AvailabilityBlock, error)
	DeleteAvailabilityBlock(ctx context.Context, delete *DeleteAvailabilityBlock) error
}
