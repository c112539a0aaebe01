// Package store provides the persistence layer for events and availability
// blocks. Access goes through a Driver so backends stay swappable.
package store

import (
	"context"

	"github.com/greenroomhq/greenroom/internal/profile"
)

// Store is the façade over a database driver.
type Store struct {
	driver  Driver
	profile *profile.Profile
}

// New creates a store with the given driver and profile.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// Migrate brings the backing schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

// Close releases the underlying driver resources.
func (s *Store) Close() error {
	return s.driver.Close()
}
