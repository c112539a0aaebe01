// Package db dispatches database driver construction by profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/greenroomhq/greenroom/internal/profile"
	"github.com/greenroomhq/greenroom/store"
	"github.com/greenroomhq/greenroom/store/db/sqlite"
)

// NewDriver creates the database driver selected by the profile.
func NewDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}
