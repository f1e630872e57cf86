package migration

import (
	"context"

	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/errors"
)

// Operation pairs the forward and reverse actions of a data migration.
type Operation struct {
	// Up applies the migration. It receives the owning application so
	// implementations can scope signal handlers and file lookups to it.
	Up func(ctx context.Context, db *gorm.DB, app *apps.App) error

	// Down reverses the migration. It receives the historical model
	// state captured when the application was registered with the
	// runner, not live model types.
	Down func(ctx context.Context, db *gorm.DB, state *State) error
}

// Migration is one identified data migration. Migrations registered
// for an application apply in slice order and roll back in reverse.
type Migration struct {
	ID          string
	Description string
	Operation
}

// Validate checks that the migration is runnable.
func (m Migration) Validate() error {
	if m.ID == "" {
		return errors.MissingField("id")
	}
	if m.Up == nil {
		return errors.Newf(errors.ErrCodeInvalidInput, "migration %q has no Up operation", m.ID)
	}
	return nil
}
