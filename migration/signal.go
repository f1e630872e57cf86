package migration

import (
	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/signals"
)

// PostMigrateEvent announces that an application's migrations have
// been applied and the database is ready for data loading.
type PostMigrateEvent struct {
	// App is the application whose migrations completed.
	App *apps.App
	// DB is the handle handlers should write through.
	DB *gorm.DB
}

// PostMigrate fires once per registered application after a runner has
// brought every registered application up to date. Deferred data loads
// connect here and run outside migration transactions.
var PostMigrate = signals.New[PostMigrateEvent]("post-migrate")
