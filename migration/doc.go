// Package migration applies per-application data migrations and
// coordinates the post-migrate phase that deferred data loads hook
// into.
//
// A Migration pairs an ID with an Operation (Up and Down callables).
// Applications register their migrations with a Runner:
//
//	runner := migration.NewRunner(db.GormDB, log)
//	if err := runner.Register(shop,
//		migration.Migration{ID: "0001_schema", Description: "create tables", Operation: createTables},
//		migration.Migration{ID: "0002_eggs", Description: "seed eggs", Operation: fixture.Load(shop, "eggs.yaml")},
//	); err != nil {
//		return err
//	}
//	if err := runner.Run(ctx); err != nil {
//		return err
//	}
//
// Run applies pending migrations app by app in registration order,
// each in its own transaction, recorded in the data_migrations table.
// Once every application is up to date it fires the PostMigrate signal
// once per application. Operations that defer work (fixture loads)
// connect to that signal during Up and run when it fires, outside any
// migration transaction.
//
// Rollback walks one application's applied migrations newest first.
// Down operations receive a State snapshot taken at Register time, so
// they keep working after model types change or disappear.
//
// File-based schema migrations are available through ApplyFiles and
// friends, which bridge any fs.FS to golang-migrate.
package migration
