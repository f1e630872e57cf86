// Package fixture turns serialized data files into reversible data
// migrations.
//
// A Spec names fixture files owned by one application. Its Operation
// plugs into the migration runner:
//
//	migration.Migration{
//		ID:        "0002_default_eggs",
//		Operation: fixture.Load(shop, "eggs.yaml"),
//	}
//
// Forward, the operation does not write data immediately: it connects
// a one-shot handler to migration.PostMigrate, so the load runs after
// every registered application is migrated. The handler ignores events
// for other applications, retires itself after one completed load and
// stays connected after a failure so the next event retries.
//
// A load streams records in file order, saves each one with
// create-or-update semantics and finishes with a single sequence
// realignment covering every touched model, so database-assigned keys
// continue after the highest fixture key.
//
// Reverse, the operation deletes each record's row, located by its id
// when the record carries one, else by its slug, else by exact match
// on all deserialized fields. Tables and columns resolve through the
// historical state captured at registration, so renamed or deleted
// model types cannot break a rollback. A missing row fails the
// rollback unless the spec was built WithSkipMissing. Sequences are
// not touched on unload.
//
// Fixture files live under the application data root's "fixtures"
// directory (override with WithDir) and decode by extension: YAML and
// JSON ship built in, RegisterFormat adds more. Each file holds a list
// of records:
//
//	- model: shop.egg
//	  pk: 1
//	  fields:
//	    name: golden
//	    size: 3
//
// Unqualified model references resolve within the owning application.
// Field names the live model does not have are ignored.
package fixture
