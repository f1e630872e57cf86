package fixture

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/logger"
	"github.com/kbukum/fixturekit/migration"
	"github.com/kbukum/fixturekit/signals"
	"github.com/kbukum/fixturekit/validation"
)

// DefaultDir is the subdirectory of an application's data root where
// fixture files live unless WithDir overrides it.
const DefaultDir = "fixtures"

// Spec describes a set of fixture files owned by one application and
// derives migration operations from them. Specs are immutable once
// built; configure them through options.
type Spec struct {
	app         *apps.App
	files       []string
	dir         string
	skipMissing bool
	registry    *apps.Registry
	log         *logger.Logger
	signal      *signals.Signal[migration.PostMigrateEvent]
}

// Option configures a Spec at construction time.
type Option func(*Spec)

// WithDir overrides the fixture subdirectory inside the application's
// data root. An empty dir resolves files against the root itself.
func WithDir(dir string) Option {
	return func(s *Spec) { s.dir = dir }
}

// WithSkipMissing makes unload treat absent rows as already deleted
// instead of failing.
func WithSkipMissing() Option {
	return func(s *Spec) { s.skipMissing = true }
}

// WithRegistry resolves cross-application model references against the
// given registry instead of the process-wide one.
func WithRegistry(r *apps.Registry) Option {
	return func(s *Spec) { s.registry = r }
}

// WithLogger replaces the spec's logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Spec) { s.log = log }
}

// WithSignal connects the deferred load to the given signal instead of
// migration.PostMigrate. Tests use this to keep dispatch off the
// process-wide signal.
func WithSignal(sig *signals.Signal[migration.PostMigrateEvent]) Option {
	return func(s *Spec) { s.signal = sig }
}

// New builds a fixture spec over the application's files. Files are
// named relative to the fixture directory and keep their declaration
// order through every stream pass.
func New(app *apps.App, files []string, opts ...Option) (*Spec, error) {
	v := validation.New()
	v.Custom(app != nil, "app", "must not be nil")
	v.Custom(len(files) > 0, "files", "at least one fixture file is required")
	for i, f := range files {
		v.Custom(f != "", fmt.Sprintf("files[%d]", i), "must not be empty")
	}
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	s := &Spec{
		app:    app,
		files:  make([]string, len(files)),
		dir:    DefaultDir,
		signal: migration.PostMigrate,
	}
	copy(s.files, files)

	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get("fixture")
	} else {
		s.log = s.log.WithComponent("fixture")
	}
	return s, nil
}

// Load is the migration-facing shorthand: one call yields the forward
// and reverse actions for a fixture-backed data migration.
//
//	migration.Migration{ID: "0002_eggs", Operation: fixture.Load(shop, "eggs.yaml")}
//
// Construction problems surface when the operation runs, so a bad call
// fails the migration instead of panicking at registration.
func Load(app *apps.App, files ...string) migration.Operation {
	spec, err := New(app, files)
	if err != nil {
		return failedOperation(err)
	}
	return spec.Operation()
}

func failedOperation(err error) migration.Operation {
	return migration.Operation{
		Up:   func(context.Context, *gorm.DB, *apps.App) error { return err },
		Down: func(context.Context, *gorm.DB, *migration.State) error { return err },
	}
}

// Operation derives the migration operation pair: Up schedules the
// deferred load, Down removes the fixture's rows.
func (s *Spec) Operation() migration.Operation {
	return migration.Operation{Up: s.scheduleLoad, Down: s.unload}
}

// App returns the owning application.
func (s *Spec) App() *apps.App { return s.app }

// Files returns the configured file names in declaration order.
func (s *Spec) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// Dir returns the fixture subdirectory.
func (s *Spec) Dir() string { return s.dir }

// SkipMissing reports whether unload tolerates absent rows.
func (s *Spec) SkipMissing() bool { return s.skipMissing }

// Lint reads every configured file and builds every object without
// touching the database. It returns the number of records checked.
func (s *Spec) Lint(ctx context.Context) (int, error) {
	count := 0
	err := s.Stream().ForEach(ctx, func(*Object) error {
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	return count, nil
}
