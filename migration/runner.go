package migration

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/errors"
	"github.com/kbukum/fixturekit/logger"
	"github.com/kbukum/fixturekit/observability"
	"github.com/kbukum/fixturekit/signals"
)

// Record is one row of the data_migrations history table.
type Record struct {
	App       string    `gorm:"primaryKey;size:255"`
	ID        string    `gorm:"primaryKey;size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName maps the history to its fixed table.
func (Record) TableName() string { return "data_migrations" }

// Status reports one registered migration and its applied state.
type Status struct {
	App         string
	ID          string
	Description string
	Applied     bool
	AppliedAt   time.Time
}

type appEntry struct {
	app        *apps.App
	state      *State
	migrations []Migration
}

// Runner applies per-application data migrations tracked in the
// data_migrations table. After every registered application is up to
// date, it fires PostMigrate once per application in registration
// order, so deferred data loads always see the complete schema.
type Runner struct {
	db      *gorm.DB
	log     *logger.Logger
	signal  *signals.Signal[PostMigrateEvent]
	metrics *observability.Metrics
	entries []*appEntry
	byLabel map[string]*appEntry
}

// NewRunner creates a runner bound to the given database and logger.
func NewRunner(db *gorm.DB, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewDefault("migration")
	}
	return &Runner{
		db:      db,
		log:     log.WithComponent("migration"),
		signal:  PostMigrate,
		byLabel: make(map[string]*appEntry),
	}
}

// WithSignal replaces the post-migrate signal. Tests use this to keep
// dispatch off the process-wide signal.
func (r *Runner) WithSignal(sig *signals.Signal[PostMigrateEvent]) *Runner {
	r.signal = sig
	return r
}

// WithMetrics pins the metric instruments migrations report to. Without
// it the runner falls back to the instruments carried by the tracked
// run in the context, when there is one.
func (r *Runner) WithMetrics(m *observability.Metrics) *Runner {
	r.metrics = m
	return r
}

// Register adds an application and its migrations. The application's
// model state is captured now, so later reverse operations see tables
// as they were at registration.
func (r *Runner) Register(app *apps.App, migrations ...Migration) error {
	if app == nil {
		return errors.New(errors.ErrCodeInvalidInput, "app must not be nil")
	}
	if _, ok := r.byLabel[app.Label]; ok {
		return errors.Newf(errors.ErrCodeAlreadyExists,
			"app %q is already registered with this runner", app.Label)
	}

	seen := make(map[string]bool, len(migrations))
	for _, m := range migrations {
		if err := m.Validate(); err != nil {
			return err
		}
		if seen[m.ID] {
			return errors.Newf(errors.ErrCodeAlreadyExists,
				"app %q registers migration %q twice", app.Label, m.ID)
		}
		seen[m.ID] = true
	}

	state, err := CaptureState(r.db, app)
	if err != nil {
		return err
	}

	entry := &appEntry{app: app, state: state, migrations: migrations}
	r.entries = append(r.entries, entry)
	r.byLabel[app.Label] = entry
	return nil
}

// Run applies every pending migration of every registered application
// in registration order, then fires the post-migrate signal once per
// application. A handler failure leaves the handler connected, so a
// later run retries the load.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.ensureHistory(ctx); err != nil {
		return err
	}

	for _, e := range r.entries {
		for _, m := range e.migrations {
			applied, err := r.isApplied(ctx, e.app.Label, m.ID)
			if err != nil {
				return err
			}
			if applied {
				r.log.Debug("Migration already applied", logger.Fields(
					"app", e.app.Label,
					"id", m.ID,
				))
				continue
			}
			if err := r.applyOne(ctx, e, m); err != nil {
				return err
			}
		}
	}

	for _, e := range r.entries {
		if err := r.signal.Send(ctx, PostMigrateEvent{App: e.app, DB: r.db}); err != nil {
			return errors.Wrap(errors.ErrCodeMigrationFailed,
				"post-migrate handler for app "+e.app.Label+" failed", err)
		}
	}
	return nil
}

func (r *Runner) applyOne(ctx context.Context, e *appEntry, m Migration) error {
	r.log.Info("Applying migration", logger.Fields(
		"app", e.app.Label,
		"id", m.ID,
		"description", m.Description,
	))

	ctx, span := observability.StartSpan(ctx, observability.SpanMigrationApply)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrApp, e.app.Label)
	observability.SetSpanAttribute(ctx, observability.AttrMigrationID, m.ID)

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.Up(ctx, tx, e.app); err != nil {
			return err
		}
		return tx.Create(&Record{App: e.app.Label, ID: m.ID}).Error
	})
	r.record(ctx, e.app.Label, m.ID, "up", start, err)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return errors.Wrap(errors.ErrCodeMigrationFailed,
			"apply "+e.app.Label+"."+m.ID, err)
	}

	r.log.Info("Migration applied", logger.Fields(
		"app", e.app.Label,
		"id", m.ID,
		"duration", time.Since(start).String(),
	))
	return nil
}

// Rollback reverses up to steps applied migrations of one application,
// newest first. steps <= 0 reverses all of them. Reverse operations
// receive the historical state captured at registration.
func (r *Runner) Rollback(ctx context.Context, label string, steps int) error {
	e, ok := r.byLabel[label]
	if !ok {
		return errors.Newf(errors.ErrCodeAppNotFound,
			"app %q is not registered with this runner", label)
	}
	if err := r.ensureHistory(ctx); err != nil {
		return err
	}
	if steps <= 0 {
		steps = len(e.migrations)
	}

	undone := 0
	for i := len(e.migrations) - 1; i >= 0 && undone < steps; i-- {
		m := e.migrations[i]
		applied, err := r.isApplied(ctx, label, m.ID)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}
		if m.Down == nil {
			return errors.Newf(errors.ErrCodeMigrationFailed,
				"migration %s.%s is not reversible", label, m.ID)
		}
		if err := r.rollbackOne(ctx, e, m); err != nil {
			return err
		}
		undone++
	}
	return nil
}

// RollbackTo reverses applied migrations of one application, newest
// first, until id is the newest one still applied. The target itself
// stays applied.
func (r *Runner) RollbackTo(ctx context.Context, label, id string) error {
	e, ok := r.byLabel[label]
	if !ok {
		return errors.Newf(errors.ErrCodeAppNotFound,
			"app %q is not registered with this runner", label)
	}
	target := -1
	for i, m := range e.migrations {
		if m.ID == id {
			target = i
			break
		}
	}
	if target < 0 {
		return errors.Newf(errors.ErrCodeMigrationUnknown,
			"app %q has no migration %q", label, id)
	}
	if err := r.ensureHistory(ctx); err != nil {
		return err
	}

	for i := len(e.migrations) - 1; i > target; i-- {
		m := e.migrations[i]
		applied, err := r.isApplied(ctx, label, m.ID)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}
		if m.Down == nil {
			return errors.Newf(errors.ErrCodeMigrationFailed,
				"migration %s.%s is not reversible", label, m.ID)
		}
		if err := r.rollbackOne(ctx, e, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) rollbackOne(ctx context.Context, e *appEntry, m Migration) error {
	r.log.Info("Rolling back migration", logger.Fields(
		"app", e.app.Label,
		"id", m.ID,
	))

	ctx, span := observability.StartSpan(ctx, observability.SpanMigrationRollback)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrApp, e.app.Label)
	observability.SetSpanAttribute(ctx, observability.AttrMigrationID, m.ID)

	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.Down(ctx, tx, e.state); err != nil {
			return err
		}
		return tx.Where("app = ? AND id = ?", e.app.Label, m.ID).Delete(&Record{}).Error
	})
	r.record(ctx, e.app.Label, m.ID, "down", start, err)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return errors.Wrap(errors.ErrCodeMigrationFailed,
			"roll back "+e.app.Label+"."+m.ID, err)
	}
	return nil
}

// Status lists every registered migration with its applied state, in
// registration order.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	if err := r.ensureHistory(ctx); err != nil {
		return nil, err
	}

	var records []Record
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, errors.DatabaseError(err)
	}
	appliedAt := make(map[string]time.Time, len(records))
	for _, rec := range records {
		appliedAt[rec.App+"\x00"+rec.ID] = rec.AppliedAt
	}

	var out []Status
	for _, e := range r.entries {
		for _, m := range e.migrations {
			at, applied := appliedAt[e.app.Label+"\x00"+m.ID]
			out = append(out, Status{
				App:         e.app.Label,
				ID:          m.ID,
				Description: m.Description,
				Applied:     applied,
				AppliedAt:   at,
			})
		}
	}
	return out, nil
}

func (r *Runner) ensureHistory(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		return errors.Wrap(errors.ErrCodeDatabaseError, "create data_migrations table", err)
	}
	return nil
}

func (r *Runner) isApplied(ctx context.Context, app, id string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Record{}).
		Where("app = ? AND id = ?", app, id).
		Count(&n).Error
	if err != nil {
		return false, errors.DatabaseError(err)
	}
	return n > 0, nil
}

func (r *Runner) record(ctx context.Context, app, id, direction string, start time.Time, err error) {
	m := r.metrics
	if m == nil {
		if oc := observability.OperationContextFromContext(ctx); oc != nil {
			m = oc.Metrics
		}
	}
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RecordMigration(ctx, app, id, direction, status, time.Since(start))
}
