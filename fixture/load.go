package fixture

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/database"
	"github.com/kbukum/fixturekit/logger"
	"github.com/kbukum/fixturekit/migration"
	"github.com/kbukum/fixturekit/observability"
	"github.com/kbukum/fixturekit/signals"
)

// scheduleLoad is the forward operation. It writes nothing now:
// instead it connects a handler to the post-migrate signal, so the
// data lands only after every application's schema is in place. The
// handler ignores events for other applications and disconnects itself
// after one completed load. A failed load leaves it connected, so the
// next event retries.
func (s *Spec) scheduleLoad(ctx context.Context, _ *gorm.DB, _ *apps.App) error {
	sig := s.signal
	var receipt signals.Receipt
	receipt = sig.Connect(func(ctx context.Context, ev migration.PostMigrateEvent) error {
		if ev.App == nil || ev.App.Label != s.app.Label {
			return nil
		}
		if err := s.loadNow(ctx, ev.DB); err != nil {
			return err
		}
		sig.Disconnect(receipt)
		return nil
	})

	s.log.Debug("Fixture load scheduled", logger.Fields(
		"app", s.app.Label,
		"files", strings.Join(s.files, ","),
		"signal", sig.Name(),
	))
	return nil
}

// loadNow streams every record, saves each one and then realigns the
// key sequences of every touched model, all in one transaction so a
// failed load leaves nothing behind for the retry.
func (s *Spec) loadNow(ctx context.Context, db *gorm.DB) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanFixtureLoad)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrApp, s.app.Label)
	observability.SetSpanAttribute(ctx, observability.AttrFixture, strings.Join(s.files, ","))

	start := time.Now()
	touched := newModelSet()
	count := 0
	resets := 0

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := s.Stream().ForEach(ctx, func(obj *Object) error {
			if err := s.save(ctx, tx, obj); err != nil {
				return err
			}
			touched.add(obj.Qualified(), obj.Value)
			count++
			return nil
		})
		if err != nil {
			return err
		}

		resets, err = database.ResetSequences(ctx, tx, touched.prototypes()...)
		return err
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}

	observability.SetSpanAttribute(ctx, observability.AttrRecordCount, count)
	if oc := observability.OperationContextFromContext(ctx); oc != nil && oc.Metrics != nil {
		oc.Metrics.RecordFixtureLoad(ctx, s.app.Label, strings.Join(s.files, ","),
			int64(count), time.Since(start))
	}
	s.log.Info("Fixtures loaded", logger.Fields(
		"app", s.app.Label,
		"files", strings.Join(s.files, ","),
		"objects", count,
		"models", len(touched.prototypes()),
		"sequences", resets,
		"duration", time.Since(start).String(),
	))
	return nil
}

// save persists one object with create-or-update semantics: a zero
// primary key inserts, a pinned key updates the existing row or
// inserts if it is absent. Keyless models always insert.
func (s *Spec) save(ctx context.Context, db *gorm.DB, obj *Object) error {
	tx := db.WithContext(ctx)
	var err error
	if len(obj.schema.PrimaryFields) == 0 {
		err = tx.Create(obj.Value).Error
	} else {
		err = tx.Save(obj.Value).Error
	}
	if err != nil {
		return database.FromDatabase(err, obj.Qualified())
	}
	return nil
}

// modelSet tracks touched model prototypes in first-seen order so the
// sequence reset covers each model exactly once.
type modelSet struct {
	seen   map[string]bool
	protos []interface{}
}

func newModelSet() *modelSet {
	return &modelSet{seen: make(map[string]bool)}
}

func (ms *modelSet) add(key string, proto interface{}) {
	if ms.seen[key] {
		return
	}
	ms.seen[key] = true
	ms.protos = append(ms.protos, proto)
}

func (ms *modelSet) prototypes() []interface{} { return ms.protos }
