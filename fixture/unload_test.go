package fixture

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/errors"
	"github.com/kbukum/fixturekit/migration"
	"github.com/kbukum/fixturekit/signals"
)

// newState snapshots the app's models the way a runner would at
// registration time.
func newState(t *testing.T, db *gorm.DB, app *apps.App) *migration.State {
	t.Helper()
	state, err := migration.CaptureState(db, app)
	if err != nil {
		t.Fatalf("CaptureState() error = %v", err)
	}
	return state
}

func TestUnload_RemovesFixtureRows(t *testing.T) {
	db := newFixtureDB(t)
	if err := db.AutoMigrate(&egg{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	rows := []egg{
		{ID: 1, Name: "golden", Size: 3},
		{Name: "speckled", Size: 2},
		{Name: "keeper", Size: 5},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed row %d: %v", i, err)
		}
	}

	app := newFixtureApp(t, map[string]string{"fixtures/eggs.yaml": eggsYAML})
	spec := newSpec(t, app, []string{"eggs.yaml"})

	err := spec.Operation().Down(context.Background(), db, newState(t, db, app))
	if err != nil {
		t.Fatalf("Down() error = %v", err)
	}

	if got := countRows(t, db, &egg{}); got != 1 {
		t.Fatalf("rows after unload = %d, want only the keeper", got)
	}
	var left egg
	if err := db.Take(&left).Error; err != nil {
		t.Fatalf("fetch survivor: %v", err)
	}
	if left.Name != "keeper" {
		t.Errorf("survivor = %q, want keeper", left.Name)
	}
}

func TestUnload_BySlug(t *testing.T) {
	db := newFixtureDB(t)
	if err := db.AutoMigrate(&post{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	seed := []post{
		{Slug: "hello", Title: "Hello"},
		{Slug: "other", Title: "Other"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed post %d: %v", i, err)
		}
	}

	app := newFixtureApp(t, map[string]string{"fixtures/posts.yaml": postsYAML})
	spec := newSpec(t, app, []string{"posts.yaml"})

	err := spec.Operation().Down(context.Background(), db, newState(t, db, app))
	if err != nil {
		t.Fatalf("Down() error = %v", err)
	}

	var left post
	if err := db.Take(&left).Error; err != nil {
		t.Fatalf("fetch survivor: %v", err)
	}
	if left.Slug != "other" {
		t.Errorf("survivor slug = %q, want other", left.Slug)
	}
}

func TestUnload_FullMatchKeyless(t *testing.T) {
	db := newFixtureDB(t)
	if err := db.AutoMigrate(&memo{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	seed := []memo{
		{Topic: "ops", Body: "rotate keys"},
		{Topic: "ops", Body: "check backups"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed memo %d: %v", i, err)
		}
	}

	app := newFixtureApp(t, map[string]string{
		"fixtures/memos.yaml": `- model: memo
  fields:
    topic: ops
    body: rotate keys
    mood: calm
`,
	})
	spec := newSpec(t, app, []string{"memos.yaml"})

	// The mood field is unknown to the model, so the match must use
	// only topic and body.
	err := spec.Operation().Down(context.Background(), db, newState(t, db, app))
	if err != nil {
		t.Fatalf("Down() error = %v", err)
	}

	var left memo
	if err := db.Take(&left).Error; err != nil {
		t.Fatalf("fetch survivor: %v", err)
	}
	if left.Body != "check backups" {
		t.Errorf("survivor = %+v, want the backups memo", left)
	}
}

func TestUnload_MissingRow(t *testing.T) {
	db := newFixtureDB(t)
	if err := db.AutoMigrate(&egg{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	app := newFixtureApp(t, map[string]string{"fixtures/eggs.yaml": eggsYAML})
	spec := newSpec(t, app, []string{"eggs.yaml"})

	err := spec.Operation().Down(context.Background(), db, newState(t, db, app))
	if !errors.MatchesCode(err, errors.ErrCodeFixtureNotFound) {
		t.Errorf("Down() error = %v, want code %s", err, errors.ErrCodeFixtureNotFound)
	}
}

func TestUnload_SkipMissing(t *testing.T) {
	db := newFixtureDB(t)
	if err := db.AutoMigrate(&egg{}); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	// Only the second fixture record exists; the first is already gone.
	if err := db.Create(&egg{Name: "speckled", Size: 2}).Error; err != nil {
		t.Fatalf("seed row: %v", err)
	}

	app := newFixtureApp(t, map[string]string{"fixtures/eggs.yaml": eggsYAML})
	spec := newSpec(t, app, []string{"eggs.yaml"}, WithSkipMissing())

	err := spec.Operation().Down(context.Background(), db, newState(t, db, app))
	if err != nil {
		t.Fatalf("Down() error = %v", err)
	}
	if got := countRows(t, db, &egg{}); got != 0 {
		t.Errorf("rows after unload = %d, want 0 (later records still removed)", got)
	}
}

func TestUnload_ViaRunnerRollback(t *testing.T) {
	db := newFixtureDB(t)
	app := newFixtureApp(t, map[string]string{"fixtures/eggs.yaml": eggsYAML})
	sig := signals.New[migration.PostMigrateEvent]("rollback")
	spec := newSpec(t, app, []string{"eggs.yaml"}, WithSignal(sig))

	r := migration.NewRunner(db, quietLogger()).WithSignal(sig)
	err := r.Register(app,
		migration.Migration{ID: "0001_egg_schema", Operation: migration.Operation{
			Up: func(ctx context.Context, tx *gorm.DB, _ *apps.App) error {
				return tx.WithContext(ctx).AutoMigrate(&egg{})
			},
		}},
		migration.Migration{ID: "0002_seed_eggs", Operation: spec.Operation()},
	)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := countRows(t, db, &egg{}); got != 2 {
		t.Fatalf("rows after run = %d, want 2", got)
	}

	if err := r.Rollback(context.Background(), "shop", 1); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if got := countRows(t, db, &egg{}); got != 0 {
		t.Errorf("rows after rollback = %d, want 0", got)
	}

	// Running again replays the data migration through a fresh handler.
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("rerun error = %v", err)
	}
	if got := countRows(t, db, &egg{}); got != 2 {
		t.Errorf("rows after rerun = %d, want 2", got)
	}
}
