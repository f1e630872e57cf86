package fixture

import (
	"testing"
	"testing/fstest"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/logger"
	"github.com/kbukum/fixturekit/migration"
	"github.com/kbukum/fixturekit/signals"
)

type egg struct {
	ID   uint `gorm:"primaryKey"`
	Name string
	Size int
}

type post struct {
	ID    uint `gorm:"primaryKey"`
	Slug  string
	Title string
}

type memo struct {
	Topic string
	Body  string
}

const eggsYAML = `- model: shop.egg
  pk: 1
  fields:
    name: golden
    size: 3
- model: shop.egg
  fields:
    name: speckled
    size: 2
`

const postsYAML = `- model: post
  fields:
    slug: hello
    title: Hello
`

func quietLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Format: "console"}, "test")
}

func newFixtureDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

// newFixtureApp registers a "shop" app on a private registry with the
// given in-memory files and the test models.
func newFixtureApp(t *testing.T, files map[string]string) *apps.App {
	t.Helper()
	mem := fstest.MapFS{}
	for name, data := range files {
		mem[name] = &fstest.MapFile{Data: []byte(data)}
	}
	app, err := apps.NewRegistry().Register(&apps.App{
		Name:   "shop",
		FS:     mem,
		Models: []interface{}{&egg{}, &post{}, &memo{}},
	})
	if err != nil {
		t.Fatalf("register app: %v", err)
	}
	return app
}

// newSpec builds a spec with a quiet logger and a private signal.
// Explicit options are applied after the defaults, so they win.
func newSpec(t *testing.T, app *apps.App, files []string, opts ...Option) *Spec {
	t.Helper()
	all := append([]Option{
		WithLogger(quietLogger()),
		WithSignal(signals.New[migration.PostMigrateEvent]("test")),
	}, opts...)
	spec, err := New(app, files, all...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return spec
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
