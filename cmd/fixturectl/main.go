// fixturectl is a command line tool for working with fixture files and
// versioned schema migrations outside of application code.
//
//	fixturectl lint fixtures/*.yaml
//	fixturectl load --dsn app.db fixtures/eggs.yaml
//	fixturectl migrate up --dir migrations --dsn app.db
//	fixturectl migrate down --steps 1
//	fixturectl version
//
// Configuration resolves from config.yml, .env files and environment
// variables; flags override everything.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/component"
	"github.com/kbukum/fixturekit/config"
	"github.com/kbukum/fixturekit/database"
	"github.com/kbukum/fixturekit/fixture"
	"github.com/kbukum/fixturekit/logger"
	"github.com/kbukum/fixturekit/migration"
	"github.com/kbukum/fixturekit/observability"
	"github.com/kbukum/fixturekit/version"
)

const appName = "fixturectl"

// cliConfig extends the base service configuration with the database
// connection and optional telemetry export.
type cliConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Database             database.Config `yaml:"database" mapstructure:"database"`
	Telemetry            telemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

type telemetryConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

func (c *cliConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = appName
	}
	c.ServiceConfig.ApplyDefaults()

	// The tool exists to talk to a database, so a disabled component
	// would only produce confusing no-ops.
	c.Database.Enabled = true
	if c.Database.Name == "" {
		c.Database.Name = appName
	}
	c.Database.ApplyDefaults()

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
		c.Telemetry.Insecure = true
	}
}

func (c *cliConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("config.database: %w", err)
	}
	return nil
}

var (
	cfgFile    string
	envFile    string
	dsnFlag    string
	driverFlag string
	pkColumn   string
	migrateDir string
	downSteps  int
)

var rootCmd = &cobra.Command{
	Use:   "fixturectl",
	Short: "Manage fixture files and schema migrations",
	Long: `fixturectl validates fixture files, seeds databases from them and runs
versioned schema migrations.

Fixture files are YAML or JSON lists of records, each naming a model and
its field values:

  - model: eggs
    pk: 1
    fields:
      color: golden
      size: 3

"load" writes records as raw table rows, so each model reference must
name a table directly. Model-bound loading, with deferred application
and sequence realignment, lives in the fixture package and runs inside
migrations.`,
	Version:       version.GetShortVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var lintCmd = &cobra.Command{
	Use:   "lint <file>...",
	Short: "Parse fixture files and report problems",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLint,
}

var loadCmd = &cobra.Command{
	Use:   "load <file>...",
	Short: "Insert fixture records into database tables",
	Long: `Load decodes fixture files and inserts every record into the table named
by its model reference. All records from all files are written in a
single transaction. A pinned pk is written to the id column; override
the column name with --pk-column.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run versioned schema migrations",
	Long: `Migrate applies or rolls back SQL schema migrations following the
VERSION_name.up.sql / VERSION_name.down.sql naming convention.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending schema migrations",
	RunE:  runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back schema migrations",
	RunE:  runMigrateDown,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current schema migration version",
	RunE:  runMigrateStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetFullVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: auto-discovered config.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file (default: auto-discovered .env)")
	rootCmd.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "Database DSN, overrides config")
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "Database driver (sqlite or postgres), overrides config")

	loadCmd.Flags().StringVar(&pkColumn, "pk-column", "id", "Column that receives pinned pks")

	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "migrations", "Directory with .up.sql/.down.sql files")
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 0, "Number of migrations to roll back (0 = all)")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(lintCmd, loadCmd, migrateCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runLint(cmd *cobra.Command, args []string) error {
	var failed int
	for _, path := range args {
		problems, n, err := lintFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintf(os.Stderr, "%s: %s\n", path, p)
			}
			failed++
			continue
		}
		fmt.Printf("%s: %d record(s) ok\n", path, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed lint", failed, len(args))
	}
	return nil
}

// lintFile decodes one fixture file and checks every record for the
// problems the loaders would otherwise hit at runtime.
func lintFile(path string) (problems []string, records int, err error) {
	recs, err := decodeFile(path)
	if err != nil {
		return nil, 0, err
	}

	seen := make(map[string]int)
	for i, rec := range recs {
		switch {
		case rec.Model == "":
			problems = append(problems, fmt.Sprintf("record %d: missing model reference", i))
		case strings.Count(rec.Model, ".") > 1:
			problems = append(problems, fmt.Sprintf("record %d: malformed model reference %q", i, rec.Model))
		}
		if len(rec.Fields) == 0 && rec.PK == nil {
			problems = append(problems, fmt.Sprintf("record %d: no fields and no pk", i))
		}
		if rec.Model != "" && rec.PK != nil {
			key := fmt.Sprintf("%s pk=%v", rec.Model, rec.PK)
			if first, dup := seen[key]; dup {
				problems = append(problems, fmt.Sprintf("record %d: duplicate %s (first at record %d)", i, key, first))
			} else {
				seen[key] = i
			}
		}
	}
	return problems, len(recs), nil
}

func runLoad(cmd *cobra.Command, args []string) (err error) {
	env, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, finish := env.trackRun(cmd.Context(), observability.SpanFixtureLoad)
	defer func() { finish(err) }()

	// Decode everything up front so a syntax error in the last file
	// cannot leave a half-written database behind.
	type decoded struct {
		path    string
		records []fixture.Record
	}
	var files []decoded
	total := 0
	for _, path := range args {
		recs, err := decodeFile(path)
		if err != nil {
			return err
		}
		files = append(files, decoded{path: path, records: recs})
		total += len(recs)
	}

	err = env.db.GormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range files {
			for i, rec := range f.records {
				if rec.Model == "" {
					return fmt.Errorf("%s record %d: missing model reference", f.path, i)
				}
				row := make(map[string]interface{}, len(rec.Fields)+1)
				for k, v := range rec.Fields {
					row[k] = v
				}
				if rec.PK != nil {
					row[pkColumn] = rec.PK
				}
				if err := tx.Table(rec.Model).Create(row).Error; err != nil {
					return fmt.Errorf("%s record %d (%s): %w", f.path, i, rec.Model, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	env.log.Info("fixtures loaded", map[string]interface{}{
		"files":   len(files),
		"records": total,
	})
	return nil
}

func runMigrateUp(cmd *cobra.Command, args []string) (err error) {
	env, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	_, finish := env.trackRun(cmd.Context(), observability.SpanMigrationApply)
	defer func() { finish(err) }()

	driver, err := migrateDriverFor(env.cfg.Database.Driver)
	if err != nil {
		return err
	}
	if err := migration.ApplyFiles(env.db.GormDB, os.DirFS(migrateDir), ".", driver); err != nil {
		return err
	}
	env.log.Info("schema migrations applied", map[string]interface{}{"dir": migrateDir})
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) (err error) {
	env, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	_, finish := env.trackRun(cmd.Context(), observability.SpanMigrationRollback)
	defer func() { finish(err) }()

	driver, err := migrateDriverFor(env.cfg.Database.Driver)
	if err != nil {
		return err
	}
	files := os.DirFS(migrateDir)
	if downSteps > 0 {
		err = migration.StepFiles(env.db.GormDB, files, ".", -downSteps, driver)
	} else {
		err = migration.RollbackFiles(env.db.GormDB, files, ".", driver)
	}
	if err != nil {
		return err
	}
	env.log.Info("schema migrations rolled back", map[string]interface{}{
		"dir":   migrateDir,
		"steps": downSteps,
	})
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	env, cleanup, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	driver, err := migrateDriverFor(env.cfg.Database.Driver)
	if err != nil {
		return err
	}
	v, dirty, err := migration.FileVersion(env.db.GormDB, os.DirFS(migrateDir), ".", driver)
	if err == migrate.ErrNilVersion {
		fmt.Println("no schema migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("version %d (dirty: %v)\n", v, dirty)
	return nil
}

// decodeFile reads all records from one fixture file using the format
// registered for its extension.
func decodeFile(path string) ([]fixture.Record, error) {
	format, err := fixture.FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := format.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// runEnv is what a command needs after setup: resolved configuration,
// logger, open database and the metric instruments. metrics is nil when
// telemetry is disabled.
type runEnv struct {
	cfg     *cliConfig
	log     *logger.Logger
	db      *database.DB
	metrics *observability.Metrics
}

// trackRun opens a tracked run for one command invocation and stores it
// in the context, so spans and metrics emitted by the library packages
// report under a single RunID. The returned finish closes the run with
// its outcome.
func (e *runEnv) trackRun(ctx context.Context, operation string) (context.Context, func(error)) {
	oc := observability.NewOperationContext(e.cfg.Name, operation, e.metrics)
	ctx = observability.WithOperationContext(ctx, oc)
	ctx, span := oc.StartSpanForOperation(ctx, operation)
	return ctx, func(err error) {
		status := "ok"
		if err != nil {
			status = "error"
		}
		oc.EndOperation(ctx, span, status, err)
	}
}

// setup loads configuration, builds the logger, installs telemetry when
// enabled and connects to the database. The returned cleanup stops the
// database component and flushes telemetry exporters.
func setup(ctx context.Context) (*runEnv, func(), error) {
	var cfg cliConfig
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(appName, &cfg, opts...); err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if dsnFlag != "" {
		cfg.Database.DSN = dsnFlag
	}
	if driverFlag != "" {
		cfg.Database.Driver = driverFlag
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logger.New(&cfg.Logging, cfg.Name)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var metrics *observability.Metrics
	if cfg.Telemetry.Enabled {
		stopTelemetry, err := initTelemetry(ctx, &cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, stopTelemetry)

		metrics, err = observability.NewMetrics(observability.Meter(cfg.Name))
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("create metrics: %w", err)
		}
	}

	comp := database.NewComponent(cfg.Database, log)
	if cfg.Database.Driver == "postgres" {
		comp = comp.WithDriver(postgres.Open)
	}

	registry := component.NewRegistry(log)
	if err := registry.Register(comp); err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := registry.StartAll(ctx); err != nil {
		_ = registry.StopAll(context.Background())
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() {
		_ = registry.StopAll(context.Background())
	})

	return &runEnv{cfg: &cfg, log: log, db: comp.DB(), metrics: metrics}, cleanup, nil
}

// initTelemetry installs the OpenTelemetry SDK so the instrumentation
// in the library packages starts exporting.
func initTelemetry(ctx context.Context, cfg *cliConfig) (func(), error) {
	tcfg := observability.DefaultTracerConfig(cfg.Name)
	tcfg.ServiceVersion = version.Version
	tcfg.Environment = cfg.Environment
	tcfg.Endpoint = cfg.Telemetry.Endpoint
	tcfg.Insecure = cfg.Telemetry.Insecure

	tp, err := observability.InitTracer(ctx, &tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	mcfg := observability.DefaultMeterConfig(cfg.Name)
	mcfg.ServiceVersion = version.Version
	mcfg.Environment = cfg.Environment
	mcfg.Endpoint = cfg.Telemetry.Endpoint
	mcfg.Insecure = cfg.Telemetry.Insecure

	mp, err := observability.InitMeter(ctx, &mcfg)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, fmt.Errorf("init meter: %w", err)
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mp.Shutdown(ctx)
		_ = tp.Shutdown(ctx)
	}, nil
}

// migrateDriverFor picks the golang-migrate database driver matching
// the configured gorm driver.
func migrateDriverFor(name string) (migration.DriverFunc, error) {
	switch name {
	case "sqlite":
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		}, nil
	case "postgres":
		return func(db *sql.DB) (migratedb.Driver, error) {
			return migratepg.WithInstance(db, &migratepg.Config{})
		}, nil
	default:
		return nil, fmt.Errorf("no schema migration driver for %q", name)
	}
}
