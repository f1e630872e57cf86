package component

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kbukum/fixturekit/logger"
)

// stubComponent implements Component; start/stop are appended to a
// shared order slice so tests can assert sequencing.
type stubComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	order    *[]string
}

func (s *stubComponent) Name() string { return s.name }

func (s *stubComponent) Start(context.Context) error {
	if s.order != nil {
		*s.order = append(*s.order, "start "+s.name)
	}
	return s.startErr
}

func (s *stubComponent) Stop(context.Context) error {
	if s.order != nil {
		*s.order = append(*s.order, "stop "+s.name)
	}
	return s.stopErr
}

func (s *stubComponent) Health(context.Context) Health { return s.health }

func quietRegistry() *Registry {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	return NewRegistry(nil)
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry(logger.NewDefault("test"))

	if err := r.Register(&stubComponent{name: "database"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&stubComponent{name: "database"}); err == nil {
		t.Fatal("duplicate Register should fail")
	}

	if got := r.Get("database"); got == nil || got.Name() != "database" {
		t.Fatalf("Get(database) = %v", got)
	}
	if got := r.Get("missing"); got != nil {
		t.Fatalf("Get(missing) = %v, want nil", got)
	}
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	r := quietRegistry()
	r.Register(&stubComponent{name: "database"})
	r.Register(&stubComponent{name: "migration"})

	all := r.All()
	if len(all) != 2 || all[0].Name() != "database" || all[1].Name() != "migration" {
		names := make([]string, len(all))
		for i, c := range all {
			names[i] = c.Name()
		}
		t.Fatalf("All() = %v, want [database migration]", names)
	}
}

func TestStartStopOrdering(t *testing.T) {
	r := quietRegistry()
	var order []string

	r.Register(&stubComponent{name: "database", order: &order})
	r.Register(&stubComponent{name: "migration", order: &order})
	r.Register(&stubComponent{name: "telemetry", order: &order})

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{
		"start database", "start migration", "start telemetry",
		"stop telemetry", "stop migration", "stop database",
	}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestStartAllAbortsAtFirstFailure(t *testing.T) {
	r := quietRegistry()
	var order []string
	startErr := errors.New("connection refused")

	r.Register(&stubComponent{name: "database", order: &order, startErr: startErr})
	r.Register(&stubComponent{name: "migration", order: &order})

	err := r.StartAll(context.Background())
	if !errors.Is(err, startErr) {
		t.Fatalf("StartAll err = %v, want wrapped %v", err, startErr)
	}
	for _, step := range order {
		if step == "start migration" {
			t.Fatal("migration should not start after database failed")
		}
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := quietRegistry()
	var order []string
	r.Register(&stubComponent{name: "database", order: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if len(order) != 0 {
		t.Fatalf("unstarted component was stopped: %v", order)
	}
}

func TestStopAllCollectsFailures(t *testing.T) {
	r := quietRegistry()
	var order []string
	stopErr := errors.New("stop failed")

	r.Register(&stubComponent{name: "database", order: &order, stopErr: stopErr})
	r.Register(&stubComponent{name: "migration", order: &order})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if !errors.Is(err, stopErr) {
		t.Fatalf("StopAll err = %v, want wrapped %v", err, stopErr)
	}
	// The failing database stop must not block the migration stop.
	found := false
	for _, step := range order {
		if step == "stop migration" {
			found = true
		}
	}
	if !found {
		t.Fatal("migration was not stopped after database stop failed")
	}
}

func TestHealthAll(t *testing.T) {
	r := quietRegistry()
	r.Register(&stubComponent{
		name:   "database",
		health: Health{Name: "database", Status: StatusHealthy, Message: "connected"},
	})
	r.Register(&stubComponent{
		name:   "migration",
		health: Health{Name: "migration", Status: StatusUnhealthy, Message: "pending"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("HealthAll returned %d results", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Fatalf("HealthAll = %+v", results)
	}
}

type describedStub struct {
	stubComponent
	desc Description
}

func (d *describedStub) Describe() Description { return d.desc }

func TestDescribable(t *testing.T) {
	var comp Component = &describedStub{
		stubComponent: stubComponent{name: "database"},
		desc:          Description{Name: "SQLite", Type: "database", Details: "file::memory: pool=1/1"},
	}

	d, ok := comp.(Describable)
	if !ok {
		t.Fatal("component should implement Describable")
	}
	if got := d.Describe(); got.Name != "SQLite" || got.Type != "database" {
		t.Fatalf("Describe() = %+v", got)
	}
}
