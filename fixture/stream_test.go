package fixture

import (
	"context"
	"testing"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/errors"
)

func collectNames(t *testing.T, spec *Spec) []string {
	t.Helper()
	var names []string
	err := spec.Stream().ForEach(context.Background(), func(o *Object) error {
		names = append(names, o.Record.Fields["name"].(string))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach() error = %v", err)
	}
	return names
}

func TestStream_FileThenRecordOrder(t *testing.T) {
	app := newFixtureApp(t, map[string]string{
		"fixtures/first.yaml": `- model: egg
  fields: {name: a}
- model: egg
  fields: {name: b}
`,
		"fixtures/second.yaml": `- model: egg
  fields: {name: c}
`,
	})
	spec := newSpec(t, app, []string{"first.yaml", "second.yaml"})

	got := collectNames(t, spec)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStream_Restartable(t *testing.T) {
	app := newFixtureApp(t, map[string]string{"fixtures/eggs.yaml": eggsYAML})
	spec := newSpec(t, app, []string{"eggs.yaml"})

	first := collectNames(t, spec)
	second := collectNames(t, spec)

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("passes yielded %d and %d records, want 2 and 2", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("pass order differs at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestStream_BuildsModelInstances(t *testing.T) {
	app := newFixtureApp(t, map[string]string{"fixtures/eggs.yaml": eggsYAML})
	spec := newSpec(t, app, []string{"eggs.yaml"})

	objects, err := spec.Stream().Objects(context.Background())
	if err != nil {
		t.Fatalf("Objects() error = %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("Objects() = %d, want 2", len(objects))
	}

	first, ok := objects[0].Value.(*egg)
	if !ok {
		t.Fatalf("Value = %T, want *egg", objects[0].Value)
	}
	if first.ID != 1 || first.Name != "golden" || first.Size != 3 {
		t.Errorf("first = %+v, want ID 1 golden size 3", first)
	}
	if objects[0].Qualified() != "shop.egg" {
		t.Errorf("Qualified() = %q", objects[0].Qualified())
	}

	second := objects[1].Value.(*egg)
	if second.ID != 0 {
		t.Errorf("unpinned record got ID %d, want 0", second.ID)
	}
	if second.Name != "speckled" || second.Size != 2 {
		t.Errorf("second = %+v", second)
	}
}

func TestStream_IgnoresUnknownFields(t *testing.T) {
	app := newFixtureApp(t, map[string]string{
		"fixtures/eggs.yaml": `- model: egg
  fields:
    name: golden
    flavor: umami
    size: 3
`,
	})
	spec := newSpec(t, app, []string{"eggs.yaml"})

	objects, err := spec.Stream().Objects(context.Background())
	if err != nil {
		t.Fatalf("Objects() error = %v", err)
	}
	e := objects[0].Value.(*egg)
	if e.Name != "golden" || e.Size != 3 {
		t.Errorf("egg = %+v", e)
	}
	if _, ok := objects[0].applied["flavor"]; ok {
		t.Error("unknown field recorded as applied")
	}
}

func TestStream_UnknownModel(t *testing.T) {
	app := newFixtureApp(t, map[string]string{
		"fixtures/bad.yaml": "- model: spoon\n  fields: {name: x}\n",
	})
	spec := newSpec(t, app, []string{"bad.yaml"})

	err := spec.Stream().ForEach(context.Background(), func(*Object) error { return nil })
	if !errors.MatchesCode(err, errors.ErrCodeModelNotFound) {
		t.Errorf("ForEach() error = %v, want code %s", err, errors.ErrCodeModelNotFound)
	}
}

func TestStream_UnknownApp(t *testing.T) {
	app := newFixtureApp(t, map[string]string{
		"fixtures/bad.yaml": "- model: warehouse.crate\n  fields: {name: x}\n",
	})
	spec := newSpec(t, app, []string{"bad.yaml"}, WithRegistry(apps.NewRegistry()))

	err := spec.Stream().ForEach(context.Background(), func(*Object) error { return nil })
	if !errors.MatchesCode(err, errors.ErrCodeAppNotFound) {
		t.Errorf("ForEach() error = %v, want code %s", err, errors.ErrCodeAppNotFound)
	}
}

func TestStream_CrossAppReference(t *testing.T) {
	reg := apps.NewRegistry()
	other, err := reg.Register(&apps.App{Name: "warehouse", Models: []interface{}{&post{}}})
	if err != nil {
		t.Fatalf("register warehouse: %v", err)
	}
	app := newFixtureApp(t, map[string]string{
		"fixtures/mixed.yaml": "- model: warehouse.post\n  fields: {title: Crate}\n",
	})
	spec := newSpec(t, app, []string{"mixed.yaml"}, WithRegistry(reg))

	objects, err := spec.Stream().Objects(context.Background())
	if err != nil {
		t.Fatalf("Objects() error = %v", err)
	}
	if objects[0].App != other {
		t.Errorf("object owned by %q, want warehouse", objects[0].App.Label)
	}
	if objects[0].Value.(*post).Title != "Crate" {
		t.Errorf("post = %+v", objects[0].Value)
	}
}

func TestStream_SyntaxErrorCarriesFile(t *testing.T) {
	app := newFixtureApp(t, map[string]string{
		"fixtures/broken.yaml": "-  model: [unclosed\n",
	})
	spec := newSpec(t, app, []string{"broken.yaml"})

	err := spec.Stream().ForEach(context.Background(), func(*Object) error { return nil })
	if !errors.MatchesCode(err, errors.ErrCodeFixtureSyntax) {
		t.Fatalf("ForEach() error = %v, want code %s", err, errors.ErrCodeFixtureSyntax)
	}
}

func TestStream_MissingFile(t *testing.T) {
	app := newFixtureApp(t, nil)
	spec := newSpec(t, app, []string{"nope.yaml"})

	err := spec.Stream().ForEach(context.Background(), func(*Object) error { return nil })
	if !errors.MatchesCode(err, errors.ErrCodeFixtureUnreadable) {
		t.Errorf("ForEach() error = %v, want code %s", err, errors.ErrCodeFixtureUnreadable)
	}
}

func TestStream_UnknownExtension(t *testing.T) {
	app := newFixtureApp(t, map[string]string{"fixtures/eggs.csv": "x"})
	spec := newSpec(t, app, []string{"eggs.csv"})

	err := spec.Stream().ForEach(context.Background(), func(*Object) error { return nil })
	if !errors.MatchesCode(err, errors.ErrCodeFormatUnknown) {
		t.Errorf("ForEach() error = %v, want code %s", err, errors.ErrCodeFormatUnknown)
	}
}

func TestStream_CustomDir(t *testing.T) {
	app := newFixtureApp(t, map[string]string{"seed/eggs.yaml": eggsYAML})
	spec := newSpec(t, app, []string{"eggs.yaml"}, WithDir("seed"))

	if got := collectNames(t, spec); len(got) != 2 {
		t.Errorf("loaded %d records from custom dir, want 2", len(got))
	}
}

func TestStream_ContextCancelled(t *testing.T) {
	app := newFixtureApp(t, map[string]string{"fixtures/eggs.yaml": eggsYAML})
	spec := newSpec(t, app, []string{"eggs.yaml"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var seen int
	err := spec.Stream().ForEach(ctx, func(*Object) error {
		seen++
		return nil
	})
	if err == nil {
		t.Error("ForEach() expected context error")
	}
	if seen != 0 {
		t.Errorf("callback ran %d times after cancellation", seen)
	}
}

func TestStream_JSONFixture(t *testing.T) {
	app := newFixtureApp(t, map[string]string{
		"fixtures/eggs.json": `[
  {"model": "shop.egg", "pk": 5, "fields": {"name": "brown", "size": 1}}
]`,
	})
	spec := newSpec(t, app, []string{"eggs.json"})

	objects, err := spec.Stream().Objects(context.Background())
	if err != nil {
		t.Fatalf("Objects() error = %v", err)
	}
	e := objects[0].Value.(*egg)
	if e.ID != 5 || e.Name != "brown" || e.Size != 1 {
		t.Errorf("egg = %+v, want ID 5 brown size 1", e)
	}
}

func TestStream_EmptyFile(t *testing.T) {
	app := newFixtureApp(t, map[string]string{"fixtures/empty.yaml": ""})
	spec := newSpec(t, app, []string{"empty.yaml"})

	objects, err := spec.Stream().Objects(context.Background())
	if err != nil {
		t.Fatalf("Objects() error = %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("Objects() = %d, want 0", len(objects))
	}
}
