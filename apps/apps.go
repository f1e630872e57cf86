package apps

import (
	"io/fs"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/kbukum/fixturekit/errors"
)

// App describes one application: a named owner of models and of the
// on-disk data (fixtures, migration files) that belongs to them.
type App struct {
	// Name is the full application name, unique within a registry,
	// e.g. "github.com/acme/shop" or simply "shop".
	Name string

	// Label is the short identifier used in model references and
	// migration records. Defaults to the last path segment of Name.
	Label string

	// FS is the application's data root. Fixture and migration files
	// resolve against it. Takes precedence over Dir.
	FS fs.FS

	// Dir is an OS directory used as the data root when FS is unset.
	Dir string

	// Models holds the model prototypes owned by this application.
	// Each entry is a struct or pointer to struct; the model name is
	// the lowercased struct type name.
	Models []interface{}

	models map[string]interface{}
}

// DataFS resolves the application's data root. FS wins over Dir.
func (a *App) DataFS() (fs.FS, error) {
	if a.FS != nil {
		return a.FS, nil
	}
	if a.Dir != "" {
		if _, err := os.Stat(a.Dir); err != nil {
			return nil, errors.Newf(errors.ErrCodeAppPathUnresolved,
				"app %q: data directory %q is not accessible", a.Label, a.Dir).WithCause(err)
		}
		return os.DirFS(a.Dir), nil
	}
	return nil, errors.Newf(errors.ErrCodeAppPathUnresolved,
		"app %q has no data root: set FS or Dir", a.Label)
}

// Model returns the registered model prototype for the given name.
// Names are matched case-insensitively.
func (a *App) Model(name string) (interface{}, error) {
	if m, ok := a.models[strings.ToLower(name)]; ok {
		return m, nil
	}
	return nil, errors.Newf(errors.ErrCodeModelNotFound,
		"app %q has no model %q", a.Label, name)
}

// ModelNames returns the registered model names in sorted order.
func (a *App) ModelNames() []string {
	names := make([]string, 0, len(a.models))
	for name := range a.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the application label.
func (a *App) String() string { return a.Label }

// deriveLabel returns the last path segment of an application name.
func deriveLabel(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// modelName derives the registry key for a model prototype.
func modelName(model interface{}) (string, error) {
	if model == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "model must not be nil")
	}
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return "", errors.Newf(errors.ErrCodeInvalidInput,
			"model must be a named struct, got %T", model)
	}
	return strings.ToLower(t.Name()), nil
}

// indexModels builds the app's name index from its Models slice.
func (a *App) indexModels() error {
	a.models = make(map[string]interface{}, len(a.Models))
	for _, m := range a.Models {
		name, err := modelName(m)
		if err != nil {
			return err
		}
		if _, ok := a.models[name]; ok {
			return errors.Newf(errors.ErrCodeAlreadyExists,
				"app %q registers model %q twice", a.Label, name)
		}
		a.models[name] = m
	}
	return nil
}
