package apps

import (
	"strings"
	"sync"

	"github.com/kbukum/fixturekit/errors"
	"github.com/kbukum/fixturekit/validation"
)

// Registry holds registered applications and resolves qualified model
// references. A process-wide default registry is available through the
// package-level functions; tests typically construct their own.
type Registry struct {
	mu      sync.RWMutex
	byLabel map[string]*App
	order   []*App
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byLabel: make(map[string]*App),
	}
}

// Register validates the application, fills in its derived label,
// indexes its models and adds it to the registry. The returned pointer
// is the same instance, ready for use.
func (r *Registry) Register(app *App) (*App, error) {
	if app == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "app must not be nil")
	}
	if app.Label == "" {
		app.Label = deriveLabel(app.Name)
	}

	v := validation.New().
		Required("name", app.Name).
		Required("label", app.Label).
		Identifier("label", app.Label)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if err := app.indexModels(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byLabel[app.Label]; ok {
		return nil, errors.Newf(errors.ErrCodeAlreadyExists,
			"app %q is already registered", app.Label)
	}
	r.byLabel[app.Label] = app
	r.order = append(r.order, app)
	return app, nil
}

// Get returns the application registered under the given label.
func (r *Registry) Get(label string) (*App, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if app, ok := r.byLabel[label]; ok {
		return app, nil
	}
	return nil, errors.Newf(errors.ErrCodeAppNotFound, "app %q is not registered", label)
}

// Apps returns all registered applications in registration order.
func (r *Registry) Apps() []*App {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*App, len(r.order))
	copy(out, r.order)
	return out
}

// ResolveModel resolves a qualified "app.model" reference to the owning
// application and the registered model prototype.
func (r *Registry) ResolveModel(ref string) (*App, interface{}, error) {
	label, name, ok := strings.Cut(ref, ".")
	if !ok || label == "" || name == "" {
		return nil, nil, errors.Newf(errors.ErrCodeInvalidFormat,
			"model reference %q must be qualified as app.model", ref)
	}
	app, err := r.Get(label)
	if err != nil {
		return nil, nil, err
	}
	model, err := app.Model(name)
	if err != nil {
		return nil, nil, err
	}
	return app, model, nil
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register adds an application to the process-wide registry.
func Register(app *App) (*App, error) { return defaultRegistry.Register(app) }

// Get returns an application from the process-wide registry.
func Get(label string) (*App, error) { return defaultRegistry.Get(label) }
