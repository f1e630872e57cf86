package migration

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/errors"
)

// TableState is the historical shape of one model's table: enough to
// locate and delete rows without the live Go type.
type TableState struct {
	// Name is the lowercased model name.
	Name string
	// Table is the database table the model mapped to.
	Table string
	// PrimaryKey is the primary key column, or "" when the model had
	// no prioritized primary key.
	PrimaryKey string

	columns map[string]string
}

// Column resolves a serialized field name (struct field or column,
// any case) to the historical column name.
func (ts TableState) Column(name string) (string, bool) {
	col, ok := ts.columns[strings.ToLower(name)]
	return col, ok
}

// State snapshots the table shapes of an application's models as they
// were when the application was registered with a runner. Reverse
// operations resolve models against this snapshot instead of the live
// registry, so rollbacks keep working after model types change.
type State struct {
	// App is the owning application's label.
	App string

	models map[string]TableState
}

// Model returns the historical table state for a model name.
func (s *State) Model(name string) (TableState, error) {
	if ts, ok := s.models[strings.ToLower(name)]; ok {
		return ts, nil
	}
	return TableState{}, errors.Newf(errors.ErrCodeModelNotFound,
		"app %q had no model %q at registration time", s.App, name)
}

// ModelNames returns the snapshot's model names in sorted order.
func (s *State) ModelNames() []string {
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CaptureState parses each of the application's models against the
// database's naming rules and records table, primary key and columns.
func CaptureState(db *gorm.DB, app *apps.App) (*State, error) {
	st := &State{
		App:    app.Label,
		models: make(map[string]TableState, len(app.Models)),
	}
	for _, name := range app.ModelNames() {
		model, err := app.Model(name)
		if err != nil {
			return nil, err
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput,
				"parse model "+app.Label+"."+name, err)
		}

		ts := TableState{
			Name:    name,
			Table:   stmt.Schema.Table,
			columns: make(map[string]string),
		}
		if pk := stmt.Schema.PrioritizedPrimaryField; pk != nil {
			ts.PrimaryKey = pk.DBName
		}
		for _, f := range stmt.Schema.Fields {
			if f.DBName == "" {
				continue
			}
			ts.columns[strings.ToLower(f.DBName)] = f.DBName
			ts.columns[strings.ToLower(f.Name)] = f.DBName
		}
		st.models[name] = ts
	}
	return st, nil
}
