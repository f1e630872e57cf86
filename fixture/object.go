package fixture

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm/schema"

	"github.com/kbukum/fixturekit/apps"
	"github.com/kbukum/fixturekit/errors"
	"github.com/kbukum/fixturekit/logger"
)

// Object is one deserialized fixture record bound to a fresh instance
// of its live model.
type Object struct {
	// Record is the raw serialized form.
	Record Record
	// App is the application owning the target model.
	App *apps.App
	// Value is a pointer to a new model instance with the record's
	// fields applied. Save it to persist the record.
	Value interface{}

	model   string
	schema  *schema.Schema
	applied map[string]interface{}
}

// ModelName returns the lowercased unqualified model name.
func (o *Object) ModelName() string { return o.model }

// Qualified returns the "app.model" reference.
func (o *Object) Qualified() string { return o.App.Label + "." + o.model }

var schemaCache = &sync.Map{}

// buildObject binds one record to its live model: resolves the model
// reference, instantiates the type and applies every known field.
// Field names the model does not have are ignored.
func (s *Spec) buildObject(ctx context.Context, rec Record) (*Object, error) {
	if rec.Model == "" {
		return nil, errors.New(errors.ErrCodeFixtureSyntax, "record has no model reference")
	}
	app, proto, name, err := s.resolveModel(rec.Model)
	if err != nil {
		return nil, err
	}

	sch, err := schema.Parse(proto, schemaCache, schema.NamingStrategy{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, "parse model "+rec.Model, err)
	}

	value := reflect.New(sch.ModelType)
	obj := &Object{
		Record:  rec,
		App:     app,
		Value:   value.Interface(),
		model:   name,
		schema:  sch,
		applied: make(map[string]interface{}, len(rec.Fields)+1),
	}

	for fieldName, raw := range rec.Fields {
		f := sch.LookUpField(fieldName)
		if f == nil {
			s.log.Debug("Ignoring unknown fixture field", logger.Fields(
				"model", rec.Model,
				"field", fieldName,
			))
			continue
		}
		if err := f.Set(ctx, value, raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFixtureSyntax,
				fmt.Sprintf("set field %q of %s", fieldName, rec.Model), err)
		}
		v, _ := f.ValueOf(ctx, value)
		obj.applied[f.DBName] = v
	}

	if rec.PK != nil {
		pk := sch.PrioritizedPrimaryField
		if pk == nil {
			return nil, errors.Newf(errors.ErrCodeFixtureSyntax,
				"record pins a pk but model %s has no primary key", rec.Model)
		}
		if err := pk.Set(ctx, value, rec.PK); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFixtureSyntax,
				fmt.Sprintf("set primary key of %s", rec.Model), err)
		}
		v, _ := pk.ValueOf(ctx, value)
		obj.applied[pk.DBName] = v
	}

	return obj, nil
}

// resolveModel resolves a model reference to the owning app, the
// registered prototype and the lowercased model name. Unqualified
// references and references qualified with the spec's own app resolve
// locally; anything else goes through the registry.
func (s *Spec) resolveModel(ref string) (*apps.App, interface{}, string, error) {
	label, name, qualified := strings.Cut(ref, ".")
	if !qualified {
		model, err := s.app.Model(ref)
		if err != nil {
			return nil, nil, "", err
		}
		return s.app, model, strings.ToLower(ref), nil
	}
	if label == s.app.Label {
		model, err := s.app.Model(name)
		if err != nil {
			return nil, nil, "", err
		}
		return s.app, model, strings.ToLower(name), nil
	}

	reg := s.registry
	if reg == nil {
		reg = apps.Default()
	}
	app, model, err := reg.ResolveModel(ref)
	if err != nil {
		return nil, nil, "", err
	}
	return app, model, strings.ToLower(name), nil
}

// isNil reports whether a deserialized field value is nil, including
// typed nil pointers.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
