// Package validation checks inputs two ways: struct tags for
// configuration, a fluent collector for constructor arguments like app
// labels and fixture file lists. Both fold their failures into a
// single AppError with a per-field breakdown in Details.
//
// Struct tags:
//
//	type Config struct {
//	    DSN    string `validate:"required"`
//	    Driver string `validate:"oneof=sqlite postgres"`
//	}
//	err := validation.Validate(cfg)
//
// Fluent:
//
//	v := validation.New()
//	v.Required("label", label).Identifier("label", label)
//	err := v.Validate()
package validation
