package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/fixturekit/errors"
)

var (
	structValidator *validator.Validate
	structOnce      sync.Once
)

// tagValidator lazily builds the process-wide validator instance.
// Field names in error output come from json tags when present,
// falling back to snake_case of the Go name.
func tagValidator() *validator.Validate {
	structOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
		structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return structValidator
}

// Validate checks a struct against its `validate:"..."` tags and folds
// the failures into one AppError, same shape as Validator.Validate.
func Validate(s any) error {
	err := tagValidator().Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed")
	}

	fieldErrors := make([]FieldError, 0, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fe := FieldError{Field: toSnakeCase(e.Field()), Message: tagMessage(e)}
		fieldErrors = append(fieldErrors, fe)
		messages = append(messages, fe.Field+": "+fe.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{"fields": fieldErrors}
	return appErr
}

// tagMessage translates a failed tag into the phrasing Validator uses,
// so tag-driven and fluent validation errors read the same.
func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be " + e.Param() + " characters or less"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
