package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/fixturekit/errors"
)

// FieldError is one failed check, attributed to the field it hit.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator runs checks fluently and collects every failure instead of
// stopping at the first, so callers get all problems in one error.
//
//	v := validation.New()
//	v.Required("label", label).Identifier("label", label)
//	if err := v.Validate(); err != nil { ... }
type Validator struct {
	errs []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure against field.
func (v *Validator) AddError(field, message string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Errors returns the collected failures in check order.
func (v *Validator) Errors() []FieldError {
	return v.errs
}

// Validate folds the collected failures into a single AppError, nil
// when everything passed. The per-field breakdown rides in Details.
func (v *Validator) Validate() *errors.AppError {
	if len(v.errs) == 0 {
		return nil
	}

	messages := make([]string, len(v.errs))
	for i, e := range v.errs {
		messages[i] = e.Field + ": " + e.Message
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{"fields": v.errs}
	return appErr
}

// Required fails when value is empty or whitespace.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

var identifierRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Identifier fails unless value is a lowercase identifier: letters,
// digits and underscores, starting with a letter. App labels and model
// names are identifiers. Empty values pass; pair with Required.
func (v *Validator) Identifier(field, value string) *Validator {
	if value != "" && !identifierRe.MatchString(value) {
		v.AddError(field, "must be a lowercase identifier")
	}
	return v
}

// OneOf fails unless value is in allowed. Empty values pass.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	return v
}

// MinLength fails when value is shorter than n bytes.
func (v *Validator) MinLength(field, value string, n int) *Validator {
	if len(value) < n {
		v.AddError(field, fmt.Sprintf("must be at least %d characters", n))
	}
	return v
}

// MaxLength fails when value is longer than n bytes.
func (v *Validator) MaxLength(field, value string, n int) *Validator {
	if len(value) > n {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", n))
	}
	return v
}

// Min fails when value is below floor.
func (v *Validator) Min(field string, value, floor int) *Validator {
	if value < floor {
		v.AddError(field, fmt.Sprintf("must be at least %d", floor))
	}
	return v
}

// RequiredUUID fails unless value parses as a non-nil UUID.
func (v *Validator) RequiredUUID(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
		return v
	}
	parsed, err := uuid.Parse(value)
	if err != nil {
		v.AddError(field, "must be a valid UUID")
		return v
	}
	if parsed == uuid.Nil {
		v.AddError(field, "must not be empty")
	}
	return v
}

// OptionalUUID fails when a non-empty value does not parse as a UUID.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value == "" {
		return v
	}
	if _, err := uuid.Parse(value); err != nil {
		v.AddError(field, "must be a valid UUID")
	}
	return v
}

// Custom records a failure against field when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Required is the one-field shorthand for New().Required().Validate().
func Required(field, value string) error {
	if appErr := New().Required(field, value).Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ValidateUUID parses a required UUID string, returning the parsed
// value alongside any validation error.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, errors.Validation(field + " is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.Validation(field + " must be a valid UUID")
	}
	return id, nil
}
