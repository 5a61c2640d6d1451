package validation

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/storefront/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
// Details["fields"] maps each field to its first message.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	fields := make(map[string]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		if _, seen := fields[e.Field]; !seen {
			fields[e.Field] = e.Message
		}
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fields)
}

// Required checks if a string is non-blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength checks if a string is within max length.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// OneOf checks if a non-empty value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" || slices.Contains(allowed, value) {
		return v
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// Float parses an optional non-negative decimal. An empty value yields nil.
func (v *Validator) Float(field, value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		v.AddError(field, "must be a number")
		return nil
	}
	if f < 0 {
		v.AddError(field, "must be greater than or equal to 0")
		return nil
	}
	return &f
}

// Int parses an optional non-negative integer, returning def when empty.
func (v *Validator) Int(field, value string, def int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		v.AddError(field, "must be an integer")
		return def
	}
	if n < 0 {
		v.AddError(field, "must be greater than or equal to 0")
		return def
	}
	return n
}

// ValidateUUID validates a UUID path parameter and returns it in canonical form.
func ValidateUUID(field, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", errors.InvalidInput(field, fmt.Sprintf("%s is required", field))
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return "", errors.InvalidInput(field, fmt.Sprintf("%s must be a valid UUID", field))
	}
	return id.String(), nil
}
