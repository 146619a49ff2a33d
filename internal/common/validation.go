package common

import (
	"fmt"
	"slices"
	"strings"
)

// FieldError is one rejected request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Reason
}

// Rule checks one field value and returns nil when it passes.
type Rule func(field string, value any) *FieldError

// Validator gathers every field failure of a request before answering, so a
// caller sees all problems at once.
type Validator struct {
	failures []FieldError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value in order.
func (v *Validator) Field(field string, value any, rules ...Rule) *Validator {
	for _, rule := range rules {
		if fe := rule(field, value); fe != nil {
			v.failures = append(v.failures, *fe)
		}
	}
	return v
}

func (v *Validator) Failures() []FieldError { return v.failures }

// Err joins the failures into one ErrInput error, or returns nil.
func (v *Validator) Err() error {
	if len(v.failures) == 0 {
		return nil
	}
	parts := make([]string, len(v.failures))
	for i, fe := range v.failures {
		parts[i] = fe.Error()
	}
	return InputError(strings.Join(parts, "; "))
}

// Required rejects nil, blank strings and empty byte slices.
func Required(field string, value any) *FieldError {
	missing := false
	switch x := value.(type) {
	case nil:
		missing = true
	case string:
		missing = strings.TrimSpace(x) == ""
	case []byte:
		missing = len(x) == 0
	}
	if missing {
		return &FieldError{Field: field, Reason: "is required"}
	}
	return nil
}

// MaxBytes limits the length of a byte payload.
func MaxBytes(limit int) Rule {
	return func(field string, value any) *FieldError {
		if b, ok := value.([]byte); ok && len(b) > limit {
			return &FieldError{Field: field, Reason: fmt.Sprintf("must be at most %d bytes", limit)}
		}
		return nil
	}
}

// OneOf passes an empty string or any of allowed.
func OneOf(allowed ...string) Rule {
	return func(field string, value any) *FieldError {
		s, ok := value.(string)
		if !ok || s == "" || slices.Contains(allowed, s) {
			return nil
		}
		return &FieldError{Field: field, Reason: "must be one of " + strings.Join(allowed, ", ")}
	}
}
