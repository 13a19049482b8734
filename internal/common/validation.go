package common

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationError is one failed rule on one field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	if s, ok := e.Value.(string); ok && s == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s %s (got %v)", e.Field, e.Message, e.Value)
}

// Validator accumulates rule failures so every problem is reported at once.
type Validator struct {
	failed []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value in order; all failures are kept.
func (v *Validator) Field(name string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if fe := rule(name, value); fe != nil {
			v.failed = append(v.failed, *fe)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.failed) > 0 }

func (v *Validator) Errors() []ValidationError { return v.failed }

// ErrorMessage joins all failures with "; ".
func (v *Validator) ErrorMessage() string {
	parts := make([]string, len(v.failed))
	for i, fe := range v.failed {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// Err returns an AppError of the given kind, or nil when nothing failed.
func (v *Validator) Err(kind error) error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError(kind, v.ErrorMessage(), nil)
}

// ValidationRule checks one value; nil means it passed.
type ValidationRule func(name string, value any) *ValidationError

func Required(name string, value any) *ValidationError {
	if s, ok := value.(string); value == nil || ok && strings.TrimSpace(s) == "" {
		return &ValidationError{Field: name, Value: value, Message: "is required"}
	}
	return nil
}

func PositiveDuration(name string, value any) *ValidationError {
	if d, ok := value.(time.Duration); ok && d > 0 {
		return nil
	}
	return &ValidationError{Field: name, Value: value, Message: "must be a positive duration"}
}

// OneOf accepts only the listed strings.
func OneOf(allowed ...string) ValidationRule {
	return func(name string, value any) *ValidationError {
		if s, ok := value.(string); ok && slices.Contains(allowed, s) {
			return nil
		}
		return &ValidationError{Field: name, Value: value, Message: "must be one of " + strings.Join(allowed, "|")}
	}
}
