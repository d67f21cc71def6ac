package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator is a high-level wrapper for go-playground/validator.
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateStruct validates a struct and returns a map of field paths to error messages.
func (v *Validator) ValidateStruct(s any) map[string]string {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"error": err.Error()}
	}

	errorMap := make(map[string]string)
	for _, fieldError := range validationErrors {
		errorMap[fieldPath(fieldError)] = v.getErrorMessage(fieldError)
	}

	return errorMap
}

// Validate is ValidateStruct folded into a single error.
func (v *Validator) Validate(s any) error {
	errs := v.ValidateStruct(s)
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, 0, len(errs))
	for _, msg := range errs {
		messages = append(messages, msg)
	}
	sort.Strings(messages)
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// RegisterStructValidation registers a custom struct-level validation function.
func (v *Validator) RegisterStructValidation(fn validator.StructLevelFunc, types ...any) {
	v.validator.RegisterStructValidation(fn, types...)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fieldError validator.FieldError) string {
	ns := fieldError.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// getErrorMessage generates a user-friendly error message from a FieldError.
func (v *Validator) getErrorMessage(fieldError validator.FieldError) string {
	field := fieldPath(fieldError)
	switch fieldError.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fieldError.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fieldError.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fieldError.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fieldError.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fieldError.Param())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, fieldError.Param())
	case "heartbeat":
		return fmt.Sprintf("%s must exceed the request timeout", field)
	default:
		return fmt.Sprintf("invalid %s", field)
	}
}
