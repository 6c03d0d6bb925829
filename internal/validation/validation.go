// Package validation checks request payloads and caller-supplied handles.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"socialvim/internal/models"

	"github.com/go-playground/validator/v10"
)

// MaxHandleLength matches the width of users.username.
const MaxHandleLength = 50

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates v against its `validate` tags and converts failures into a
// VALIDATION_ERROR AppError naming the first offending field.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return models.NewValidationError(describe(fieldErrs[0]))
	}
	return models.NewValidationError(err.Error())
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// CheckHandle rejects empty handles and handles wider than users.username.
// Handles are compared byte for byte, so surrounding whitespace is kept.
func CheckHandle(handle string) error {
	if handle == "" {
		return models.NewValidationError("handle is required")
	}
	if utf8.RuneCountInString(handle) > MaxHandleLength {
		return models.NewValidationError(fmt.Sprintf("handle must be at most %d characters", MaxHandleLength))
	}
	return nil
}
