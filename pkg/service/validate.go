package service

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxPageSize bounds every paginated read.
const MaxPageSize = 100

// mobilePattern accepts 10-digit mobile numbers starting with 6-9.
var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct validates s by its validate tags.
func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return &Error{Kind: ErrValidationFailed, Message: formatValidationError(err)}
	}
	return nil
}

func validateID(name string, id int) error {
	if id < 1 {
		return validationFailed("%s must be at least 1 (got %d)", name, id)
	}
	return nil
}

func validatePage(number, size int) error {
	if number < 0 {
		return validationFailed("page number must not be negative (got %d)", number)
	}
	if size < 1 || size > MaxPageSize {
		return validationFailed("page size must be between 1 and %d (got %d)", MaxPageSize, size)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "mobile":
		return fmt.Sprintf("%s must be a valid 10-digit mobile number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
