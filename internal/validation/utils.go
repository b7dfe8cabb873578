package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/salaviva/backend/internal/errs"
)

// Validatable is implemented by request payload types that know how to
// validate themselves.
//
// Typical pattern:
//   - Define a request struct with validator tags (`validate:"required,email"`)
//   - Implement Validate() error that calls validation.Struct
//   - Return validator.ValidationErrors (or CustomValidationErrors for
//     rules that tags cannot express)
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific
// field, used for rules that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that
// satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind(payload) populates the request struct from body/params.
//  2. payload.Validate() applies validation rules.
//  3. Returns *errs.HTTPError (400) with field-level errors on failure.
//
// payload must be a pointer to a struct, otherwise binding fails.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		// Echo wraps bind failures (malformed JSON, type mismatches) in an
		// *echo.HTTPError whose Message is safe to forward.
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			return errs.NewBadRequestError(fmt.Sprintf("%v", echoErr.Message), false, nil, nil, nil)
		}
		return errs.NewBadRequestError("Malformed request payload", false, nil, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	// Custom validation errors convert directly.
	var customErrors CustomValidationErrors
	if errors.As(err, &customErrors) {
		for _, customErr := range customErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: customErr.Field,
				Error: customErr.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	// validator.ValidationErrors is returned when struct tag validation fails.
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "request", Error: "is invalid"}}
	}

	// Convert validator.ValidationErrors into user-friendly messages.
	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		var msg string

		switch fieldErr.Tag() {
		case "required":
			msg = "is required"

		case "min":
			// For strings min/max constrain length, for numbers the value.
			if fieldErr.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", fieldErr.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", fieldErr.Param())
			}

		case "max":
			if fieldErr.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fieldErr.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fieldErr.Param())
			}

		case "gt":
			msg = fmt.Sprintf("must be greater than %s", fieldErr.Param())

		case "gte":
			msg = fmt.Sprintf("must be at least %s", fieldErr.Param())

		case "lte":
			msg = fmt.Sprintf("must not exceed %s", fieldErr.Param())

		case "len":
			msg = fmt.Sprintf("must be exactly %s characters", fieldErr.Param())

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fieldErr.Param())

		case "email":
			msg = "must be a valid email address"

		case "e164":
			msg = "must be a valid phone number with country code"

		case "uuid":
			msg = "must be a valid UUID"

		case "cpf":
			msg = "must be a valid CPF"

		case "datetime":
			msg = fmt.Sprintf("must be a date in %s format", fieldErr.Param())

		case "dive":
			msg = "some items are invalid"

		default:
			if fieldErr.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, fieldErr.Tag(), fieldErr.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, fieldErr.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}

// uuidRegex matches standard UUID format: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidUUID checks whether a string matches UUID format.
//
// Note: this validates format only, not UUID version/variant semantics.
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(uuid)
}
