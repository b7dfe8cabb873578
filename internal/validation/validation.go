// Package validation contains the logic for validating request data.
//
// It uses the `validator` library to enforce rules (like required fields
// or email formats) defined in struct tags and extracts validation errors
// into a format the client can understand. Domain-specific rules that
// tags cannot express (CPF check digits, slot alignment) live here as
// custom validators and helpers.
package validation

import (
	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Custom tags are registered
// once at startup; request structs call Struct from their Validate method.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for empty tag names or nil funcs, neither of
	// which can happen here.
	_ = v.RegisterValidation("cpf", validateCPFTag)

	return v
}

// Struct runs tag-based validation on s using the shared validator.
//
// Request types implement Validatable by delegating here:
//
//	func (r *RegisterRequest) Validate() error { return validation.Struct(r) }
func Struct(s any) error {
	return validate.Struct(s)
}
