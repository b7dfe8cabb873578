package errs

import "strings"

// FieldError represents a field-level validation error (typical for forms).
//
//	{ "field": "email", "error": "invalid email format" }
type FieldError struct {
	// Field is the field name/key the error relates to (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// ActionType is a string-based enum describing what the client should do.
type ActionType string

const (
	// ActionTypeRedirect tells the client it should redirect somewhere.
	// Value holds the URL or route.
	ActionTypeRedirect ActionType = "redirect"
)

// Action describes an optional "what the client should do next"
// instruction, handy for auth/payment flows (e.g. "redirect to login").
type Action struct {
	// Type is the kind of action (e.g. "redirect").
	Type ActionType `json:"type"`

	// Message is human-readable guidance for the client/UI.
	Message string `json:"message"`

	// Value is the payload for the action (e.g. redirect URL).
	Value string `json:"value"`
}

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface and is serialized directly to
// JSON by the global error handler. Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: lets middleware decide whether to replace the message.
//   - Errors: list of per-field errors (validation).
//   - Action: optional client instruction.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors, typically for form inputs.
	Errors []FieldError `json:"errors"`

	// Action is an optional client instruction (redirect, etc.).
	Action *Action `json:"action"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is also a *HTTPError. It does not compare
// Code/Status; it only matches on type so errors.Is can detect the
// family.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy of this HTTPError with Message replaced,
// leaving the original template untouched.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an
// UPPER_CASE_WITH_UNDERSCORES format:
//
//	"Bad Request" -> "BAD_REQUEST"
//
// Used to create stable machine-readable error codes from HTTP status
// text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
