package sqlerr

import "fmt"

// Code classifies Postgres errors into the categories the application
// cares about. Anything unmapped falls into Other.
type Code int

const (
	Other Code = iota
	UniqueViolation
	ForeignKeyViolation
	NotNullViolation
	CheckViolation
	ExclusionViolation
)

// Severity mirrors the Postgres error severity field.
type Severity int

const (
	SeverityError Severity = iota
	SeverityFatal
	SeverityPanic
	SeverityWarning
	SeverityOther
)

// SQLSTATE codes for the constraint violations we translate.
// 23P01 (exclusion) is how overlapping bookings surface from the
// bookings slot constraint.
const (
	sqlstateUniqueViolation     = "23505"
	sqlstateForeignKeyViolation = "23503"
	sqlstateNotNullViolation    = "23502"
	sqlstateCheckViolation      = "23514"
	sqlstateExclusionViolation  = "23P01"
)

// MapCode maps a Postgres SQLSTATE string to a sqlerr.Code.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case sqlstateUniqueViolation:
		return UniqueViolation
	case sqlstateForeignKeyViolation:
		return ForeignKeyViolation
	case sqlstateNotNullViolation:
		return NotNullViolation
	case sqlstateCheckViolation:
		return CheckViolation
	case sqlstateExclusionViolation:
		return ExclusionViolation
	default:
		return Other
	}
}

// MapSeverity maps the Postgres severity string to a Severity enum.
func MapSeverity(severity string) Severity {
	switch severity {
	case "ERROR":
		return SeverityError
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	case "WARNING":
		return SeverityWarning
	default:
		return SeverityOther
	}
}

// Error is the application-side view of a Postgres error. It keeps the
// original driver error for Unwrap() while exposing mapped enums and
// the schema metadata used to build user-facing messages.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("sqlerr %s: %s", e.DatabaseCode, e.Message)
}

// Unwrap exposes the original driver error for errors.As/Is chains.
func (e *Error) Unwrap() error {
	return e.driverErr
}
