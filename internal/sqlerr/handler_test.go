package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaviva/backend/internal/errs"
)

func TestMapCode(t *testing.T) {
	tests := []struct {
		sqlstate string
		want     Code
	}{
		{"23505", UniqueViolation},
		{"23503", ForeignKeyViolation},
		{"23502", NotNullViolation},
		{"23514", CheckViolation},
		{"23P01", ExclusionViolation},
		{"42P01", Other},
		{"", Other},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MapCode(tt.sqlstate), "sqlstate %q", tt.sqlstate)
	}
}

func TestHandleErrorUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		Message:        "duplicate key value violates unique constraint",
		TableName:      "users",
		ConstraintName: "users_email_key",
	}

	err := HandleError(pgErr)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "USER_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A User with this Email already exists", httpErr.Message)
	assert.True(t, httpErr.Override)
}

func TestHandleErrorExclusionViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23P01",
		Severity:       "ERROR",
		Message:        "conflicting key value violates exclusion constraint",
		TableName:      "bookings",
		ConstraintName: "bookings_room_slot_excl",
	}

	err := HandleError(pgErr)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusConflict, httpErr.Status)
	assert.Equal(t, "BOOKING_CONFLICT", httpErr.Code)
	assert.Equal(t, "The selected time slot is no longer available", httpErr.Message)
}

func TestHandleErrorForeignKeyViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       "23503",
		Severity:   "ERROR",
		Message:    "insert or update violates foreign key constraint",
		TableName:  "bookings",
		ColumnName: "room_id",
	}

	err := HandleError(pgErr)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "BOOKING_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "The referenced Room does not exist", httpErr.Message)
}

func TestHandleErrorNotNullViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       "23502",
		Severity:   "ERROR",
		Message:    "null value in column",
		TableName:  "coupons",
		ColumnName: "code",
	}

	err := HandleError(pgErr)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "code", httpErr.Errors[0].Field)
	assert.Equal(t, "is required", httpErr.Errors[0].Error)
}

func TestHandleErrorNoRows(t *testing.T) {
	err := HandleError(pgx.ErrNoRows)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleErrorNoRowsWithTableHint(t *testing.T) {
	err := HandleError(fmt.Errorf("table:payments: %w", pgx.ErrNoRows))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Payment not found", httpErr.Message)
}

func TestHandleErrorPassesThroughHTTPError(t *testing.T) {
	original := errs.NewUnprocessableError("coupon exhausted", nil)

	err := HandleError(original)

	assert.Same(t, original, err)
}

func TestHandleErrorUnknownFallsBackToInternal(t *testing.T) {
	err := HandleError(errors.New("connection reset by peer"))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestErrCode(t *testing.T) {
	wrapped := fmt.Errorf("query bookings: %w", ConvertPgError(&pgconn.PgError{Code: "23P01", Severity: "ERROR"}))

	assert.Equal(t, ExclusionViolation, ErrCode(wrapped))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))
}

func TestErrCodeRawPgError(t *testing.T) {
	wrapped := fmt.Errorf("insert bookings: %w", &pgconn.PgError{Code: "23505", Severity: "ERROR"})

	assert.Equal(t, UniqueViolation, ErrCode(wrapped))
}
