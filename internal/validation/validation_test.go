package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaviva/backend/internal/errs"
)

func TestIsValidCPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid unformatted", "52998224725", true},
		{"valid formatted", "529.982.247-25", true},
		{"valid with repeated blocks", "111.444.777-35", true},
		{"wrong first check digit", "52998224735", false},
		{"wrong second check digit", "52998224724", false},
		{"all same digits", "11111111111", false},
		{"all same digits formatted", "000.000.000-00", false},
		{"too short", "5299822472", false},
		{"too long", "529982247255", false},
		{"empty", "", false},
		{"letters", "529.982.247-AB", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCPF(tt.input))
		})
	}
}

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "52998224725", NormalizeCPF("529.982.247-25"))
	assert.Equal(t, "52998224725", NormalizeCPF("52998224725"))
	assert.Equal(t, "", NormalizeCPF("---"))
}

type registerPayload struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Document string `json:"document" validate:"omitempty,cpf"`
}

func (r *registerPayload) Validate() error {
	return Struct(r)
}

func TestStructCPFTag(t *testing.T) {
	valid := &registerPayload{Name: "Maria", Email: "maria@example.com", Document: "529.982.247-25"}
	assert.NoError(t, valid.Validate())

	invalid := &registerPayload{Name: "Maria", Email: "maria@example.com", Document: "123"}
	assert.Error(t, invalid.Validate())

	// omitempty skips the tag when the field is blank.
	blank := &registerPayload{Name: "Maria", Email: "maria@example.com"}
	assert.NoError(t, blank.Validate())
}

func TestBindAndValidateFieldErrors(t *testing.T) {
	e := echo.New()
	body := `{"name":"M","email":"not-an-email","document":"52998224725"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := BindAndValidate(c, &registerPayload{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)

	fields := make(map[string]string, len(httpErr.Errors))
	for _, fe := range httpErr.Errors {
		fields[fe.Field] = fe.Error
	}
	assert.Equal(t, "must be at least 2 characters", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
}

func TestBindAndValidateMalformedJSON(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := BindAndValidate(c, &registerPayload{})

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestBindAndValidateOK(t *testing.T) {
	e := echo.New()
	body := `{"name":"Maria","email":"maria@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	payload := &registerPayload{}
	require.NoError(t, BindAndValidate(c, payload))
	assert.Equal(t, "Maria", payload.Name)
}

func TestExtractValidationErrorCustom(t *testing.T) {
	custom := CustomValidationErrors{
		{Field: "starts_at", Message: "must be aligned to the hour"},
	}

	msg, fieldErrors := extractValidationError(custom)

	assert.Equal(t, "Validation failed", msg)
	require.Len(t, fieldErrors, 1)
	assert.Equal(t, "starts_at", fieldErrors[0].Field)
	assert.Equal(t, "must be aligned to the hour", fieldErrors[0].Error)
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.False(t, IsValidUUID("123e4567e89b12d3a456426614174000"))
	assert.False(t, IsValidUUID("not-a-uuid"))
}
