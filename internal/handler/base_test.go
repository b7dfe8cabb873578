package handler

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

func invokeJSON(t *testing.T, fn echo.HandlerFunc, method, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	return rec, fn(e.NewContext(req, rec))
}

func TestHandleBindsValidatesAndWritesJSON(t *testing.T) {
	fn := Handle(Handler{}, func(c echo.Context, req *CouponPreviewRequest) (map[string]string, error) {
		return map[string]string{"code": req.Code, "target": req.Target}, nil
	}, http.StatusOK, &CouponPreviewRequest{})

	rec, err := invokeJSON(t, fn, http.MethodPost, `{"code":"BEMVINDO10","amount":100,"target":"products"}`)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":"BEMVINDO10","target":"products"}`, rec.Body.String())
}

func TestHandleRejectsInvalidPayload(t *testing.T) {
	called := false
	fn := Handle(Handler{}, func(c echo.Context, req *CouponPreviewRequest) (map[string]string, error) {
		called = true
		return nil, nil
	}, http.StatusOK, &CouponPreviewRequest{})

	_, err := invokeJSON(t, fn, http.MethodPost, `{}`)

	require.Error(t, err)
	assert.False(t, called)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.NotEmpty(t, httpErr.Errors)
}

func TestHandleMalformedJSONIsBadRequest(t *testing.T) {
	fn := Handle(Handler{}, func(c echo.Context, req *CouponPreviewRequest) (map[string]string, error) {
		return nil, nil
	}, http.StatusOK, &CouponPreviewRequest{})

	_, err := invokeJSON(t, fn, http.MethodPost, `{"code":`)

	require.Error(t, err)
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

func TestHandlePropagatesEndpointError(t *testing.T) {
	want := errs.NewNotFoundError("Coupon not found", true, nil)
	fn := Handle(Handler{}, func(c echo.Context, req *CouponPreviewRequest) (map[string]string, error) {
		return nil, want
	}, http.StatusOK, &CouponPreviewRequest{})

	_, err := invokeJSON(t, fn, http.MethodPost, `{"code":"X","amount":10,"target":"products"}`)

	require.Error(t, err)
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Coupon not found", httpErr.Message)
}

func TestHandleNoContentWritesEmptyBody(t *testing.T) {
	fn := HandleNoContent(Handler{}, func(c echo.Context, req *EmptyRequest) error {
		return nil
	}, http.StatusNoContent, &EmptyRequest{})

	rec, err := invokeJSON(t, fn, http.MethodGet, "")

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestHandleFileWritesAttachment(t *testing.T) {
	csv := []byte("reference,total\nPAY-1,\"R$ 100,00\"\n")
	fn := HandleFile(Handler{}, func(c echo.Context, req *EmptyRequest) ([]byte, error) {
		return csv, nil
	}, http.StatusOK, &EmptyRequest{}, "payments.csv", "text/csv")

	rec, err := invokeJSON(t, fn, http.MethodGet, "")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=payments.csv", rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, csv, rec.Body.Bytes())
}
