package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaviva/backend/internal/config"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		Gateway: config.GatewayConfig{
			Provider:      "pagou",
			BaseURL:       srv.URL,
			APIKey:        "sk_test_123",
			WebhookSecret: "whsec_test",
		},
	}
	logger := zerolog.Nop()
	return NewClient(cfg, &logger)
}

func TestCreatePIXPayment(t *testing.T) {
	expiresAt := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments/pix", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req PIXPaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(15000), req.Amount)
		assert.Equal(t, "maria@example.com", req.CustomerEmail)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(PIXPayment{
			ID:        "pay_abc123",
			Status:    StatusPending,
			QRCode:    "iVBORw0KGgo=",
			CopyPaste: "00020126580014BR.GOV.BCB.PIX",
			ExpiresAt: expiresAt,
		})
	}))

	payment, err := client.CreatePIXPayment(context.Background(), PIXPaymentRequest{
		Amount:        15000,
		Description:   "Reserva Sala Aurora",
		CustomerName:  "Maria",
		CustomerEmail: "maria@example.com",
		ExpiresIn:     1800,
		Reference:     "42",
	})

	require.NoError(t, err)
	assert.Equal(t, "pay_abc123", payment.ID)
	assert.Equal(t, StatusPending, payment.Status)
	assert.Equal(t, "00020126580014BR.GOV.BCB.PIX", payment.CopyPaste)
	assert.True(t, payment.ExpiresAt.Equal(expiresAt))
}

func TestCreateCardPayment(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/card", r.URL.Path)

		var req CardPaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 6, req.Installments)
		assert.Equal(t, "tok_visa", req.CardToken)

		_ = json.NewEncoder(w).Encode(CardPayment{
			ID:     "pay_card9",
			Status: StatusApproved,
			Brand:  "visa",
			Last4:  "4242",
		})
	}))

	payment, err := client.CreateCardPayment(context.Background(), CardPaymentRequest{
		Amount:       33765,
		Installments: 6,
		CardToken:    "tok_visa",
		Reference:    "43",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, payment.Status)
	assert.Equal(t, "visa", payment.Brand)
	assert.Equal(t, "4242", payment.Last4)
}

func TestGetPayment(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/pay_abc123", r.URL.Path)

		_ = json.NewEncoder(w).Encode(Payment{ID: "pay_abc123", Status: StatusApproved})
	}))

	payment, err := client.GetPayment(context.Background(), "pay_abc123")

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, payment.Status)
}

func TestGetPaymentNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","message":"payment not found"}`))
	}))

	_, err := client.GetPayment(context.Background(), "pay_missing")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "not_found", gwErr.Code)
	assert.Equal(t, "payment not found", gwErr.Message)
}

func TestRefundPayment(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments/pay_abc123/refund", r.URL.Path)

		_ = json.NewEncoder(w).Encode(Refund{ID: "ref_1", Status: StatusRefunded})
	}))

	refund, err := client.RefundPayment(context.Background(), "pay_abc123")

	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refund.Status)
}

func TestDoGatewayErrorWithoutEnvelope(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream timeout"))
	}))

	_, err := client.GetPayment(context.Background(), "pay_abc123")

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadGateway, gwErr.Status)
	assert.Equal(t, "unexpected gateway error", gwErr.Message)
	assert.False(t, IsNotFound(err))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("whsec_test")
	body := []byte(`{"id":"evt_1","type":"payment.approved"}`)

	signature := SignBody(secret, body)
	assert.True(t, VerifySignature(secret, body, signature))

	// hex decoding accepts uppercase
	assert.True(t, VerifySignature(secret, body, strings.ToUpper(signature)))

	assert.False(t, VerifySignature(secret, []byte(`tampered`), signature))
	assert.False(t, VerifySignature([]byte("other"), body, signature))
	assert.False(t, VerifySignature(secret, body, "not-hex"))
	assert.False(t, VerifySignature(secret, body, ""))
}

func TestParseWebhookEvent(t *testing.T) {
	paidAt := time.Date(2025, 3, 15, 14, 5, 0, 0, time.UTC)
	body, err := json.Marshal(WebhookEvent{
		ID:        "evt_1",
		Type:      EventPaymentApproved,
		CreatedAt: paidAt,
		Data: WebhookPaymentData{
			PaymentID: "pay_abc123",
			Status:    StatusApproved,
			PaidAt:    &paidAt,
		},
	})
	require.NoError(t, err)

	event, err := ParseWebhookEvent(body)

	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventPaymentApproved, event.Type)
	assert.Equal(t, "pay_abc123", event.Data.PaymentID)

	_, err = ParseWebhookEvent([]byte(`{"type":"payment.approved"}`))
	assert.Error(t, err)

	_, err = ParseWebhookEvent([]byte(`{`))
	assert.Error(t, err)
}
