// Package gateway is the REST client for the payment processor.
//
// It covers the four operations checkout needs (create PIX charge, create
// card charge, fetch, refund) plus webhook signature verification. Amounts
// cross the wire in centavos; decimal/BRL conversion stays in the billing
// package. The client never interprets business state: status strings come
// back raw and the payment service owns the mapping onto payment rows.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/salaviva/backend/internal/config"
)

// Gateway-side payment statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDeclined  = "declined"
	StatusExpired   = "expired"
	StatusRefunded  = "refunded"
	StatusCancelled = "cancelled"
)

// Client talks to the processor's HTTP API with bearer-token auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	provider   string
	logger     *zerolog.Logger
}

// NewClient builds a gateway client from config. The 15s timeout bounds
// checkout latency; the gateway's own processing is asynchronous anyway.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(cfg.Gateway.BaseURL, "/"),
		apiKey:     cfg.Gateway.APIKey,
		provider:   cfg.Gateway.Provider,
		logger:     logger,
	}
}

// Provider returns the configured provider slug, stored on payment rows
// so gateway ids stay scoped per processor.
func (c *Client) Provider() string {
	return c.provider
}

// Error is a non-2xx gateway response.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s (code=%s, http=%d)", e.Message, e.Code, e.Status)
}

// IsNotFound reports whether err is a gateway 404. The sync sweep uses
// this to skip payments the processor no longer knows.
func IsNotFound(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.Status == http.StatusNotFound
}

// apiErrorBody is the processor's error envelope.
type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do executes one API call: encode body, set auth, decode into out.
// Non-2xx responses become *Error with whatever envelope the processor
// returned.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode gateway request")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to build gateway request")
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "gateway request %s %s failed", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := apiErrorBody{Message: "unexpected gateway error"}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("code", apiErr.Code).
			Msg("gateway returned error")

		return &Error{
			Status:  resp.StatusCode,
			Code:    apiErr.Code,
			Message: apiErr.Message,
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "failed to decode gateway response")
		}
	}
	return nil
}

// PIXPaymentRequest creates a PIX charge. Reference carries our payment id
// back through webhooks for reconciliation.
type PIXPaymentRequest struct {
	Amount           int64  `json:"amount"`
	Description      string `json:"description"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerDocument string `json:"customer_document,omitempty"`
	ExpiresIn        int    `json:"expires_in"`
	Reference        string `json:"reference"`
}

// PIXPayment is the created PIX charge: the QR code image (base64), the
// copy-paste BR Code string and when the charge stops being payable.
type PIXPayment struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	QRCode    string    `json:"qr_code"`
	CopyPaste string    `json:"qr_code_text"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreatePIXPayment creates a PIX charge and returns its payment codes.
func (c *Client) CreatePIXPayment(ctx context.Context, req PIXPaymentRequest) (*PIXPayment, error) {
	var out PIXPayment
	if err := c.do(ctx, http.MethodPost, "/v1/payments/pix", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CardPaymentRequest creates a card charge from a client-side tokenized
// card. Amount is the full total including installment interest.
type CardPaymentRequest struct {
	Amount           int64  `json:"amount"`
	Installments     int    `json:"installments"`
	CardToken        string `json:"card_token"`
	Description      string `json:"description"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerDocument string `json:"customer_document,omitempty"`
	Reference        string `json:"reference"`
}

// CardPayment is the created card charge. Status may already be approved
// or declined on the synchronous response; webhooks settle the rest.
type CardPayment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Brand  string `json:"card_brand"`
	Last4  string `json:"card_last4"`
}

// CreateCardPayment authorizes a card charge.
func (c *Client) CreateCardPayment(ctx context.Context, req CardPaymentRequest) (*CardPayment, error) {
	var out CardPayment
	if err := c.do(ctx, http.MethodPost, "/v1/payments/card", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Payment is the processor's view of an existing charge.
type Payment struct {
	ID     string     `json:"id"`
	Status string     `json:"status"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
}

// GetPayment fetches the current gateway state of a charge. The sync
// sweep uses it when a webhook may have been missed.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refund is the processor's refund acknowledgment.
type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// RefundPayment refunds an approved charge in full.
func (c *Client) RefundPayment(ctx context.Context, id string) (*Refund, error) {
	var out Refund
	if err := c.do(ctx, http.MethodPost, "/v1/payments/"+id+"/refund", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
