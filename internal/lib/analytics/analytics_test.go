package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaviva/backend/internal/config"
)

func TestHashEmailNormalizes(t *testing.T) {
	want := sha256.Sum256([]byte("maria@example.com"))

	assert.Equal(t, hex.EncodeToString(want[:]), hashEmail("maria@example.com"))
	assert.Equal(t, hex.EncodeToString(want[:]), hashEmail("  MARIA@Example.COM  "))
	assert.Equal(t, "", hashEmail("   "))
}

func TestTrackSendsConversion(t *testing.T) {
	received := make(chan capiRequest, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/px123/events", r.URL.Path)
		assert.Equal(t, "tok_abc", r.URL.Query().Get("access_token"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req capiRequest
		require.NoError(t, json.Unmarshal(body, &req))
		received <- req

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	publisher := NewPublisher(&config.Config{
		Analytics: &config.AnalyticsConfig{
			Enabled:     true,
			EndpointURL: srv.URL,
			PixelID:     "px123",
			AccessToken: "tok_abc",
		},
	}, &logger)

	publisher.Track(context.Background(), Event{
		Name:     EventPurchase,
		EventID:  "pay_1",
		Email:    "Maria@Example.com",
		Value:    decimal.RequireFromString("450.00"),
		Currency: "BRL",
		OrderID:  "pay_1",
		Time:     time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC),
	})

	select {
	case req := <-received:
		require.Len(t, req.Data, 1)
		event := req.Data[0]
		assert.Equal(t, EventPurchase, event.EventName)
		assert.Equal(t, "website", event.ActionSource)

		wantHash := sha256.Sum256([]byte("maria@example.com"))
		require.Len(t, event.UserData.Em, 1)
		assert.Equal(t, hex.EncodeToString(wantHash[:]), event.UserData.Em[0])

		require.NotNil(t, event.CustomData)
		assert.Equal(t, "BRL", event.CustomData.Currency)
		assert.InDelta(t, 450.0, event.CustomData.Value, 0.001)
	default:
		t.Fatal("conversion request never arrived")
	}
}

func TestTrackSwallowsSinkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	publisher := NewPublisher(&config.Config{
		Analytics: &config.AnalyticsConfig{
			Enabled:     true,
			EndpointURL: srv.URL,
			PixelID:     "px123",
			AccessToken: "tok_abc",
		},
	}, &logger)

	// Must not panic or block; failures only get logged.
	publisher.Track(context.Background(), Event{Name: EventSchedule, EventID: "b_1"})
}

func TestDisabledPublisherIsNoop(t *testing.T) {
	logger := zerolog.Nop()

	nilCfg := NewPublisher(&config.Config{}, &logger)
	assert.False(t, nilCfg.Enabled())
	nilCfg.Track(context.Background(), Event{Name: EventPurchase})
	assert.NoError(t, nilCfg.Close())

	disabled := NewPublisher(&config.Config{
		Analytics: &config.AnalyticsConfig{Enabled: false, EndpointURL: "http://unused"},
	}, &logger)
	assert.False(t, disabled.Enabled())
	disabled.Track(context.Background(), Event{Name: EventPurchase})
}

func TestNewPublisherWithoutBrokersHasNoWriter(t *testing.T) {
	logger := zerolog.Nop()
	publisher := NewPublisher(&config.Config{
		Analytics: &config.AnalyticsConfig{
			Enabled:     true,
			EndpointURL: "http://capi.local",
			PixelID:     "px123",
			AccessToken: "tok_abc",
		},
	}, &logger)

	assert.Nil(t, publisher.writer)
	assert.NoError(t, publisher.Close())
}
