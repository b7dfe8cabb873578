package email

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allTemplates = []Template{
	TemplateWelcome,
	TemplateBookingConfirmed,
	TemplateBookingCancelled,
	TemplateBookingReminder,
	TemplatePaymentApproved,
	TemplateCreditsPurchased,
}

func TestTemplatesRenderWithPreviewData(t *testing.T) {
	for _, name := range allTemplates {
		t.Run(string(name), func(t *testing.T) {
			data, ok := PreviewData[string(name)]
			require.True(t, ok, "missing preview data for %s", name)

			var body bytes.Buffer
			err := templates.ExecuteTemplate(&body, string(name)+".html", data)

			require.NoError(t, err)
			assert.Contains(t, body.String(), "Sala Viva")
		})
	}
}

func TestBookingConfirmedTemplateFields(t *testing.T) {
	var body bytes.Buffer
	err := templates.ExecuteTemplate(&body, "booking_confirmed.html", map[string]string{
		"Name":      "Maria",
		"Reference": "8GK2XDQ",
		"RoomName":  "Sala Aurora",
		"StartsAt":  "15/03/2025 14:00",
		"Hours":     "2",
		"Amount":    "R$ 150,00",
	})

	require.NoError(t, err)
	html := body.String()
	assert.Contains(t, html, "8GK2XDQ")
	assert.Contains(t, html, "Sala Aurora")
	assert.Contains(t, html, "R$ 150,00")
}

func TestBookingCancelledHidesCreditsWhenZero(t *testing.T) {
	render := func(restored string) string {
		var body bytes.Buffer
		err := templates.ExecuteTemplate(&body, "booking_cancelled.html", map[string]string{
			"Name":            "Maria",
			"Reference":       "8GK2XDQ",
			"RoomName":        "Sala Aurora",
			"StartsAt":        "15/03/2025 14:00",
			"CreditsRestored": restored,
		})
		require.NoError(t, err)
		return body.String()
	}

	assert.Contains(t, render("2"), "Devolvemos")
	assert.NotContains(t, render("0"), "Devolvemos")
}
