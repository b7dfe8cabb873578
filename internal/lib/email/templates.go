package email

import (
	"embed"
	"html/template"
)

// Template is a string-based enum naming email templates. Each value
// corresponds to templates/<name>.html in the embedded set.
type Template string

const (
	TemplateWelcome          Template = "welcome"
	TemplateBookingConfirmed Template = "booking_confirmed"
	TemplateBookingCancelled Template = "booking_cancelled"
	TemplateBookingReminder  Template = "booking_reminder"
	TemplatePaymentApproved  Template = "payment_approved"
	TemplateCreditsPurchased Template = "credits_purchased"
)

// Templates ship inside the binary; a missing or broken template fails at
// process start instead of at send time.
//
//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))
