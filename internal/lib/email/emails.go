package email

import (
	"fmt"
	"strconv"
)

// SendWelcomeEmail greets a newly registered user.
func (c *Client) SendWelcomeEmail(to, name string) error {
	data := map[string]string{
		"Name": name,
	}

	return c.SendEmail(
		to,
		"Bem-vindo(a) à Sala Viva!",
		TemplateWelcome,
		data,
	)
}

// BookingEmailData carries the display fields shared by booking emails.
// StartsAt and Amount arrive pre-formatted (business timezone, BRL) so
// templates stay logic-free.
type BookingEmailData struct {
	To        string
	Name      string
	Reference string
	RoomName  string
	StartsAt  string
	Hours     int
	Amount    string
}

// SendBookingConfirmed notifies the customer their reservation is locked in.
func (c *Client) SendBookingConfirmed(d BookingEmailData) error {
	data := map[string]string{
		"Name":      d.Name,
		"Reference": d.Reference,
		"RoomName":  d.RoomName,
		"StartsAt":  d.StartsAt,
		"Hours":     strconv.Itoa(d.Hours),
		"Amount":    d.Amount,
	}

	return c.SendEmail(
		d.To,
		fmt.Sprintf("Reserva confirmada - %s", d.Reference),
		TemplateBookingConfirmed,
		data,
	)
}

// BookingCancelledData adds the restored-credits count to the shared
// booking fields; zero means the booking was not paid with credits.
type BookingCancelledData struct {
	To              string
	Name            string
	Reference       string
	RoomName        string
	StartsAt        string
	CreditsRestored int
}

// SendBookingCancelled confirms a cancellation and, when credits were
// restored, says how many hours went back to the balance.
func (c *Client) SendBookingCancelled(d BookingCancelledData) error {
	data := map[string]string{
		"Name":            d.Name,
		"Reference":       d.Reference,
		"RoomName":        d.RoomName,
		"StartsAt":        d.StartsAt,
		"CreditsRestored": strconv.Itoa(d.CreditsRestored),
	}

	return c.SendEmail(
		d.To,
		fmt.Sprintf("Reserva cancelada - %s", d.Reference),
		TemplateBookingCancelled,
		data,
	)
}

// SendBookingReminder nudges the customer about a reservation starting soon.
func (c *Client) SendBookingReminder(d BookingEmailData) error {
	data := map[string]string{
		"Name":      d.Name,
		"Reference": d.Reference,
		"RoomName":  d.RoomName,
		"StartsAt":  d.StartsAt,
		"Hours":     strconv.Itoa(d.Hours),
	}

	return c.SendEmail(
		d.To,
		"Lembrete: sua reserva está chegando",
		TemplateBookingReminder,
		data,
	)
}

// PaymentApprovedData describes a settled charge for the receipt email.
type PaymentApprovedData struct {
	To          string
	Name        string
	Description string
	Total       string
	Method      string
}

// SendPaymentApproved sends the payment receipt.
func (c *Client) SendPaymentApproved(d PaymentApprovedData) error {
	data := map[string]string{
		"Name":        d.Name,
		"Description": d.Description,
		"Total":       d.Total,
		"Method":      d.Method,
	}

	return c.SendEmail(
		d.To,
		"Pagamento aprovado",
		TemplatePaymentApproved,
		data,
	)
}

// CreditsPurchasedData describes a credited package purchase.
type CreditsPurchasedData struct {
	To          string
	Name        string
	Hours       int
	ProductName string
	Total       string
}

// SendCreditsPurchased tells the customer their credit hours are available.
func (c *Client) SendCreditsPurchased(d CreditsPurchasedData) error {
	data := map[string]string{
		"Name":        d.Name,
		"Hours":       strconv.Itoa(d.Hours),
		"ProductName": d.ProductName,
		"Total":       d.Total,
	}

	return c.SendEmail(
		d.To,
		"Seus créditos chegaram!",
		TemplateCreditsPurchased,
		data,
	)
}
