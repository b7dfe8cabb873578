// Package email provides the transactional email client.
//
// It uses Resend (resend-go) as the provider and renders HTML bodies from
// the embedded template set. One exported method per email keeps template
// data assembly next to its subject line.
package email

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/salaviva/backend/internal/config"
)

// Client wraps the Resend client with sender identity from config.
type Client struct {
	client *resend.Client
	cfg    config.EmailConfig
	logger *zerolog.Logger
}

// NewClient creates an email Client using the Resend API key and sender
// identity from config.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		client: resend.NewClient(cfg.Email.ResendAPIKey),
		cfg:    cfg.Email,
		logger: logger,
	}
}

// SendEmail renders templateName with data and sends it to a single
// recipient through Resend.
func (c *Client) SendEmail(to, subject string, templateName Template, data map[string]string) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(templateName)+".html", data); err != nil {
		return errors.Wrapf(err, "failed to execute email template %s", templateName)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.cfg.FromName, c.cfg.FromAddress),
		To:      []string{to},
		Subject: subject,
		Html:    body.String(),
	}
	if c.cfg.ReplyTo != "" {
		params.ReplyTo = c.cfg.ReplyTo
	}

	if _, err := c.client.Emails.Send(params); err != nil {
		return errors.Wrapf(err, "failed to send %s email", templateName)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("to", to).
		Msg("email sent")

	return nil
}
