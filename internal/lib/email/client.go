// Package email sends transactional email through Resend.
//
// Bodies are rendered from the HTML templates embedded in the templates
// package.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/deppfellow/commerce-admin/internal/config"
	"github.com/deppfellow/commerce-admin/templates"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

type Client struct {
	client    *resend.Client
	from      string
	templates fs.FS
	logger    *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		client:    resend.NewClient(cfg.Integration.ResendAPIKey),
		from:      cfg.Integration.EmailFrom,
		templates: templates.Emails,
		logger:    logger,
	}
}

// Render executes emails/<name>.html with data.
func (c *Client) Render(name Template, data map[string]string) (string, error) {
	tmpl, err := template.ParseFS(c.templates, fmt.Sprintf("emails/%s.html", name))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse email template %s", name)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}

	return body.String(), nil
}

// SendEmail renders templateName and sends it to a single recipient.
func (c *Client) SendEmail(to, subject string, templateName Template, data map[string]string) error {
	html, err := c.Render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("email_id", sent.Id).
		Msg("email accepted by provider")

	return nil
}
