// Package mail delivers order confirmation email over SMTP.
package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Validate validates the SMTP configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("mail: SMTP host is required")
	}
	if c.From == "" {
		return fmt.Errorf("mail: from address is required")
	}
	return nil
}

// OrderMail describes the confirmation message for a finished order.
type OrderMail struct {
	To          string
	OrderID     string
	City        string
	Country     string
	DownloadURL string

	// Local paths of the artifacts to attach. Empty paths are skipped.
	PosterPath  string
	InvoicePath string
}

// Mailer sends order mail through a single SMTP account.
type Mailer struct {
	config *Config
	logger *zap.Logger

	send func(ctx context.Context, msg *gomail.Msg) error
}

// NewMailer creates a mailer over the configured SMTP account.
func NewMailer(config *Config, logger *zap.Logger) (*Mailer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []gomail.Option{
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if config.Port != 0 {
		opts = append(opts, gomail.WithPort(config.Port))
	}
	if config.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(config.User),
			gomail.WithPassword(config.Password))
	}

	client, err := gomail.NewClient(config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: failed to create SMTP client: %w", err)
	}

	return &Mailer{
		config: config,
		logger: logger,
		send: func(ctx context.Context, msg *gomail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

// SendOrderReady mails the customer their poster with the invoice attached.
func (m *Mailer) SendOrderReady(ctx context.Context, om OrderMail) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return fmt.Errorf("mail: invalid from address: %w", err)
	}
	if err := msg.To(om.To); err != nil {
		return fmt.Errorf("mail: invalid recipient address: %w", err)
	}

	msg.Subject(fmt.Sprintf("Your %s map poster is ready", om.City))
	msg.SetBodyString(gomail.TypeTextPlain, orderReadyBody(om))

	if om.PosterPath != "" {
		msg.AttachFile(om.PosterPath)
	}
	if om.InvoicePath != "" {
		msg.AttachFile(om.InvoicePath)
	}

	if err := m.send(ctx, msg); err != nil {
		m.logger.Error("Failed to send order mail",
			zap.String("order_id", om.OrderID),
			zap.String("to", om.To),
			zap.Error(err))
		return fmt.Errorf("mail: failed to send order mail: %w", err)
	}

	m.logger.Info("Sent order mail",
		zap.String("order_id", om.OrderID),
		zap.String("to", om.To))
	return nil
}

func orderReadyBody(om OrderMail) string {
	body := fmt.Sprintf(
		"Hello,\n\n"+
			"Your map poster of %s, %s is ready.\n\n"+
			"Order ID: %s\n",
		om.City, om.Country, om.OrderID)
	if om.DownloadURL != "" {
		body += fmt.Sprintf("\nDownload your files here:\n%s\n", om.DownloadURL)
	}
	switch {
	case om.PosterPath != "" && om.InvoicePath != "":
		body += "\nThe poster and your invoice are attached to this message.\n"
	case om.PosterPath != "" || om.InvoicePath != "":
		body += "\nYour files are attached to this message.\n"
	}
	body += "\nThank you for your order!\n"
	return body
}
