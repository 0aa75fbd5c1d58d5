package config

import (
	"fmt"
	"strings"
)

// MailProvider selects how invite emails are delivered.
type MailProvider string

const (
	// MailProviderSendGrid sends through the SendGrid API.
	MailProviderSendGrid MailProvider = "sendgrid"
	// MailProviderLog writes emails to the application log.
	MailProviderLog MailProvider = "log"
)

// UnmarshalText implements encoding.TextUnmarshaler for MailProvider.
func (m *MailProvider) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "sendgrid", "log":
		*m = MailProvider(v)
		return nil
	default:
		return fmt.Errorf("invalid MailProvider: %q (valid options: sendgrid, log)", v)
	}
}

// MailConfig contains invite email configuration.
type MailConfig struct {
	Provider       MailProvider `env:"MAIL_PROVIDER"           envDefault:"log"`
	SendGridAPIKey string       `env:"SENDGRID_API_KEY"`
	From           string       `env:"MAIL_FROM"               envDefault:"beta@localhost"`
	FromName       string       `env:"MAIL_FROM_NAME"          envDefault:"Membergate"`
	TemplateID     string       `env:"MAIL_INVITE_TEMPLATE_ID"`
	// SignupURL is the page that redeems invite codes. Defaults to APP_BASE_URL + /signup.
	SignupURL string `env:"MAIL_SIGNUP_URL"`
}

// Sanitize applies guardrails to mail configuration values.
func (m *MailConfig) Sanitize() {
	m.SendGridAPIKey = strings.TrimSpace(m.SendGridAPIKey)
	m.From = strings.TrimSpace(m.From)
	if m.Provider == "" {
		m.Provider = MailProviderLog
	}
}

// Validate reports configuration that would make delivery fail at runtime.
func (m *MailConfig) Validate() error {
	if m.Provider == MailProviderSendGrid && m.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is required when MAIL_PROVIDER=%s", MailProviderSendGrid)
	}
	if m.From == "" {
		return fmt.Errorf("MAIL_FROM is required")
	}
	return nil
}
