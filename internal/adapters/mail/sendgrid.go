// Package mail delivers invite emails through SendGrid, or to the log in development.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/drivenlabs/membergate/internal/ports"
)

// InviteTemplate is the logical template name used for beta invites.
const InviteTemplate = "beta-invite"

const (
	defaultSendGridHost = "https://api.sendgrid.com"
	sendEndpoint        = "/v3/mail/send"
)

// SendGridOptions configures SendGridNotifier.
type SendGridOptions struct {
	APIKey   string
	From     string
	FromName string
	// TemplateID is a SendGrid dynamic template. When empty a plain text body is sent.
	TemplateID string
	// SignupURL is where the invite code is redeemed; the code is appended as ?code=.
	SignupURL string
	// Host overrides the SendGrid API host, for tests.
	Host   string
	Logger *slog.Logger
}

// SendGridNotifier implements ports.Notifier with the SendGrid v3 API.
type SendGridNotifier struct {
	apiKey     string
	from       *sgmail.Email
	templateID string
	signupURL  string
	host       string
	logger     *slog.Logger
}

// NewSendGridNotifier validates opts and builds a notifier.
func NewSendGridNotifier(opts SendGridOptions) (*SendGridNotifier, error) {
	if opts.APIKey == "" {
		return nil, errors.New("sendgrid api key is empty")
	}
	if opts.From == "" {
		return nil, errors.New("from address is empty")
	}
	host := opts.Host
	if host == "" {
		host = defaultSendGridHost
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SendGridNotifier{
		apiKey:     opts.APIKey,
		from:       sgmail.NewEmail(opts.FromName, opts.From),
		templateID: opts.TemplateID,
		signupURL:  opts.SignupURL,
		host:       strings.TrimSuffix(host, "/"),
		logger:     logger.With("component", "sendgrid"),
	}, nil
}

// SendInviteEmail sends the invite code to email. Any non-2xx response is an error.
func (n *SendGridNotifier) SendInviteEmail(ctx context.Context, email, code string) error {
	if email == "" {
		return errors.New("to address is empty")
	}

	message := n.buildMessage(email, code)

	request := sendgrid.GetRequest(n.apiKey, sendEndpoint, n.host)
	request.Method = "POST"
	request.Body = sgmail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 300 {
		n.logger.ErrorContext(ctx, "sendgrid rejected invite email",
			"status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	n.logger.InfoContext(ctx, "invite email sent", "status", response.StatusCode, "template", InviteTemplate)
	return nil
}

func (n *SendGridNotifier) buildMessage(email, code string) *sgmail.SGMailV3 {
	to := sgmail.NewEmail("", email)
	link := InviteLink(n.signupURL, code)

	if n.templateID == "" {
		body := fmt.Sprintf("You're invited to the beta.\n\nYour invite code: %s\n", code)
		if link != "" {
			body += "\nRedeem it here: " + link + "\n"
		}
		return sgmail.NewSingleEmailPlainText(n.from, "Your beta invite", to, body)
	}

	p := sgmail.NewPersonalization()
	p.AddTos(to)
	p.SetDynamicTemplateData("code", code)
	p.SetDynamicTemplateData("signup_url", link)

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.SetTemplateID(n.templateID)
	m.AddPersonalizations(p)
	return m
}

// InviteLink appends code to signupURL. It returns "" when signupURL is empty or invalid.
func InviteLink(signupURL, code string) string {
	if signupURL == "" {
		return ""
	}
	u, err := url.Parse(signupURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()
	return u.String()
}

var _ ports.Notifier = (*SendGridNotifier)(nil)
