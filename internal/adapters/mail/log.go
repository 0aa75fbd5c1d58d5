package mail

import (
	"context"
	"log/slog"

	"github.com/drivenlabs/membergate/internal/ports"
)

// LogNotifier writes invite emails to the logger instead of sending them.
// Used for local development when MAIL_PROVIDER=log.
type LogNotifier struct {
	logger    *slog.Logger
	signupURL string
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger, signupURL string) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "mail"), signupURL: signupURL}
}

func (n *LogNotifier) SendInviteEmail(ctx context.Context, email, code string) error {
	n.logger.InfoContext(ctx, "invite email (not sent)",
		"template", InviteTemplate,
		"to", email,
		"code", code,
		"link", InviteLink(n.signupURL, code),
	)
	return nil
}

var _ ports.Notifier = (*LogNotifier)(nil)
