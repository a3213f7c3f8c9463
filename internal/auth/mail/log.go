package mail

import (
	"context"
	"log/slog"

	"github.com/NathanHTC/Authentication/pkg/slogx"
)

// LogSender writes messages to the request logger instead of delivering
// them. Used in development when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	slogx.FromContext(ctx).Info("mail not delivered",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}
