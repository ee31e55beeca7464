package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes messages to the log instead of delivering them.
// Used in dev environments without an SMTP server. The token is logged, so
// never enable this outside dev.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(ctx context.Context, kind Kind, address, name, token string) error {
	n.Logger.Info("notification (not delivered, log sink)",
		"kind", string(kind),
		"address", address,
		"name", name,
		"token", token,
	)
	return nil
}
