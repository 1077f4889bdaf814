package notify

import (
	"context"
	"log/slog"
)

// LogDispatcher writes the notification to the log instead of sending it.
// Used in dev environments without a mail relay. The code itself is never
// logged by callers; only this dev-only dispatcher sees it.
type LogDispatcher struct {
	Logger *slog.Logger
}

func (d *LogDispatcher) Send(ctx context.Context, destination, subject, body string) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification dispatched (log only)",
		"destination", destination,
		"subject", subject,
		"body", body,
	)
	return nil
}
