package alerts

import (
	"context"
	"log/slog"
)

// LogNotifier writes alerts to a structured logger instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs every alert at warn level.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Send(ctx context.Context, alert Alert) error {
	l.logger.WarnContext(ctx, alert.Subject,
		"alert_id", alert.ID,
		"vault", alert.Vault,
		"level", alert.Level,
		"remaining", alert.Remaining,
		"used", alert.Used,
		"total", alert.Total,
		"threshold", alert.Threshold,
		"body", alert.Body,
	)
	return nil
}
