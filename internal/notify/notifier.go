// Package notify is the boundary to the notification delivery mechanism.
// Delivery is best-effort: a failed dispatch is logged and abandoned, and
// the scheduling core relies on its own log/snooze checks rather than on
// delivery acknowledgment.
package notify

import (
	"context"

	"github.com/dosewise/dosewise/pkg/model"
	"go.uber.org/zap"
)

// Notifier triggers a system-level notification with the given sound.
type Notifier interface {
	Notify(ctx context.Context, title, body string, sound model.Sound) error
}

// LogNotifier writes notifications to the structured log. It is the
// fallback delivery path when no webhook is configured, and keeps the
// scheduling core observable in development.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification. Never fails.
func (n *LogNotifier) Notify(_ context.Context, title, body string, sound model.Sound) error {
	n.logger.Info("notification",
		zap.String("title", title),
		zap.String("body", body),
		zap.String("sound", string(sound)),
	)
	return nil
}
