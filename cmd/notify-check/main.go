// Command notify-check sends a test notification through the configured
// delivery path, for verifying webhook endpoints before relying on them.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dosewise/dosewise/internal/config"
	"github.com/dosewise/dosewise/internal/notify"
	"github.com/dosewise/dosewise/pkg/model"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var notifier notify.Notifier
	if cfg.Notifier.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, logger)
		logger.Info("sending test notification via webhook", zap.String("url", cfg.Notifier.WebhookURL))
	} else {
		notifier = notify.NewLogNotifier(logger)
		logger.Info("no webhook configured, sending test notification to the log")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := notifier.Notify(ctx, "Test notification", "Delivery path is working", model.SoundDefault); err != nil {
		logger.Error("test notification failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("test notification delivered")
}
