package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dosewise/dosewise/pkg/model"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// WebhookNotifier posts notifications to an external delivery endpoint
// (push relay, ntfy-style gateway). Calls run through a circuit breaker so
// a dead endpoint cannot slow every reminder down to its timeout.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewWebhookNotifier creates a WebhookNotifier for the given endpoint.
func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	n := &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}

	n.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notification-webhook",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("notifier circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return n
}

type webhookPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

// Notify posts the notification payload to the webhook endpoint.
func (n *WebhookNotifier) Notify(ctx context.Context, title, body string, sound model.Sound) error {
	payload, err := json.Marshal(webhookPayload{
		Title: title,
		Body:  body,
		Sound: string(sound),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	_, err = n.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil, nil
	})

	if err != nil {
		n.logger.Warn("notification dispatch failed",
			zap.Error(err),
			zap.String("title", title),
		)
		return fmt.Errorf("notification dispatch failed: %w", err)
	}

	return nil
}
