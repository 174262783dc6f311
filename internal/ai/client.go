// Package ai is the boundary to the external generative-AI service. It is
// consumed as an opaque structured-data-or-error collaborator: the
// scheduling core never depends on it, and every caller treats a failure
// as a non-fatal condition.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// Client wraps the OpenAI SDK with retry logic and logging.
type Client struct {
	client     *openai.Client
	model      string
	logger     *zap.Logger
	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a Client. With an endpoint configured it targets an
// Azure OpenAI deployment, otherwise the public API.
func NewClient(endpoint, apiKey, model string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" || model == "" {
		return nil, fmt.Errorf("apiKey and model are required")
	}

	var client openai.Client
	if endpoint != "" {
		client = openai.NewClient(
			azure.WithEndpoint(endpoint, "2024-08-01-preview"),
			azure.WithAPIKey(apiKey),
		)
	} else {
		client = openai.NewClient(option.WithAPIKey(apiKey))
	}

	return &Client{
		client:     &client,
		model:      model,
		logger:     logger,
		maxRetries: 3,
		baseDelay:  time.Second,
	}, nil
}

// Complete sends a chat completion request with retry logic.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	startTime := time.Now()
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Info("retrying AI request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.complete(ctx, messages)
		if err == nil {
			c.logger.Info("AI request completed",
				zap.Duration("processing_time", time.Since(startTime)),
				zap.Int("attempts", attempt+1),
			)
			return result, nil
		}

		lastErr = err
		if !isRetryable(err) {
			c.logger.Error("non-retryable AI error",
				zap.Error(err),
				zap.Int("attempt", attempt+1),
			)
			break
		}

		c.logger.Warn("AI request failed, will retry",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	c.logger.Error("AI request failed after retries",
		zap.Error(lastErr),
		zap.Duration("total_time", time.Since(startTime)),
		zap.Int("max_retries", c.maxRetries),
	)

	return "", fmt.Errorf("AI request failed after %d attempts: %w", c.maxRetries, lastErr)
}

// complete performs a single chat completion request
func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}

	c.logger.Debug("AI token usage",
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	return content, nil
}

// isRetryable determines if an error should trigger a retry. Auth and
// request-shape failures won't improve on retry; everything else might.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, phrase := range []string{"authentication", "unauthorized", "401", "invalid request", "400"} {
		if strings.Contains(errStr, phrase) {
			return false
		}
	}
	return true
}
