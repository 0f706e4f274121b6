// Package telegram delivers generated posts to a channel via the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"newsbot/internal/logger"
	"newsbot/internal/retry"
)

type Client struct {
	token      string
	chatID     string
	apiBase    string
	httpClient *http.Client
	retryCfg   retry.Config
}

func NewClient(token, chatID string, attempts int, delay time.Duration) *Client {
	return &Client{
		token:   token,
		chatID:  chatID,
		apiBase: "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryCfg: retry.Config{
			MaxAttempts: attempts,
			Delay:       delay,
			Backoff:     true,
		},
	}
}

// SendMessage posts text to the configured chat. Attempts within one call
// retry the same delivery; a final failure is reported to the caller and the
// publish cycle decides what to do with it.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	err := retry.Do(ctx, c.retryCfg, func() error {
		return c.sendMessageOnce(ctx, text)
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func (c *Client) sendMessageOnce(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)

	payload := map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}

	return nil
}
