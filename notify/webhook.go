package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type WebhookConfig struct {
	URL         string
	Destination string
	HTTPClient  httpDoer
}

// WebhookNotifier posts messages as JSON to an incoming-webhook endpoint,
// the way Slack and Mattermost accept them.
type WebhookNotifier struct {
	url         string
	destination string
	httpClient  httpDoer
}

type webhookPayload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

func NewWebhookNotifier(cfg WebhookConfig) (*WebhookNotifier, error) {
	rawURL := strings.TrimSpace(cfg.URL)
	if rawURL == "" {
		return nil, errors.New("webhook URL is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid webhook URL %q", cfg.URL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &WebhookNotifier{
		url:         rawURL,
		destination: strings.TrimSpace(cfg.Destination),
		httpClient:  doer,
	}, nil
}

func (n *WebhookNotifier) Send(ctx context.Context, message string) error {
	payload, err := json.Marshal(webhookPayload{Channel: n.destination, Text: message})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: webhook request failed: %w", ErrDestinationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf(
			"%w: webhook failed with status %d: %s",
			ErrDestinationUnavailable,
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}
	return nil
}
