package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDestinationUnavailable marks failures to deliver a message to the chat destination.
var ErrDestinationUnavailable = errors.New("chat destination unavailable")

// Notifier delivers one plain-text message to a chat destination.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

const (
	KindAdium   = "adium"
	KindWebhook = "webhook"
	KindConsole = "console"
)

type Options struct {
	Destination string
	WebhookURL  string
	Out         io.Writer
}

func New(kind string, opts Options) (Notifier, error) {
	switch normalizeKind(kind) {
	case "", KindAdium:
		if strings.TrimSpace(opts.Destination) == "" {
			return nil, fmt.Errorf("adium notifier requires a destination chat name")
		}
		return NewAdiumNotifier(opts.Destination), nil
	case KindWebhook:
		return NewWebhookNotifier(WebhookConfig{URL: opts.WebhookURL, Destination: opts.Destination})
	case KindConsole:
		return &ConsoleNotifier{Out: opts.Out}, nil
	default:
		return nil, fmt.Errorf("unsupported notifier: %s (supported: adium, webhook, console)", kind)
	}
}

func normalizeKind(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

// ConsoleNotifier writes messages to Out instead of a chat.
type ConsoleNotifier struct {
	Out io.Writer
}

func (n *ConsoleNotifier) Send(ctx context.Context, message string) error {
	if n.Out == nil {
		return nil
	}
	if _, err := fmt.Fprintf(n.Out, "[dry-run] %s\n", message); err != nil {
		return fmt.Errorf("%w: write console message: %w", ErrDestinationUnavailable, err)
	}
	return nil
}
