package config

import (
	"blib/bridge"
	"strings"
	"testing"
	"time"
)

func TestValidateYAMLContent_ExampleIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("expected example config to validate: %v", err)
	}
	if cfg.Bridge.Interval != 90 || cfg.Bridge.IntervalDuration() != 90*time.Second {
		t.Fatalf("unexpected interval: %d", cfg.Bridge.Interval)
	}
	if cfg.Retry.InitialBackoff != 2*time.Second || cfg.Retry.MaxBackoff != time.Minute {
		t.Fatalf("unexpected retry durations: %+v", cfg.Retry)
	}
	if cfg.Bridge.Actor != "/me" || cfg.Notifier.Kind != "adium" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestValidateYAMLContent_AppliesDefaultsForEmptyFile(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("bridge:\n  client: \"Acme\"\n"))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Bridge.Client != "Acme" {
		t.Fatalf("expected client Acme, got %q", cfg.Bridge.Client)
	}
	if cfg.Bridge.Interval != DefaultIntervalSeconds {
		t.Fatalf("expected default interval, got %d", cfg.Bridge.Interval)
	}
	if cfg.Retry.Attempts != bridge.DefaultRetryPolicy().Attempts {
		t.Fatalf("expected default attempts, got %d", cfg.Retry.Attempts)
	}
	if cfg.Database.Epoch != "unix" {
		t.Fatalf("expected unix epoch default, got %q", cfg.Database.Epoch)
	}
}

func TestValidateYAMLContent_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "zero interval", content: "bridge:\n  interval: 0\n", want: "Interval"},
		{name: "unknown notifier", content: "notifier:\n  kind: \"irc\"\n", want: "Kind"},
		{name: "webhook without url", content: "notifier:\n  kind: \"webhook\"\n", want: "webhook_url"},
		{name: "invalid webhook url", content: "notifier:\n  kind: \"webhook\"\n  webhook_url: \"not a url\"\n", want: "WebhookURL"},
		{name: "unknown epoch", content: "database:\n  epoch: \"julian\"\n", want: "Epoch"},
		{name: "max backoff below initial", content: "retry:\n  initial_backoff: \"10s\"\n  max_backoff: \"1s\"\n", want: "MaxBackoff"},
		{name: "unknown log level", content: "log:\n  level: \"chatty\"\n", want: "Level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateYAMLContent([]byte(tt.content))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateYAMLContent_AcceptsWebhook(t *testing.T) {
	t.Parallel()

	content := []byte(`notifier:
  kind: "webhook"
  webhook_url: "https://chat.example.com/hooks/abc"
`)
	cfg, err := ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Notifier.WebhookURL != "https://chat.example.com/hooks/abc" {
		t.Fatalf("unexpected webhook url %q", cfg.Notifier.WebhookURL)
	}
}

func TestValidateYAMLContent_DefaultsFollowBridge(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("bridge:\n  client: \"Acme\"\n"))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}

	retry := bridge.DefaultRetryPolicy()
	if cfg.Retry.Attempts != retry.Attempts || cfg.Retry.InitialBackoff != retry.InitialBackoff || cfg.Retry.MaxBackoff != retry.MaxBackoff {
		t.Fatalf("expected retry defaults %+v, got %+v", retry, cfg.Retry)
	}
	if cfg.Bridge.Actor != bridge.DefaultActor {
		t.Fatalf("expected actor %q, got %q", bridge.DefaultActor, cfg.Bridge.Actor)
	}
}
