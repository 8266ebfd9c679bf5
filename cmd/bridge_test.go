package cmd

import (
	"blib/config"
	"blib/notify"
	"bytes"
	"strings"
	"testing"
	"time"
)

func testConfig() *config.Config {
	return &config.Config{
		Bridge: config.BridgeConfig{
			Client:      "Acme",
			Destination: "Team",
			Interval:    90,
			Actor:       "/me",
		},
		Notifier: config.NotifierConfig{Kind: "adium"},
	}
}

func TestResolveBridgeSettingsUsesConfigDefaults(t *testing.T) {
	t.Parallel()

	got, err := resolveBridgeSettings(testConfig(), bridgeFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := bridgeSettings{
		Client:      "Acme",
		Destination: "Team",
		Interval:    90 * time.Second,
		Notifier:    notify.KindAdium,
		Actor:       "/me",
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestResolveBridgeSettingsFlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	got, err := resolveBridgeSettings(testConfig(), bridgeFlags{
		Client:      "Globex",
		Destination: "#status",
		Interval:    30,
		Notifier:    "Webhook",
		Actor:       "Riad",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Client != "Globex" || got.Destination != "#status" || got.Actor != "Riad" {
		t.Fatalf("expected flag values, got %+v", got)
	}
	if got.Interval != 30*time.Second {
		t.Fatalf("expected 30s interval, got %s", got.Interval)
	}
	if got.Notifier != notify.KindWebhook {
		t.Fatalf("expected lower-cased webhook notifier, got %q", got.Notifier)
	}
}

func TestResolveBridgeSettingsDryRunSwitchesToConsole(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Bridge.Destination = ""

	got, err := resolveBridgeSettings(cfg, bridgeFlags{DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Notifier != notify.KindConsole {
		t.Fatalf("expected console notifier, got %q", got.Notifier)
	}
}

func TestResolveBridgeSettingsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		flags  bridgeFlags
		want   string
	}{
		{
			name:   "missing client",
			mutate: func(cfg *config.Config) { cfg.Bridge.Client = "" },
			want:   "client is required",
		},
		{
			name:   "missing destination for adium",
			mutate: func(cfg *config.Config) { cfg.Bridge.Destination = "" },
			want:   "destination is required",
		},
		{
			name:  "negative interval flag",
			flags: bridgeFlags{Interval: -5},
			want:  "interval must be positive",
		},
		{
			name:   "zero configured interval",
			mutate: func(cfg *config.Config) { cfg.Bridge.Interval = 0 },
			want:   "interval must be positive",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			if tc.mutate != nil {
				tc.mutate(cfg)
			}
			_, err := resolveBridgeSettings(cfg, tc.flags)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	t.Parallel()

	if got := firstNonEmpty("", "  ", " b ", "c"); got != "b" {
		t.Fatalf("expected trimmed first non-empty value, got %q", got)
	}
	if got := firstNonEmpty("", " "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestBridgeSettingsMessageOutput(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	if got := (bridgeSettings{Notifier: notify.KindAdium}).messageOutput(&stdout); got != &stdout {
		t.Fatalf("expected stdout for adium notifier")
	}
	if got := (bridgeSettings{Notifier: notify.KindConsole}).messageOutput(&stdout); got != nil {
		t.Fatalf("expected no echo for console notifier, got %v", got)
	}
}
