package cmd

import (
	"blib/bridge"
	"blib/config"
	"blib/notify"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	bridgeClient      string
	bridgeDestination string
	bridgeInterval    int
	bridgeNotifier    string
	bridgeActor       string
	bridgeDryRun      bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Announce time slip activity of one client to a chat.",
	Long: `Poll the Billings database and post a message whenever a time slip of the
given client starts or stops being timed.

Every interval the end time of each slip's latest entry is compared with the
previous observation. A slip whose latest end time changed is considered
active. When a slip becomes active "<actor> is now working on <project>: <slip>"
is sent, when it stops "<actor> is no longer working on <project>: <slip>".

Private slips ("my eyes only") and slips not marked for timing are ignored.
Flags override the bridge.* and notifier.* config values.`,
	Example: `
  # Announce to the Adium chat "Team"
  blib bridge -c Acme -d Team

  # Poll every 30 seconds
  blib bridge -c Acme -d Team -i 30

  # Post to a chat webhook instead of Adium
  blib bridge -c Acme -d "#status" --notifier webhook

  # Print messages without sending them
  blib bridge -c Acme --dry-run
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		settings, err := resolveBridgeSettings(cfg, bridgeFlags{
			Client:      bridgeClient,
			Destination: bridgeDestination,
			Interval:    bridgeInterval,
			Notifier:    bridgeNotifier,
			Actor:       bridgeActor,
			DryRun:      bridgeDryRun,
		})
		if err != nil {
			return err
		}

		logger, closer, err := newLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closer.Close()

		store, err := openStore(cfg, false)
		if err != nil {
			return err
		}
		defer store.Close()

		notifier, err := notify.New(settings.Notifier, notify.Options{
			Destination: settings.Destination,
			WebhookURL:  cfg.Notifier.WebhookURL,
			Out:         cmd.OutOrStdout(),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b := &bridge.Bridge{
			Poller: &bridge.Poller{
				Fetcher:  &bridge.StoreFetcher{Store: store, Logger: logger},
				Client:   settings.Client,
				Interval: settings.Interval,
				Retry: bridge.RetryPolicy{
					Attempts:       cfg.Retry.Attempts,
					InitialBackoff: cfg.Retry.InitialBackoff,
					MaxBackoff:     cfg.Retry.MaxBackoff,
				},
				Logger: logger,
			},
			Notifier: notifier,
			Actor:    settings.Actor,
			Out:      settings.messageOutput(cmd.OutOrStdout()),
			Logger:   logger,
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching client %q every %s via %s. Press Ctrl-C to stop.\n", settings.Client, settings.Interval, settings.Notifier)
		if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

type bridgeFlags struct {
	Client      string
	Destination string
	Interval    int
	Notifier    string
	Actor       string
	DryRun      bool
}

type bridgeSettings struct {
	Client      string
	Destination string
	Interval    time.Duration
	Notifier    string
	Actor       string
}

// messageOutput is where the bridge echoes messages. The console notifier
// already writes them there.
func (s bridgeSettings) messageOutput(stdout io.Writer) io.Writer {
	if s.Notifier == notify.KindConsole {
		return nil
	}
	return stdout
}

// resolveBridgeSettings merges flags over config. Empty or zero flags keep
// the configured value.
func resolveBridgeSettings(cfg *config.Config, flags bridgeFlags) (bridgeSettings, error) {
	settings := bridgeSettings{
		Client:      firstNonEmpty(flags.Client, cfg.Bridge.Client),
		Destination: firstNonEmpty(flags.Destination, cfg.Bridge.Destination),
		Interval:    cfg.Bridge.IntervalDuration(),
		Notifier:    strings.ToLower(firstNonEmpty(flags.Notifier, cfg.Notifier.Kind, notify.KindAdium)),
		Actor:       firstNonEmpty(flags.Actor, cfg.Bridge.Actor, bridge.DefaultActor),
	}
	if flags.Interval < 0 {
		return bridgeSettings{}, fmt.Errorf("interval must be positive, got %d", flags.Interval)
	}
	if flags.Interval > 0 {
		settings.Interval = time.Duration(flags.Interval) * time.Second
	}
	if flags.DryRun {
		settings.Notifier = notify.KindConsole
	}

	if settings.Client == "" {
		return bridgeSettings{}, fmt.Errorf("client is required: pass --client or set %s", config.KeyBridgeClient)
	}
	if settings.Interval <= 0 {
		return bridgeSettings{}, fmt.Errorf("interval must be positive, got %s", settings.Interval)
	}
	if settings.Notifier != notify.KindConsole && settings.Notifier != notify.KindWebhook && settings.Destination == "" {
		return bridgeSettings{}, fmt.Errorf("destination is required: pass --destination or set %s", config.KeyBridgeDestination)
	}
	return settings, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(bridgeCmd)

	bridgeCmd.Flags().StringVarP(&bridgeClient, "client", "c", "", "Billings client company name (default: bridge.client)")
	bridgeCmd.Flags().StringVarP(&bridgeDestination, "destination", "d", "", "Chat to post to (default: bridge.destination)")
	bridgeCmd.Flags().IntVarP(&bridgeInterval, "interval", "i", 0, "Poll interval in seconds (default: bridge.interval, 90)")
	bridgeCmd.Flags().StringVar(&bridgeNotifier, "notifier", "", "Notifier: adium|webhook|console (default: notifier.kind)")
	bridgeCmd.Flags().StringVar(&bridgeActor, "actor", "", "Message prefix (default: bridge.actor, \"/me\")")
	bridgeCmd.Flags().BoolVar(&bridgeDryRun, "dry-run", false, "Print messages instead of sending them")
}
