// Package bridge announces when Billings time slips start and stop being
// timed. It polls the slips of one client at a fixed interval, compares the
// end timestamp of each slip's latest entry between observations, and sends
// one chat message per transition.
//
// Polling is strictly serialized: a cycle never starts before the previous
// one, including its notifications, has finished.
package bridge

import (
	"blib/notify"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// DefaultActor prefixes messages so chat clients render them as actions.
const DefaultActor = "/me"

type Bridge struct {
	Poller   *Poller
	Notifier notify.Notifier
	Actor    string
	// Out receives every message before it is sent.
	Out    io.Writer
	Logger *slog.Logger
}

// Run polls until ctx is cancelled, then returns nil without sending
// anything further. It returns an error when a fetch or a send still fails
// after the poller's retry policy is exhausted.
func (b *Bridge) Run(ctx context.Context) error {
	if b.Poller == nil || b.Notifier == nil {
		return errors.New("bridge not initialized: missing dependencies")
	}
	logger := orDiscard(b.Logger)
	actor := b.Actor
	if actor == "" {
		actor = DefaultActor
	}

	logger.Info("starting bridge",
		slog.String("client", b.Poller.Client),
		slog.Duration("interval", b.Poller.Interval),
	)

	tracker := NewTracker()
	var snapshot Snapshot
	for {
		if ctx.Err() != nil {
			logShutdown(logger, tracker)
			return nil
		}

		cycle, err := b.Poller.PollCycle(ctx, snapshot)
		if err != nil {
			if ctx.Err() != nil {
				logShutdown(logger, tracker)
				return nil
			}
			return err
		}
		snapshot = cycle.Next

		for _, transition := range tracker.Advance(cycle) {
			if err := b.announce(ctx, logger, actor, transition); err != nil {
				if ctx.Err() != nil {
					logShutdown(logger, tracker)
					return nil
				}
				return err
			}
		}
	}
}

// logShutdown records which slips were still being timed; no stop message is
// sent for them.
func logShutdown(logger *slog.Logger, tracker *Tracker) {
	logger.Info("shutting down", slog.Any("active_slips", tracker.Active()))
}

func (b *Bridge) announce(ctx context.Context, logger *slog.Logger, actor string, transition Transition) error {
	message := transition.Message(actor)
	if b.Out != nil {
		fmt.Fprintln(b.Out, message)
	}
	logger.Info("time slip "+transition.Kind.String(),
		slog.Int64("slip", transition.SlipID),
		slog.String("project", transition.Label.Project),
		slog.String("name", transition.Label.Slip),
	)

	err := b.Poller.Retry.do(ctx, logger, "send notification", func() error {
		return b.Notifier.Send(ctx, message)
	})
	if err != nil {
		if errors.Is(err, notify.ErrDestinationUnavailable) {
			return fmt.Errorf("announce slip %d: %w", transition.SlipID, err)
		}
		return fmt.Errorf("announce slip %d: %w: %w", transition.SlipID, notify.ErrDestinationUnavailable, err)
	}
	return nil
}
