package bridge

import (
	"blib/billings"
	"blib/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Fetcher returns the non-private, timing-eligible slips of one client.
type Fetcher interface {
	FetchTimeSlips(ctx context.Context, client string) ([]billings.TimeSlip, error)
}

type slipSource interface {
	ClientTimeSlips(ctx context.Context, company string) (storage.FetchResult, error)
}

// StoreFetcher adapts a Billings store to Fetcher and logs records the
// store had to skip.
type StoreFetcher struct {
	Store  slipSource
	Logger *slog.Logger
}

func (f *StoreFetcher) FetchTimeSlips(ctx context.Context, client string) ([]billings.TimeSlip, error) {
	result, err := f.Store.ClientTimeSlips(ctx, client)
	if err != nil {
		return nil, err
	}
	logger := orDiscard(f.Logger)
	for _, skipped := range result.Skipped {
		logger.Warn("skipping malformed record",
			slog.String("table", skipped.Table),
			slog.Int64("id", skipped.ID),
			slog.String("reason", skipped.Reason),
		)
	}
	return result.Slips, nil
}

// Cycle is the outcome of one poll: the slips seen being timed, the
// observation to pass into the next cycle, and the slips of that observation.
type Cycle struct {
	Active ActiveSet
	Next   Snapshot
	Slips  map[int64]billings.TimeSlip
}

type Poller struct {
	Fetcher  Fetcher
	Client   string
	Interval time.Duration
	Retry    RetryPolicy
	Logger   *slog.Logger
	// Sleep waits between the two observations of a cycle. Defaults to a
	// context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// PollCycle observes the client's slips, waits Interval, observes them again
// and reports which slips changed in between. A nil previous snapshot causes
// an initial observation; otherwise previous serves as the first one.
func (p *Poller) PollCycle(ctx context.Context, previous Snapshot) (Cycle, error) {
	if p.Fetcher == nil {
		return Cycle{}, errors.New("poller not initialized: missing fetcher")
	}

	before := previous
	if before == nil {
		slips, err := p.fetch(ctx)
		if err != nil {
			return Cycle{}, err
		}
		before = TakeSnapshot(slips)
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	if err := sleep(ctx, p.Interval); err != nil {
		return Cycle{}, err
	}

	slips, err := p.fetch(ctx)
	if err != nil {
		return Cycle{}, err
	}
	after := TakeSnapshot(slips)

	byID := make(map[int64]billings.TimeSlip, len(slips))
	for _, slip := range slips {
		byID[slip.ID] = slip
	}

	return Cycle{
		Active: Diff(before, after),
		Next:   after,
		Slips:  byID,
	}, nil
}

func (p *Poller) fetch(ctx context.Context) ([]billings.TimeSlip, error) {
	logger := orDiscard(p.Logger)

	var slips []billings.TimeSlip
	err := p.Retry.do(ctx, logger, "fetch time slips", func() error {
		fetched, err := p.Fetcher.FetchTimeSlips(ctx, p.Client)
		if err != nil {
			return err
		}
		slips = fetched
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, storage.ErrSourceUnavailable) {
			return nil, fmt.Errorf("fetch time slips for %q: %w", p.Client, err)
		}
		return nil, fmt.Errorf("fetch time slips for %q: %w: %w", p.Client, storage.ErrSourceUnavailable, err)
	}

	logger.Debug("fetched time slips", slog.String("client", p.Client), slog.Int("count", len(slips)))
	return slips, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
