package bridge

import (
	"blib/billings"
	"context"
	"sync"
	"time"
)

var testBase = time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

func at(offset time.Duration) billings.EndTime {
	return billings.EndTime{Time: testBase.Add(offset), Valid: true}
}

var running = billings.EndTime{}

// slip builds a time slip whose entries end at the given timestamps, in order.
func slip(id int64, project, name string, ends ...billings.EndTime) billings.TimeSlip {
	s := billings.TimeSlip{
		ID:              id,
		ProjectID:       id * 10,
		Name:            name,
		ActiveForTiming: true,
		Project:         billings.Project{ID: id * 10, Name: project},
	}
	for i, end := range ends {
		s.Entries = append(s.Entries, billings.TimeEntry{
			ID:         id*100 + int64(i),
			TimeSlipID: id,
			Start:      testBase.Add(time.Duration(i) * time.Hour),
			End:        end,
		})
	}
	return s
}

type fetchStep struct {
	slips []billings.TimeSlip
	err   error
}

// scriptedFetcher replays steps in order and cancels the run once they are used up.
type scriptedFetcher struct {
	steps  []fetchStep
	calls  int
	cancel context.CancelFunc
}

func (f *scriptedFetcher) FetchTimeSlips(ctx context.Context, client string) ([]billings.TimeSlip, error) {
	if f.calls >= len(f.steps) {
		if f.cancel != nil {
			f.cancel()
		}
		return nil, context.Canceled
	}
	step := f.steps[f.calls]
	f.calls++
	return step.slips, step.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	failures int
	err      error
}

func (n *recordingNotifier) Send(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failures > 0 {
		n.failures--
		return n.err
	}
	n.messages = append(n.messages, message)
	return nil
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{Attempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}
