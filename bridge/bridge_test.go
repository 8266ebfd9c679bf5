package bridge

import (
	"blib/billings"
	"blib/notify"
	"blib/storage"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func runScripted(t *testing.T, steps []fetchStep, notifier *recordingNotifier, retry RetryPolicy) (string, error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	b := &Bridge{
		Poller: &Poller{
			Fetcher: &scriptedFetcher{steps: steps, cancel: cancel},
			Client:  "Acme",
			Retry:   retry,
			Sleep:   noSleep,
		},
		Notifier: notifier,
		Out:      &out,
	}

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case err := <-done:
		return out.String(), err
	case <-time.After(5 * time.Second):
		t.Fatalf("bridge did not stop")
		return "", nil
	}
}

func TestBridgeRun_AnnouncesStartThenStop(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	steps := []fetchStep{
		{slips: []billings.TimeSlip{slip(1, "web", "Design", at(-time.Hour), running)}},
		{slips: []billings.TimeSlip{slip(1, "web", "Design", at(-time.Hour), at(time.Hour))}},
		{slips: []billings.TimeSlip{slip(1, "web", "Design", at(-time.Hour), at(time.Hour))}},
	}

	out, err := runScripted(t, steps, notifier, RetryPolicy{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{
		"/me is now working on web: Design",
		"/me is no longer working on web: Design",
	}
	if diff := cmp.Diff(want, notifier.messages); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
	if out != want[0]+"\n"+want[1]+"\n" {
		t.Fatalf("expected messages printed before sending, got %q", out)
	}
}

func TestBridgeRun_IdenticalObservationsSendNothing(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	same := []billings.TimeSlip{slip(1, "web", "Design", at(time.Hour)), slip(2, "web", "Build", running)}
	steps := []fetchStep{{slips: same}, {slips: same}, {slips: same}, {slips: same}}

	if _, err := runScripted(t, steps, notifier, RetryPolicy{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("expected no messages, got %v", notifier.messages)
	}
}

func TestBridgeRun_TwoSlipsInOneCycleEachAnnouncedOnce(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	steps := []fetchStep{
		{slips: []billings.TimeSlip{slip(1, "web", "Design", running), slip(2, "ops", "Deploy", at(0))}},
		{slips: []billings.TimeSlip{slip(1, "web", "Design", at(time.Hour)), slip(2, "ops", "Deploy", at(0), running)}},
	}

	if _, err := runScripted(t, steps, notifier, RetryPolicy{}); err != nil {
		t.Fatalf("run: %v", err)
	}

	got := append([]string(nil), notifier.messages...)
	sort.Strings(got)
	want := []string{
		"/me is now working on ops: Deploy",
		"/me is now working on web: Design",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
}

func TestBridgeRun_RetriesFailedSend(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{failures: 2, err: errors.New("adium not running")}
	steps := []fetchStep{
		{slips: []billings.TimeSlip{slip(1, "web", "Design", running)}},
		{slips: []billings.TimeSlip{slip(1, "web", "Design", at(time.Hour))}},
	}

	if _, err := runScripted(t, steps, notifier, fastRetry(3)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected one delivered message, got %v", notifier.messages)
	}
}

func TestBridgeRun_SendFailureEscalates(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{failures: 10, err: errors.New("adium not running")}
	steps := []fetchStep{
		{slips: []billings.TimeSlip{slip(1, "web", "Design", running)}},
		{slips: []billings.TimeSlip{slip(1, "web", "Design", at(time.Hour))}},
	}

	_, err := runScripted(t, steps, notifier, fastRetry(2))
	if !errors.Is(err, notify.ErrDestinationUnavailable) {
		t.Fatalf("expected ErrDestinationUnavailable, got %v", err)
	}
}

func TestBridgeRun_FetchFailureEscalates(t *testing.T) {
	t.Parallel()

	fail := errors.New("unable to open database file")
	steps := []fetchStep{{err: fail}, {err: fail}}

	_, err := runScripted(t, steps, &recordingNotifier{}, fastRetry(2))
	if !errors.Is(err, storage.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestBridgeRun_CustomActor(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := &recordingNotifier{}
	b := &Bridge{
		Poller: &Poller{
			Fetcher: &scriptedFetcher{cancel: cancel, steps: []fetchStep{
				{slips: []billings.TimeSlip{slip(1, "web", "Design", running)}},
				{slips: []billings.TimeSlip{slip(1, "web", "Design", at(time.Hour))}},
			}},
			Client: "Acme",
			Sleep:  noSleep,
		},
		Notifier: notifier,
		Actor:    "Sam",
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(notifier.messages) != 1 || notifier.messages[0] != "Sam is now working on web: Design" {
		t.Fatalf("unexpected messages: %v", notifier.messages)
	}
}

func TestBridgeRun_LogsSlipsStillActiveAtShutdown(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var logs bytes.Buffer
	notifier := &recordingNotifier{}
	steps := []fetchStep{
		{slips: []billings.TimeSlip{slip(1, "web", "Design", at(-time.Hour)), slip(2, "web", "Build", at(time.Hour))}},
		{slips: []billings.TimeSlip{slip(1, "web", "Design", at(time.Hour)), slip(2, "web", "Build", at(time.Hour))}},
	}
	b := &Bridge{
		Poller: &Poller{
			Fetcher: &scriptedFetcher{steps: steps, cancel: cancel},
			Client:  "Acme",
			Sleep:   noSleep,
		},
		Notifier: notifier,
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
	}

	if err := b.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	if diff := cmp.Diff([]string{"/me is now working on web: Design"}, notifier.messages); diff != "" {
		t.Fatalf("unexpected messages (-want +got):\n%s", diff)
	}
	if !strings.Contains(logs.String(), "active_slips=[1]") {
		t.Fatalf("expected shutdown log to list slip 1 as active, got:\n%s", logs.String())
	}
}

func TestBridgeRun_RequiresDependencies(t *testing.T) {
	t.Parallel()

	if err := (&Bridge{}).Run(context.Background()); err == nil {
		t.Fatalf("expected error for uninitialized bridge")
	}
}
