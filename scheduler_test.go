package main

import (
	"context"
	"testing"
	"time"
)

func TestUntilNext(t *testing.T) {
	testCases := []struct {
		name     string
		at       clockTime
		now      time.Time
		expected time.Duration
	}{
		{
			"later today",
			clockTime{Hour: 23, Minute: 0},
			time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			11 * time.Hour,
		},
		{
			"already passed rolls to tomorrow",
			clockTime{Hour: 0, Minute: 0},
			time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			12 * time.Hour,
		},
		{
			"exact moment rolls to tomorrow",
			clockTime{Hour: 12, Minute: 0},
			time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			24 * time.Hour,
		},
		{
			"minutes count",
			clockTime{Hour: 12, Minute: 30},
			time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
			30 * time.Minute,
		},
		{
			"non-UTC now is normalized",
			clockTime{Hour: 23, Minute: 0},
			time.Date(2026, 1, 15, 13, 0, 0, 0, time.FixedZone("CET", 3600)),
			11 * time.Hour,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := untilNext(tc.at, tc.now); got != tc.expected {
				t.Errorf("untilNext(%02d:%02d) = %v, want %v", tc.at.Hour, tc.at.Minute, got, tc.expected)
			}
		})
	}
}

func TestSchedulerFiresDueJob(t *testing.T) {
	cfg := newTestConfig(t, &mockQuerier{t: t})
	// The fixed clock sits 50ms before the scheduled time, so the timer is
	// short in real time as well.
	now := time.Date(2026, 1, 15, 22, 59, 59, 950_000_000, time.UTC)
	cfg.now = func() time.Time { return now }
	cfg.scrapeAt = clockTime{Hour: 23, Minute: 0}

	fired := make(chan struct{})
	s := NewScheduler(cfg)
	s.scrapeJobs = func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}
	go s.runAt(cfg.scrapeAt, "scrapers", s.scrapeJobs)
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled job did not fire")
	}
}

func TestSchedulerStop(t *testing.T) {
	cfg := newTestConfig(t, &mockQuerier{t: t})
	s := NewScheduler(cfg)

	done := make(chan struct{})
	go func() {
		s.runAt(clockTime{Hour: 3}, "orchestrator", func(ctx context.Context) {
			t.Error("job must not run after stop")
		})
		close(done)
	}()
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runAt did not return after stop")
	}
}

func TestRunJanitor(t *testing.T) {
	ctx := context.Background()
	querier := &mockQuerier{t: t}
	var schedules, weather, events bool
	expected := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	querier.DeleteExpiredSchedulesFunc = func(ctx context.Context, expiresAt time.Time) (int64, error) {
		if !expiresAt.Equal(expected) {
			t.Errorf("schedule cutoff = %v, want %v", expiresAt, expected)
		}
		schedules = true
		return 3, nil
	}
	querier.DeleteExpiredWeatherDaysFunc = func(ctx context.Context, expiresAt time.Time) (int64, error) {
		weather = true
		return 14, nil
	}
	querier.DeleteExpiredEventDaysFunc = func(ctx context.Context, expiresAt time.Time) (int64, error) {
		events = true
		return 7, nil
	}

	cfg := newTestConfig(t, querier)
	cfg.runJanitor(ctx)

	if !schedules || !weather || !events {
		t.Errorf("purges ran schedules=%v weather=%v events=%v, want all", schedules, weather, events)
	}
}
