package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
	"github.com/google/uuid"
)

// schedulePages serves canned schedule pages in keyset order.
func schedulePages(count int) func(ctx context.Context, arg database.ListActiveSchedulesParams) ([]database.Schedule, error) {
	schedules := make([]database.Schedule, count)
	for i := range schedules {
		schedules[i] = database.Schedule{
			RouteID:    uuid.New(),
			UserID:     "user-1",
			ArriveBy:   "08:30",
			Timezone:   "Europe/Dublin",
			DaysOfWeek: []string{"MON"},
			Active:     true,
		}
	}
	return func(ctx context.Context, arg database.ListActiveSchedulesParams) ([]database.Schedule, error) {
		start := 0
		if arg.AfterRouteID != uuid.Nil {
			for i, s := range schedules {
				if s.RouteID == arg.AfterRouteID {
					start = i + 1
					break
				}
			}
		}
		end := min(start+int(arg.PageSize), len(schedules))
		return schedules[start:end], nil
	}
}

func TestRunOrchestrator(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes chunked route refs", func(t *testing.T) {
		querier := &mockQuerier{t: t}
		querier.ListActiveSchedulesFunc = schedulePages(2350)
		cfg := newTestConfig(t, querier)
		publisher := &mockPublisher{}
		cfg.publisher = publisher

		cfg.runOrchestrator(ctx)

		chunks := publisher.published()
		if len(chunks) != 3 {
			t.Fatalf("published %d chunks, want 3", len(chunks))
		}
		total := 0
		for _, chunk := range chunks {
			if len(chunk.Routes) > chunkSize {
				t.Errorf("chunk carries %d routes, cap is %d", len(chunk.Routes), chunkSize)
			}
			total += len(chunk.Routes)
		}
		if total != 2350 {
			t.Errorf("chunks cover %d routes, want 2350", total)
		}

		// The lock must be released after a completed run.
		if _, err := cfg.params.Get(ctx, orchestratorLockKey); !errors.Is(err, errParamNotFound) {
			t.Errorf("lock still held after run: %v", err)
		}
	})

	t.Run("second invocation within the hour is a no-op", func(t *testing.T) {
		querier := &mockQuerier{t: t}
		cfg := newTestConfig(t, querier)
		publisher := &mockPublisher{}
		cfg.publisher = publisher
		if err := cfg.params.Set(ctx, orchestratorLockKey, cfg.now().Add(-10*time.Minute).Format(time.RFC3339)); err != nil {
			t.Fatal(err)
		}

		// No querier funcs are set: any store call would fail the test.
		cfg.runOrchestrator(ctx)

		if len(publisher.published()) != 0 {
			t.Errorf("published %d chunks, want 0", len(publisher.published()))
		}
	})

	t.Run("stale lock is overwritten and the run proceeds", func(t *testing.T) {
		querier := &mockQuerier{t: t}
		querier.ListActiveSchedulesFunc = schedulePages(10)
		cfg := newTestConfig(t, querier)
		publisher := &mockPublisher{}
		cfg.publisher = publisher
		if err := cfg.params.Set(ctx, orchestratorLockKey, cfg.now().Add(-90*time.Minute).Format(time.RFC3339)); err != nil {
			t.Fatal(err)
		}

		cfg.runOrchestrator(ctx)

		if len(publisher.published()) != 1 {
			t.Errorf("published %d chunks, want 1", len(publisher.published()))
		}
	})

	t.Run("no schedules publishes nothing", func(t *testing.T) {
		querier := &mockQuerier{t: t}
		querier.ListActiveSchedulesFunc = schedulePages(0)
		cfg := newTestConfig(t, querier)
		publisher := &mockPublisher{}
		cfg.publisher = publisher

		cfg.runOrchestrator(ctx)

		if len(publisher.published()) != 0 {
			t.Errorf("published %d chunks, want 0", len(publisher.published()))
		}
	})

	t.Run("failed publish retries with backoff", func(t *testing.T) {
		querier := &mockQuerier{t: t}
		querier.ListActiveSchedulesFunc = schedulePages(10)
		cfg := newTestConfig(t, querier)

		var attempts atomic.Int32
		publisher := &mockPublisher{}
		publisher.publishFunc = func(ctx context.Context, msg ChunkMessage, chunkIndex int) error {
			if attempts.Add(1) < 3 {
				return errors.New("broker hiccup")
			}
			return nil
		}
		cfg.publisher = publisher

		cfg.runOrchestrator(ctx)

		if attempts.Load() != 3 {
			t.Errorf("publish attempted %d times, want 3", attempts.Load())
		}
	})

	t.Run("route ref projection carries schedule fields", func(t *testing.T) {
		routeID := uuid.New()
		querier := &mockQuerier{t: t}
		querier.ListActiveSchedulesFunc = func(ctx context.Context, arg database.ListActiveSchedulesParams) ([]database.Schedule, error) {
			if arg.AfterRouteID != uuid.Nil {
				return nil, nil
			}
			return []database.Schedule{{
				RouteID:    routeID,
				UserID:     "user-42",
				ArriveBy:   "07:45",
				Timezone:   "Europe/Warsaw",
				DaysOfWeek: []string{"TUE", "THU"},
				Active:     true,
			}}, nil
		}
		cfg := newTestConfig(t, querier)
		publisher := &mockPublisher{}
		cfg.publisher = publisher

		cfg.runOrchestrator(ctx)

		chunks := publisher.published()
		if len(chunks) != 1 || len(chunks[0].Routes) != 1 {
			t.Fatalf("unexpected chunk shape: %+v", chunks)
		}
		ref := chunks[0].Routes[0]
		if ref.RouteID != routeID || ref.UserID != "user-42" || ref.ArriveBy != "07:45" ||
			ref.Timezone != "Europe/Warsaw" || len(ref.DaysOfWeek) != 2 {
			t.Errorf("unexpected route ref: %+v", ref)
		}
	})
}
