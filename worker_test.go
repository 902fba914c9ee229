package main

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
	"github.com/google/uuid"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatal(err)
	}
	return date
}

// chunkBody marshals a chunk message the way the orchestrator publishes it.
func chunkBody(t *testing.T, refs ...RouteRef) []byte {
	t.Helper()
	body, err := json.Marshal(ChunkMessage{Routes: refs})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func dublinRef(routeID uuid.UUID, days ...string) RouteRef {
	return RouteRef{
		UserID:     "user-1",
		RouteID:    routeID,
		ArriveBy:   "08:30",
		Timezone:   "Europe/Dublin",
		DaysOfWeek: days,
	}
}

func weatherDayRow(t *testing.T, cityKey, date string, hourly []HourPrecip) database.CityWeatherDay {
	t.Helper()
	data, err := json.Marshal(hourly)
	if err != nil {
		t.Fatal(err)
	}
	return database.CityWeatherDay{CityKey: cityKey, ForecastDate: mustDate(t, date), Hourly: data}
}

func eventDayRow(t *testing.T, cityKey, date string, events []CityEvent) database.CityEventDay {
	t.Helper()
	data, err := json.Marshal(events)
	if err != nil {
		t.Fatal(err)
	}
	return database.CityEventDay{CityKey: cityKey, ForecastDate: mustDate(t, date), Events: data}
}

// workerQuerier wires a single Dublin route plus canned city data and records
// every stored forecast.
type workerQuerier struct {
	*mockQuerier
	mu        sync.Mutex
	forecasts []database.UpsertForecastParams
}

func newWorkerQuerier(t *testing.T, routeID uuid.UUID, weather []database.CityWeatherDay, events []database.CityEventDay) *workerQuerier {
	wq := &workerQuerier{mockQuerier: &mockQuerier{t: t}}
	wq.GetRoutesByIDsFunc = func(ctx context.Context, ids []uuid.UUID) ([]database.Route, error) {
		return []database.Route{storedRoute(routeID, "user-1")}, nil
	}
	wq.GetCityWeatherDaysFunc = func(ctx context.Context, arg database.GetCityWeatherDaysParams) ([]database.CityWeatherDay, error) {
		return weather, nil
	}
	wq.GetCityEventDaysFunc = func(ctx context.Context, arg database.GetCityEventDaysParams) ([]database.CityEventDay, error) {
		return events, nil
	}
	wq.UpsertForecastFunc = func(ctx context.Context, arg database.UpsertForecastParams) error {
		wq.mu.Lock()
		defer wq.mu.Unlock()
		wq.forecasts = append(wq.forecasts, arg)
		return nil
	}
	return wq
}

func (wq *workerQuerier) stored() []database.UpsertForecastParams {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	return append([]database.UpsertForecastParams(nil), wq.forecasts...)
}

func decodeDays(t *testing.T, params database.UpsertForecastParams) map[string]DayForecast {
	t.Helper()
	var days map[string]DayForecast
	if err := json.Unmarshal(params.Days, &days); err != nil {
		t.Fatalf("stored day map does not decode: %v", err)
	}
	return days
}

func TestProcessChunk(t *testing.T) {
	ctx := context.Background()
	routeID := uuid.New()

	t.Run("rain in the commute window adds a buffer", func(t *testing.T) {
		// Test clock is Thursday 2026-01-15, so MON resolves to the 19th.
		hourly := make([]HourPrecip, 24)
		for i := range hourly {
			hourly[i] = HourPrecip{Hour: i}
		}
		hourly[8].PrecipitationMm = 0.7
		wq := newWorkerQuerier(t, routeID,
			[]database.CityWeatherDay{weatherDayRow(t, "IE#DUBLIN", "2026-01-19", hourly)}, nil)
		cfg := newTestConfig(t, wq.mockQuerier)

		if err := cfg.processChunk(ctx, chunkBody(t, dublinRef(routeID, "MON"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stored := wq.stored()
		if len(stored) != 1 {
			t.Fatalf("stored %d forecasts, want 1", len(stored))
		}
		if stored[0].RouteID != routeID || stored[0].UserID != "user-1" {
			t.Errorf("forecast keyed to %s/%s", stored[0].UserID, stored[0].RouteID)
		}
		days := decodeDays(t, stored[0])
		day, ok := days["MON"]
		if !ok {
			t.Fatalf("day map missing MON: %v", days)
		}
		if day.ForecastDate != "2026-01-19" {
			t.Errorf("forecastDate = %q, want 2026-01-19", day.ForecastDate)
		}
		if day.Recommendation.ExtraBufferMins != 10 {
			t.Errorf("extraBufferMins = %d, want 10", day.Recommendation.ExtraBufferMins)
		}
		// 08:30 arrive, 25 min drive, 10 min rain buffer.
		if day.Recommendation.AdjustedDepartBy != "2026-01-19T07:55:00Z" {
			t.Errorf("adjustedDepartBy = %q, want 2026-01-19T07:55:00Z", day.Recommendation.AdjustedDepartBy)
		}
		if !strings.Contains(day.Recommendation.Reasoning, "Rain expected") {
			t.Errorf("reasoning = %q, want rain mention", day.Recommendation.Reasoning)
		}
		if !day.HasWeatherData || day.HasEventData {
			t.Errorf("data flags weather=%v events=%v, want true/false", day.HasWeatherData, day.HasEventData)
		}
	})

	t.Run("corridor event adds a buffer, far and late events do not", func(t *testing.T) {
		events := []CityEvent{
			{Name: "Stadium Concert", Lat: 53.3498, Lng: -6.2603, LocalDate: "2026-01-19", StartTime: "07:00"},
			{Name: "Cork Festival", Lat: 51.8985, Lng: -8.4756, LocalDate: "2026-01-19", StartTime: "07:00"},
			{Name: "Evening Show", Lat: 53.3498, Lng: -6.2603, LocalDate: "2026-01-19", StartTime: "21:00"},
		}
		wq := newWorkerQuerier(t, routeID, nil,
			[]database.CityEventDay{eventDayRow(t, "IE#DUBLIN", "2026-01-19", events)})
		cfg := newTestConfig(t, wq.mockQuerier)

		if err := cfg.processChunk(ctx, chunkBody(t, dublinRef(routeID, "MON"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stored := wq.stored()
		if len(stored) != 1 {
			t.Fatalf("stored %d forecasts, want 1", len(stored))
		}
		day := decodeDays(t, stored[0])["MON"]
		if day.Recommendation.ExtraBufferMins != 30 {
			t.Errorf("extraBufferMins = %d, want 30 for one corridor event", day.Recommendation.ExtraBufferMins)
		}
		if !strings.Contains(day.Recommendation.Reasoning, "Stadium Concert") {
			t.Errorf("reasoning = %q, want Stadium Concert mention", day.Recommendation.Reasoning)
		}
		if strings.Contains(day.Recommendation.Reasoning, "Cork") || strings.Contains(day.Recommendation.Reasoning, "Evening Show") {
			t.Errorf("reasoning names filtered events: %q", day.Recommendation.Reasoning)
		}
		if day.HasWeatherData {
			t.Error("hasWeatherData = true with no scraped weather")
		}
		if !day.HasEventData {
			t.Error("hasEventData = false with a scraped event day")
		}
	})

	t.Run("no scraped data yields the plain recommendation", func(t *testing.T) {
		wq := newWorkerQuerier(t, routeID, nil, nil)
		cfg := newTestConfig(t, wq.mockQuerier)

		if err := cfg.processChunk(ctx, chunkBody(t, dublinRef(routeID, "MON", "WED"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		stored := wq.stored()
		if len(stored) != 1 {
			t.Fatalf("stored %d forecasts, want 1", len(stored))
		}
		days := decodeDays(t, stored[0])
		if len(days) != 2 {
			t.Fatalf("day map has %d entries, want 2: %v", len(days), days)
		}
		mon := days["MON"]
		if mon.Recommendation.ExtraBufferMins != 0 {
			t.Errorf("extraBufferMins = %d, want 0", mon.Recommendation.ExtraBufferMins)
		}
		if mon.Recommendation.AdjustedDepartBy != "2026-01-19T08:05:00Z" {
			t.Errorf("adjustedDepartBy = %q, want 2026-01-19T08:05:00Z", mon.Recommendation.AdjustedDepartBy)
		}
		if days["WED"].ForecastDate != "2026-01-21" {
			t.Errorf("WED forecastDate = %q, want 2026-01-21", days["WED"].ForecastDate)
		}
		if mon.HasWeatherData || mon.HasEventData {
			t.Errorf("data flags weather=%v events=%v, want false/false", mon.HasWeatherData, mon.HasEventData)
		}
	})

	t.Run("unknown route reference is skipped", func(t *testing.T) {
		querier := &mockQuerier{t: t}
		querier.GetRoutesByIDsFunc = func(ctx context.Context, ids []uuid.UUID) ([]database.Route, error) {
			return nil, nil
		}
		cfg := newTestConfig(t, querier)

		// No UpsertForecastFunc is set: a store attempt would fail the test.
		if err := cfg.processChunk(ctx, chunkBody(t, dublinRef(uuid.New(), "MON"))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("reference without scheduled days is skipped", func(t *testing.T) {
		wq := newWorkerQuerier(t, routeID, nil, nil)
		wq.GetCityWeatherDaysFunc = nil
		wq.GetCityEventDaysFunc = nil
		cfg := newTestConfig(t, wq.mockQuerier)

		if err := cfg.processChunk(ctx, chunkBody(t, dublinRef(routeID))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(wq.stored()) != 0 {
			t.Errorf("stored %d forecasts, want 0", len(wq.stored()))
		}
	})

	t.Run("empty chunk is a no-op", func(t *testing.T) {
		cfg := newTestConfig(t, &mockQuerier{t: t})
		if err := cfg.processChunk(ctx, chunkBody(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("malformed body errors for redelivery", func(t *testing.T) {
		cfg := newTestConfig(t, &mockQuerier{t: t})
		if err := cfg.processChunk(ctx, []byte("{not json")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("store failure errors for redelivery", func(t *testing.T) {
		wq := newWorkerQuerier(t, routeID, nil, nil)
		wq.UpsertForecastFunc = func(ctx context.Context, arg database.UpsertForecastParams) error {
			return context.DeadlineExceeded
		}
		cfg := newTestConfig(t, wq.mockQuerier)

		if err := cfg.processChunk(ctx, chunkBody(t, dublinRef(routeID, "MON"))); err == nil {
			t.Fatal("expected error when forecasts cannot be stored")
		}
	})

	t.Run("corrupt route row is skipped, the rest proceed", func(t *testing.T) {
		goodID, badID := uuid.New(), uuid.New()
		wq := newWorkerQuerier(t, goodID, nil, nil)
		wq.GetRoutesByIDsFunc = func(ctx context.Context, ids []uuid.UUID) ([]database.Route, error) {
			bad := storedRoute(badID, "user-1")
			bad.Origin = []byte("{corrupt")
			return []database.Route{storedRoute(goodID, "user-1"), bad}, nil
		}
		cfg := newTestConfig(t, wq.mockQuerier)

		body := chunkBody(t, dublinRef(goodID, "MON"), dublinRef(badID, "MON"))
		if err := cfg.processChunk(ctx, body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored := wq.stored()
		if len(stored) != 1 || stored[0].RouteID != goodID {
			t.Errorf("stored forecasts = %+v, want only the intact route", stored)
		}
	})
}

func TestFilterEvents(t *testing.T) {
	cfg := newTestConfig(t, &mockQuerier{t: t})
	route := dublinTestRoute()

	events := []CityEvent{
		{Name: "At Origin", Lat: 53.3498, Lng: -6.2603, StartTime: "07:30"},
		{Name: "At Destination", Lat: 53.3849, Lng: -6.2579, StartTime: "08:30"},
		{Name: "Starts After Arrival", Lat: 53.3498, Lng: -6.2603, StartTime: "08:31"},
		{Name: "Out Of Corridor", Lat: 51.8985, Lng: -8.4756, StartTime: "07:00"},
		{Name: "Bad Start Time", Lat: 53.3498, Lng: -6.2603, StartTime: "soon"},
	}
	kept := cfg.filterEvents(route, "08:30", events)
	if len(kept) != 2 {
		t.Fatalf("kept %d events, want 2: %+v", len(kept), kept)
	}
	if kept[0].Name != "At Origin" || kept[1].Name != "At Destination" {
		t.Errorf("kept wrong events: %+v", kept)
	}
}
