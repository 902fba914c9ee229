package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
)

func testCity(cityKey string, lat, lng float64) database.City {
	return database.City{CityKey: cityKey, CityLat: lat, CityLng: lng}
}

// weatherPayload builds an 8-day hourly response starting at the given UTC
// date, the shape the provider returns for forecast_days=8.
func weatherPayload(start time.Time, precipitation float64) weatherAPIResponse {
	var payload weatherAPIResponse
	for day := 0; day < 8; day++ {
		for hour := 0; hour < 24; hour++ {
			stamp := start.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
			payload.Hourly.Time = append(payload.Hourly.Time, stamp.Format("2006-01-02T15:04"))
			payload.Hourly.Precipitation = append(payload.Hourly.Precipitation, precipitation)
		}
	}
	return payload
}

func TestRunWeatherScrape(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("buckets the response into seven day records per city", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("forecast_days") != "8" {
				t.Errorf("forecast_days = %q, want 8", r.URL.Query().Get("forecast_days"))
			}
			if r.URL.Query().Get("timezone") != "UTC" {
				t.Errorf("timezone = %q, want UTC", r.URL.Query().Get("timezone"))
			}
			json.NewEncoder(w).Encode(weatherPayload(start, 0.3))
		}))
		defer server.Close()

		querier := &mockQuerier{t: t}
		querier.ListActiveCitiesFunc = func(ctx context.Context) ([]database.City, error) {
			return []database.City{testCity("IE#DUBLIN", 53.3498, -6.2603)}, nil
		}
		var mu sync.Mutex
		var records []database.UpsertCityWeatherDayParams
		querier.UpsertCityWeatherDayFunc = func(ctx context.Context, arg database.UpsertCityWeatherDayParams) error {
			mu.Lock()
			defer mu.Unlock()
			records = append(records, arg)
			return nil
		}

		cfg := newTestConfig(t, querier)
		cfg.httpClient = server.Client()
		cfg.weatherURL = server.URL

		cfg.runWeatherScrape(ctx)

		mu.Lock()
		defer mu.Unlock()
		if len(records) != 7 {
			t.Fatalf("stored %d records, want 7", len(records))
		}
		seen := make(map[string]bool)
		for _, record := range records {
			if record.CityKey != "IE#DUBLIN" {
				t.Errorf("cityKey = %q, want IE#DUBLIN", record.CityKey)
			}
			seen[record.ForecastDate.Format("2006-01-02")] = true
			var hourly []HourPrecip
			if err := json.Unmarshal(record.Hourly, &hourly); err != nil {
				t.Fatalf("stored hourly payload does not decode: %v", err)
			}
			if len(hourly) != 24 {
				t.Errorf("day %s has %d hours, want 24", record.ForecastDate.Format("2006-01-02"), len(hourly))
			}
			expectedExpiry := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC).AddDate(0, 0, scrapeTTLDays)
			if !record.ExpiresAt.Equal(expectedExpiry) {
				t.Errorf("expiresAt = %v, want %v", record.ExpiresAt, expectedExpiry)
			}
		}
		// Days 1..7 ahead of the fixed Thursday clock; today is excluded.
		for day := 16; day <= 22; day++ {
			if !seen[fmt.Sprintf("2026-01-%02d", day)] {
				t.Errorf("missing record for 2026-01-%02d", day)
			}
		}
		if seen["2026-01-15"] {
			t.Error("stored a record for today")
		}
	})

	t.Run("missing day is stored as an empty hour list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only two days of data; the remaining window days have none.
			var payload weatherAPIResponse
			payload.Hourly.Time = []string{"2026-01-16T08:00", "2026-01-17T08:00"}
			payload.Hourly.Precipitation = []float64{1.5, 0.0}
			json.NewEncoder(w).Encode(payload)
		}))
		defer server.Close()

		querier := &mockQuerier{t: t}
		querier.ListActiveCitiesFunc = func(ctx context.Context) ([]database.City, error) {
			return []database.City{testCity("IE#DUBLIN", 53.3498, -6.2603)}, nil
		}
		var mu sync.Mutex
		byDate := make(map[string]json.RawMessage)
		querier.UpsertCityWeatherDayFunc = func(ctx context.Context, arg database.UpsertCityWeatherDayParams) error {
			mu.Lock()
			defer mu.Unlock()
			byDate[arg.ForecastDate.Format("2006-01-02")] = arg.Hourly
			return nil
		}

		cfg := newTestConfig(t, querier)
		cfg.httpClient = server.Client()
		cfg.weatherURL = server.URL

		cfg.runWeatherScrape(ctx)

		mu.Lock()
		defer mu.Unlock()
		if len(byDate) != 7 {
			t.Fatalf("stored %d records, want 7", len(byDate))
		}
		if string(byDate["2026-01-20"]) != "[]" {
			t.Errorf("empty day payload = %s, want []", byDate["2026-01-20"])
		}
		var hourly []HourPrecip
		if err := json.Unmarshal(byDate["2026-01-16"], &hourly); err != nil || len(hourly) != 1 {
			t.Errorf("day with data decoded to %v (err %v), want one hour", hourly, err)
		}
	})

	t.Run("one failing city does not block the others", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("latitude") == "51.8985" {
				http.Error(w, "provider down", http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode(weatherPayload(start, 0.0))
		}))
		defer server.Close()

		querier := &mockQuerier{t: t}
		querier.ListActiveCitiesFunc = func(ctx context.Context) ([]database.City, error) {
			return []database.City{
				testCity("IE#DUBLIN", 53.3498, -6.2603),
				testCity("IE#CORK", 51.8985, -8.4756),
			}, nil
		}
		var mu sync.Mutex
		cityKeys := make(map[string]int)
		querier.UpsertCityWeatherDayFunc = func(ctx context.Context, arg database.UpsertCityWeatherDayParams) error {
			mu.Lock()
			defer mu.Unlock()
			cityKeys[arg.CityKey]++
			return nil
		}

		cfg := newTestConfig(t, querier)
		cfg.httpClient = server.Client()
		cfg.weatherURL = server.URL

		cfg.runWeatherScrape(ctx)

		mu.Lock()
		defer mu.Unlock()
		if cityKeys["IE#DUBLIN"] != 7 {
			t.Errorf("stored %d Dublin records, want 7", cityKeys["IE#DUBLIN"])
		}
		if cityKeys["IE#CORK"] != 0 {
			t.Errorf("stored %d Cork records, want 0", cityKeys["IE#CORK"])
		}
	})
}

func eventsPage(totalPages int, events ...eventsAPIEvent) eventsAPIResponse {
	var payload eventsAPIResponse
	payload.Embedded.Events = events
	payload.Page.TotalPages = totalPages
	return payload
}

func rawEvent(name, localDate, localTime, lat, lng string) eventsAPIEvent {
	var event eventsAPIEvent
	event.Name = name
	event.Dates.Start.LocalDate = localDate
	event.Dates.Start.LocalTime = localTime
	event.Embedded.Venues = append(event.Embedded.Venues, struct {
		Name     string `json:"name"`
		Location struct {
			Latitude  string `json:"latitude"`
			Longitude string `json:"longitude"`
		} `json:"location"`
	}{})
	event.Embedded.Venues[0].Name = name + " Arena"
	event.Embedded.Venues[0].Location.Latitude = lat
	event.Embedded.Venues[0].Location.Longitude = lng
	return event
}

func TestRunEventScrape(t *testing.T) {
	ctx := context.Background()

	t.Run("buckets events by local date inside the window", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("apikey") != "test-key" {
				t.Errorf("apikey = %q, want test-key", r.URL.Query().Get("apikey"))
			}
			if r.URL.Query().Get("sort") != "date,asc" {
				t.Errorf("sort = %q, want date,asc", r.URL.Query().Get("sort"))
			}
			json.NewEncoder(w).Encode(eventsPage(1,
				rawEvent("Stadium Concert", "2026-01-18", "18:00:00", "53.3498", "-6.2603"),
				rawEvent("Next Month Gala", "2026-02-10", "19:00:00", "53.3498", "-6.2603"),
			))
		}))
		defer server.Close()

		querier := &mockQuerier{t: t}
		querier.ListActiveCitiesFunc = func(ctx context.Context) ([]database.City, error) {
			return []database.City{testCity("IE#DUBLIN", 53.3498, -6.2603)}, nil
		}
		var mu sync.Mutex
		byDate := make(map[string][]CityEvent)
		querier.UpsertCityEventDayFunc = func(ctx context.Context, arg database.UpsertCityEventDayParams) error {
			var events []CityEvent
			if err := json.Unmarshal(arg.Events, &events); err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			byDate[arg.ForecastDate.Format("2006-01-02")] = events
			return nil
		}

		cfg := newTestConfig(t, querier)
		cfg.httpClient = server.Client()
		cfg.eventsURL = server.URL

		cfg.runEventScrape(ctx)

		mu.Lock()
		defer mu.Unlock()
		if len(byDate) != 7 {
			t.Fatalf("stored %d records, want 7", len(byDate))
		}
		sunday := byDate["2026-01-18"]
		if len(sunday) != 1 || sunday[0].Name != "Stadium Concert" {
			t.Fatalf("2026-01-18 events = %+v, want Stadium Concert", sunday)
		}
		// Provider times carry seconds; the stored record keeps wall-clock minutes.
		if sunday[0].StartTime != "18:00" {
			t.Errorf("startTime = %q, want 18:00", sunday[0].StartTime)
		}
		if len(byDate["2026-01-19"]) != 0 {
			t.Errorf("2026-01-19 events = %+v, want none", byDate["2026-01-19"])
		}
	})

	t.Run("deep pagination is capped", func(t *testing.T) {
		var pageRequests atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pageRequests.Add(1)
			json.NewEncoder(w).Encode(eventsPage(50,
				rawEvent("Filler", "2026-01-18", "18:00:00", "53.3498", "-6.2603")))
		}))
		defer server.Close()

		querier := &mockQuerier{t: t}
		querier.ListActiveCitiesFunc = func(ctx context.Context) ([]database.City, error) {
			return []database.City{testCity("IE#DUBLIN", 53.3498, -6.2603)}, nil
		}
		querier.UpsertCityEventDayFunc = func(ctx context.Context, arg database.UpsertCityEventDayParams) error {
			return nil
		}

		cfg := newTestConfig(t, querier)
		cfg.httpClient = server.Client()
		cfg.eventsURL = server.URL

		cfg.runEventScrape(ctx)

		if pageRequests.Load() != eventsMaxPages {
			t.Errorf("requested %d pages, want %d", pageRequests.Load(), eventsMaxPages)
		}
	})

	t.Run("events with unusable coordinates are dropped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(eventsPage(1,
				rawEvent("Good Event", "2026-01-18", "18:00:00", "53.3498", "-6.2603"),
				rawEvent("NaN Event", "2026-01-18", "18:00:00", "NaN", "-6.2603"),
				rawEvent("Unplaced Event", "2026-01-18", "18:00:00", "not-a-number", "-6.2603"),
			))
		}))
		defer server.Close()

		querier := &mockQuerier{t: t}
		querier.ListActiveCitiesFunc = func(ctx context.Context) ([]database.City, error) {
			return []database.City{testCity("IE#DUBLIN", 53.3498, -6.2603)}, nil
		}
		var mu sync.Mutex
		byDate := make(map[string][]CityEvent)
		querier.UpsertCityEventDayFunc = func(ctx context.Context, arg database.UpsertCityEventDayParams) error {
			var events []CityEvent
			if err := json.Unmarshal(arg.Events, &events); err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			byDate[arg.ForecastDate.Format("2006-01-02")] = events
			return nil
		}

		cfg := newTestConfig(t, querier)
		cfg.httpClient = server.Client()
		cfg.eventsURL = server.URL

		cfg.runEventScrape(ctx)

		mu.Lock()
		defer mu.Unlock()
		sunday := byDate["2026-01-18"]
		if len(sunday) != 1 || sunday[0].Name != "Good Event" {
			t.Errorf("2026-01-18 events = %+v, want only Good Event", sunday)
		}
	})
}
