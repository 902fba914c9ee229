package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
)

// This file contains the nightly scrapers. Both follow the same shape: list
// the active cities, call the provider once per city concurrently, bucket the
// payload into day-partitioned records for days 1..7 ahead, and batch-write
// them with an expiry one day past the last useful date. A failing city is
// logged and skipped; it simply contributes no data tonight.

const scrapeTTLDays = 8

// runWeatherScrape refreshes the per-city hourly precipitation records.
func (cfg *apiConfig) runWeatherScrape(ctx context.Context) {
	cities, err := cfg.dbQueries.ListActiveCities(ctx)
	if err != nil {
		cfg.logger.Error("weather scrape could not list active cities", "error", err)
		return
	}
	if len(cities) == 0 {
		cfg.logger.Info("weather scrape found no active cities")
		return
	}
	cfg.logger.Info("weather scrape starting", "cities", len(cities))

	now := cfg.now().UTC()
	expiresAt := now.AddDate(0, 0, scrapeTTLDays)

	var wg sync.WaitGroup
	results := make(chan database.UpsertCityWeatherDayParams, len(cities)*7)
	for _, city := range cities {
		wg.Add(1)
		go func(city database.City) {
			defer wg.Done()
			days, err := cfg.fetchCityPrecipitation(ctx, city.CityLat, city.CityLng)
			if err != nil {
				cfg.logger.Error("weather scrape failed for city", "cityKey", city.CityKey, "error", err)
				scrapeRunsTotal.WithLabelValues("weather", "error").Inc()
				return
			}
			for offset := 1; offset <= 7; offset++ {
				date := utcDateOnly(now).AddDate(0, 0, offset)
				hourly := days[date.Format("2006-01-02")]
				if hourly == nil {
					hourly = []HourPrecip{}
				}
				payload, err := json.Marshal(hourly)
				if err != nil {
					cfg.logger.Error("could not marshal hourly data", "cityKey", city.CityKey, "error", err)
					continue
				}
				results <- database.UpsertCityWeatherDayParams{
					CityKey:      city.CityKey,
					ForecastDate: date,
					Hourly:       payload,
					FetchedAt:    now,
					ExpiresAt:    expiresAt,
				}
			}
			scrapeRunsTotal.WithLabelValues("weather", "ok").Inc()
		}(city)
	}
	wg.Wait()
	close(results)

	var records []database.UpsertCityWeatherDayParams
	for record := range results {
		records = append(records, record)
	}
	failed := runBatches(ctx, records, cfg.logger, func(ctx context.Context, chunk []database.UpsertCityWeatherDayParams) error {
		for _, record := range chunk {
			if err := cfg.dbQueries.UpsertCityWeatherDay(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	cfg.logger.Info("weather scrape finished", "records", len(records), "failed", failed)
}

// runEventScrape refreshes the per-city event catalogs. Events are bucketed
// by their local start date; dates outside the 1..7 day window are ignored.
func (cfg *apiConfig) runEventScrape(ctx context.Context) {
	cities, err := cfg.dbQueries.ListActiveCities(ctx)
	if err != nil {
		cfg.logger.Error("event scrape could not list active cities", "error", err)
		return
	}
	if len(cities) == 0 {
		cfg.logger.Info("event scrape found no active cities")
		return
	}
	cfg.logger.Info("event scrape starting", "cities", len(cities))

	now := cfg.now().UTC()
	expiresAt := now.AddDate(0, 0, scrapeTTLDays)

	windowDates := make(map[string]time.Time, 7)
	for offset := 1; offset <= 7; offset++ {
		date := utcDateOnly(now).AddDate(0, 0, offset)
		windowDates[date.Format("2006-01-02")] = date
	}

	var wg sync.WaitGroup
	results := make(chan database.UpsertCityEventDayParams, len(cities)*7)
	for _, city := range cities {
		wg.Add(1)
		go func(city database.City) {
			defer wg.Done()
			events, err := cfg.fetchCityEvents(ctx, city.CityLat, city.CityLng)
			if err != nil {
				cfg.logger.Error("event scrape failed for city", "cityKey", city.CityKey, "error", err)
				scrapeRunsTotal.WithLabelValues("events", "error").Inc()
				return
			}

			byDate := make(map[string][]CityEvent)
			for _, event := range events {
				if _, ok := windowDates[event.LocalDate]; !ok {
					continue
				}
				byDate[event.LocalDate] = append(byDate[event.LocalDate], event)
			}
			for dateStr, date := range windowDates {
				dayEvents := byDate[dateStr]
				if dayEvents == nil {
					dayEvents = []CityEvent{}
				}
				payload, err := json.Marshal(dayEvents)
				if err != nil {
					cfg.logger.Error("could not marshal event data", "cityKey", city.CityKey, "error", err)
					continue
				}
				results <- database.UpsertCityEventDayParams{
					CityKey:      city.CityKey,
					ForecastDate: date,
					Events:       payload,
					FetchedAt:    now,
					ExpiresAt:    expiresAt,
				}
			}
			scrapeRunsTotal.WithLabelValues("events", "ok").Inc()
		}(city)
	}
	wg.Wait()
	close(results)

	var records []database.UpsertCityEventDayParams
	for record := range results {
		records = append(records, record)
	}
	failed := runBatches(ctx, records, cfg.logger, func(ctx context.Context, chunk []database.UpsertCityEventDayParams) error {
		for _, record := range chunk {
			if err := cfg.dbQueries.UpsertCityEventDay(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	cfg.logger.Info("event scrape finished", "records", len(records), "failed", failed)
}
