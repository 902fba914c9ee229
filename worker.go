package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// This file contains the forecast worker: the consumer side of the nightly
// pipeline. Each queue message carries a chunk of route references; the
// worker loads the referenced routes and the scraped city data once per
// chunk, then computes a departure recommendation per route per scheduled
// day. One bad route is skipped; a chunk-level failure is nacked back to the
// queue and eventually dead-lettered.

// runWorkers starts the worker pool and blocks until the delivery channel
// closes or the context is cancelled.
func (cfg *apiConfig) runWorkers(ctx context.Context) error {
	deliveries, err := cfg.queue.Consume(cfg.workerConcurrency)
	if err != nil {
		return err
	}
	cfg.logger.Info("forecast workers started", "concurrency", cfg.workerConcurrency)

	var wg sync.WaitGroup
	for i := 0; i < cfg.workerConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case delivery, ok := <-deliveries:
					if !ok {
						return
					}
					cfg.handleDelivery(ctx, delivery)
				}
			}
		}()
	}
	wg.Wait()
	return nil
}

func (cfg *apiConfig) handleDelivery(ctx context.Context, delivery amqp091.Delivery) {
	if err := cfg.processChunk(ctx, delivery.Body); err != nil {
		cfg.logger.Error("chunk processing failed, redelivering", "messageId", delivery.MessageId, "error", err)
		chunksProcessedTotal.WithLabelValues("error").Inc()
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			cfg.logger.Error("could not nack delivery", "error", nackErr)
		}
		return
	}
	chunksProcessedTotal.WithLabelValues("ok").Inc()
	if ackErr := delivery.Ack(false); ackErr != nil {
		cfg.logger.Error("could not ack delivery", "error", ackErr)
	}
}

// cityDayData is the scraped weather and event data for a chunk, keyed by
// cityKey then by "YYYY-MM-DD". Missing entries mean the scraper had nothing
// for that city and day.
type cityDayData struct {
	weather map[string]map[string][]HourPrecip
	events  map[string]map[string][]CityEvent
}

// processChunk computes and stores forecasts for every route in one chunk.
func (cfg *apiConfig) processChunk(ctx context.Context, body []byte) error {
	var msg ChunkMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("could not unmarshal chunk: %w", err)
	}
	if len(msg.Routes) == 0 {
		return nil
	}

	routes, err := cfg.loadChunkRoutes(ctx, msg.Routes)
	if err != nil {
		return err
	}
	dates := cfg.resolveForecastDates(msg.Routes)
	data := cfg.loadCityDayData(ctx, routes, dates)

	generatedAt := cfg.now().UTC()
	var forecasts []database.UpsertForecastParams
	for _, ref := range msg.Routes {
		route, ok := routes[ref.RouteID]
		if !ok {
			cfg.logger.Warn("chunk references unknown route, skipping", "userId", ref.UserID, "routeId", ref.RouteID)
			continue
		}
		if len(ref.DaysOfWeek) == 0 {
			continue
		}
		forecast, err := cfg.forecastRoute(route, ref, dates, data, generatedAt)
		if err != nil {
			cfg.logger.Error("forecast computation failed for route", "userId", ref.UserID, "routeId", ref.RouteID, "error", err)
			routeForecastFailuresTotal.Inc()
			continue
		}
		params, err := forecastToUpsertForecastParams(forecast)
		if err != nil {
			cfg.logger.Error("could not encode forecast", "userId", ref.UserID, "routeId", ref.RouteID, "error", err)
			routeForecastFailuresTotal.Inc()
			continue
		}
		forecasts = append(forecasts, params)
	}

	failed := runBatches(ctx, forecasts, cfg.logger, func(ctx context.Context, chunk []database.UpsertForecastParams) error {
		for _, params := range chunk {
			if err := cfg.dbQueries.UpsertForecast(ctx, params); err != nil {
				return err
			}
		}
		return nil
	})
	if failed > 0 {
		return fmt.Errorf("%d forecasts could not be stored", failed)
	}
	return nil
}

// loadChunkRoutes batch-loads the routes referenced by a chunk and indexes
// them by id. Rows with corrupt payloads are skipped with a warning.
func (cfg *apiConfig) loadChunkRoutes(ctx context.Context, refs []RouteRef) (map[uuid.UUID]Route, error) {
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.RouteID)
	}
	rows := fetchBatches(ctx, ids, cfg.logger, func(ctx context.Context, chunk []uuid.UUID) ([]database.Route, error) {
		return cfg.dbQueries.GetRoutesByIDs(ctx, chunk)
	})

	routes := make(map[uuid.UUID]Route, len(rows))
	for _, row := range rows {
		route, err := databaseRouteToRoute(row)
		if err != nil {
			cfg.logger.Warn("skipping route with corrupt payload", "routeId", row.ID, "error", err)
			continue
		}
		routes[route.RouteID] = route
	}
	return routes, nil
}

// resolveForecastDates maps every day name scheduled anywhere in the chunk to
// its next calendar date.
func (cfg *apiConfig) resolveForecastDates(refs []RouteRef) map[string]time.Time {
	dates := make(map[string]time.Time)
	now := cfg.now()
	for _, ref := range refs {
		for _, day := range ref.DaysOfWeek {
			if _, ok := dates[day]; ok {
				continue
			}
			date, err := nextDateForWeekday(day, now)
			if err != nil {
				cfg.logger.Warn("skipping unknown day name", "day", day)
				continue
			}
			dates[day] = date
		}
	}
	return dates
}

// loadCityDayData batch-loads the scraped weather and event records for
// every (cityKey, date) pair the chunk touches. Missing records are fine;
// routes in those cities just get an empty day.
func (cfg *apiConfig) loadCityDayData(ctx context.Context, routes map[uuid.UUID]Route, dates map[string]time.Time) cityDayData {
	citySet := make(map[string]bool)
	var cityKeys []string
	for _, route := range routes {
		if !citySet[route.CityKey] {
			citySet[route.CityKey] = true
			cityKeys = append(cityKeys, route.CityKey)
		}
	}
	dateList := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		dateList = append(dateList, date)
	}

	data := cityDayData{
		weather: make(map[string]map[string][]HourPrecip),
		events:  make(map[string]map[string][]CityEvent),
	}
	if len(cityKeys) == 0 || len(dateList) == 0 {
		return data
	}

	weatherRows := fetchBatches(ctx, cityKeys, cfg.logger, func(ctx context.Context, chunk []string) ([]database.CityWeatherDay, error) {
		return cfg.dbQueries.GetCityWeatherDays(ctx, database.GetCityWeatherDaysParams{CityKeys: chunk, Dates: dateList})
	})
	for _, row := range weatherRows {
		day, err := databaseWeatherDayToCityWeatherDay(row)
		if err != nil {
			cfg.logger.Warn("skipping corrupt weather record", "cityKey", row.CityKey, "error", err)
			continue
		}
		if data.weather[day.CityKey] == nil {
			data.weather[day.CityKey] = make(map[string][]HourPrecip)
		}
		data.weather[day.CityKey][day.ForecastDate.UTC().Format("2006-01-02")] = day.Hourly
	}

	eventRows := fetchBatches(ctx, cityKeys, cfg.logger, func(ctx context.Context, chunk []string) ([]database.CityEventDay, error) {
		return cfg.dbQueries.GetCityEventDays(ctx, database.GetCityEventDaysParams{CityKeys: chunk, Dates: dateList})
	})
	for _, row := range eventRows {
		day, err := databaseEventDayToCityEventDay(row)
		if err != nil {
			cfg.logger.Warn("skipping corrupt event record", "cityKey", row.CityKey, "error", err)
			continue
		}
		if data.events[day.CityKey] == nil {
			data.events[day.CityKey] = make(map[string][]CityEvent)
		}
		data.events[day.CityKey][day.ForecastDate.UTC().Format("2006-01-02")] = day.Events
	}
	return data
}

// forecastRoute computes the day map for one route.
func (cfg *apiConfig) forecastRoute(route Route, ref RouteRef, dates map[string]time.Time, data cityDayData, generatedAt time.Time) (Forecast, error) {
	days := make(map[string]DayForecast, len(ref.DaysOfWeek))
	for _, day := range ref.DaysOfWeek {
		date, ok := dates[day]
		if !ok {
			continue
		}
		dateStr := date.Format("2006-01-02")

		hourly := data.weather[route.CityKey][dateStr]
		cityEvents := data.events[route.CityKey][dateStr]
		corridorEvents := cfg.filterEvents(route, ref.ArriveBy, cityEvents)

		arriveByUTC, err := localTimeToUTC(ref.ArriveBy, ref.Timezone, date, cfg.logger)
		if err != nil {
			return Forecast{}, fmt.Errorf("day %s: %w", day, err)
		}
		recommendation, err := cfg.recommend(recommendInput{
			Hourly:             hourly,
			CorridorEvents:     corridorEvents,
			ArriveBy:           arriveByUTC,
			StaticDurationMins: route.StaticDurationMins,
			ForecastDate:       date,
		})
		if err != nil {
			return Forecast{}, fmt.Errorf("day %s: %w", day, err)
		}

		days[day] = DayForecast{
			ForecastDate:   dateStr,
			Recommendation: recommendation,
			HasWeatherData: hourly != nil,
			HasEventData:   cityEvents != nil,
		}
	}
	return Forecast{
		RouteID:     route.RouteID,
		UserID:      route.UserID,
		Days:        days,
		GeneratedAt: generatedAt,
	}, nil
}

// filterEvents keeps the events that could plausibly delay this commute:
// those starting no later than the local arrive-by time, at a venue within
// the route corridor.
func (cfg *apiConfig) filterEvents(route Route, localArriveBy string, events []CityEvent) []CityEvent {
	arriveMins, err := parseClockMinutes(localArriveBy)
	if err != nil {
		return nil
	}
	var kept []CityEvent
	for _, event := range events {
		startMins, err := parseClockMinutes(event.StartTime)
		if err != nil {
			cfg.logger.Debug("skipping event with unparseable start time", "event", event.Name, "startTime", event.StartTime)
			continue
		}
		if startMins > arriveMins {
			continue
		}
		if !inCorridor(route, event.Lat, event.Lng) {
			continue
		}
		kept = append(kept, event)
	}
	return kept
}
