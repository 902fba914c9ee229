package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// This file contains the client for the public events provider. Results are
// paginated; page 0 reports the total page count and the remaining pages are
// fetched concurrently, capped at the provider's deep-paging limit.

const (
	eventsRadiusKm   = 25
	eventsMaxPages   = 5
	eventsPageSize   = 200
	eventsAPIKeyName = "EVENTS_API_KEY"
	eventsWindowDays = 6
)

// eventsAPIResponse mirrors the provider's discovery payload.
type eventsAPIResponse struct {
	Embedded struct {
		Events []eventsAPIEvent `json:"events"`
	} `json:"_embedded"`
	Page struct {
		TotalPages int `json:"totalPages"`
	} `json:"page"`
}

type eventsAPIEvent struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Dates struct {
		Start struct {
			LocalDate string `json:"localDate"`
			LocalTime string `json:"localTime"`
		} `json:"start"`
	} `json:"dates"`
	Embedded struct {
		Venues []struct {
			Name     string `json:"name"`
			Location struct {
				Latitude  string `json:"latitude"`
				Longitude string `json:"longitude"`
			} `json:"location"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// fetchCityEvents fetches all events around a coordinate pair for the window
// [tomorrow, tomorrow+6d]. Page 0 is fetched first to learn the page count;
// the rest are fetched concurrently. Events without finite coordinates are
// dropped with a warning.
func (cfg *apiConfig) fetchCityEvents(ctx context.Context, lat, lng float64) ([]CityEvent, error) {
	apiKey, err := cfg.secrets.Resolve(eventsAPIKeyName)
	if err != nil {
		return nil, fmt.Errorf("could not resolve events API key: %w", err)
	}

	first, err := cfg.fetchEventsPage(ctx, apiKey, lat, lng, 0)
	if err != nil {
		return nil, err
	}
	totalPages := min(first.Page.TotalPages, eventsMaxPages)

	pages := make([][]eventsAPIEvent, totalPages)
	if totalPages > 0 {
		pages[0] = first.Embedded.Events
	}

	var wg sync.WaitGroup
	errs := make(chan error, totalPages)
	for page := 1; page < totalPages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			resp, err := cfg.fetchEventsPage(ctx, apiKey, lat, lng, page)
			if err != nil {
				errs <- fmt.Errorf("page %d: %w", page, err)
				return
			}
			pages[page] = resp.Embedded.Events
		}(page)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		return nil, err
	}

	var events []CityEvent
	for _, pageEvents := range pages {
		for _, raw := range pageEvents {
			event, ok := cfg.parseEvent(raw)
			if !ok {
				continue
			}
			events = append(events, event)
		}
	}
	return events, nil
}

func (cfg *apiConfig) fetchEventsPage(ctx context.Context, apiKey string, lat, lng float64, page int) (*eventsAPIResponse, error) {
	reqURL, err := url.Parse(cfg.eventsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid events provider URL: %w", err)
	}
	tomorrow := utcDateOnly(cfg.now()).AddDate(0, 0, 1)
	windowEnd := tomorrow.AddDate(0, 0, eventsWindowDays)

	query := reqURL.Query()
	query.Set("apikey", apiKey)
	query.Set("latlong", fmt.Sprintf("%f,%f", lat, lng))
	query.Set("radius", strconv.Itoa(eventsRadiusKm))
	query.Set("unit", "km")
	query.Set("startDateTime", tomorrow.Format("2006-01-02T15:04:05Z"))
	query.Set("endDateTime", windowEnd.Add(24*time.Hour-time.Second).Format("2006-01-02T15:04:05Z"))
	query.Set("size", strconv.Itoa(eventsPageSize))
	query.Set("page", strconv.Itoa(page))
	query.Set("sort", "date,asc")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create events request: %w", err)
	}
	resp, err := cfg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("events request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("events provider returned status %d", resp.StatusCode)
	}

	var payload eventsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not decode events response: %w", err)
	}
	return &payload, nil
}

// parseEvent extracts the fields the pipeline needs from a raw provider
// event. Events without a finite coordinate pair cannot be corridor-matched
// and are dropped.
func (cfg *apiConfig) parseEvent(raw eventsAPIEvent) (CityEvent, bool) {
	if len(raw.Embedded.Venues) == 0 {
		cfg.logger.Warn("dropping event without venue", "event", raw.Name)
		return CityEvent{}, false
	}
	venue := raw.Embedded.Venues[0]
	lat, latErr := strconv.ParseFloat(venue.Location.Latitude, 64)
	lng, lngErr := strconv.ParseFloat(venue.Location.Longitude, 64)
	if latErr != nil || lngErr != nil || math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		cfg.logger.Warn("dropping event with unusable coordinates", "event", raw.Name, "venue", venue.Name)
		return CityEvent{}, false
	}
	// The provider reports local times with seconds; the pipeline works in
	// wall-clock minutes.
	startTime := raw.Dates.Start.LocalTime
	if len(startTime) > 5 {
		startTime = startTime[:5]
	}
	return CityEvent{
		Name:      raw.Name,
		Venue:     venue.Name,
		Lat:       lat,
		Lng:       lng,
		LocalDate: raw.Dates.Start.LocalDate,
		StartTime: startTime,
		URL:       raw.URL,
	}, true
}
