package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// This file contains the client for the hourly precipitation provider. One
// request per city covers eight days of UTC hours; the scraper slices days
// 1..7 out of the response.

// weatherAPIResponse mirrors the provider's hourly payload. Timestamps come
// back as "2006-01-02T15:04" strings in UTC, index-aligned with the
// precipitation values.
type weatherAPIResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Precipitation []float64 `json:"precipitation"`
	} `json:"hourly"`
}

// fetchCityPrecipitation fetches the 8-day hourly precipitation forecast for
// a coordinate pair and buckets it into per-UTC-date hour slices.
func (cfg *apiConfig) fetchCityPrecipitation(ctx context.Context, lat, lng float64) (map[string][]HourPrecip, error) {
	reqURL, err := url.Parse(cfg.weatherURL)
	if err != nil {
		return nil, fmt.Errorf("invalid weather provider URL: %w", err)
	}
	query := reqURL.Query()
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lng, 'f', -1, 64))
	query.Set("hourly", "precipitation")
	query.Set("timezone", "UTC")
	query.Set("forecast_days", "8")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create weather request: %w", err)
	}
	resp, err := cfg.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	var payload weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("could not decode weather response: %w", err)
	}
	if len(payload.Hourly.Time) != len(payload.Hourly.Precipitation) {
		return nil, fmt.Errorf("weather response misaligned: %d timestamps, %d values",
			len(payload.Hourly.Time), len(payload.Hourly.Precipitation))
	}

	days := make(map[string][]HourPrecip)
	for i, stamp := range payload.Hourly.Time {
		t, err := time.Parse("2006-01-02T15:04", stamp)
		if err != nil {
			return nil, fmt.Errorf("could not parse weather timestamp %q: %w", stamp, err)
		}
		date := t.Format("2006-01-02")
		days[date] = append(days[date], HourPrecip{
			Hour:            t.Hour(),
			PrecipitationMm: payload.Hourly.Precipitation[i],
		})
	}
	return days, nil
}
