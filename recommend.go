package main

import (
	"fmt"
	"strings"
	"time"
)

// This file contains the recommendation engine: the deterministic rules that
// turn a day's weather and event data into an adjusted departure time.

const (
	rainThresholdMm = 0.5
	rainBufferMins  = 10
	eventBufferMins = 30
)

// recommendInput is everything the engine needs for one route on one day.
// ArriveBy is already converted to UTC "HH:MM"; Hourly covers the 24 UTC
// hours of ForecastDate.
type recommendInput struct {
	Hourly             []HourPrecip
	CorridorEvents     []CityEvent
	ArriveBy           string
	StaticDurationMins int
	ForecastDate       time.Time
}

// recommendFunc is the signature of the recommendation engine. It is held as
// a field on apiConfig so a future model-backed engine can slot in without
// touching the worker.
type recommendFunc func(in recommendInput) (DayRecommendation, error)

// recommendDeparture applies the departure rules:
//   - more than 0.5 mm of precipitation summed over the commute window adds
//     a 10 minute buffer,
//   - every event near the route corridor adds a 30 minute buffer.
//
// The departure instant is anchored on the forecast date's UTC midnight and
// may land on the previous calendar day when the buffers push it past
// midnight; that is intentional and not clamped.
func recommendDeparture(in recommendInput) (DayRecommendation, error) {
	if in.StaticDurationMins <= 0 {
		return DayRecommendation{}, fmt.Errorf("static duration must be positive, got %d", in.StaticDurationMins)
	}
	arriveMins, err := parseClockMinutes(in.ArriveBy)
	if err != nil {
		return DayRecommendation{}, fmt.Errorf("invalid arrive-by time: %w", err)
	}

	extraBuffer := 0
	var reasons []string

	if windowPrecipitation(in.Hourly, arriveMins, in.StaticDurationMins) > rainThresholdMm {
		extraBuffer += rainBufferMins
		reasons = append(reasons, "Rain expected during your commute window — allow extra time")
	}
	for _, event := range in.CorridorEvents {
		extraBuffer += eventBufferMins
		reasons = append(reasons, "Event near your route: "+event.Name)
	}

	departMins := arriveMins - in.StaticDurationMins - extraBuffer
	departAt := utcDateOnly(in.ForecastDate).Add(time.Duration(departMins) * time.Minute)

	return DayRecommendation{
		AdjustedDepartBy: departAt.Format(time.RFC3339),
		ExtraBufferMins:  extraBuffer,
		Reasoning:        strings.Join(reasons, "; "),
	}, nil
}

// windowPrecipitation sums precipitation across the UTC hours of the commute
// window [departHour, arriveHour] inclusive. The depart hour is the floor of
// the unbuffered departure time; both ends are clamped into the forecast
// date's 24 hours.
func windowPrecipitation(hourly []HourPrecip, arriveMins, staticDurationMins int) float64 {
	departHour := (arriveMins - staticDurationMins) / 60
	if arriveMins-staticDurationMins < 0 && (arriveMins-staticDurationMins)%60 != 0 {
		departHour--
	}
	arriveHour := arriveMins / 60

	departHour = max(0, min(departHour, 23))
	arriveHour = max(0, min(arriveHour, 23))

	total := 0.0
	for _, h := range hourly {
		if h.Hour >= departHour && h.Hour <= arriveHour {
			total += h.PrecipitationMm
		}
	}
	return total
}
