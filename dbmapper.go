package main

import (
	"encoding/json"
	"fmt"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
)

// This file contains converters between the sqlc-generated database models
// and the application's domain types. Waypoints, events and day maps are
// stored as JSONB, so conversion can fail on corrupt rows; callers decide
// whether that is fatal.

// databaseRouteToRoute converts a database.Route to a Route.
func databaseRouteToRoute(dbRoute database.Route) (Route, error) {
	route := Route{
		RouteID:             dbRoute.ID,
		UserID:              dbRoute.UserID,
		Title:               dbRoute.Title,
		TravelMode:          dbRoute.TravelMode,
		StaticDurationMins:  int(dbRoute.StaticDurationMins),
		TrafficDurationMins: int(dbRoute.TrafficDurationMins.Int32),
		DistanceMeters:      int(dbRoute.DistanceMeters.Int32),
		CityKey:             dbRoute.CityKey,
		CityLat:             dbRoute.CityLat,
		CityLng:             dbRoute.CityLng,
		UserActive:          dbRoute.UserActive,
		Geometry:            dbRoute.Geometry.String,
		CreatedAt:           dbRoute.CreatedAt,
		UpdatedAt:           dbRoute.UpdatedAt,
	}
	if err := json.Unmarshal(dbRoute.Origin, &route.Origin); err != nil {
		return Route{}, fmt.Errorf("corrupt origin on route %s: %w", dbRoute.ID, err)
	}
	if err := json.Unmarshal(dbRoute.Destination, &route.Destination); err != nil {
		return Route{}, fmt.Errorf("corrupt destination on route %s: %w", dbRoute.ID, err)
	}
	if len(dbRoute.Intermediates) > 0 {
		if err := json.Unmarshal(dbRoute.Intermediates, &route.Intermediates); err != nil {
			return Route{}, fmt.Errorf("corrupt intermediates on route %s: %w", dbRoute.ID, err)
		}
	}
	return route, nil
}

// databaseScheduleToSchedule converts a database.Schedule to a Schedule.
func databaseScheduleToSchedule(dbSchedule database.Schedule) Schedule {
	return Schedule{
		RouteID:    dbSchedule.RouteID,
		UserID:     dbSchedule.UserID,
		ArriveBy:   dbSchedule.ArriveBy,
		Timezone:   dbSchedule.Timezone,
		DaysOfWeek: dbSchedule.DaysOfWeek,
		Active:     dbSchedule.Active,
		ExpiresAt:  dbSchedule.ExpiresAt,
	}
}

// databaseScheduleToRouteRef projects a schedule into the shape carried in
// queue chunks.
func databaseScheduleToRouteRef(dbSchedule database.Schedule) RouteRef {
	return RouteRef{
		UserID:     dbSchedule.UserID,
		RouteID:    dbSchedule.RouteID,
		ArriveBy:   dbSchedule.ArriveBy,
		Timezone:   dbSchedule.Timezone,
		DaysOfWeek: dbSchedule.DaysOfWeek,
	}
}

// databaseForecastToForecast converts a database.Forecast to a Forecast.
func databaseForecastToForecast(dbForecast database.Forecast) (Forecast, error) {
	forecast := Forecast{
		RouteID:     dbForecast.RouteID,
		UserID:      dbForecast.UserID,
		GeneratedAt: dbForecast.GeneratedAt,
	}
	if err := json.Unmarshal(dbForecast.Days, &forecast.Days); err != nil {
		return Forecast{}, fmt.Errorf("corrupt day map on forecast %s: %w", dbForecast.RouteID, err)
	}
	return forecast, nil
}

// forecastToUpsertForecastParams converts a Forecast to database.UpsertForecastParams.
func forecastToUpsertForecastParams(forecast Forecast) (database.UpsertForecastParams, error) {
	days, err := json.Marshal(forecast.Days)
	if err != nil {
		return database.UpsertForecastParams{}, err
	}
	return database.UpsertForecastParams{
		RouteID:     forecast.RouteID,
		UserID:      forecast.UserID,
		Days:        days,
		GeneratedAt: forecast.GeneratedAt,
	}, nil
}

// databaseWeatherDayToCityWeatherDay converts a database.CityWeatherDay to a CityWeatherDay.
func databaseWeatherDayToCityWeatherDay(dbDay database.CityWeatherDay) (CityWeatherDay, error) {
	day := CityWeatherDay{
		CityKey:      dbDay.CityKey,
		ForecastDate: dbDay.ForecastDate,
	}
	if err := json.Unmarshal(dbDay.Hourly, &day.Hourly); err != nil {
		return CityWeatherDay{}, fmt.Errorf("corrupt hourly data for %s on %s: %w", dbDay.CityKey, dbDay.ForecastDate.Format("2006-01-02"), err)
	}
	return day, nil
}

// databaseEventDayToCityEventDay converts a database.CityEventDay to a CityEventDay.
func databaseEventDayToCityEventDay(dbDay database.CityEventDay) (CityEventDay, error) {
	day := CityEventDay{
		CityKey:      dbDay.CityKey,
		ForecastDate: dbDay.ForecastDate,
	}
	if err := json.Unmarshal(dbDay.Events, &day.Events); err != nil {
		return CityEventDay{}, fmt.Errorf("corrupt event data for %s on %s: %w", dbDay.CityKey, dbDay.ForecastDate.Format("2006-01-02"), err)
	}
	return day, nil
}
