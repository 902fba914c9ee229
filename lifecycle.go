package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
	"github.com/google/uuid"
)

// This file contains the transactional route lifecycle. Creates, updates and
// deletes each mutate several records that must stay consistent: the route,
// its schedule, the owner's route counter and the city's active-route
// counter. Counter conditions are enforced inside the transaction, so the
// 20-route cap has no check-then-write race.

const (
	scheduleTTLDays      = 14
	deletedScheduleGrace = 24 * time.Hour
)

var (
	errRouteLimit       = errors.New("route limit reached")
	errRouteNotFound    = errors.New("route not found")
	errCityCounterDrift = errors.New("city active-route counter out of sync")
)

// createRoute stores a new route, its schedule and the city registration in
// one transaction, incrementing the owner's route counter under the cap
// condition. It returns the stored route and schedule.
func (cfg *apiConfig) createRoute(ctx context.Context, userID string, req createRouteRequest) (Route, Schedule, error) {
	cityKey, err := normalizeCityKey(req.CountryCode, req.City)
	if err != nil {
		return Route{}, Schedule{}, fmt.Errorf("could not normalize city: %w", err)
	}
	origin, err := json.Marshal(req.Origin)
	if err != nil {
		return Route{}, Schedule{}, err
	}
	destination, err := json.Marshal(req.Destination)
	if err != nil {
		return Route{}, Schedule{}, err
	}
	intermediates := json.RawMessage("[]")
	if len(req.Intermediates) > 0 {
		if intermediates, err = json.Marshal(req.Intermediates); err != nil {
			return Route{}, Schedule{}, err
		}
	}

	now := cfg.now().UTC()
	routeID := uuid.New()
	params := database.CreateRouteParams{
		ID:                 routeID,
		UserID:             userID,
		Title:              req.Title,
		Origin:             origin,
		Destination:        destination,
		Intermediates:      intermediates,
		TravelMode:         req.TravelMode,
		StaticDurationMins: int32(req.StaticDuration.Minutes()),
		CityKey:            cityKey,
		CityLat:            req.Origin.Location.LatLng.Latitude,
		CityLng:            req.Origin.Location.LatLng.Longitude,
		UserActive:         true,
		CreatedAt:          now,
	}
	if req.TrafficDuration > 0 {
		params.TrafficDurationMins = sql.NullInt32{Int32: int32(req.TrafficDuration.Minutes()), Valid: true}
	}
	if req.DistanceMeters > 0 {
		params.DistanceMeters = sql.NullInt32{Int32: int32(req.DistanceMeters), Valid: true}
	}
	if req.Geometry != "" {
		params.Geometry = sql.NullString{String: req.Geometry, Valid: true}
	}

	var dbRoute database.Route
	var dbSchedule database.Schedule
	err = cfg.runTx(ctx, func(q dbQuerier) error {
		affected, err := q.IncrementProfileRouteCount(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not increment route count: %w", err)
		}
		if affected == 0 {
			return errRouteLimit
		}
		if dbRoute, err = q.CreateRoute(ctx, params); err != nil {
			return fmt.Errorf("could not create route: %w", err)
		}
		dbSchedule, err = q.CreateSchedule(ctx, database.CreateScheduleParams{
			RouteID:    routeID,
			UserID:     userID,
			ArriveBy:   req.ArriveBy,
			Timezone:   req.Timezone,
			DaysOfWeek: req.DaysOfWeek,
			ExpiresAt:  now.AddDate(0, 0, scheduleTTLDays),
		})
		if err != nil {
			return fmt.Errorf("could not create schedule: %w", err)
		}
		err = q.UpsertCityAddRoute(ctx, database.UpsertCityAddRouteParams{
			CityKey:     cityKey,
			City:        req.City,
			CountryCode: req.CountryCode,
			CityLat:     req.Origin.Location.LatLng.Latitude,
			CityLng:     req.Origin.Location.LatLng.Longitude,
			Now:         now,
		})
		if err != nil {
			return fmt.Errorf("could not register city: %w", err)
		}
		return nil
	})
	if err != nil {
		return Route{}, Schedule{}, err
	}

	route, err := databaseRouteToRoute(dbRoute)
	if err != nil {
		return Route{}, Schedule{}, err
	}
	return route, databaseScheduleToSchedule(dbSchedule), nil
}

// updateRoute applies a partial update to a route and/or its schedule. When
// the update touches a forecast-affecting field, the stored forecast is
// deleted so the next nightly run regenerates it.
func (cfg *apiConfig) updateRoute(ctx context.Context, userID string, req updateRouteRequest, hasRouteFields, hasScheduleFields bool) ([]string, error) {
	routeID, err := uuid.Parse(req.RouteID)
	if err != nil {
		return nil, fmt.Errorf("invalid routeId: %w", err)
	}
	if _, err := cfg.dbQueries.GetRoute(ctx, database.GetRouteParams{ID: routeID, UserID: userID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errRouteNotFound
		}
		return nil, fmt.Errorf("could not load route: %w", err)
	}

	now := cfg.now().UTC()
	var updates []string
	err = cfg.runTx(ctx, func(q dbQuerier) error {
		if hasRouteFields {
			params, fields, err := buildRouteUpdateParams(routeID, userID, req, now)
			if err != nil {
				return err
			}
			if _, err := q.UpdateRoute(ctx, params); err != nil {
				return fmt.Errorf("could not update route: %w", err)
			}
			updates = append(updates, fields...)
		}
		if hasScheduleFields {
			params, fields := buildScheduleUpdateParams(routeID, userID, req, now)
			if _, err := q.UpdateSchedule(ctx, params); err != nil {
				return fmt.Errorf("could not update schedule: %w", err)
			}
			updates = append(updates, fields...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.invalidatesForecast() {
		if _, err := cfg.dbQueries.DeleteForecast(ctx, database.DeleteForecastParams{RouteID: routeID, UserID: userID}); err != nil {
			cfg.logger.Error("could not invalidate forecast", "routeId", routeID, "error", err)
		}
	}
	return updates, nil
}

func buildRouteUpdateParams(routeID uuid.UUID, userID string, req updateRouteRequest, now time.Time) (database.UpdateRouteParams, []string, error) {
	params := database.UpdateRouteParams{ID: routeID, UserID: userID, UpdatedAt: now}
	var fields []string
	if req.Title != nil {
		params.Title = sql.NullString{String: *req.Title, Valid: true}
		fields = append(fields, "title")
	}
	if req.Origin != nil {
		data, err := json.Marshal(*req.Origin)
		if err != nil {
			return params, nil, err
		}
		params.Origin = data
		fields = append(fields, "origin")
	}
	if req.Destination != nil {
		data, err := json.Marshal(*req.Destination)
		if err != nil {
			return params, nil, err
		}
		params.Destination = data
		fields = append(fields, "destination")
	}
	if req.Intermediates != nil {
		data, err := json.Marshal(*req.Intermediates)
		if err != nil {
			return params, nil, err
		}
		params.Intermediates = data
		fields = append(fields, "intermediates")
	}
	if req.TravelMode != nil {
		params.TravelMode = sql.NullString{String: *req.TravelMode, Valid: true}
		fields = append(fields, "travelMode")
	}
	if req.StaticDuration != nil {
		params.StaticDurationMins = sql.NullInt32{Int32: int32(req.StaticDuration.Minutes()), Valid: true}
		fields = append(fields, "staticDuration")
	}
	if req.TrafficDuration != nil {
		params.TrafficDurationMins = sql.NullInt32{Int32: int32(req.TrafficDuration.Minutes()), Valid: true}
		fields = append(fields, "trafficDuration")
	}
	if req.DistanceMeters != nil {
		params.DistanceMeters = sql.NullInt32{Int32: int32(*req.DistanceMeters), Valid: true}
		fields = append(fields, "distanceMeters")
	}
	if req.UserActive != nil {
		params.UserActive = sql.NullBool{Bool: *req.UserActive, Valid: true}
		fields = append(fields, "userActive")
	}
	if req.Geometry != nil {
		params.Geometry = sql.NullString{String: *req.Geometry, Valid: true}
		fields = append(fields, "geometry")
	}
	return params, fields, nil
}

func buildScheduleUpdateParams(routeID uuid.UUID, userID string, req updateRouteRequest, now time.Time) (database.UpdateScheduleParams, []string) {
	params := database.UpdateScheduleParams{
		RouteID:   routeID,
		UserID:    userID,
		ExpiresAt: now.AddDate(0, 0, scheduleTTLDays),
	}
	var fields []string
	if req.ArriveBy != nil {
		params.ArriveBy = sql.NullString{String: *req.ArriveBy, Valid: true}
		fields = append(fields, "arriveBy")
	}
	if req.Timezone != nil {
		params.Timezone = sql.NullString{String: *req.Timezone, Valid: true}
		fields = append(fields, "timezone")
	}
	if req.DaysOfWeek != nil {
		params.SetDaysOfWeek = true
		params.DaysOfWeek = *req.DaysOfWeek
		fields = append(fields, "daysOfWeek")
	}
	return params, fields
}

// deleteRoute removes a route. The schedule is deactivated first so the next
// orchestrator run cannot pick the route up, then the route row and both
// counters mutate in one transaction. A city counter already at zero means
// the counter drifted; the route is still removed via compensating writes.
func (cfg *apiConfig) deleteRoute(ctx context.Context, userID string, routeID uuid.UUID) error {
	dbRoute, err := cfg.dbQueries.GetRoute(ctx, database.GetRouteParams{ID: routeID, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errRouteNotFound
		}
		return fmt.Errorf("could not load route: %w", err)
	}

	now := cfg.now().UTC()
	if _, err := cfg.dbQueries.DeactivateSchedule(ctx, database.DeactivateScheduleParams{
		RouteID:   routeID,
		UserID:    userID,
		ExpiresAt: now.Add(deletedScheduleGrace),
	}); err != nil {
		return fmt.Errorf("could not deactivate schedule: %w", err)
	}

	err = cfg.runTx(ctx, func(q dbQuerier) error {
		affected, err := q.DeleteRoute(ctx, database.DeleteRouteParams{ID: routeID, UserID: userID})
		if err != nil {
			return fmt.Errorf("could not delete route: %w", err)
		}
		if affected == 0 {
			return errRouteNotFound
		}
		affected, err = q.DecrementCityActiveRoutes(ctx, database.DecrementCityActiveRoutesParams{
			CityKey:      dbRoute.CityKey,
			LastActiveAt: now,
		})
		if err != nil {
			return fmt.Errorf("could not decrement city counter: %w", err)
		}
		if affected == 0 {
			return errCityCounterDrift
		}
		if err := q.DecrementProfileRouteCount(ctx, userID); err != nil {
			return fmt.Errorf("could not decrement route count: %w", err)
		}
		return nil
	})
	if errors.Is(err, errCityCounterDrift) {
		cfg.logger.Warn("city counter drift detected, compensating", "cityKey", dbRoute.CityKey, "routeId", routeID)
		if _, err := cfg.dbQueries.DeleteRoute(ctx, database.DeleteRouteParams{ID: routeID, UserID: userID}); err != nil {
			return fmt.Errorf("compensating route delete failed: %w", err)
		}
		if err := cfg.dbQueries.DecrementProfileRouteCount(ctx, userID); err != nil {
			return fmt.Errorf("compensating counter decrement failed: %w", err)
		}
	} else if err != nil {
		return err
	}

	if _, err := cfg.dbQueries.DeleteForecast(ctx, database.DeleteForecastParams{RouteID: routeID, UserID: userID}); err != nil {
		cfg.logger.Error("could not delete forecast", "routeId", routeID, "error", err)
	}
	return nil
}

// createProfile stores the user profile written by the identity provider's
// post-confirmation hook. Duplicate hooks are ignored.
func (cfg *apiConfig) createProfile(ctx context.Context, userID, email string) error {
	affected, err := cfg.dbQueries.CreateProfile(ctx, database.CreateProfileParams{
		UserID:    userID,
		Email:     email,
		CreatedAt: cfg.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("could not create profile: %w", err)
	}
	if affected == 0 {
		cfg.logger.Info("duplicate confirmation hook ignored", "userId", userID)
	}
	return nil
}
