package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// This file contains the HTTP handlers for the route lifecycle API, the
// identity-provider confirmation hook, and the dev-mode endpoints.

// handlerCreateRoute handles POST /routes/create. It validates the request,
// runs the create transaction and responds with the full stored route so the
// client can render without a follow-up fetch.
func (cfg *apiConfig) handlerCreateRoute(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		cfg.respondWithError(w, http.StatusUnauthorized, "Missing user identity", nil)
		return
	}

	var req createRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	route, schedule, err := cfg.createRoute(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, errRouteLimit) {
			cfg.respondWithError(w, http.StatusBadRequest, "Maximum of 20 routes reached", nil)
			return
		}
		cfg.respondWithError(w, http.StatusInternalServerError, "Could not create route", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusCreated, routeToJSON(route, &schedule, nil))
}

// handlerUpdateRoute handles PUT /routes/update.
func (cfg *apiConfig) handlerUpdateRoute(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		cfg.respondWithError(w, http.StatusUnauthorized, "Missing user identity", nil)
		return
	}

	var req updateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	hasRouteFields, hasScheduleFields, err := req.validate()
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	updates, err := cfg.updateRoute(r.Context(), userID, req, hasRouteFields, hasScheduleFields)
	if err != nil {
		if errors.Is(err, errRouteNotFound) {
			cfg.respondWithError(w, http.StatusNotFound, "Route not found", nil)
			return
		}
		cfg.respondWithError(w, http.StatusInternalServerError, "Could not update route", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, UpdateRouteResponse{RouteID: req.RouteID, Updates: updates})
}

// handlerDeleteRoute handles DELETE /routes/delete.
func (cfg *apiConfig) handlerDeleteRoute(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		cfg.respondWithError(w, http.StatusUnauthorized, "Missing user identity", nil)
		return
	}

	var req struct {
		RouteID string `json:"routeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	routeID, err := uuid.Parse(req.RouteID)
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid routeId", nil)
		return
	}

	if err := cfg.deleteRoute(r.Context(), userID, routeID); err != nil {
		if errors.Is(err, errRouteNotFound) {
			cfg.respondWithError(w, http.StatusNotFound, "Route not found", nil)
			return
		}
		cfg.respondWithError(w, http.StatusInternalServerError, "Could not delete route", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, DeleteRouteResponse{RouteID: req.RouteID})
}

// handlerFetchRoutes handles GET /routes/fetch. It assembles the user's
// profile and every route with its schedule and forecast inlined.
func (cfg *apiConfig) handlerFetchRoutes(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		cfg.respondWithError(w, http.StatusUnauthorized, "Missing user identity", nil)
		return
	}
	ctx := r.Context()

	profile, err := cfg.dbQueries.GetProfile(ctx, userID)
	if err != nil {
		cfg.respondWithError(w, http.StatusNotFound, "Profile not found", err)
		return
	}
	dbRoutes, err := cfg.dbQueries.ListRoutesForUser(ctx, userID)
	if err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Could not load routes", err)
		return
	}

	ids := make([]uuid.UUID, 0, len(dbRoutes))
	for _, dbRoute := range dbRoutes {
		ids = append(ids, dbRoute.ID)
	}
	schedules := make(map[uuid.UUID]Schedule)
	forecasts := make(map[uuid.UUID]Forecast)
	if len(ids) > 0 {
		dbSchedules, err := cfg.dbQueries.GetSchedulesByRouteIDs(ctx, ids)
		if err != nil {
			cfg.respondWithError(w, http.StatusInternalServerError, "Could not load schedules", err)
			return
		}
		for _, dbSchedule := range dbSchedules {
			schedules[dbSchedule.RouteID] = databaseScheduleToSchedule(dbSchedule)
		}
		dbForecasts, err := cfg.dbQueries.GetForecastsByRouteIDs(ctx, ids)
		if err != nil {
			cfg.respondWithError(w, http.StatusInternalServerError, "Could not load forecasts", err)
			return
		}
		for _, dbForecast := range dbForecasts {
			forecast, err := databaseForecastToForecast(dbForecast)
			if err != nil {
				cfg.logger.Warn("skipping corrupt forecast", "routeId", dbForecast.RouteID, "error", err)
				continue
			}
			forecasts[forecast.RouteID] = forecast
		}
	}

	activeRouteCount := 0
	routes := make([]RouteJSON, 0, len(dbRoutes))
	for _, dbRoute := range dbRoutes {
		route, err := databaseRouteToRoute(dbRoute)
		if err != nil {
			cfg.logger.Warn("skipping route with corrupt payload", "routeId", dbRoute.ID, "error", err)
			continue
		}
		var schedule *Schedule
		if s, ok := schedules[route.RouteID]; ok {
			schedule = &s
			if s.Active && len(s.DaysOfWeek) > 0 {
				activeRouteCount++
			}
		}
		var forecast *Forecast
		if f, ok := forecasts[route.RouteID]; ok {
			forecast = &f
		}
		routes = append(routes, routeToJSON(route, schedule, forecast))
	}

	cfg.respondWithJSON(w, http.StatusOK, FetchRoutesResponse{
		UserID: userID,
		Profile: ProfileJSON{
			Email:     profile.Email,
			CreatedAt: profile.CreatedAt.UTC().Format(time.RFC3339),
		},
		RouteCount:       int(profile.RouteCount),
		ActiveRouteCount: activeRouteCount,
		MaxRoutes:        maxRoutes,
		Routes:           routes,
	})
}

// handlerUserConfirmed handles POST /hooks/user-confirmed, the identity
// provider's post-confirmation hook. It is not behind auth middleware; the
// provider calls it directly.
func (cfg *apiConfig) handlerUserConfirmed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || req.Email == "" {
		cfg.respondWithError(w, http.StatusBadRequest, "userId and email are required", nil)
		return
	}

	if err := cfg.createProfile(r.Context(), req.UserID, req.Email); err != nil {
		cfg.respondWithError(w, http.StatusInternalServerError, "Could not create profile", err)
		return
	}
	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"userId": req.UserID})
}

// routeToJSON assembles the client-facing route shape with schedule and
// forecast inlined. forecastStatus is derived: active if a forecast exists,
// pending if the schedule has days but no forecast yet, empty otherwise.
func routeToJSON(route Route, schedule *Schedule, forecast *Forecast) RouteJSON {
	out := RouteJSON{
		RouteID:            route.RouteID.String(),
		Title:              route.Title,
		Origin:             route.Origin,
		Destination:        route.Destination,
		Intermediates:      route.Intermediates,
		TravelMode:         route.TravelMode,
		StaticDurationMins: route.StaticDurationMins,
		TrafficDuration:    route.TrafficDurationMins,
		DistanceMeters:     route.DistanceMeters,
		CityKey:            route.CityKey,
		UserActive:         route.UserActive,
		Geometry:           route.Geometry,
		ForecastStatus:     forecastStatusEmpty,
		CreatedAt:          route.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          route.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if schedule != nil {
		out.ArriveBy = schedule.ArriveBy
		out.Timezone = schedule.Timezone
		out.DaysOfWeek = schedule.DaysOfWeek
		if len(schedule.DaysOfWeek) > 0 {
			out.ForecastStatus = forecastStatusPending
		}
	}
	if forecast != nil {
		out.Forecast = forecast.Days
		out.GeneratedAt = forecast.GeneratedAt.UTC().Format(time.RFC3339)
		out.ForecastStatus = forecastStatusActive
	}
	return out
}

// The dev handlers below are only registered in DEV_MODE. They trigger the
// nightly jobs on demand and reset state between manual test runs.

func (cfg *apiConfig) handlerDevScrape(w http.ResponseWriter, r *http.Request) {
	cfg.runWeatherScrape(r.Context())
	cfg.runEventScrape(r.Context())
	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"status": "scrape complete"})
}

func (cfg *apiConfig) handlerDevOrchestrate(w http.ResponseWriter, r *http.Request) {
	cfg.runOrchestrator(r.Context())
	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"status": "orchestrator complete"})
}

func (cfg *apiConfig) handlerDevJanitor(w http.ResponseWriter, r *http.Request) {
	cfg.runJanitor(r.Context())
	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"status": "janitor complete"})
}

func (cfg *apiConfig) handlerDevReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resets := []struct {
		name string
		fn   func() error
	}{
		{"forecasts", func() error { return cfg.dbQueries.DeleteAllForecasts(ctx) }},
		{"schedules", func() error { return cfg.dbQueries.DeleteAllSchedules(ctx) }},
		{"routes", func() error { return cfg.dbQueries.DeleteAllRoutes(ctx) }},
		{"profiles", func() error { return cfg.dbQueries.DeleteAllProfiles(ctx) }},
		{"cities", func() error { return cfg.dbQueries.DeleteAllCities(ctx) }},
		{"delay records", func() error { return cfg.dbQueries.DeleteAllDelayRecords(ctx) }},
	}
	for _, reset := range resets {
		if err := reset.fn(); err != nil {
			cfg.respondWithError(w, http.StatusInternalServerError, "Could not reset "+reset.name, err)
			return
		}
	}
	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"status": "reset complete"})
}
