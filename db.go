package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// dbQuerier is an interface that abstracts all database operations.
// It is implemented by the sqlc-generated Queries struct, allowing for dependency
// injection and easy mocking in tests. This decouples business logic from the data layer.
type dbQuerier interface {
	CreateProfile(ctx context.Context, arg database.CreateProfileParams) (int64, error)
	DecrementProfileRouteCount(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, userID string) (database.Profile, error)
	IncrementProfileRouteCount(ctx context.Context, userID string) (int64, error)

	CreateRoute(ctx context.Context, arg database.CreateRouteParams) (database.Route, error)
	DeleteRoute(ctx context.Context, arg database.DeleteRouteParams) (int64, error)
	GetRoute(ctx context.Context, arg database.GetRouteParams) (database.Route, error)
	GetRoutesByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Route, error)
	ListRoutesForUser(ctx context.Context, userID string) ([]database.Route, error)
	UpdateRoute(ctx context.Context, arg database.UpdateRouteParams) (database.Route, error)

	CreateSchedule(ctx context.Context, arg database.CreateScheduleParams) (database.Schedule, error)
	DeactivateSchedule(ctx context.Context, arg database.DeactivateScheduleParams) (int64, error)
	DeleteExpiredSchedules(ctx context.Context, expiresAt time.Time) (int64, error)
	GetSchedule(ctx context.Context, arg database.GetScheduleParams) (database.Schedule, error)
	GetSchedulesByRouteIDs(ctx context.Context, ids []uuid.UUID) ([]database.Schedule, error)
	ListActiveSchedules(ctx context.Context, arg database.ListActiveSchedulesParams) ([]database.Schedule, error)
	UpdateSchedule(ctx context.Context, arg database.UpdateScheduleParams) (database.Schedule, error)

	DeleteForecast(ctx context.Context, arg database.DeleteForecastParams) (int64, error)
	GetForecastsByRouteIDs(ctx context.Context, ids []uuid.UUID) ([]database.Forecast, error)
	UpsertForecast(ctx context.Context, arg database.UpsertForecastParams) error

	DecrementCityActiveRoutes(ctx context.Context, arg database.DecrementCityActiveRoutesParams) (int64, error)
	GetCity(ctx context.Context, cityKey string) (database.City, error)
	ListActiveCities(ctx context.Context) ([]database.City, error)
	UpsertCityAddRoute(ctx context.Context, arg database.UpsertCityAddRouteParams) error

	DeleteExpiredEventDays(ctx context.Context, expiresAt time.Time) (int64, error)
	DeleteExpiredWeatherDays(ctx context.Context, expiresAt time.Time) (int64, error)
	GetCityEventDays(ctx context.Context, arg database.GetCityEventDaysParams) ([]database.CityEventDay, error)
	GetCityWeatherDays(ctx context.Context, arg database.GetCityWeatherDaysParams) ([]database.CityWeatherDay, error)
	UpsertCityEventDay(ctx context.Context, arg database.UpsertCityEventDayParams) error
	UpsertCityWeatherDay(ctx context.Context, arg database.UpsertCityWeatherDayParams) error

	DeleteAllCities(ctx context.Context) error
	DeleteAllDelayRecords(ctx context.Context) error
	DeleteAllForecasts(ctx context.Context) error
	DeleteAllProfiles(ctx context.Context) error
	DeleteAllRoutes(ctx context.Context) error
	DeleteAllSchedules(ctx context.Context) error
}

// ConnectDB establishes a connection to the PostgreSQL database using the
// connection string in the apiConfig struct. It initializes the dbQueries
// field with a sqlc-generated Queries struct and wires the real transaction
// runner. This method should be called during application startup to ensure
// that the database is reachable before handling any requests.
func (cfg *apiConfig) ConnectDB(dbURL string) error {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("couldn't prepare connection to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("couldn't connect to database: %w", err)
	}
	cfg.db = db
	cfg.dbQueries = database.New(db)
	cfg.runTx = cfg.runSQLTx
	cfg.logger.Info("connected to database")
	return nil
}

// runSQLTx runs fn inside a single database transaction. Every multi-item
// mutation of the route lifecycle goes through here; a non-nil error from fn
// rolls the whole transaction back.
func (cfg *apiConfig) runSQLTx(ctx context.Context, fn func(dbQuerier) error) error {
	tx, err := cfg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	if err := fn(database.New(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			cfg.logger.Error("transaction rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}
