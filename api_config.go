package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// apiConfig holds every dependency of the service: database handles, the
// run-parameter store, the queue publisher, HTTP clients for the upstream
// providers and the knobs read from the environment. All handlers, jobs and
// workers hang off this struct so tests can swap any piece for a mock.
type apiConfig struct {
	db        *sql.DB
	dbQueries dbQuerier
	runTx     func(ctx context.Context, fn func(dbQuerier) error) error

	params    paramStore
	queue     *amqpQueue
	publisher chunkPublisher

	httpClient *http.Client
	weatherURL string
	eventsURL  string
	secrets    secretResolver

	// recommend is the recommendation engine applied per route per day.
	// It is a field so tests can observe or replace it.
	recommend recommendFunc

	workerConcurrency int
	scrapeAt          clockTime
	orchestrateAt     clockTime
	janitorAt         clockTime

	port    string
	devMode bool
	logger  *slog.Logger
	now     func() time.Time
}

// clockTime is a wall-clock time of day in UTC.
type clockTime struct {
	Hour   int
	Minute int
}

func parseClockTime(s string) (clockTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return clockTime{}, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return clockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return clockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return clockTime{Hour: hour, Minute: minute}, nil
}

// config assembles the apiConfig from the environment. It exits the process
// on any missing required variable or unreachable backing service, so the
// rest of the code can assume a fully wired struct.
func config() *apiConfig {
	devMode := os.Getenv("DEV_MODE") == "true"

	var logger *slog.Logger
	if devMode {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, reading configuration from environment")
	}

	cfg := &apiConfig{
		httpClient:        &http.Client{Timeout: 10 * time.Second},
		weatherURL:        getRequiredEnv("WEATHER_URL", logger),
		eventsURL:         getRequiredEnv("EVENTS_URL", logger),
		secrets:           newEnvSecretResolver(),
		recommend:         recommendDeparture,
		workerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),
		port:              getEnv("PORT", "8080"),
		devMode:           devMode,
		logger:            logger,
		now:               time.Now,
	}

	var err error
	if cfg.scrapeAt, err = parseClockTime(getEnv("SCRAPE_AT", "23:00")); err != nil {
		logger.Error("invalid SCRAPE_AT", "error", err)
		os.Exit(1)
	}
	if cfg.orchestrateAt, err = parseClockTime(getEnv("ORCHESTRATE_AT", "00:00")); err != nil {
		logger.Error("invalid ORCHESTRATE_AT", "error", err)
		os.Exit(1)
	}
	if cfg.janitorAt, err = parseClockTime(getEnv("JANITOR_AT", "01:00")); err != nil {
		logger.Error("invalid JANITOR_AT", "error", err)
		os.Exit(1)
	}

	if err := cfg.ConnectDB(getRequiredEnv("DB_URL", logger)); err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(getRequiredEnv("REDIS_URL", logger))
	if err != nil {
		logger.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	cfg.params = &redisParamStore{client: redisClient}
	logger.Info("connected to redis")

	queue, err := newAMQPQueue(getRequiredEnv("AMQP_URL", logger), logger)
	if err != nil {
		logger.Error("queue connection failed", "error", err)
		os.Exit(1)
	}
	cfg.queue = queue
	cfg.publisher = queue
	logger.Info("connected to message broker")

	return cfg
}

// getRequiredEnv retrieves an environment variable or exits if it is missing.
func getRequiredEnv(key string, logger *slog.Logger) string {
	value := os.Getenv(key)
	if value == "" {
		logger.Error("missing required environment variable", "key", key)
		os.Exit(1)
	}
	return value
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an integer environment variable or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
