package main

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/LukasVaiciulaitis/SmartGo/internal/database"
	"github.com/google/uuid"
)

// --- Mocks ---

// mockQuerier is a comprehensive, safe mock for the dbQuerier interface.
// It fails the test if any unexpected method is called.
type mockQuerier struct {
	t *testing.T

	CreateProfileFunc              func(ctx context.Context, arg database.CreateProfileParams) (int64, error)
	DecrementProfileRouteCountFunc func(ctx context.Context, userID string) error
	GetProfileFunc                 func(ctx context.Context, userID string) (database.Profile, error)
	IncrementProfileRouteCountFunc func(ctx context.Context, userID string) (int64, error)

	CreateRouteFunc       func(ctx context.Context, arg database.CreateRouteParams) (database.Route, error)
	DeleteRouteFunc       func(ctx context.Context, arg database.DeleteRouteParams) (int64, error)
	GetRouteFunc          func(ctx context.Context, arg database.GetRouteParams) (database.Route, error)
	GetRoutesByIDsFunc    func(ctx context.Context, ids []uuid.UUID) ([]database.Route, error)
	ListRoutesForUserFunc func(ctx context.Context, userID string) ([]database.Route, error)
	UpdateRouteFunc       func(ctx context.Context, arg database.UpdateRouteParams) (database.Route, error)

	CreateScheduleFunc         func(ctx context.Context, arg database.CreateScheduleParams) (database.Schedule, error)
	DeactivateScheduleFunc     func(ctx context.Context, arg database.DeactivateScheduleParams) (int64, error)
	DeleteExpiredSchedulesFunc func(ctx context.Context, expiresAt time.Time) (int64, error)
	GetScheduleFunc            func(ctx context.Context, arg database.GetScheduleParams) (database.Schedule, error)
	GetSchedulesByRouteIDsFunc func(ctx context.Context, ids []uuid.UUID) ([]database.Schedule, error)
	ListActiveSchedulesFunc    func(ctx context.Context, arg database.ListActiveSchedulesParams) ([]database.Schedule, error)
	UpdateScheduleFunc         func(ctx context.Context, arg database.UpdateScheduleParams) (database.Schedule, error)

	DeleteForecastFunc         func(ctx context.Context, arg database.DeleteForecastParams) (int64, error)
	GetForecastsByRouteIDsFunc func(ctx context.Context, ids []uuid.UUID) ([]database.Forecast, error)
	UpsertForecastFunc         func(ctx context.Context, arg database.UpsertForecastParams) error

	DecrementCityActiveRoutesFunc func(ctx context.Context, arg database.DecrementCityActiveRoutesParams) (int64, error)
	GetCityFunc                   func(ctx context.Context, cityKey string) (database.City, error)
	ListActiveCitiesFunc          func(ctx context.Context) ([]database.City, error)
	UpsertCityAddRouteFunc        func(ctx context.Context, arg database.UpsertCityAddRouteParams) error

	DeleteExpiredEventDaysFunc   func(ctx context.Context, expiresAt time.Time) (int64, error)
	DeleteExpiredWeatherDaysFunc func(ctx context.Context, expiresAt time.Time) (int64, error)
	GetCityEventDaysFunc         func(ctx context.Context, arg database.GetCityEventDaysParams) ([]database.CityEventDay, error)
	GetCityWeatherDaysFunc       func(ctx context.Context, arg database.GetCityWeatherDaysParams) ([]database.CityWeatherDay, error)
	UpsertCityEventDayFunc       func(ctx context.Context, arg database.UpsertCityEventDayParams) error
	UpsertCityWeatherDayFunc     func(ctx context.Context, arg database.UpsertCityWeatherDayParams) error

	DeleteAllCitiesFunc       func(ctx context.Context) error
	DeleteAllDelayRecordsFunc func(ctx context.Context) error
	DeleteAllForecastsFunc    func(ctx context.Context) error
	DeleteAllProfilesFunc     func(ctx context.Context) error
	DeleteAllRoutesFunc       func(ctx context.Context) error
	DeleteAllSchedulesFunc    func(ctx context.Context) error
}

func (m *mockQuerier) fail(method string) {
	m.t.Helper()
	m.t.Fatalf("unexpected call to mockQuerier method: %s", method)
}

func (m *mockQuerier) CreateProfile(ctx context.Context, arg database.CreateProfileParams) (int64, error) {
	if m.CreateProfileFunc != nil {
		return m.CreateProfileFunc(ctx, arg)
	}
	m.fail("CreateProfile")
	return 0, nil
}
func (m *mockQuerier) DecrementProfileRouteCount(ctx context.Context, userID string) error {
	if m.DecrementProfileRouteCountFunc != nil {
		return m.DecrementProfileRouteCountFunc(ctx, userID)
	}
	m.fail("DecrementProfileRouteCount")
	return nil
}
func (m *mockQuerier) GetProfile(ctx context.Context, userID string) (database.Profile, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	m.fail("GetProfile")
	return database.Profile{}, nil
}
func (m *mockQuerier) IncrementProfileRouteCount(ctx context.Context, userID string) (int64, error) {
	if m.IncrementProfileRouteCountFunc != nil {
		return m.IncrementProfileRouteCountFunc(ctx, userID)
	}
	m.fail("IncrementProfileRouteCount")
	return 0, nil
}
func (m *mockQuerier) CreateRoute(ctx context.Context, arg database.CreateRouteParams) (database.Route, error) {
	if m.CreateRouteFunc != nil {
		return m.CreateRouteFunc(ctx, arg)
	}
	m.fail("CreateRoute")
	return database.Route{}, nil
}
func (m *mockQuerier) DeleteRoute(ctx context.Context, arg database.DeleteRouteParams) (int64, error) {
	if m.DeleteRouteFunc != nil {
		return m.DeleteRouteFunc(ctx, arg)
	}
	m.fail("DeleteRoute")
	return 0, nil
}
func (m *mockQuerier) GetRoute(ctx context.Context, arg database.GetRouteParams) (database.Route, error) {
	if m.GetRouteFunc != nil {
		return m.GetRouteFunc(ctx, arg)
	}
	m.fail("GetRoute")
	return database.Route{}, nil
}
func (m *mockQuerier) GetRoutesByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Route, error) {
	if m.GetRoutesByIDsFunc != nil {
		return m.GetRoutesByIDsFunc(ctx, ids)
	}
	m.fail("GetRoutesByIDs")
	return nil, nil
}
func (m *mockQuerier) ListRoutesForUser(ctx context.Context, userID string) ([]database.Route, error) {
	if m.ListRoutesForUserFunc != nil {
		return m.ListRoutesForUserFunc(ctx, userID)
	}
	m.fail("ListRoutesForUser")
	return nil, nil
}
func (m *mockQuerier) UpdateRoute(ctx context.Context, arg database.UpdateRouteParams) (database.Route, error) {
	if m.UpdateRouteFunc != nil {
		return m.UpdateRouteFunc(ctx, arg)
	}
	m.fail("UpdateRoute")
	return database.Route{}, nil
}
func (m *mockQuerier) CreateSchedule(ctx context.Context, arg database.CreateScheduleParams) (database.Schedule, error) {
	if m.CreateScheduleFunc != nil {
		return m.CreateScheduleFunc(ctx, arg)
	}
	m.fail("CreateSchedule")
	return database.Schedule{}, nil
}
func (m *mockQuerier) DeactivateSchedule(ctx context.Context, arg database.DeactivateScheduleParams) (int64, error) {
	if m.DeactivateScheduleFunc != nil {
		return m.DeactivateScheduleFunc(ctx, arg)
	}
	m.fail("DeactivateSchedule")
	return 0, nil
}
func (m *mockQuerier) DeleteExpiredSchedules(ctx context.Context, expiresAt time.Time) (int64, error) {
	if m.DeleteExpiredSchedulesFunc != nil {
		return m.DeleteExpiredSchedulesFunc(ctx, expiresAt)
	}
	m.fail("DeleteExpiredSchedules")
	return 0, nil
}
func (m *mockQuerier) GetSchedule(ctx context.Context, arg database.GetScheduleParams) (database.Schedule, error) {
	if m.GetScheduleFunc != nil {
		return m.GetScheduleFunc(ctx, arg)
	}
	m.fail("GetSchedule")
	return database.Schedule{}, nil
}
func (m *mockQuerier) GetSchedulesByRouteIDs(ctx context.Context, ids []uuid.UUID) ([]database.Schedule, error) {
	if m.GetSchedulesByRouteIDsFunc != nil {
		return m.GetSchedulesByRouteIDsFunc(ctx, ids)
	}
	m.fail("GetSchedulesByRouteIDs")
	return nil, nil
}
func (m *mockQuerier) ListActiveSchedules(ctx context.Context, arg database.ListActiveSchedulesParams) ([]database.Schedule, error) {
	if m.ListActiveSchedulesFunc != nil {
		return m.ListActiveSchedulesFunc(ctx, arg)
	}
	m.fail("ListActiveSchedules")
	return nil, nil
}
func (m *mockQuerier) UpdateSchedule(ctx context.Context, arg database.UpdateScheduleParams) (database.Schedule, error) {
	if m.UpdateScheduleFunc != nil {
		return m.UpdateScheduleFunc(ctx, arg)
	}
	m.fail("UpdateSchedule")
	return database.Schedule{}, nil
}
func (m *mockQuerier) DeleteForecast(ctx context.Context, arg database.DeleteForecastParams) (int64, error) {
	if m.DeleteForecastFunc != nil {
		return m.DeleteForecastFunc(ctx, arg)
	}
	m.fail("DeleteForecast")
	return 0, nil
}
func (m *mockQuerier) GetForecastsByRouteIDs(ctx context.Context, ids []uuid.UUID) ([]database.Forecast, error) {
	if m.GetForecastsByRouteIDsFunc != nil {
		return m.GetForecastsByRouteIDsFunc(ctx, ids)
	}
	m.fail("GetForecastsByRouteIDs")
	return nil, nil
}
func (m *mockQuerier) UpsertForecast(ctx context.Context, arg database.UpsertForecastParams) error {
	if m.UpsertForecastFunc != nil {
		return m.UpsertForecastFunc(ctx, arg)
	}
	m.fail("UpsertForecast")
	return nil
}
func (m *mockQuerier) DecrementCityActiveRoutes(ctx context.Context, arg database.DecrementCityActiveRoutesParams) (int64, error) {
	if m.DecrementCityActiveRoutesFunc != nil {
		return m.DecrementCityActiveRoutesFunc(ctx, arg)
	}
	m.fail("DecrementCityActiveRoutes")
	return 0, nil
}
func (m *mockQuerier) GetCity(ctx context.Context, cityKey string) (database.City, error) {
	if m.GetCityFunc != nil {
		return m.GetCityFunc(ctx, cityKey)
	}
	m.fail("GetCity")
	return database.City{}, nil
}
func (m *mockQuerier) ListActiveCities(ctx context.Context) ([]database.City, error) {
	if m.ListActiveCitiesFunc != nil {
		return m.ListActiveCitiesFunc(ctx)
	}
	m.fail("ListActiveCities")
	return nil, nil
}
func (m *mockQuerier) UpsertCityAddRoute(ctx context.Context, arg database.UpsertCityAddRouteParams) error {
	if m.UpsertCityAddRouteFunc != nil {
		return m.UpsertCityAddRouteFunc(ctx, arg)
	}
	m.fail("UpsertCityAddRoute")
	return nil
}
func (m *mockQuerier) DeleteExpiredEventDays(ctx context.Context, expiresAt time.Time) (int64, error) {
	if m.DeleteExpiredEventDaysFunc != nil {
		return m.DeleteExpiredEventDaysFunc(ctx, expiresAt)
	}
	m.fail("DeleteExpiredEventDays")
	return 0, nil
}
func (m *mockQuerier) DeleteExpiredWeatherDays(ctx context.Context, expiresAt time.Time) (int64, error) {
	if m.DeleteExpiredWeatherDaysFunc != nil {
		return m.DeleteExpiredWeatherDaysFunc(ctx, expiresAt)
	}
	m.fail("DeleteExpiredWeatherDays")
	return 0, nil
}
func (m *mockQuerier) GetCityEventDays(ctx context.Context, arg database.GetCityEventDaysParams) ([]database.CityEventDay, error) {
	if m.GetCityEventDaysFunc != nil {
		return m.GetCityEventDaysFunc(ctx, arg)
	}
	m.fail("GetCityEventDays")
	return nil, nil
}
func (m *mockQuerier) GetCityWeatherDays(ctx context.Context, arg database.GetCityWeatherDaysParams) ([]database.CityWeatherDay, error) {
	if m.GetCityWeatherDaysFunc != nil {
		return m.GetCityWeatherDaysFunc(ctx, arg)
	}
	m.fail("GetCityWeatherDays")
	return nil, nil
}
func (m *mockQuerier) UpsertCityEventDay(ctx context.Context, arg database.UpsertCityEventDayParams) error {
	if m.UpsertCityEventDayFunc != nil {
		return m.UpsertCityEventDayFunc(ctx, arg)
	}
	m.fail("UpsertCityEventDay")
	return nil
}
func (m *mockQuerier) UpsertCityWeatherDay(ctx context.Context, arg database.UpsertCityWeatherDayParams) error {
	if m.UpsertCityWeatherDayFunc != nil {
		return m.UpsertCityWeatherDayFunc(ctx, arg)
	}
	m.fail("UpsertCityWeatherDay")
	return nil
}
func (m *mockQuerier) DeleteAllCities(ctx context.Context) error {
	if m.DeleteAllCitiesFunc != nil {
		return m.DeleteAllCitiesFunc(ctx)
	}
	m.fail("DeleteAllCities")
	return nil
}
func (m *mockQuerier) DeleteAllDelayRecords(ctx context.Context) error {
	if m.DeleteAllDelayRecordsFunc != nil {
		return m.DeleteAllDelayRecordsFunc(ctx)
	}
	m.fail("DeleteAllDelayRecords")
	return nil
}
func (m *mockQuerier) DeleteAllForecasts(ctx context.Context) error {
	if m.DeleteAllForecastsFunc != nil {
		return m.DeleteAllForecastsFunc(ctx)
	}
	m.fail("DeleteAllForecasts")
	return nil
}
func (m *mockQuerier) DeleteAllProfiles(ctx context.Context) error {
	if m.DeleteAllProfilesFunc != nil {
		return m.DeleteAllProfilesFunc(ctx)
	}
	m.fail("DeleteAllProfiles")
	return nil
}
func (m *mockQuerier) DeleteAllRoutes(ctx context.Context) error {
	if m.DeleteAllRoutesFunc != nil {
		return m.DeleteAllRoutesFunc(ctx)
	}
	m.fail("DeleteAllRoutes")
	return nil
}
func (m *mockQuerier) DeleteAllSchedules(ctx context.Context) error {
	if m.DeleteAllSchedulesFunc != nil {
		return m.DeleteAllSchedulesFunc(ctx)
	}
	m.fail("DeleteAllSchedules")
	return nil
}

// mockParamStore is a mock for the paramStore interface backed by a map.
type mockParamStore struct {
	mu     sync.Mutex
	values map[string]string

	getFunc func(ctx context.Context, key string) (string, error)
	setFunc func(ctx context.Context, key, value string) error
	delFunc func(ctx context.Context, key string) error
}

func newMockParamStore() *mockParamStore {
	return &mockParamStore{values: make(map[string]string)}
}

func (m *mockParamStore) Get(ctx context.Context, key string) (string, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", errParamNotFound
	}
	return value, nil
}

func (m *mockParamStore) Set(ctx context.Context, key, value string) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockParamStore) Del(ctx context.Context, key string) error {
	if m.delFunc != nil {
		return m.delFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// mockPublisher records published chunks and can be told to fail.
type mockPublisher struct {
	mu          sync.Mutex
	chunks      []ChunkMessage
	publishFunc func(ctx context.Context, msg ChunkMessage, chunkIndex int) error
}

func (m *mockPublisher) PublishChunk(ctx context.Context, msg ChunkMessage, chunkIndex int) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg, chunkIndex)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, msg)
	return nil
}

func (m *mockPublisher) published() []ChunkMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChunkMessage(nil), m.chunks...)
}

// mockSecretResolver returns fixed secrets.
type mockSecretResolver struct {
	secrets map[string]string
}

func (m *mockSecretResolver) Resolve(name string) (string, error) {
	if value, ok := m.secrets[name]; ok {
		return value, nil
	}
	return "", errParamNotFound
}

// newTestConfig builds an apiConfig wired entirely to mocks, with a fixed
// clock and a discarded logger. The transaction runner passes the mock
// querier straight through.
func newTestConfig(t *testing.T, querier *mockQuerier) *apiConfig {
	t.Helper()
	cfg := &apiConfig{
		dbQueries: querier,
		params:    newMockParamStore(),
		secrets:   &mockSecretResolver{secrets: map[string]string{eventsAPIKeyName: "test-key"}},
		recommend: recommendDeparture,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
		},
	}
	cfg.runTx = func(ctx context.Context, fn func(dbQuerier) error) error {
		return fn(querier)
	}
	return cfg
}
