package main

import (
	"time"

	"github.com/google/uuid"
)

// LatLng is a pre-resolved coordinate pair supplied by the client's place
// lookup. The backend never geocodes.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type WaypointLocation struct {
	LatLng LatLng `json:"latLng"`
}

// Waypoint is one stop of a route: a resolved location plus a display label
// and the optional provider place id.
type Waypoint struct {
	Location WaypointLocation `json:"location"`
	Label    string           `json:"label"`
	PlaceID  string           `json:"placeId,omitempty"`
}

type Route struct {
	RouteID             uuid.UUID
	UserID              string
	Title               string
	Origin              Waypoint
	Destination         Waypoint
	Intermediates       []Waypoint
	TravelMode          string
	StaticDurationMins  int
	TrafficDurationMins int
	DistanceMeters      int
	CityKey             string
	CityLat             float64
	CityLng             float64
	UserActive          bool
	Geometry            string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Schedule struct {
	RouteID    uuid.UUID
	UserID     string
	ArriveBy   string
	Timezone   string
	DaysOfWeek []string
	Active     bool
	ExpiresAt  time.Time
}

// RouteRef is the projection of a schedule carried in a queue chunk.
type RouteRef struct {
	UserID     string    `json:"userId"`
	RouteID    uuid.UUID `json:"routeId"`
	ArriveBy   string    `json:"arriveBy"`
	Timezone   string    `json:"timezone"`
	DaysOfWeek []string  `json:"daysOfWeek"`
}

// ChunkMessage is the body of one queue message: up to chunkSize route refs.
type ChunkMessage struct {
	Routes []RouteRef `json:"routes"`
}

// HourPrecip is one UTC hour of a scraped weather day.
type HourPrecip struct {
	Hour            int     `json:"hour"`
	PrecipitationMm float64 `json:"precipitationMm"`
}

type CityWeatherDay struct {
	CityKey      string
	ForecastDate time.Time
	Hourly       []HourPrecip
}

// CityEvent is one public event scraped for a city. StartTime is the local
// wall-clock "HH:MM" on LocalDate; coordinates are provider-supplied.
type CityEvent struct {
	Name      string  `json:"name"`
	Venue     string  `json:"venue"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	LocalDate string  `json:"localDate"`
	StartTime string  `json:"startTime"`
	URL       string  `json:"url"`
}

type CityEventDay struct {
	CityKey      string
	ForecastDate time.Time
	Events       []CityEvent
}

type DayRecommendation struct {
	AdjustedDepartBy string `json:"adjustedDepartBy"`
	ExtraBufferMins  int    `json:"extraBufferMins"`
	Reasoning        string `json:"reasoning"`
}

// DayForecast is one entry of a forecast's day map, keyed by day name
// (MON..SUN) in the stored record.
type DayForecast struct {
	ForecastDate   string            `json:"forecastDate"`
	Recommendation DayRecommendation `json:"recommendation"`
	HasWeatherData bool              `json:"hasWeatherData"`
	HasEventData   bool              `json:"hasEventData"`
}

type Forecast struct {
	RouteID     uuid.UUID
	UserID      string
	Days        map[string]DayForecast
	GeneratedAt time.Time
}

// forecastStatus values surfaced to the client.
const (
	forecastStatusActive  = "active"
	forecastStatusPending = "pending"
	forecastStatusEmpty   = "empty"
)

type RouteJSON struct {
	RouteID            string                 `json:"routeId"`
	Title              string                 `json:"title"`
	Origin             Waypoint               `json:"origin"`
	Destination        Waypoint               `json:"destination"`
	Intermediates      []Waypoint             `json:"intermediates,omitempty"`
	TravelMode         string                 `json:"travelMode"`
	StaticDurationMins int                    `json:"staticDurationMins"`
	TrafficDuration    int                    `json:"trafficDurationMins,omitempty"`
	DistanceMeters     int                    `json:"distanceMeters,omitempty"`
	CityKey            string                 `json:"cityKey"`
	UserActive         bool                   `json:"userActive"`
	Geometry           string                 `json:"geometry,omitempty"`
	ArriveBy           string                 `json:"arriveBy,omitempty"`
	Timezone           string                 `json:"timezone,omitempty"`
	DaysOfWeek         []string               `json:"daysOfWeek,omitempty"`
	Forecast           map[string]DayForecast `json:"forecast,omitempty"`
	GeneratedAt        string                 `json:"forecastGeneratedAt,omitempty"`
	ForecastStatus     string                 `json:"forecastStatus"`
	CreatedAt          string                 `json:"createdAt"`
	UpdatedAt          string                 `json:"updatedAt"`
}

type ProfileJSON struct {
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type FetchRoutesResponse struct {
	UserID           string      `json:"userId"`
	Profile          ProfileJSON `json:"profile"`
	RouteCount       int         `json:"routeCount"`
	ActiveRouteCount int         `json:"activeRouteCount"`
	MaxRoutes        int         `json:"maxRoutes"`
	Routes           []RouteJSON `json:"routes"`
}

type UpdateRouteResponse struct {
	RouteID string   `json:"routeId"`
	Updates []string `json:"updates"`
}

type DeleteRouteResponse struct {
	RouteID string `json:"routeId"`
}
