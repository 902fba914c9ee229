package main

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// This file contains request validation for the route lifecycle API. Every
// field is checked at the boundary; nothing invalid reaches the store.

const (
	maxTitleLength = 48
	maxRoutes      = 20
)

var validDays = map[string]bool{
	"MON": true, "TUE": true, "WED": true, "THU": true,
	"FRI": true, "SAT": true, "SUN": true,
}

var validTravelModes = map[string]bool{
	"DRIVE": true, "TRANSIT": true, "WALK": true, "TWO_WHEELER": true, "BICYCLE": true,
}

var (
	arriveByPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	timezonePattern = regexp.MustCompile(`^[A-Za-z_]+(/[A-Za-z0-9_+\-]+)+$|^UTC$`)
)

// durationSeconds accepts a duration either as an integer number of seconds
// or as a "<n>s" string, the two encodings upstream routing providers use.
type durationSeconds int

func (d *durationSeconds) UnmarshalJSON(data []byte) error {
	var asInt int
	if err := json.Unmarshal(data, &asInt); err == nil {
		*d = durationSeconds(asInt)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return fmt.Errorf("duration must be an integer or a \"<n>s\" string")
	}
	trimmed := strings.TrimSuffix(asString, "s")
	if trimmed == asString {
		return fmt.Errorf("duration string %q must end in 's'", asString)
	}
	seconds, err := strconv.Atoi(trimmed)
	if err != nil {
		return fmt.Errorf("invalid duration string %q", asString)
	}
	*d = durationSeconds(seconds)
	return nil
}

// Minutes rounds the duration up to whole minutes.
func (d durationSeconds) Minutes() int {
	return (int(d) + 59) / 60
}

type createRouteRequest struct {
	Title           string          `json:"title"`
	Origin          *Waypoint       `json:"origin"`
	Destination     *Waypoint       `json:"destination"`
	Intermediates   []Waypoint      `json:"intermediates"`
	TravelMode      string          `json:"travelMode"`
	StaticDuration  durationSeconds `json:"staticDuration"`
	TrafficDuration durationSeconds `json:"trafficDuration"`
	DistanceMeters  int             `json:"distanceMeters"`
	City            string          `json:"city"`
	CountryCode     string          `json:"countryCode"`
	Geometry        string          `json:"geometry"`
	ArriveBy        string          `json:"arriveBy"`
	Timezone        string          `json:"timezone"`
	DaysOfWeek      []string        `json:"daysOfWeek"`
}

// updateRouteRequest carries a partial update; nil pointers mean "unchanged".
type updateRouteRequest struct {
	RouteID         string           `json:"routeId"`
	Title           *string          `json:"title"`
	Origin          *Waypoint        `json:"origin"`
	Destination     *Waypoint        `json:"destination"`
	Intermediates   *[]Waypoint      `json:"intermediates"`
	TravelMode      *string          `json:"travelMode"`
	StaticDuration  *durationSeconds `json:"staticDuration"`
	TrafficDuration *durationSeconds `json:"trafficDuration"`
	DistanceMeters  *int             `json:"distanceMeters"`
	UserActive      *bool            `json:"userActive"`
	Geometry        *string          `json:"geometry"`
	ArriveBy        *string          `json:"arriveBy"`
	Timezone        *string          `json:"timezone"`
	DaysOfWeek      *[]string        `json:"daysOfWeek"`
}

func validateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func validateWaypoint(name string, wp Waypoint) error {
	lat := wp.Location.LatLng.Latitude
	lng := wp.Location.LatLng.Longitude
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%s latitude %v out of range", name, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%s longitude %v out of range", name, lng)
	}
	if wp.Label == "" {
		return fmt.Errorf("%s label is required", name)
	}
	return nil
}

func validateDaysOfWeek(days []string) error {
	seen := make(map[string]bool, len(days))
	for _, day := range days {
		if !validDays[day] {
			return fmt.Errorf("invalid day of week %q", day)
		}
		if seen[day] {
			return fmt.Errorf("duplicate day of week %q", day)
		}
		seen[day] = true
	}
	return nil
}

func validateTravelMode(mode string) error {
	if !validTravelModes[mode] {
		return fmt.Errorf("invalid travel mode %q", mode)
	}
	return nil
}

func validateArriveBy(arriveBy string) error {
	if !arriveByPattern.MatchString(arriveBy) {
		return fmt.Errorf("arriveBy must match HH:MM, got %q", arriveBy)
	}
	return nil
}

func validateTimezone(zone string) error {
	if !timezonePattern.MatchString(zone) {
		return fmt.Errorf("timezone %q is not a valid IANA zone name", zone)
	}
	return nil
}

// validate checks every field of a create request.
func (req *createRouteRequest) validate() error {
	if err := validateTitle(req.Title); err != nil {
		return err
	}
	if req.Origin == nil {
		return fmt.Errorf("origin is required")
	}
	if err := validateWaypoint("origin", *req.Origin); err != nil {
		return err
	}
	if req.Destination == nil {
		return fmt.Errorf("destination is required")
	}
	if err := validateWaypoint("destination", *req.Destination); err != nil {
		return err
	}
	for i, wp := range req.Intermediates {
		if err := validateWaypoint(fmt.Sprintf("intermediate %d", i), wp); err != nil {
			return err
		}
	}
	if err := validateTravelMode(req.TravelMode); err != nil {
		return err
	}
	if req.StaticDuration <= 0 {
		return fmt.Errorf("staticDuration is required and must be positive")
	}
	if req.City == "" {
		return fmt.Errorf("city is required")
	}
	if len(req.CountryCode) != 2 {
		return fmt.Errorf("countryCode must be a 2-letter ISO code")
	}
	if err := validateArriveBy(req.ArriveBy); err != nil {
		return err
	}
	if err := validateTimezone(req.Timezone); err != nil {
		return err
	}
	return validateDaysOfWeek(req.DaysOfWeek)
}

// validate checks every provided field of an update request and reports
// whether it touches any route fields or any schedule fields.
func (req *updateRouteRequest) validate() (hasRouteFields, hasScheduleFields bool, err error) {
	if req.RouteID == "" {
		return false, false, fmt.Errorf("routeId is required")
	}
	if req.Title != nil {
		hasRouteFields = true
		if err := validateTitle(*req.Title); err != nil {
			return false, false, err
		}
	}
	if req.Origin != nil {
		hasRouteFields = true
		if err := validateWaypoint("origin", *req.Origin); err != nil {
			return false, false, err
		}
	}
	if req.Destination != nil {
		hasRouteFields = true
		if err := validateWaypoint("destination", *req.Destination); err != nil {
			return false, false, err
		}
	}
	if req.Intermediates != nil {
		hasRouteFields = true
		for i, wp := range *req.Intermediates {
			if err := validateWaypoint(fmt.Sprintf("intermediate %d", i), wp); err != nil {
				return false, false, err
			}
		}
	}
	if req.TravelMode != nil {
		hasRouteFields = true
		if err := validateTravelMode(*req.TravelMode); err != nil {
			return false, false, err
		}
	}
	if req.StaticDuration != nil {
		hasRouteFields = true
		if *req.StaticDuration <= 0 {
			return false, false, fmt.Errorf("staticDuration must be positive")
		}
	}
	if req.TrafficDuration != nil || req.DistanceMeters != nil || req.UserActive != nil || req.Geometry != nil {
		hasRouteFields = true
	}
	if req.ArriveBy != nil {
		hasScheduleFields = true
		if err := validateArriveBy(*req.ArriveBy); err != nil {
			return false, false, err
		}
	}
	if req.Timezone != nil {
		hasScheduleFields = true
		if err := validateTimezone(*req.Timezone); err != nil {
			return false, false, err
		}
	}
	if req.DaysOfWeek != nil {
		hasScheduleFields = true
		if err := validateDaysOfWeek(*req.DaysOfWeek); err != nil {
			return false, false, err
		}
	}
	if !hasRouteFields && !hasScheduleFields {
		return false, false, fmt.Errorf("no updatable fields provided")
	}
	return hasRouteFields, hasScheduleFields, nil
}

// invalidatesForecast reports whether the update touches a field whose change
// would alter the recommendation output. Title, geometry, distance and the
// display flag do not.
func (req *updateRouteRequest) invalidatesForecast() bool {
	return req.Origin != nil || req.Destination != nil || req.Intermediates != nil ||
		req.TravelMode != nil || req.StaticDuration != nil || req.TrafficDuration != nil ||
		req.ArriveBy != nil || req.Timezone != nil || req.DaysOfWeek != nil
}
