package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// This file contains helpers for the local-time arithmetic of schedules.
// Schedules store arrive-by as a local wall-clock "HH:MM" plus an IANA zone;
// everything downstream works in UTC, anchored on a forecast date.

// parseClockMinutes parses an "HH:MM" string into minutes after midnight.
func parseClockMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}

// localTimeToUTC converts a local "HH:MM" on the given forecast date in the
// given IANA zone to the equivalent UTC "HH:MM". The conversion is anchored
// on the actual calendar date, so it follows DST transitions correctly.
// An unknown zone falls back to treating the local time as UTC, with a
// warning; a bad zone string should not sink the whole route.
func localTimeToUTC(clock, zone string, forecastDate time.Time, logger *slog.Logger) (string, error) {
	mins, err := parseClockMinutes(clock)
	if err != nil {
		return "", err
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		logger.Warn("unknown timezone, treating local time as UTC", "timezone", zone, "error", err)
		return clock, nil
	}
	local := time.Date(forecastDate.Year(), forecastDate.Month(), forecastDate.Day(), mins/60, mins%60, 0, 0, loc)
	return local.UTC().Format("15:04"), nil
}

var weekdayByName = map[string]time.Weekday{
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
	"SUN": time.Sunday,
}

// nextDateForWeekday returns the next calendar date (UTC midnight) falling on
// the named day, strictly after today. Today's own day name maps seven days
// ahead, since tonight's pipeline forecasts upcoming commutes.
func nextDateForWeekday(dayName string, now time.Time) (time.Time, error) {
	target, ok := weekdayByName[dayName]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown day name %q", dayName)
	}
	today := now.UTC()
	offset := (int(target) - int(today.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset), nil
}

// utcDateOnly truncates a time to UTC midnight of its calendar date.
func utcDateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
