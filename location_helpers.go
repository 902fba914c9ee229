package main

import "math"

// This file contains helper functions for geographic calculations.

const (
	earthRadiusKm = 6371.0

	// corridorRadiusKm is how far an event may be from the route's anchor
	// points and still count as "near the route".
	corridorRadiusKm = 2.0
)

// haversineKm returns the great-circle distance in kilometers between two
// coordinate pairs.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// midpoint returns the arithmetic midpoint of two coordinate pairs. Commute
// routes are short enough that the flat approximation is fine.
func midpoint(lat1, lng1, lat2, lng2 float64) (float64, float64) {
	return (lat1 + lat2) / 2, (lng1 + lng2) / 2
}

// inCorridor reports whether a point lies within corridorRadiusKm of the
// route's origin, destination, or their midpoint.
func inCorridor(route Route, lat, lng float64) bool {
	o := route.Origin.Location.LatLng
	d := route.Destination.Location.LatLng
	if haversineKm(lat, lng, o.Latitude, o.Longitude) <= corridorRadiusKm {
		return true
	}
	if haversineKm(lat, lng, d.Latitude, d.Longitude) <= corridorRadiusKm {
		return true
	}
	midLat, midLng := midpoint(o.Latitude, o.Longitude, d.Latitude, d.Longitude)
	return haversineKm(lat, lng, midLat, midLng) <= corridorRadiusKm
}
