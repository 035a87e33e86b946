// Package geo locates the user relative to registered store geofences.
package geo

import (
	"math"
	"slices"
	"strings"
)

// earthRadiusMeters is the spherical-earth approximation radius.
const earthRadiusMeters = 6371000.0

// Place is a circular geofence around a store's coordinates.
type Place struct {
	ID        string
	Latitude  float64
	Longitude float64
	Radius    float64
}

// Distance returns the great-circle distance between two coordinates in
// meters, computed with the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// ClosestStore returns the id of the nearest place whose radius contains
// the position, or "" when no geofence contains it. Candidates are
// scanned in ascending id order so equal distances resolve
// deterministically.
func ClosestStore(lat, lon float64, places []Place) string {
	sorted := slices.Clone(places)
	slices.SortStableFunc(sorted, func(a, b Place) int {
		return strings.Compare(a.ID, b.ID)
	})

	closest := ""
	minDistance := math.Inf(1)

	for _, place := range sorted {
		d := Distance(lat, lon, place.Latitude, place.Longitude)

		if d <= place.Radius && d < minDistance {
			minDistance = d
			closest = place.ID
		}
	}

	return closest
}
