// Package locate assigns address points to their nearest building footprint
// by great-circle distance between the point and each building centroid.
package locate

import (
	"math"

	"github.com/mapgrind/addresser/internal/geodata"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Nearest returns the building whose centroid is closest to (lat, lng), or
// nil when the view is empty. Equal distances keep the first building in
// iteration order. The scan is linear; per-tile building counts are bounded
// by geographic density, so this stays cheap at the scales this tool runs.
func Nearest(lat, lng float64, buildings []geodata.Building) *geodata.Building {
	var nearest *geodata.Building
	best := math.Inf(1)

	for i := range buildings {
		d := haversineKm(lat, lng, buildings[i].Lat, buildings[i].Lng)
		if d < best {
			best = d
			nearest = &buildings[i]
		}
	}
	return nearest
}

// haversineKm returns the great-circle distance between two points in km.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
