package geo

import (
	"math"

	"github.com/example/tour-matching/internal/models"
)

// DegreeDistance returns the planar Euclidean distance between two points in
// raw decimal-degree space:
//
//	sqrt((lat1-lat2)^2 + (lng1-lng2)^2)
//
// This is intentionally NOT great-circle distance. Dispatch is short-range and
// the booking flow has always ranked drivers on coordinate deltas; switching
// to haversine would change selection outcomes near the margin. Known
// limitation: the approximation degrades at high latitudes and across long
// distances.
func DegreeDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := lat1 - lat2
	dLng := lng1 - lng2
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// DriverDistance ranks a driver against a pickup point. Drivers missing either
// coordinate rank at +Inf so they are only ever selected if nothing better
// exists, and the caller rejects an infinite winner outright.
func DriverDistance(d *models.Driver, pickupLat, pickupLng float64) float64 {
	if !d.HasLocation() {
		return math.Inf(1)
	}
	return DegreeDistance(*d.LocationLat, *d.LocationLng, pickupLat, pickupLng)
}
