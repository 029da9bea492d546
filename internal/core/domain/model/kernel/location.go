package kernel

import (
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Geographic coordinate bounds in decimal degrees (WGS 84).
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// ErrLocationIsNotConstructed is returned when using an improperly initialized Location.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable geographic point in decimal degrees. It is the
// coordinate value object behind vendor pickup points, customer drop points
// and agent positions, and it owns the great-circle distance computation the
// dispatch radius and the delivery fee bands are based on.
type Location struct {
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location from latitude and longitude in decimal
// degrees. Coordinates outside the WGS 84 bounds are rejected.
func NewLocation(lat, lng float64) (Location, error) {
	if lat < MinLatitude || lat > MaxLatitude || math.IsNaN(lat) {
		return Location{}, errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}

	if lng < MinLongitude || lng > MaxLongitude || math.IsNaN(lng) {
		return Location{}, errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}

	return Location{lat: lat, lng: lng, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the Location was created through NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lng returns the longitude in decimal degrees.
func (l Location) Lng() float64 {
	return l.lng
}

// IsEqual compares two locations by their coordinates.
func (l Location) IsEqual(other Location) bool {
	return l.lat == other.lat && l.lng == other.lng
}

// DistanceKmTo returns the great-circle distance to other in kilometers,
// computed with the haversine formula. Accurate to well under a percent at
// city scale, which is all the dispatch radius needs.
func (l Location) DistanceKmTo(other Location) float64 {
	lat1 := degreesToRadians(l.lat)
	lat2 := degreesToRadians(other.lat)
	deltaLat := degreesToRadians(other.lat - l.lat)
	deltaLng := degreesToRadians(other.lng - l.lng)

	sinLat := math.Sin(deltaLat / 2)
	sinLng := math.Sin(deltaLng / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
