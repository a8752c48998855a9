// Package geo provides great-circle distance, bounding boxes and coordinate
// validation for listing search.
package geo

import (
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Search radius bounds, in kilometres.
const (
	MinRadiusKm = 0.1
	MaxRadiusKm = 300.0
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// DistanceKm returns the Haversine distance between two points in kilometres.
func DistanceKm(a, b Point) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng) / 1000
}

// ValidLatitude reports whether lat is in [-90, 90].
func ValidLatitude(lat float64) bool { return lat >= -90 && lat <= 90 }

// ValidLongitude reports whether lng is in [-180, 180].
func ValidLongitude(lng float64) bool { return lng >= -180 && lng <= 180 }

// ValidRadiusKm reports whether r is within the supported search radius.
func ValidRadiusKm(r float64) bool { return r >= MinRadiusKm && r <= MaxRadiusKm }

// BBox is an axis-aligned box in degrees.
type BBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// ParseBBox parses "minLng,minLat,maxLng,maxLat". The second return value is
// false for anything that is not exactly four finite numbers.
func ParseBBox(raw string) (BBox, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return BBox{}, false
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return BBox{}, false
		}
		vals[i] = v
	}
	return BBox{MinLng: vals[0], MinLat: vals[1], MaxLng: vals[2], MaxLat: vals[3]}, true
}

// Contains reports whether p lies inside the box, edges included.
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}
