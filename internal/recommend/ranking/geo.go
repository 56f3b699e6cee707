package ranking

import (
	"math"

	"github.com/yungbote/trit-recommender/internal/domain/recommend"
)

const earthRadiusKm = 6371.0

// MaxLocationDistanceKm caps standalone location picks.
const MaxLocationDistanceKm = 80.0

// HaversineKm is the great-circle distance between two points in degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// NearestLocation scans locs linearly and returns the first location with
// the strictly smallest distance. maxKm > 0 excludes anything farther;
// maxKm <= 0 means uncapped.
func NearestLocation(locs []recommend.LocationItem, lat, lon, maxKm float64) (recommend.LocationItem, float64, bool) {
	var (
		best    recommend.LocationItem
		bestKm  = math.Inf(1)
		matched bool
	)
	for _, loc := range locs {
		d := HaversineKm(lat, lon, loc.Latitude, loc.Longitude)
		if maxKm > 0 && d > maxKm {
			continue
		}
		if d < bestKm {
			best, bestKm, matched = loc, d, true
		}
	}
	if !matched {
		return recommend.LocationItem{}, 0, false
	}
	return best, bestKm, true
}
