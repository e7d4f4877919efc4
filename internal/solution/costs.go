package solution

import (
	"math"

	"vrpsolve/internal/model"
)

// Costs provides distance (meters) and duration (seconds) lookups between
// locations for a routing profile. Implementations are supplied by the
// routing-data collaborator; the solver only consumes the interface.
type Costs interface {
	Distance(profile string, from, to model.Location) float64
	Duration(profile string, from, to model.Location) float64
}

// HaversineCosts derives durations from great-circle distance and a flat
// travel speed. It is the default when no routing matrix is supplied.
type HaversineCosts struct {
	SpeedKph float64
}

func NewHaversineCosts(speedKph float64) HaversineCosts {
	if speedKph <= 0 {
		speedKph = 50
	}
	return HaversineCosts{SpeedKph: speedKph}
}

func (h HaversineCosts) Distance(_ string, from, to model.Location) float64 {
	return haversine(from.Lat, from.Lng, to.Lat, to.Lng)
}

func (h HaversineCosts) Duration(profile string, from, to model.Location) float64 {
	return h.Distance(profile, from, to) / (h.SpeedKph / 3.6)
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
