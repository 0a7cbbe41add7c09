package domain

import "math"

const earthRadiusKm = 6371

// DistanceKm is the haversine distance between two coordinates.
func DistanceKm(a, b Location) float64 {
	dLat := (b.Lat - a.Lat) * (math.Pi / 180)
	dLng := (b.Lng - a.Lng) * (math.Pi / 180)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*(math.Pi/180))*math.Cos(b.Lat*(math.Pi/180))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// MoveTowards interpolates a point the given fraction of the way from
// start to end.
func MoveTowards(start, end Location, fraction float64) Location {
	return Location{
		Lat: start.Lat + (end.Lat-start.Lat)*fraction,
		Lng: start.Lng + (end.Lng-start.Lng)*fraction,
	}
}

// EtaMinutes estimates delivery time assuming 25 km/h city speed plus
// five minutes for pickup and dropoff. Returns a 15 minute default
// when either coordinate is unknown.
func EtaMinutes(partner, customer *Location) int {
	if partner == nil || customer == nil {
		return 15
	}
	minutes := (DistanceKm(*partner, *customer)/25)*60 + 5
	return int(math.Round(minutes))
}
