package scoring

import (
	"math"

	"recommendation-service/internal/core/domain"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters - расстояние по дуге большого круга (формула гаверсинусов).
// Чистая функция; на невалидных числах распространяет NaN - валидация
// координат лежит на вызывающем.
func DistanceMeters(a, b domain.Coordinate) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Latitude - a.Latitude)
	dLon := toRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Latitude))*math.Cos(toRad(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
