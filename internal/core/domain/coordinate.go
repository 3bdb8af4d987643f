package domain

import (
	"fmt"
	"math"
)

// Coordinate - пара широта/долгота в десятичных градусах.
// Создается только через NewCoordinate, поэтому валидность гарантирована по построению.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// NewCoordinate валидирует диапазоны и возвращает ErrInvalidCoordinate,
// если вход не является конечным числом или выходит за пределы.
// Никакие внешние запросы не должны выполняться до этой проверки.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return Coordinate{}, fmt.Errorf("%w: not a finite number (lat=%v, lon=%v)", ErrInvalidCoordinate, lat, lon)
	}
	if lat < -90 || lat > 90 {
		return Coordinate{}, fmt.Errorf("%w: latitude %v is out of range [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if lon < -180 || lon > 180 {
		return Coordinate{}, fmt.Errorf("%w: longitude %v is out of range [-180, 180]", ErrInvalidCoordinate, lon)
	}
	return Coordinate{Latitude: lat, Longitude: lon}, nil
}
