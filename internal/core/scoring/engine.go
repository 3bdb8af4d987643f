package scoring

import (
	"context"
	"math"
	"sync"
	"time"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// Константы движка. Радиус поиска фиксирован дизайном, а не конфигурацией:
// все формулы откалиброваны под 2000 м.
const (
	searchRadiusMeters = 2000.0

	// Радиус поиска измерений PM2.5: 10x POI-радиуса, но не больше 50 км.
	maxAirQualityRadiusMeters = 50000.0

	// Дефолтная оценка при отказе внешнего источника.
	defaultSubScore = 50
)

// Engine считает четыре суб-оценки локации и итоговую.
// Не имеет состояния: зависимости передаются явно, экземпляры дешевы
// и взаимозаменяемы (в тестах - с фейковыми портами).
type Engine struct {
	geo port.GeoFeaturesPort
	air port.AirQualityPort
}

// NewEngine - конструктор.
func NewEngine(geo port.GeoFeaturesPort, air port.AirQualityPort) *Engine {
	return &Engine{geo: geo, air: air}
}

// CalculateAll запускает четыре суб-скорера параллельно и сводит итог.
// Суб-скореры независимы и не разделяют изменяемое состояние; отказ одного
// не блокирует остальные (каждый деградирует до своего дефолта сам).
func (e *Engine) CalculateAll(ctx context.Context, center domain.Coordinate) domain.LocationScores {
	var (
		wg sync.WaitGroup

		amenityScore   int
		amenityDetails map[string]domain.AmenityDetail

		envScore   int
		envDetails domain.EnvironmentDetails

		safetyScore   int
		safetyDetails domain.SafetyDetails

		pollutionScore   int
		pollutionDetails domain.PollutionDetails
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		amenityScore, amenityDetails = e.AmenityScore(ctx, center)
	}()
	go func() {
		defer wg.Done()
		envScore, envDetails = e.EnvironmentScore(ctx, center)
	}()
	go func() {
		defer wg.Done()
		safetyScore, safetyDetails = e.SafetyScore(ctx, center)
	}()
	go func() {
		defer wg.Done()
		pollutionScore, pollutionDetails = e.PollutionScore(ctx, center)
	}()
	wg.Wait()

	overall := int(math.Round(
		domain.OverallWeightAmenity*float64(amenityScore) +
			domain.OverallWeightEnvironment*float64(envScore) +
			domain.OverallWeightSafety*float64(safetyScore) +
			domain.OverallWeightPollution*float64(pollutionScore)))

	return domain.LocationScores{
		AmenityScore:     amenityScore,
		EnvironmentScore: envScore,
		SafetyScore:      safetyScore,
		PollutionScore:   pollutionScore,
		OverallScore:     overall,
		Details: domain.ScoreDetails{
			Amenity:     amenityDetails,
			Environment: envDetails,
			Safety:      safetyDetails,
			Pollution:   pollutionDetails,
		},
		CalculatedAt: time.Now().UTC(),
	}
}

// nearestFeature возвращает ближайшую к центру фичу и расстояние до нее.
func nearestFeature(center domain.Coordinate, features []port.GeoFeature) (*port.GeoFeature, float64) {
	var nearest *port.GeoFeature
	minDist := math.Inf(1)
	for i := range features {
		d := DistanceMeters(center, features[i].Coordinate)
		if d < minDist {
			minDist = d
			nearest = &features[i]
		}
	}
	return nearest, minDist
}

func logFromCtx(ctx context.Context, component string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": component})
}
