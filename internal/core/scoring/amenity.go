package scoring

import (
	"context"
	"math"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// Тег-фильтры источника геоданных по каждой категории из
// domain.AmenityCategoryKeys.
var amenityFilters = map[string]port.TagFilter{
	"hospital": {Key: "amenity", Value: "hospital"},
	"school":   {Key: "amenity", Value: "school"},
	"college":  {Key: "amenity", Value: "college"},
	"mall":     {Key: "shop", Value: "mall"},
	"pharmacy": {Key: "amenity", Value: "pharmacy"},
	"police":   {Key: "amenity", Value: "police"},
	"bus_stop": {Key: "highway", Value: "bus_stop"},
}

// AmenityScore: по каждой категории ищется ближайший объект в радиусе,
// его близость дает вклад weight * (1 - min(d, R)/R), где weight = 100/N.
//
// Категории без найденных объектов дают нулевой вклад, но остаются
// в знаменателе: локации в регионах с бедными геоданными оцениваются ниже.
// Это сознательно сохраненное поведение, не усреднение по найденным.
//
// Ошибка запроса по одной категории превращает ее в "не найдено" -
// вызов в целом никогда не падает.
func (e *Engine) AmenityScore(ctx context.Context, center domain.Coordinate) (int, map[string]domain.AmenityDetail) {
	logger := logFromCtx(ctx, "amenity_scorer")

	details := make(map[string]domain.AmenityDetail, len(domain.AmenityCategoryKeys))
	weight := 100.0 / float64(len(domain.AmenityCategoryKeys))
	total := 0.0

	for _, key := range domain.AmenityCategoryKeys {
		features, err := e.geo.FeaturesAround(ctx, center, searchRadiusMeters, []port.TagFilter{amenityFilters[key]})
		if err != nil {
			logger.Warn("Amenity category query failed, counted as not found", port.Fields{
				"category": key, "error": err.Error(),
			})
			details[key] = domain.AmenityDetail{Found: false}
			continue
		}

		nearest, dist := nearestFeature(center, features)
		if nearest == nil {
			details[key] = domain.AmenityDetail{Found: false}
			continue
		}

		d := dist
		details[key] = domain.AmenityDetail{Found: true, DistanceMeters: &d}

		ratio := math.Max(0, 1-math.Min(dist, searchRadiusMeters)/searchRadiusMeters)
		total += weight * ratio
	}

	score := int(math.Round(total))
	logger.Debug("Amenity score calculated", port.Fields{"score": score})
	return score, details
}
