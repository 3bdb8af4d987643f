package scoring

import (
	"context"
	"math"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// Веса environment score: зелень доминирует, близость крупных дорог
// штрафуется, промзона рядом обнуляет свою долю.
const (
	envWeightGreen      = 0.6
	envWeightRoad       = 0.25
	envWeightIndustrial = 0.15

	// Насыщение по числу зеленых зон: 8 и больше - максимум.
	envGreenSaturation = 8.0
)

var environmentFilters = []port.TagFilter{
	{Key: "leisure", Value: "park"},
	{Key: "landuse", Value: "forest"},
	{Key: "natural", Value: "wood"},
	{Key: "leisure", Value: "garden"},
	{Key: "landuse", Value: "industrial"},
	{Key: "industrial", Value: "yes"},
	{Key: "highway", Value: "primary|secondary|tertiary|trunk", Regex: true},
}

// EnvironmentScore оценивает экологичность окружения одним комбинированным
// запросом: зеленые зоны, промышленные участки и крупные дороги
// классифицируются по тегам уже на нашей стороне.
//
// score = round(100 * (0.6*min(1, green/8) + 0.25*roadNorm + 0.15*industrialNorm)),
// где roadNorm = 1 без дорог в радиусе, иначе min(1, d/R);
// industrialNorm = 0 при наличии промзоны, иначе 1.
//
// При отказе источника возвращается нейтральный дефолт с пустой детализацией.
func (e *Engine) EnvironmentScore(ctx context.Context, center domain.Coordinate) (int, domain.EnvironmentDetails) {
	logger := logFromCtx(ctx, "environment_scorer")

	features, err := e.geo.FeaturesAround(ctx, center, searchRadiusMeters, environmentFilters)
	if err != nil {
		logger.Warn("Environment query failed, falling back to neutral score", port.Fields{
			"error": err.Error(),
		})
		return defaultSubScore, domain.EnvironmentDetails{}
	}

	var details domain.EnvironmentDetails
	nearestRoad := math.Inf(1)

	for i := range features {
		tags := features[i].Tags
		switch {
		case isGreenFeature(tags):
			details.GreenFeatures++
		case isIndustrialFeature(tags):
			details.IndustrialFeatures++
		case isMajorRoad(tags):
			if d := DistanceMeters(center, features[i].Coordinate); d < nearestRoad {
				nearestRoad = d
			}
		}
	}

	greenNorm := math.Min(1, float64(details.GreenFeatures)/envGreenSaturation)

	roadNorm := 1.0
	if !math.IsInf(nearestRoad, 1) {
		d := nearestRoad
		details.NearestMajorRoadMeters = &d
		roadNorm = math.Min(1, nearestRoad/searchRadiusMeters)
	}

	industrialNorm := 1.0
	if details.IndustrialFeatures > 0 {
		industrialNorm = 0
	}

	score := int(math.Round(100 * (envWeightGreen*greenNorm +
		envWeightRoad*roadNorm +
		envWeightIndustrial*industrialNorm)))

	logger.Debug("Environment score calculated", port.Fields{"score": score})
	return score, details
}

func isGreenFeature(tags map[string]string) bool {
	return tags["leisure"] == "park" ||
		tags["landuse"] == "forest" ||
		tags["natural"] == "wood" ||
		tags["leisure"] == "garden"
}

func isIndustrialFeature(tags map[string]string) bool {
	return tags["landuse"] == "industrial" || tags["industrial"] == "yes"
}

func isMajorRoad(tags map[string]string) bool {
	switch tags["highway"] {
	case "primary", "secondary", "tertiary", "trunk":
		return true
	}
	return false
}
