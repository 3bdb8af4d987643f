package scoring

import (
	"context"
	"math"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// Веса safety score. Базовый уровень 0.15*0.5 отражает отсутствие
// реальных данных о преступности: без них оценка не должна падать до нуля.
const (
	safetyWeightPoliceProximity = 0.4
	safetyWeightPoliceCount     = 0.2
	safetyWeightCCTV            = 0.15
	safetyWeightBaseline        = 0.15
	safetyWeightNightlife       = 0.1

	safetyBaselineValue = 0.5

	safetyPoliceSaturation    = 3.0
	safetyCCTVSaturation      = 5.0
	safetyNightlifeSaturation = 5.0
)

var safetyFilters = []port.TagFilter{
	{Key: "amenity", Value: "police"},
	{Key: "man_made", Value: "surveillance"},
	{Key: "surveillance", Value: "camera"},
	{Key: "amenity", Value: "bar|nightclub|pub", Regex: true},
	{Key: "shop", Value: "alcohol"},
}

// SafetyScore оценивает безопасность по косвенным сигналам: близость и
// число полицейских участков, камеры наблюдения, плотность ночных заведений.
//
//	score = round(100 * clamp01(0.4*policeProx + 0.2*min(1, police/3)
//	  + 0.15*min(1, cctv/5) + 0.15*0.5 - 0.1*min(1, nightlife/5)))
//
// где policeProx = 0 без участков, иначе 1 - min(d, R)/R.
//
// При отказе источника возвращается нейтральный дефолт.
func (e *Engine) SafetyScore(ctx context.Context, center domain.Coordinate) (int, domain.SafetyDetails) {
	logger := logFromCtx(ctx, "safety_scorer")

	features, err := e.geo.FeaturesAround(ctx, center, searchRadiusMeters, safetyFilters)
	if err != nil {
		logger.Warn("Safety query failed, falling back to neutral score", port.Fields{
			"error": err.Error(),
		})
		return defaultSubScore, domain.SafetyDetails{}
	}

	var details domain.SafetyDetails
	nearestPolice := math.Inf(1)

	for i := range features {
		tags := features[i].Tags
		switch {
		case tags["amenity"] == "police":
			details.PoliceStations++
			if d := DistanceMeters(center, features[i].Coordinate); d < nearestPolice {
				nearestPolice = d
			}
		case isSurveillanceCamera(tags):
			details.CCTVCameras++
		case isNightlifeSpot(tags):
			details.NightlifeSpots++
		}
	}

	policeProximity := 0.0
	if !math.IsInf(nearestPolice, 1) {
		d := nearestPolice
		details.NearestPoliceMeters = &d
		policeProximity = 1 - math.Min(nearestPolice, searchRadiusMeters)/searchRadiusMeters
	}

	raw := safetyWeightPoliceProximity*policeProximity +
		safetyWeightPoliceCount*math.Min(1, float64(details.PoliceStations)/safetyPoliceSaturation) +
		safetyWeightCCTV*math.Min(1, float64(details.CCTVCameras)/safetyCCTVSaturation) +
		safetyWeightBaseline*safetyBaselineValue -
		safetyWeightNightlife*math.Min(1, float64(details.NightlifeSpots)/safetyNightlifeSaturation)

	score := int(math.Round(100 * clamp01(raw)))

	logger.Debug("Safety score calculated", port.Fields{"score": score})
	return score, details
}

func isSurveillanceCamera(tags map[string]string) bool {
	return tags["man_made"] == "surveillance" || tags["surveillance"] == "camera"
}

func isNightlifeSpot(tags map[string]string) bool {
	switch tags["amenity"] {
	case "bar", "nightclub", "pub":
		return true
	}
	return tags["shop"] == "alcohol"
}
