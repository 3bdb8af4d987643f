package scoring

import (
	"context"
	"math"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// Шкала PM2.5: 0 мкг/м3 дает 100 баллов, 250 и выше - 0.
const pm25Ceiling = 250.0

// PollutionScore оценивает чистоту воздуха по ближайшему измерению PM2.5.
// Станций мониторинга мало, поэтому радиус поиска расширен до десяти
// POI-радиусов, но не больше жесткого потолка.
//
// Без измерения в радиусе оценка выводится от обратного environment score
// (много зелени - скорее всего чистый воздух) и помечается как "estimated".
// При полном отказе источников возвращается нейтральный дефолт "default".
func (e *Engine) PollutionScore(ctx context.Context, center domain.Coordinate) (int, domain.PollutionDetails) {
	logger := logFromCtx(ctx, "pollution_scorer")

	radius := math.Min(maxAirQualityRadiusMeters, 10*searchRadiusMeters)

	pm25, err := e.air.NearestPM25(ctx, center, radius)
	if err != nil {
		logger.Warn("Air quality query failed, falling back to neutral score", port.Fields{
			"error": err.Error(),
		})
		return defaultSubScore, domain.PollutionDetails{DataSource: domain.PollutionSourceDefault}
	}

	if pm25 != nil {
		v := math.Min(math.Max(*pm25, 0), pm25Ceiling)
		score := int(math.Round(100 * (1 - v/pm25Ceiling)))
		logger.Debug("Pollution score from measurement", port.Fields{
			"pm25": *pm25, "score": score,
		})
		return score, domain.PollutionDetails{PM25: pm25, DataSource: domain.PollutionSourceMeasured}
	}

	// Измерений нет: считаем environment score заново и берем обратную величину.
	envScore, _ := e.EnvironmentScore(ctx, center)
	score := 100 - envScore
	logger.Debug("Pollution score estimated from environment", port.Fields{"score": score})
	return score, domain.PollutionDetails{DataSource: domain.PollutionSourceEstimated}
}
