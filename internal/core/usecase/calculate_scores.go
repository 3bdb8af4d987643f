package usecase

import (
	"context"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/scoring"
)

type CalculateLocationScoresUseCase struct {
	engine *scoring.Engine
}

func NewCalculateLocationScoresUseCase(engine *scoring.Engine) *CalculateLocationScoresUseCase {
	return &CalculateLocationScoresUseCase{engine: engine}
}

// Execute валидирует координату и запускает полный расчет оценок.
// Невалидная координата отсекается до единого внешнего запроса.
func (uc *CalculateLocationScoresUseCase) Execute(ctx context.Context, lat, lon float64) (*domain.LocationScores, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "CalculateLocationScores",
		"lat":      lat,
		"lon":      lon,
	})

	ucLogger.Info("Use case started", nil)

	center, err := domain.NewCoordinate(lat, lon)
	if err != nil {
		ucLogger.Warn("Coordinate validation failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	scores := uc.engine.CalculateAll(ctx, center)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"overall_score": scores.OverallScore,
	})

	return &scores, nil
}
