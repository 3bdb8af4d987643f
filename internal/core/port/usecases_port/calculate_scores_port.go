package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"
)

// CalculateLocationScoresPort - единственная точка входа расчета оценок.
// Сырые lat/lon валидируются до любого внешнего запроса.
type CalculateLocationScoresPort interface {
	Execute(ctx context.Context, lat, lon float64) (*domain.LocationScores, error)
}
