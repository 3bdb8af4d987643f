package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

// GetBuyerRecommendationsPort - смешанные рекомендации для покупателя.
type GetBuyerRecommendationsPort interface {
	Execute(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RecommendationCandidate, error)
}
