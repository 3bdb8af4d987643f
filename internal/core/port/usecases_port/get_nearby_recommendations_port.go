package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetNearbyRecommendationsPort interface {
	Execute(ctx context.Context, userID uuid.UUID, radiusKm float64, limit int) ([]domain.RecommendationCandidate, error)
}
