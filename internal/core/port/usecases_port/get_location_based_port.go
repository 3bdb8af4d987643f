package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"
)

type GetLocationBasedRecommendationsPort interface {
	Execute(ctx context.Context, city string, limit int) ([]domain.Listing, error)
}
