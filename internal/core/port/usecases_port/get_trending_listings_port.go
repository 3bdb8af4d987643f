package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"
)

type GetTrendingListingsPort interface {
	Execute(ctx context.Context, limit int) ([]domain.Listing, error)
}
