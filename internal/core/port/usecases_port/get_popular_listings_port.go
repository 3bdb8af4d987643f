package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetPopularListingsPort interface {
	Execute(ctx context.Context, limit int, excludeIDs []uuid.UUID) ([]domain.Listing, error)
}
