package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

type GetSimilarToFavoritesPort interface {
	Execute(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Listing, error)
}
