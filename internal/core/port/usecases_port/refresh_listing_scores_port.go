package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

// RefreshListingScoresPort пересчитывает оценки объявления и сохраняет их.
type RefreshListingScoresPort interface {
	Execute(ctx context.Context, listingID uuid.UUID) (*domain.LocationScores, error)
}
