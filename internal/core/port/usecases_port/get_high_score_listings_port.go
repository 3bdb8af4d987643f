package usecases_port

import (
	"context"

	"recommendation-service/internal/core/domain"
)

type GetHighLocationScoreListingsPort interface {
	Execute(ctx context.Context, limit int) ([]domain.Listing, error)
}
