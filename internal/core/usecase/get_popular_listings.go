package usecase

import (
	"context"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"

	"github.com/google/uuid"
)

type GetPopularListingsUseCase struct {
	storage port.ListingStoragePort
}

func NewGetPopularListingsUseCase(storage port.ListingStoragePort) *GetPopularListingsUseCase {
	return &GetPopularListingsUseCase{storage: storage}
}

// Execute возвращает активные объявления в порядке популярности:
// featured, затем просмотры и обращения.
func (uc *GetPopularListingsUseCase) Execute(ctx context.Context, limit int, excludeIDs []uuid.UUID) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetPopularListings",
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	listings, err := uc.storage.FindListings(ctx, port.ListingFilter{
		Statuses:   []string{domain.ListingStatusActive},
		ExcludeIDs: excludeIDs,
	}, port.OrderPopular, limit)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(listings)})
	return listings, nil
}
