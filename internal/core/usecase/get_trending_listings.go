package usecase

import (
	"context"
	"time"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// Окно "свежести" для трендовых объявлений.
const trendingWindow = 7 * 24 * time.Hour

type GetTrendingListingsUseCase struct {
	storage port.ListingStoragePort
}

func NewGetTrendingListingsUseCase(storage port.ListingStoragePort) *GetTrendingListingsUseCase {
	return &GetTrendingListingsUseCase{storage: storage}
}

// Execute возвращает активные объявления, созданные за последнюю неделю,
// в порядке убывания просмотров и обращений.
func (uc *GetTrendingListingsUseCase) Execute(ctx context.Context, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetTrendingListings",
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	cutoff := time.Now().UTC().Add(-trendingWindow)
	listings, err := uc.storage.FindListings(ctx, port.ListingFilter{
		Statuses:     []string{domain.ListingStatusActive},
		CreatedAfter: &cutoff,
	}, port.OrderTrending, limit)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(listings)})
	return listings, nil
}
