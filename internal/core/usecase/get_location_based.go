package usecase

import (
	"context"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

type GetLocationBasedRecommendationsUseCase struct {
	storage port.ListingStoragePort
}

func NewGetLocationBasedRecommendationsUseCase(storage port.ListingStoragePort) *GetLocationBasedRecommendationsUseCase {
	return &GetLocationBasedRecommendationsUseCase{storage: storage}
}

// Execute возвращает активные объявления в указанном городе, лучшие
// локации первыми. Город ищется по подстроке без учета регистра.
func (uc *GetLocationBasedRecommendationsUseCase) Execute(ctx context.Context, city string, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetLocationBasedRecommendations",
		"city":     city,
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	listings, err := uc.storage.FindListings(ctx, port.ListingFilter{
		Statuses:    []string{domain.ListingStatusActive},
		CityPattern: city,
	}, port.OrderByOverallScore, limit)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(listings)})
	return listings, nil
}
