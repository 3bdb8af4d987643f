package usecase

import (
	"context"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// Порог, с которого локация считается отличной.
const highScoreThreshold = 75

type GetHighLocationScoreListingsUseCase struct {
	storage port.ListingStoragePort
}

func NewGetHighLocationScoreListingsUseCase(storage port.ListingStoragePort) *GetHighLocationScoreListingsUseCase {
	return &GetHighLocationScoreListingsUseCase{storage: storage}
}

// Execute возвращает активные объявления с итоговой оценкой локации от 75,
// лучшие первыми. Объявления без рассчитанных оценок не попадают в выборку.
func (uc *GetHighLocationScoreListingsUseCase) Execute(ctx context.Context, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetHighLocationScoreListings",
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	minScore := highScoreThreshold
	listings, err := uc.storage.FindListings(ctx, port.ListingFilter{
		Statuses:        []string{domain.ListingStatusActive},
		MinOverallScore: &minScore,
	}, port.OrderByOverallScore, limit)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(listings)})
	return listings, nil
}
