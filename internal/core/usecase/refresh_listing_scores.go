package usecase

import (
	"context"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

type RefreshListingScoresUseCase struct {
	storage    port.ListingStoragePort
	calculator usecases_port.CalculateLocationScoresPort
	reporter   port.ScoreReporterPort
}

func NewRefreshListingScoresUseCase(
	storage port.ListingStoragePort,
	calculator usecases_port.CalculateLocationScoresPort,
	reporter port.ScoreReporterPort,
) *RefreshListingScoresUseCase {
	return &RefreshListingScoresUseCase{
		storage:    storage,
		calculator: calculator,
		reporter:   reporter,
	}
}

// Execute пересчитывает оценки локации объявления и записывает результат
// целиком. Событие об обновлении публикуется best-effort: его отказ
// логируется, но запись не откатывает.
func (uc *RefreshListingScoresUseCase) Execute(ctx context.Context, listingID uuid.UUID) (*domain.LocationScores, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "RefreshListingScores",
		"listing_id": listingID.String(),
	})

	ucLogger.Info("Use case started", nil)

	listing, err := uc.storage.GetByID(ctx, listingID)
	if err != nil {
		ucLogger.Error("Failed to load listing", err, nil)
		return nil, err
	}

	if listing.Coordinate == nil {
		ucLogger.Warn("Listing has no coordinates, nothing to score", nil)
		return nil, domain.ErrListingHasNoCoordinates
	}

	scores, err := uc.calculator.Execute(ctx, listing.Coordinate.Latitude, listing.Coordinate.Longitude)
	if err != nil {
		ucLogger.Error("Score calculation failed", err, nil)
		return nil, err
	}

	if err := uc.storage.UpdateScores(ctx, listingID, *scores); err != nil {
		ucLogger.Error("Failed to persist scores", err, nil)
		return nil, err
	}

	if uc.reporter != nil {
		if err := uc.reporter.ReportScoresUpdated(ctx, listingID, *scores); err != nil {
			ucLogger.Warn("Failed to report scores update", port.Fields{"error": err.Error()})
		}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"overall_score": scores.OverallScore,
	})

	return scores, nil
}
