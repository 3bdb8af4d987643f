package usecase

import (
	"context"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/port"

	"github.com/google/uuid"
)

type UpdateUserPreferencesUseCase struct {
	storage port.ListingStoragePort
	prefs   port.UserPreferencesPort
}

func NewUpdateUserPreferencesUseCase(
	storage port.ListingStoragePort,
	prefs port.UserPreferencesPort,
) *UpdateUserPreferencesUseCase {
	return &UpdateUserPreferencesUseCase{storage: storage, prefs: prefs}
}

// Execute расширяет профиль предпочтений пользователя по объявлению,
// добавленному в избранное. Типы и города накапливаются как множества,
// числовые границы заполняются только один раз. Профиль сохраняется
// целиком и только если действительно изменился.
func (uc *UpdateUserPreferencesUseCase) Execute(ctx context.Context, userID, listingID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "UpdateUserPreferences",
		"user_id":    userID.String(),
		"listing_id": listingID.String(),
	})

	ucLogger.Info("Use case started", nil)

	listing, err := uc.storage.GetByID(ctx, listingID)
	if err != nil {
		ucLogger.Error("Failed to load listing", err, nil)
		return err
	}

	profile, err := uc.prefs.GetProfile(ctx, userID)
	if err != nil {
		ucLogger.Error("Failed to load preference profile", err, nil)
		return err
	}

	if !profile.ApplyListing(*listing) {
		ucLogger.Info("Profile unchanged, nothing to save", nil)
		return nil
	}

	if err := uc.prefs.SaveProfile(ctx, profile); err != nil {
		ucLogger.Error("Failed to save preference profile", err, nil)
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
