package usecase

import (
	"context"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"

	"github.com/google/uuid"
)

// Сколько последних избранных формируют профиль похожести
// и ширина ценового коридора вокруг их средней цены.
const (
	similarityFavoritesSample = 5
	priceBandRatio            = 0.3
)

type GetSimilarToFavoritesUseCase struct {
	storage   port.ListingStoragePort
	favorites port.FavoritesReaderPort
}

func NewGetSimilarToFavoritesUseCase(
	storage port.ListingStoragePort,
	favorites port.FavoritesReaderPort,
) *GetSimilarToFavoritesUseCase {
	return &GetSimilarToFavoritesUseCase{storage: storage, favorites: favorites}
}

// Execute подбирает объявления, похожие на последние избранные пользователя:
// совпадение по типу, городу или попадание в ценовой коридор +-30% от
// средней цены избранного (достаточно одного признака). Сами избранные
// из выдачи исключаются. Пользователю без избранного возвращаются
// популярные объявления.
func (uc *GetSimilarToFavoritesUseCase) Execute(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetSimilarToFavorites",
		"user_id":  userID.String(),
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	favs, err := uc.favorites.RecentFavoriteListings(ctx, userID, similarityFavoritesSample)
	if err != nil {
		ucLogger.Error("Failed to load favorites", err, nil)
		return nil, err
	}

	if len(favs) == 0 {
		ucLogger.Info("User has no favorites, falling back to popular listings", nil)
		listings, err := uc.storage.FindListings(ctx, port.ListingFilter{
			Statuses: []string{domain.ListingStatusActive},
		}, port.OrderPopular, limit)
		if err != nil {
			ucLogger.Error("Storage returned an error", err, nil)
			return nil, err
		}
		return listings, nil
	}

	filter := buildSimilarityFilter(favs)

	listings, err := uc.storage.FindSimilarListings(ctx, filter, limit)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"favorites_sampled": len(favs),
		"found":             len(listings),
	})
	return listings, nil
}

// buildSimilarityFilter собирает профиль похожести из избранных объявлений.
func buildSimilarityFilter(favs []domain.Listing) port.SimilarityFilter {
	var filter port.SimilarityFilter

	priceSum := 0.0
	priced := 0
	for _, fav := range favs {
		if fav.PropertyType != "" && !containsStr(filter.Types, fav.PropertyType) {
			filter.Types = append(filter.Types, fav.PropertyType)
		}
		if fav.City != "" && !containsStr(filter.Cities, fav.City) {
			filter.Cities = append(filter.Cities, fav.City)
		}
		if fav.PriceAmount > 0 {
			priceSum += fav.PriceAmount
			priced++
		}
		filter.ExcludeIDs = append(filter.ExcludeIDs, fav.ID)
	}

	if priced > 0 {
		avg := priceSum / float64(priced)
		min := avg * (1 - priceBandRatio)
		max := avg * (1 + priceBandRatio)
		filter.PriceMin = &min
		filter.PriceMax = &max
	}

	return filter
}

func containsStr(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
