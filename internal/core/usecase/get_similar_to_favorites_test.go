package usecase

import (
	"context"
	"testing"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"

	"github.com/google/uuid"
)

func TestGetSimilarToFavorites(t *testing.T) {
	userID := uuid.New()

	t.Run("профиль похожести строится из избранного", func(t *testing.T) {
		favA := activeListing("Pune", "apartment", 4000000)
		favB := activeListing("Mumbai", "apartment", 6000000)

		favorites := &fakeFavorites{recentFn: func(_ uuid.UUID, limit int) ([]domain.Listing, error) {
			if limit != similarityFavoritesSample {
				t.Errorf("expected favorites sample %d, got %d", similarityFavoritesSample, limit)
			}
			return []domain.Listing{favA, favB}, nil
		}}

		var gotFilter port.SimilarityFilter
		storage := &fakeStorage{findSimilarFn: func(filter port.SimilarityFilter, _ int) ([]domain.Listing, error) {
			gotFilter = filter
			return []domain.Listing{activeListing("Pune", "apartment", 4500000)}, nil
		}}

		uc := NewGetSimilarToFavoritesUseCase(storage, favorites)
		listings, err := uc.Execute(context.Background(), userID, 6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(listings) != 1 {
			t.Fatalf("expected 1 listing, got %d", len(listings))
		}

		// Тип без дублей, города оба.
		if len(gotFilter.Types) != 1 || gotFilter.Types[0] != "apartment" {
			t.Errorf("unexpected types: %v", gotFilter.Types)
		}
		if len(gotFilter.Cities) != 2 {
			t.Errorf("expected 2 cities, got %v", gotFilter.Cities)
		}

		// Средняя цена 5 млн, коридор +-30%.
		if gotFilter.PriceMin == nil || *gotFilter.PriceMin != 3500000 {
			t.Errorf("unexpected price min: %v", gotFilter.PriceMin)
		}
		if gotFilter.PriceMax == nil || *gotFilter.PriceMax != 6500000 {
			t.Errorf("unexpected price max: %v", gotFilter.PriceMax)
		}

		// Сами избранные исключаются.
		if len(gotFilter.ExcludeIDs) != 2 {
			t.Errorf("expected 2 excluded ids, got %v", gotFilter.ExcludeIDs)
		}
	})

	t.Run("без избранного выдача деградирует до популярного", func(t *testing.T) {
		favorites := &fakeFavorites{}

		var gotOrder port.ListingOrder
		storage := &fakeStorage{findFn: func(filter port.ListingFilter, order port.ListingOrder, _ int) ([]domain.Listing, error) {
			gotOrder = order
			if len(filter.Statuses) != 1 || filter.Statuses[0] != domain.ListingStatusActive {
				t.Errorf("expected active-only filter, got %v", filter.Statuses)
			}
			return []domain.Listing{activeListing("Pune", "apartment", 1)}, nil
		}}

		uc := NewGetSimilarToFavoritesUseCase(storage, favorites)
		listings, err := uc.Execute(context.Background(), userID, 6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(listings) != 1 {
			t.Fatalf("expected popular fallback, got %d listings", len(listings))
		}
		if gotOrder != port.OrderPopular {
			t.Errorf("expected popular order, got %s", gotOrder)
		}
	})

	t.Run("избранное без цен не задает ценовой коридор", func(t *testing.T) {
		favorites := &fakeFavorites{recentFn: func(_ uuid.UUID, _ int) ([]domain.Listing, error) {
			return []domain.Listing{activeListing("Pune", "apartment", 0)}, nil
		}}

		var gotFilter port.SimilarityFilter
		storage := &fakeStorage{findSimilarFn: func(filter port.SimilarityFilter, _ int) ([]domain.Listing, error) {
			gotFilter = filter
			return nil, nil
		}}

		uc := NewGetSimilarToFavoritesUseCase(storage, favorites)
		if _, err := uc.Execute(context.Background(), userID, 6); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotFilter.PriceMin != nil || gotFilter.PriceMax != nil {
			t.Errorf("price band must be absent without priced favorites: %v..%v", gotFilter.PriceMin, gotFilter.PriceMax)
		}
	})
}
