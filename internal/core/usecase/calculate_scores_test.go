package usecase

import (
	"context"
	"errors"
	"testing"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/scoring"

	"github.com/google/uuid"
)

func TestCalculateLocationScores(t *testing.T) {
	t.Run("невалидная координата отсекается до внешних запросов", func(t *testing.T) {
		geo := &fakeGeoPort{}
		air := &fakeAirPort{}
		uc := NewCalculateLocationScoresUseCase(scoring.NewEngine(geo, air))

		_, err := uc.Execute(context.Background(), 91, 73.85)
		if !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
		}
		if geo.calls.Load() != 0 || air.calls.Load() != 0 {
			t.Errorf("no external calls expected, got geo=%d air=%d", geo.calls.Load(), air.calls.Load())
		}
	})

	t.Run("валидная координата запускает все суб-скореры", func(t *testing.T) {
		geo := &fakeGeoPort{}
		air := &fakeAirPort{}
		uc := NewCalculateLocationScoresUseCase(scoring.NewEngine(geo, air))

		scores, err := uc.Execute(context.Background(), 18.52, 73.85)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if scores == nil {
			t.Fatal("expected scores")
		}
		// 7 запросов amenity + 1 environment + 1 safety,
		// плюс пересчет environment для estimated pollution.
		if got := geo.calls.Load(); got != 10 {
			t.Errorf("expected 10 geo calls, got %d", got)
		}
		if got := air.calls.Load(); got != 1 {
			t.Errorf("expected 1 air call, got %d", got)
		}
	})
}

func TestRefreshListingScores(t *testing.T) {
	coord := domain.Coordinate{Latitude: 18.52, Longitude: 73.85}

	t.Run("объявление без координат не пересчитывается", func(t *testing.T) {
		geo := &fakeGeoPort{}
		storage := &fakeStorage{getByIDFn: func(id uuid.UUID) (*domain.Listing, error) {
			return &domain.Listing{ID: id}, nil
		}}
		calc := NewCalculateLocationScoresUseCase(scoring.NewEngine(geo, &fakeAirPort{}))
		uc := NewRefreshListingScoresUseCase(storage, calc, nil)

		_, err := uc.Execute(context.Background(), uuid.New())
		if !errors.Is(err, domain.ErrListingHasNoCoordinates) {
			t.Fatalf("expected ErrListingHasNoCoordinates, got %v", err)
		}
		if got := geo.calls.Load(); got != 0 {
			t.Errorf("no geo calls expected, got %d", got)
		}
	})

	t.Run("успешный пересчет сохраняет оценки целиком", func(t *testing.T) {
		var savedID uuid.UUID
		var saved *domain.LocationScores
		storage := &fakeStorage{
			getByIDFn: func(id uuid.UUID) (*domain.Listing, error) {
				return &domain.Listing{ID: id, Coordinate: &coord}, nil
			},
			updateScoresFn: func(listingID uuid.UUID, scores domain.LocationScores) error {
				savedID = listingID
				saved = &scores
				return nil
			},
		}
		calc := NewCalculateLocationScoresUseCase(scoring.NewEngine(&fakeGeoPort{}, &fakeAirPort{}))
		uc := NewRefreshListingScoresUseCase(storage, calc, nil)

		listingID := uuid.New()
		scores, err := uc.Execute(context.Background(), listingID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved == nil || savedID != listingID {
			t.Fatal("scores were not persisted for the listing")
		}
		if saved.OverallScore != scores.OverallScore {
			t.Errorf("persisted overall %d differs from returned %d", saved.OverallScore, scores.OverallScore)
		}
	})

	t.Run("несуществующее объявление пробрасывает ошибку", func(t *testing.T) {
		storage := &fakeStorage{}
		calc := NewCalculateLocationScoresUseCase(scoring.NewEngine(&fakeGeoPort{}, &fakeAirPort{}))
		uc := NewRefreshListingScoresUseCase(storage, calc, nil)

		_, err := uc.Execute(context.Background(), uuid.New())
		if !errors.Is(err, domain.ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound, got %v", err)
		}
	})
}
