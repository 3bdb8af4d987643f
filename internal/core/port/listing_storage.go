package port

import (
	"context"
	"time"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

// ListingOrder - предопределенные сортировки выборок.
type ListingOrder string

const (
	// OrderPopular: featured DESC, views DESC, inquiries DESC, created_at DESC.
	OrderPopular ListingOrder = "popular"
	// OrderTrending: views DESC, inquiries DESC.
	OrderTrending ListingOrder = "trending"
	// OrderByOverallScore: overall_score DESC, featured DESC, created_at DESC.
	OrderByOverallScore ListingOrder = "overall_score"
)

// ListingFilter - условия выборки объявлений (все условия соединяются AND).
type ListingFilter struct {
	Statuses        []string
	CityPattern     string // case-insensitive подстрока города
	MinOverallScore *int
	CreatedAfter    *time.Time
	ExcludeIDs      []uuid.UUID
}

// SimilarityFilter - условия "похожести" для генератора similar-to-favorites.
// Типы, города и ценовой коридор соединяются OR (достаточно одного совпадения),
// статус и исключения - AND.
type SimilarityFilter struct {
	Types      []string
	Cities     []string
	PriceMin   *float64
	PriceMax   *float64
	ExcludeIDs []uuid.UUID
}

// ListingStoragePort - контракт хранилища объявлений.
type ListingStoragePort interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error)

	FindListings(ctx context.Context, filter ListingFilter, order ListingOrder, limit int) ([]domain.Listing, error)
	FindSimilarListings(ctx context.Context, filter SimilarityFilter, limit int) ([]domain.Listing, error)

	// FindActiveNear возвращает активные объявления в радиусе от точки,
	// отсортированные по удаленности.
	FindActiveNear(ctx context.Context, center domain.Coordinate, radiusMeters float64, excludeIDs []uuid.UUID, limit int) ([]domain.Listing, error)

	// UpdateScores записывает полный результат расчета одним обновлением.
	// Частичных записей отдельных оценок не существует.
	UpdateScores(ctx context.Context, listingID uuid.UUID, scores domain.LocationScores) error
}
