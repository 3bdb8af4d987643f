package port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

// RecommendationCachePort - кэш готовых смешанных рекомендаций.
// Ошибки кэша не фатальны: промах и недоступность для вызывающего равнозначны.
type RecommendationCachePort interface {
	// GetBlended возвращает (nil, nil) при промахе.
	GetBlended(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RecommendationCandidate, error)

	StoreBlended(ctx context.Context, userID uuid.UUID, limit int, recs []domain.RecommendationCandidate) error
}
