package port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

// FavoritesReaderPort - чтение избранного пользователя.
// Запись избранного принадлежит favorites-сервису; здесь только чтение
// для генераторов рекомендаций.
type FavoritesReaderPort interface {
	// RecentFavoriteListings возвращает объявления из избранного,
	// новые первыми.
	RecentFavoriteListings(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Listing, error)

	FavoriteListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
