package port

import (
	"context"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

// UserPreferencesPort - хранилище профилей предпочтений.
type UserPreferencesPort interface {
	// GetProfile возвращает профиль пользователя.
	// Для пользователя без профиля возвращается пустой профиль, не ошибка;
	// ErrUserNotFound - только если сам пользователь не существует.
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserPreferenceProfile, error)

	// SaveProfile сохраняет профиль целиком (upsert).
	SaveProfile(ctx context.Context, profile *domain.UserPreferenceProfile) error
}
