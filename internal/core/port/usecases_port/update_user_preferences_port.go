package usecases_port

import (
	"context"

	"github.com/google/uuid"
)

// UpdateUserPreferencesPort - асинхронная задача расширения профиля
// предпочтений по добавленному в избранное объявлению.
type UpdateUserPreferencesPort interface {
	Execute(ctx context.Context, userID, listingID uuid.UUID) error
}
