package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPreferencesRepository реализует UserPreferencesPort.
// Профиль хранится одной строкой на пользователя; типы и города -
// текстовыми массивами.
type PostgresPreferencesRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPreferencesRepository - конструктор.
func NewPostgresPreferencesRepository(pool *pgxpool.Pool) (*PostgresPreferencesRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresPreferencesRepository{pool: pool}, nil
}

// GetProfile возвращает профиль пользователя. Отсутствие строки - не ошибка:
// возвращается пустой профиль с дефолтами.
func (r *PostgresPreferencesRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.UserPreferenceProfile, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPreferencesRepository",
		"method":    "GetProfile",
		"user_id":   userID,
	})

	query := `
		SELECT preferred_types, preferred_locations,
		       budget_min, budget_max,
		       bedrooms_min, bedrooms_max,
		       bathrooms_min, bathrooms_max
		FROM user_preferences
		WHERE user_id = $1`

	profile := domain.NewUserPreferenceProfile(userID)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.PreferredTypes, &profile.PreferredLocations,
		&profile.BudgetMin, &profile.BudgetMax,
		&profile.BedroomsMin, &profile.BedroomsMax,
		&profile.BathroomsMin, &profile.BathroomsMax,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Debug("No stored profile, returning empty one.", nil)
			return domain.NewUserPreferenceProfile(userID), nil
		}
		repoLogger.Error("Failed to query preference profile", err, nil)
		return nil, fmt.Errorf("failed to query preference profile: %w", err)
	}

	if profile.PreferredTypes == nil {
		profile.PreferredTypes = []string{}
	}
	if profile.PreferredLocations == nil {
		profile.PreferredLocations = []string{}
	}

	return profile, nil
}

// SaveProfile сохраняет профиль целиком (upsert по user_id).
func (r *PostgresPreferencesRepository) SaveProfile(ctx context.Context, profile *domain.UserPreferenceProfile) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresPreferencesRepository",
		"method":    "SaveProfile",
		"user_id":   profile.UserID,
	})

	query := `
		INSERT INTO user_preferences (
			user_id, preferred_types, preferred_locations,
			budget_min, budget_max,
			bedrooms_min, bedrooms_max,
			bathrooms_min, bathrooms_max,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_types = EXCLUDED.preferred_types,
			preferred_locations = EXCLUDED.preferred_locations,
			budget_min = EXCLUDED.budget_min,
			budget_max = EXCLUDED.budget_max,
			bedrooms_min = EXCLUDED.bedrooms_min,
			bedrooms_max = EXCLUDED.bedrooms_max,
			bathrooms_min = EXCLUDED.bathrooms_min,
			bathrooms_max = EXCLUDED.bathrooms_max,
			updated_at = now()`

	_, err := r.pool.Exec(ctx, query,
		profile.UserID, profile.PreferredTypes, profile.PreferredLocations,
		profile.BudgetMin, profile.BudgetMax,
		profile.BedroomsMin, profile.BedroomsMax,
		profile.BathroomsMin, profile.BathroomsMax,
	)
	if err != nil {
		// 23503 - foreign_key_violation: пользователя не существует.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			repoLogger.Warn("User does not exist, profile not saved.", nil)
			return domain.ErrUserNotFound
		}
		repoLogger.Error("Failed to save preference profile", err, nil)
		return fmt.Errorf("failed to save preference profile: %w", err)
	}

	repoLogger.Debug("Preference profile saved.", nil)
	return nil
}
