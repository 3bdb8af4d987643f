package postgres_adapter

import (
	"context"
	"fmt"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFavoritesReader реализует FavoritesReaderPort: читает избранное
// из таблицы user_favorites, которой владеет favorites-сервис.
type PostgresFavoritesReader struct {
	pool *pgxpool.Pool
}

// NewPostgresFavoritesReader - конструктор.
func NewPostgresFavoritesReader(pool *pgxpool.Pool) (*PostgresFavoritesReader, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresFavoritesReader{pool: pool}, nil
}

// RecentFavoriteListings возвращает объявления из избранного, новые первыми.
func (r *PostgresFavoritesReader) RecentFavoriteListings(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresFavoritesReader",
		"method":    "RecentFavoriteListings",
		"user_id":   userID,
		"limit":     limit,
	})

	query := `
		SELECT ` + listingColumns + `
		FROM user_favorites uf
		JOIN listings l ON l.id = uf.listing_id
		WHERE uf.user_id = $1
		ORDER BY uf.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		repoLogger.Error("Failed to query favorite listings", err, nil)
		return nil, fmt.Errorf("failed to query favorite listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows, repoLogger)
		if err != nil {
			repoLogger.Error("Failed to scan favorite listing row", err, nil)
			return nil, fmt.Errorf("failed to scan favorite listing: %w", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during favorites iteration", err, nil)
		return nil, fmt.Errorf("error during favorites iteration: %w", err)
	}

	return listings, nil
}

// FavoriteListingIDs возвращает все ID избранных объявлений пользователя.
func (r *PostgresFavoritesReader) FavoriteListingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresFavoritesReader",
		"method":    "FavoriteListingIDs",
		"user_id":   userID,
	})

	query := "SELECT listing_id FROM user_favorites WHERE user_id = $1"
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		repoLogger.Error("Failed to query favorite IDs", err, nil)
		return nil, fmt.Errorf("failed to query favorite IDs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			repoLogger.Error("Failed to scan favorite ID row", err, nil)
			return nil, fmt.Errorf("failed to scan favorite ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during favorite IDs iteration", err, nil)
		return nil, fmt.Errorf("error during favorite IDs iteration: %w", err)
	}

	return ids, nil
}
