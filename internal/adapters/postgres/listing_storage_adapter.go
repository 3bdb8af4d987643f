package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/scoring"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmcloughlin/geohash"
)

// Точность геохэша, хранимого рядом с координатами.
const storedGeohashPrecision = 7

// PostgresListingStorageAdapter реализует ListingStoragePort для PostgreSQL.
type PostgresListingStorageAdapter struct {
	pool *pgxpool.Pool
}

// NewPostgresListingStorageAdapter - конструктор.
func NewPostgresListingStorageAdapter(pool *pgxpool.Pool) (*PostgresListingStorageAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresListingStorageAdapter{pool: pool}, nil
}

// Колонки, читаемые во всех выборках; порядок согласован со scanListing.
const listingColumns = `
	l.id, l.title, l.property_type, l.listing_type, l.price_amount, l.currency,
	l.bedrooms, l.bathrooms, l.city, l.state, l.latitude, l.longitude,
	l.amenity_score, l.environment_score, l.safety_score, l.pollution_score,
	l.overall_score, l.score_details, l.scores_calculated_at,
	l.status, l.featured, l.owner_id, l.views, l.inquiries_count, l.created_at`

// GetByID возвращает объявление или domain.ErrListingNotFound.
func (a *PostgresListingStorageAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "PostgresListingStorageAdapter",
		"method":     "GetByID",
		"listing_id": id,
	})

	query := "SELECT " + listingColumns + " FROM listings l WHERE l.id = $1"

	row := a.pool.QueryRow(ctx, query, id)
	listing, err := scanListing(row, repoLogger)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			repoLogger.Warn("Listing not found.", nil)
			return nil, domain.ErrListingNotFound
		}
		repoLogger.Error("Failed to query listing", err, nil)
		return nil, fmt.Errorf("failed to query listing: %w", err)
	}

	return listing, nil
}

// FindListings - общая выборка с фильтром и предопределенной сортировкой.
func (a *PostgresListingStorageAdapter) FindListings(ctx context.Context, filter port.ListingFilter, order port.ListingOrder, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresListingStorageAdapter",
		"method":    "FindListings",
		"order":     string(order),
		"limit":     limit,
	})

	whereClause, args := applyListingFilter(filter)
	args = append(args, limit)
	query := fmt.Sprintf("SELECT %s FROM listings l %s %s LIMIT $%d",
		listingColumns, whereClause, orderClause(order), len(args))

	return a.queryListings(ctx, repoLogger, query, args)
}

// FindSimilarListings - выборка по OR-профилю похожести.
func (a *PostgresListingStorageAdapter) FindSimilarListings(ctx context.Context, filter port.SimilarityFilter, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresListingStorageAdapter",
		"method":    "FindSimilarListings",
		"limit":     limit,
	})

	whereClause, args := applySimilarityFilter(filter)
	args = append(args, limit)
	query := fmt.Sprintf("SELECT %s FROM listings l %s ORDER BY l.created_at DESC LIMIT $%d",
		listingColumns, whereClause, len(args))

	return a.queryListings(ctx, repoLogger, query, args)
}

// FindActiveNear ищет активные объявления в радиусе от точки.
// Грубый отбор делается по префиксам геохэша (центральная ячейка плюс
// восемь соседних), точное расстояние считается уже на нашей стороне.
func (a *PostgresListingStorageAdapter) FindActiveNear(ctx context.Context, center domain.Coordinate, radiusMeters float64, excludeIDs []uuid.UUID, limit int) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresListingStorageAdapter",
		"method":    "FindActiveNear",
		"radius_m":  radiusMeters,
		"limit":     limit,
	})

	prefixes := coveringGeohashPrefixes(center, radiusMeters)

	qb := newQueryBuilder()
	qb.addCondition("l.status = $%d", "active")
	qb.addRawCondition("l.latitude IS NOT NULL AND l.longitude IS NOT NULL")
	if len(excludeIDs) > 0 {
		qb.addCondition("l.id != ALL($%d)", excludeIDs)
	}
	qb.conditions = append(qb.conditions, fmt.Sprintf("left(l.geohash, %d) = ANY($%d::text[])", len(prefixes[0]), qb.argId))
	qb.args = append(qb.args, prefixes)
	qb.argId++

	whereClause, args := qb.build()
	query := "SELECT " + listingColumns + " FROM listings l " + whereClause

	candidates, err := a.queryListings(ctx, repoLogger, query, args)
	if err != nil {
		return nil, err
	}

	// Точная фильтрация и сортировка по расстоянию.
	type withDistance struct {
		listing  domain.Listing
		distance float64
	}
	inRadius := make([]withDistance, 0, len(candidates))
	for _, l := range candidates {
		if l.Coordinate == nil {
			continue
		}
		d := scoring.DistanceMeters(center, *l.Coordinate)
		if d <= radiusMeters {
			inRadius = append(inRadius, withDistance{listing: l, distance: d})
		}
	}
	sort.SliceStable(inRadius, func(i, j int) bool {
		return inRadius[i].distance < inRadius[j].distance
	})

	result := make([]domain.Listing, 0, limit)
	for _, wd := range inRadius {
		if len(result) == limit {
			break
		}
		result = append(result, wd.listing)
	}

	repoLogger.Debug("Nearby search finished.", port.Fields{
		"prefilter_hits": len(candidates),
		"in_radius":      len(inRadius),
	})
	return result, nil
}

// UpdateScores записывает полный результат расчета одним UPDATE.
func (a *PostgresListingStorageAdapter) UpdateScores(ctx context.Context, listingID uuid.UUID, scores domain.LocationScores) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "PostgresListingStorageAdapter",
		"method":     "UpdateScores",
		"listing_id": listingID,
	})

	detailsJSON, err := json.Marshal(scores.Details)
	if err != nil {
		repoLogger.Error("Failed to marshal score details", err, nil)
		return fmt.Errorf("failed to marshal score details: %w", err)
	}

	query := `
		UPDATE listings SET
			amenity_score = $2,
			environment_score = $3,
			safety_score = $4,
			pollution_score = $5,
			overall_score = $6,
			score_details = $7,
			scores_calculated_at = $8
		WHERE id = $1`

	cmdTag, err := a.pool.Exec(ctx, query,
		listingID,
		scores.AmenityScore,
		scores.EnvironmentScore,
		scores.SafetyScore,
		scores.PollutionScore,
		scores.OverallScore,
		detailsJSON,
		scores.CalculatedAt,
	)
	if err != nil {
		repoLogger.Error("Failed to update scores", err, nil)
		return fmt.Errorf("failed to update scores: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Warn("Listing not found on scores update.", nil)
		return domain.ErrListingNotFound
	}

	repoLogger.Debug("Scores updated.", nil)
	return nil
}

func (a *PostgresListingStorageAdapter) queryListings(ctx context.Context, repoLogger port.LoggerPort, query string, args []interface{}) ([]domain.Listing, error) {
	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query listings", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows, repoLogger)
		if err != nil {
			repoLogger.Error("Failed to scan listing row", err, nil)
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during listings iteration", err, nil)
		return nil, fmt.Errorf("error during listings iteration: %w", err)
	}

	return listings, nil
}

// scanListing читает одну строку выборки в доменную модель.
func scanListing(row pgx.Row, logger port.LoggerPort) (*domain.Listing, error) {
	var (
		l                  domain.Listing
		lat, lon           *float64
		amenityScore       *int
		environmentScore   *int
		safetyScore        *int
		pollutionScore     *int
		overallScore       *int
		scoreDetailsJSON   []byte
		scoresCalculatedAt *time.Time
	)

	err := row.Scan(
		&l.ID, &l.Title, &l.PropertyType, &l.ListingType, &l.PriceAmount, &l.Currency,
		&l.Bedrooms, &l.Bathrooms, &l.City, &l.State, &lat, &lon,
		&amenityScore, &environmentScore, &safetyScore, &pollutionScore,
		&overallScore, &scoreDetailsJSON, &scoresCalculatedAt,
		&l.Status, &l.Featured, &l.OwnerID, &l.Views, &l.InquiriesCount, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lon != nil {
		coord, err := domain.NewCoordinate(*lat, *lon)
		if err == nil {
			l.Coordinate = &coord
		}
	}

	// Оценки либо присутствуют целиком, либо отсутствуют целиком.
	if overallScore != nil && scoresCalculatedAt != nil {
		scores := domain.LocationScores{
			AmenityScore:     derefInt(amenityScore),
			EnvironmentScore: derefInt(environmentScore),
			SafetyScore:      derefInt(safetyScore),
			PollutionScore:   derefInt(pollutionScore),
			OverallScore:     *overallScore,
			CalculatedAt:     *scoresCalculatedAt,
		}
		// Битая детализация не валит чтение, объявление отдается
		// с пустой разбивкой.
		if len(scoreDetailsJSON) > 0 {
			if err := json.Unmarshal(scoreDetailsJSON, &scores.Details); err != nil {
				logger.Warn("Score details payload is corrupted, leaving empty", port.Fields{
					"listing_id": l.ID.String(), "error": err.Error(),
				})
			}
		}
		l.Scores = &scores
	}

	return &l, nil
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// coveringGeohashPrefixes возвращает ячейку центра и восемь соседних
// на точности, при которой размер ячейки не меньше радиуса поиска.
func coveringGeohashPrefixes(center domain.Coordinate, radiusMeters float64) []string {
	precision := precisionForRadius(radiusMeters)
	cell := geohash.EncodeWithPrecision(center.Latitude, center.Longitude, precision)
	prefixes := append([]string{cell}, geohash.Neighbors(cell)...)
	return prefixes
}

// precisionForRadius подбирает длину геохэша так, чтобы блок 3x3 ячеек
// гарантированно накрывал окружность поиска.
func precisionForRadius(radiusMeters float64) uint {
	switch {
	case radiusMeters <= 600:
		return 6 // ~1.2 x 0.6 км на ячейку
	case radiusMeters <= 4800:
		return 5 // ~4.9 x 4.9 км
	case radiusMeters <= 19000:
		return 4 // ~39 x 19.5 км
	default:
		return 3 // ~156 x 156 км
	}
}

// GeohashFor - геохэш хранимой точности для записи рядом с координатами.
func GeohashFor(c domain.Coordinate) string {
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, storedGeohashPrecision)
}
