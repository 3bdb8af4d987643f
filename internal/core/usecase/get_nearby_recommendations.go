package usecase

import (
	"context"
	"math"
	"sort"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/scoring"

	"github.com/google/uuid"
)

// Радиус по умолчанию и размер выборки избранного для nearby-генератора.
const (
	defaultNearbyRadiusKm = 10.0
	nearbyFavoritesSample = 5
	metersPerKilometer    = 1000.0
)

type GetNearbyRecommendationsUseCase struct {
	storage   port.ListingStoragePort
	favorites port.FavoritesReaderPort
}

func NewGetNearbyRecommendationsUseCase(
	storage port.ListingStoragePort,
	favorites port.FavoritesReaderPort,
) *GetNearbyRecommendationsUseCase {
	return &GetNearbyRecommendationsUseCase{storage: storage, favorites: favorites}
}

// Execute находит активные объявления рядом с избранными пользователя.
// Лимит делится поровну между избранными с координатами, дубли убираются
// (побеждает первое, то есть ближайшее вхождение), итог сортируется
// по удаленности от "своего" избранного.
func (uc *GetNearbyRecommendationsUseCase) Execute(ctx context.Context, userID uuid.UUID, radiusKm float64, limit int) ([]domain.RecommendationCandidate, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "GetNearbyRecommendations",
		"user_id":   userID.String(),
		"radius_km": radiusKm,
		"limit":     limit,
	})

	ucLogger.Info("Use case started", nil)

	if radiusKm <= 0 {
		radiusKm = defaultNearbyRadiusKm
	}
	radiusMeters := radiusKm * metersPerKilometer

	favs, err := uc.favorites.RecentFavoriteListings(ctx, userID, nearbyFavoritesSample)
	if err != nil {
		ucLogger.Error("Failed to load favorites", err, nil)
		return nil, err
	}

	anchors := make([]domain.Listing, 0, len(favs))
	excludeIDs := make([]uuid.UUID, 0, len(favs))
	for _, fav := range favs {
		excludeIDs = append(excludeIDs, fav.ID)
		if fav.Coordinate != nil {
			anchors = append(anchors, fav)
		}
	}

	if len(anchors) == 0 {
		ucLogger.Info("User has no favorites with coordinates", nil)
		return []domain.RecommendationCandidate{}, nil
	}

	perAnchor := int(math.Ceil(float64(limit) / float64(len(anchors))))

	var candidates []domain.RecommendationCandidate
	for _, anchor := range anchors {
		nearby, err := uc.storage.FindActiveNear(ctx, *anchor.Coordinate, radiusMeters, excludeIDs, perAnchor)
		if err != nil {
			ucLogger.Warn("Nearby query failed for one anchor, skipping it", port.Fields{
				"anchor_id": anchor.ID.String(),
				"error":     err.Error(),
			})
			continue
		}
		for _, l := range nearby {
			c := domain.NewCandidate(l, domain.RecommendationNearbyToFavorites)
			if l.Coordinate != nil {
				d := scoring.DistanceMeters(*anchor.Coordinate, *l.Coordinate)
				c.DistanceFromFavoriteMeters = &d
			}
			candidates = append(candidates, c)
		}
	}

	candidates = domain.DeduplicateCandidates(candidates)
	sortCandidatesByDistance(candidates)
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(candidates)})
	return candidates, nil
}

// sortCandidatesByDistance - стабильная сортировка по возрастанию дистанции;
// кандидаты без дистанции уходят в конец.
func sortCandidatesByDistance(candidates []domain.RecommendationCandidate) {
	distOf := func(c domain.RecommendationCandidate) float64 {
		if c.DistanceFromFavoriteMeters == nil {
			return math.Inf(1)
		}
		return *c.DistanceFromFavoriteMeters
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return distOf(candidates[i]) < distOf(candidates[j])
	})
}
