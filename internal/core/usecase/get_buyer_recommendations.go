package usecase

import (
	"context"
	"math"
	"sort"
	"sync"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

// Доли лимита, отводимые каждому генератору. Суммарно больше единицы:
// перепроизводство компенсирует дубли между источниками.
const (
	defaultBlendLimit = 10

	shareSimilar   = 0.4
	shareLocation  = 0.3
	shareTrending  = 0.2
	shareHighScore = 0.1

	// Город по умолчанию, пока у пользователя нет накопленных предпочтений.
	fallbackCity = "Pune"
)

type GetBuyerRecommendationsUseCase struct {
	similar   usecases_port.GetSimilarToFavoritesPort
	location  usecases_port.GetLocationBasedRecommendationsPort
	popular   usecases_port.GetPopularListingsPort
	highScore usecases_port.GetHighLocationScoreListingsPort

	favorites port.FavoritesReaderPort
	prefs     port.UserPreferencesPort
	cache     port.RecommendationCachePort
}

func NewGetBuyerRecommendationsUseCase(
	similar usecases_port.GetSimilarToFavoritesPort,
	location usecases_port.GetLocationBasedRecommendationsPort,
	popular usecases_port.GetPopularListingsPort,
	highScore usecases_port.GetHighLocationScoreListingsPort,
	favorites port.FavoritesReaderPort,
	prefs port.UserPreferencesPort,
	cache port.RecommendationCachePort,
) *GetBuyerRecommendationsUseCase {
	return &GetBuyerRecommendationsUseCase{
		similar:   similar,
		location:  location,
		popular:   popular,
		highScore: highScore,
		favorites: favorites,
		prefs:     prefs,
		cache:     cache,
	}
}

// Execute собирает смешанную ленту рекомендаций из четырех генераторов.
// Генераторы работают параллельно, но каждый кладет вклад в свой слот,
// поэтому порядок генерации фиксирован: similar, location, trending,
// high-score - при дублях побеждает более ранний (и более приоритетный)
// источник. Отказ отдельного генератора не валит выдачу, он просто ничего
// не вносит. Холодный пользователь (ни избранного, ни предпочтений) и
// пользователь, чьи избранное или профиль не удалось прочитать, получают
// популярные объявления, помеченные как trending.
func (uc *GetBuyerRecommendationsUseCase) Execute(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RecommendationCandidate, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetBuyerRecommendations",
		"user_id":  userID.String(),
		"limit":    limit,
	})

	ucLogger.Info("Use case started", nil)

	if limit <= 0 {
		limit = defaultBlendLimit
	}

	if uc.cache != nil {
		cached, err := uc.cache.GetBlended(ctx, userID, limit)
		if err != nil {
			ucLogger.Warn("Recommendation cache read failed", port.Fields{"error": err.Error()})
		} else if cached != nil {
			ucLogger.Info("Use case finished from cache", port.Fields{"found": len(cached)})
			return cached, nil
		}
	}

	// Персонализация деградирует мягко: если избранное или профиль
	// недоступны, отдаем популярное вместо ошибки.
	favoriteIDs, err := uc.favorites.FavoriteListingIDs(ctx, userID)
	if err != nil {
		ucLogger.Warn("Failed to load favorite ids, degrading to popular", port.Fields{"error": err.Error()})
		return uc.servePopular(ctx, ucLogger, userID, limit)
	}

	profile, err := uc.prefs.GetProfile(ctx, userID)
	if err != nil {
		ucLogger.Warn("Failed to load preference profile, degrading to popular", port.Fields{"error": err.Error()})
		return uc.servePopular(ctx, ucLogger, userID, limit)
	}

	// Холодный старт: нечего персонализировать.
	if len(favoriteIDs) == 0 && profile.IsEmpty() {
		ucLogger.Info("Cold user, serving popular listings as trending", nil)
		return uc.servePopular(ctx, ucLogger, userID, limit)
	}

	city := profile.TopPreferredLocation()
	if city == "" {
		city = fallbackCity
	}

	generators := []struct {
		name string
		tag  domain.RecommendationType
		run  func() ([]domain.Listing, error)
	}{
		{"similar", domain.RecommendationSimilarToFavorites, func() ([]domain.Listing, error) {
			return uc.similar.Execute(ctx, userID, ceilShare(limit, shareSimilar))
		}},
		{"location", domain.RecommendationLocationMatch, func() ([]domain.Listing, error) {
			return uc.location.Execute(ctx, city, ceilShare(limit, shareLocation))
		}},
		{"popular", domain.RecommendationTrending, func() ([]domain.Listing, error) {
			return uc.popular.Execute(ctx, ceilShare(limit, shareTrending), favoriteIDs)
		}},
		{"high_score", domain.RecommendationHighLocationScore, func() ([]domain.Listing, error) {
			return uc.highScore.Execute(ctx, ceilShare(limit, shareHighScore))
		}},
	}

	parts := make([][]domain.RecommendationCandidate, len(generators))
	var wg sync.WaitGroup
	wg.Add(len(generators))
	for i, gen := range generators {
		i, gen := i, gen
		go func() {
			defer wg.Done()
			listings, err := gen.run()
			if err != nil {
				ucLogger.Warn("Generator failed, skipping", port.Fields{
					"generator": gen.name, "error": err.Error(),
				})
				return
			}
			parts[i] = wrapCandidates(listings, gen.tag)
		}()
	}
	wg.Wait()

	var candidates []domain.RecommendationCandidate
	for _, part := range parts {
		candidates = append(candidates, part...)
	}

	candidates = domain.DeduplicateCandidates(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	uc.storeInCache(ctx, ucLogger, userID, limit, candidates)

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(candidates)})
	return candidates, nil
}

// servePopular - общий хвост холодного старта и деградации: популярные
// объявления, помеченные как trending. Ошибка возвращается только когда
// отказал и этот последний источник.
func (uc *GetBuyerRecommendationsUseCase) servePopular(ctx context.Context, ucLogger port.LoggerPort, userID uuid.UUID, limit int) ([]domain.RecommendationCandidate, error) {
	listings, err := uc.popular.Execute(ctx, limit, nil)
	if err != nil {
		ucLogger.Error("Popular generator failed", err, nil)
		return nil, err
	}
	recs := wrapCandidates(listings, domain.RecommendationTrending)
	uc.storeInCache(ctx, ucLogger, userID, limit, recs)
	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(recs)})
	return recs, nil
}

func (uc *GetBuyerRecommendationsUseCase) storeInCache(ctx context.Context, logger port.LoggerPort, userID uuid.UUID, limit int, recs []domain.RecommendationCandidate) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.StoreBlended(ctx, userID, limit, recs); err != nil {
		logger.Warn("Recommendation cache write failed", port.Fields{"error": err.Error()})
	}
}

func wrapCandidates(listings []domain.Listing, t domain.RecommendationType) []domain.RecommendationCandidate {
	out := make([]domain.RecommendationCandidate, 0, len(listings))
	for _, l := range listings {
		out = append(out, domain.NewCandidate(l, t))
	}
	return out
}

func ceilShare(limit int, share float64) int {
	return int(math.Ceil(float64(limit) * share))
}
