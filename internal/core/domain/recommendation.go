package domain

// RecommendationType - происхождение кандидата рекомендации.
type RecommendationType string

const (
	RecommendationSimilarToFavorites RecommendationType = "similar_to_favorites"
	RecommendationLocationMatch      RecommendationType = "location_match"
	RecommendationTrending           RecommendationType = "trending"
	RecommendationHighLocationScore  RecommendationType = "high_location_score"
	RecommendationNearbyToFavorites  RecommendationType = "nearby_to_favorites"
)

// Статические приоритеты типов. Это не пересчитываемая модель ранжирования,
// а фиксированные веса источников.
var recommendationPriors = map[RecommendationType]int{
	RecommendationSimilarToFavorites: 95,
	RecommendationHighLocationScore:  90,
	RecommendationNearbyToFavorites:  88,
	RecommendationLocationMatch:      85,
	RecommendationTrending:           75,
}

// ScoreForType возвращает приоритет источника рекомендаций.
func ScoreForType(t RecommendationType) int {
	if s, ok := recommendationPriors[t]; ok {
		return s
	}
	return 0
}

// ReasonForType - человекочитаемое объяснение для фронтенда.
func ReasonForType(t RecommendationType) string {
	switch t {
	case RecommendationSimilarToFavorites:
		return "Similar to your favorites"
	case RecommendationLocationMatch:
		return "Matches your preferred location"
	case RecommendationTrending:
		return "Trending in your area"
	case RecommendationHighLocationScore:
		return "Excellent location score"
	case RecommendationNearbyToFavorites:
		return "Near your favorite properties"
	}
	return "Recommended for you"
}

// RecommendationCandidate - объявление, обернутое типом источника и его
// приоритетом. Живет только в рамках одного запроса, нигде не сохраняется.
type RecommendationCandidate struct {
	Listing Listing
	Type    RecommendationType
	Score   int

	// Заполняется только для nearby_to_favorites.
	DistanceFromFavoriteMeters *float64
}

// NewCandidate оборачивает объявление с приоритетом его источника.
func NewCandidate(l Listing, t RecommendationType) RecommendationCandidate {
	return RecommendationCandidate{Listing: l, Type: t, Score: ScoreForType(t)}
}

// DeduplicateCandidates убирает дубли по ID объявления.
// Побеждает первое вхождение - его тип и приоритет сохраняются.
func DeduplicateCandidates(in []RecommendationCandidate) []RecommendationCandidate {
	seen := make(map[string]struct{}, len(in))
	out := make([]RecommendationCandidate, 0, len(in))
	for _, c := range in {
		key := c.Listing.ID.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
