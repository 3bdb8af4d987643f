package rest

import (
	"net/http"
	"strconv"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/port/usecases_port"

	"github.com/google/uuid"
)

// Дефолтные лимиты выдачи.
const (
	defaultBlendedLimit = 12
	defaultNarrowLimit  = 6
)

// RecommendationsHandler - обработчики ленты рекомендаций.
type RecommendationsHandler struct {
	blendedUC   usecases_port.GetBuyerRecommendationsPort
	similarUC   usecases_port.GetSimilarToFavoritesPort
	nearbyUC    usecases_port.GetNearbyRecommendationsPort
	popularUC   usecases_port.GetPopularListingsPort
	trendingUC  usecases_port.GetTrendingListingsPort
	highScoreUC usecases_port.GetHighLocationScoreListingsPort
	locationUC  usecases_port.GetLocationBasedRecommendationsPort
}

// NewRecommendationsHandler - конструктор.
func NewRecommendationsHandler(
	blendedUC usecases_port.GetBuyerRecommendationsPort,
	similarUC usecases_port.GetSimilarToFavoritesPort,
	nearbyUC usecases_port.GetNearbyRecommendationsPort,
	popularUC usecases_port.GetPopularListingsPort,
	trendingUC usecases_port.GetTrendingListingsPort,
	highScoreUC usecases_port.GetHighLocationScoreListingsPort,
	locationUC usecases_port.GetLocationBasedRecommendationsPort,
) *RecommendationsHandler {
	return &RecommendationsHandler{
		blendedUC:   blendedUC,
		similarUC:   similarUC,
		nearbyUC:    nearbyUC,
		popularUC:   popularUC,
		trendingUC:  trendingUC,
		highScoreUC: highScoreUC,
		locationUC:  locationUC,
	}
}

// GetRecommendations обрабатывает GET /api/v1/recommendations.
func (h *RecommendationsHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetRecommendations"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return
	}

	limit, err := GetLimitOrDefault(r, defaultBlendedLimit)
	if err != nil || limit <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"user_id": userID, "limit": limit})
	handlerLogger.Info("Processing request for blended recommendations", nil)

	recs, err := h.blendedUC.Execute(r.Context(), userID, limit)
	if err != nil {
		handlerLogger.Error("Blended recommendations use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	RespondWithJSON(w, http.StatusOK, toRecommendationResponses(recs))
}

// GetSimilar обрабатывает GET /api/v1/recommendations/similar.
func (h *RecommendationsHandler) GetSimilar(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetSimilar"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return
	}

	limit, err := GetLimitOrDefault(r, defaultNarrowLimit)
	if err != nil || limit <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	listings, err := h.similarUC.Execute(r.Context(), userID, limit)
	if err != nil {
		logger.Error("Similar recommendations use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingResponses(listings))
}

// GetNearby обрабатывает GET /api/v1/recommendations/nearby.
func (h *RecommendationsHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetNearby"})

	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return
	}

	limit, err := GetLimitOrDefault(r, defaultNarrowLimit)
	if err != nil || limit <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	radiusKm := 0.0
	if radiusStr := r.URL.Query().Get("radius_km"); radiusStr != "" {
		radiusKm, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil || radiusKm < 0 {
			WriteJSONError(w, http.StatusBadRequest, "Invalid radius_km parameter")
			return
		}
	}

	recs, err := h.nearbyUC.Execute(r.Context(), userID, radiusKm, limit)
	if err != nil {
		logger.Error("Nearby recommendations use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	RespondWithJSON(w, http.StatusOK, toRecommendationResponses(recs))
}

// GetPopular обрабатывает GET /api/v1/recommendations/popular.
func (h *RecommendationsHandler) GetPopular(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetPopular"})

	limit, err := GetLimitOrDefault(r, defaultNarrowLimit)
	if err != nil || limit <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	listings, err := h.popularUC.Execute(r.Context(), limit, nil)
	if err != nil {
		logger.Error("Popular listings use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingResponses(listings))
}

// GetTrending обрабатывает GET /api/v1/recommendations/trending.
func (h *RecommendationsHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetTrending"})

	limit, err := GetLimitOrDefault(r, defaultNarrowLimit)
	if err != nil || limit <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	listings, err := h.trendingUC.Execute(r.Context(), limit)
	if err != nil {
		logger.Error("Trending listings use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingResponses(listings))
}

// GetHighScore обрабатывает GET /api/v1/recommendations/high-score.
func (h *RecommendationsHandler) GetHighScore(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetHighScore"})

	limit, err := GetLimitOrDefault(r, defaultNarrowLimit)
	if err != nil || limit <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	listings, err := h.highScoreUC.Execute(r.Context(), limit)
	if err != nil {
		logger.Error("High score listings use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingResponses(listings))
}

// GetByLocation обрабатывает GET /api/v1/recommendations/location?city=.
func (h *RecommendationsHandler) GetByLocation(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetByLocation"})

	city := r.URL.Query().Get("city")
	if city == "" {
		WriteJSONError(w, http.StatusBadRequest, "city parameter is required")
		return
	}

	limit, err := GetLimitOrDefault(r, defaultNarrowLimit)
	if err != nil || limit <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	listings, err := h.locationUC.Execute(r.Context(), city, limit)
	if err != nil {
		logger.Error("Location based recommendations use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingResponses(listings))
}
