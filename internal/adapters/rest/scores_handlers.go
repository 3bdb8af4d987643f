package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
	"recommendation-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ScoresHandler - обработчики расчета оценок локации.
type ScoresHandler struct {
	calculateUC usecases_port.CalculateLocationScoresPort
	refreshUC   usecases_port.RefreshListingScoresPort
}

// NewScoresHandler - конструктор.
func NewScoresHandler(
	calculateUC usecases_port.CalculateLocationScoresPort,
	refreshUC usecases_port.RefreshListingScoresPort,
) *ScoresHandler {
	return &ScoresHandler{
		calculateUC: calculateUC,
		refreshUC:   refreshUC,
	}
}

// CalculateScores обрабатывает POST /api/v1/scores/calculate.
func (h *ScoresHandler) CalculateScores(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CalculateScores"})

	var reqDTO CalculateScoresRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		logger.Warn("Failed to decode request body", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{
		"lat": reqDTO.Latitude,
		"lon": reqDTO.Longitude,
	})
	handlerLogger.Info("Processing request to calculate location scores", nil)

	scores, err := h.calculateUC.Execute(r.Context(), reqDTO.Latitude, reqDTO.Longitude)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCoordinate) {
			handlerLogger.Warn("Invalid coordinates in request", port.Fields{"error": err.Error()})
			WriteJSONError(w, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		handlerLogger.Error("Calculate scores use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Failed to calculate scores")
		return
	}

	RespondWithJSON(w, http.StatusOK, toScoresResponse(*scores))
}

// RecalculateListingScores обрабатывает POST /api/v1/listings/{listingID}/scores/recalculate.
func (h *ScoresHandler) RecalculateListingScores(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RecalculateListingScores"})

	listingIDStr := chi.URLParam(r, "listingID")
	listingID, err := uuid.Parse(listingIDStr)
	if err != nil {
		logger.Warn("Invalid listingID in URL", port.Fields{"provided_id": listingIDStr})
		WriteJSONError(w, http.StatusBadRequest, "Invalid listingID in URL")
		return
	}

	handlerLogger := logger.WithFields(port.Fields{"listing_id": listingID})
	handlerLogger.Info("Processing request to recalculate listing scores", nil)

	scores, err := h.refreshUC.Execute(r.Context(), listingID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrListingNotFound):
			WriteJSONError(w, http.StatusNotFound, "Listing not found")
		case errors.Is(err, domain.ErrListingHasNoCoordinates):
			WriteJSONError(w, http.StatusUnprocessableEntity, "Listing has no coordinates")
		default:
			handlerLogger.Error("Recalculate listing scores use case failed", err, nil)
			WriteJSONError(w, http.StatusInternalServerError, "Failed to recalculate scores")
		}
		return
	}

	handlerLogger.Info("Listing scores recalculated", port.Fields{"overall_score": scores.OverallScore})
	RespondWithJSON(w, http.StatusOK, toScoresResponse(*scores))
}
