package rest

import (
	"time"

	"recommendation-service/internal/core/domain"

	"github.com/google/uuid"
)

// CalculateScoresRequest - тело POST /api/v1/scores/calculate.
type CalculateScoresRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AmenityDetailResponse - одна категория в детализации amenity score.
type AmenityDetailResponse struct {
	Found          bool     `json:"found"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// ScoreDetailsResponse - детализация всех четырех оценок.
type ScoreDetailsResponse struct {
	Amenity     map[string]AmenityDetailResponse `json:"amenity"`
	Environment EnvironmentDetailsResponse       `json:"environment"`
	Safety      SafetyDetailsResponse            `json:"safety"`
	Pollution   PollutionDetailsResponse         `json:"pollution"`
}

type EnvironmentDetailsResponse struct {
	GreenFeatures          int      `json:"green_features"`
	IndustrialFeatures     int      `json:"industrial_features"`
	NearestMajorRoadMeters *float64 `json:"nearest_major_road_meters,omitempty"`
}

type SafetyDetailsResponse struct {
	PoliceStations      int      `json:"police_stations"`
	NearestPoliceMeters *float64 `json:"nearest_police_meters,omitempty"`
	CCTVCameras         int      `json:"cctv_cameras"`
	NightlifeSpots      int      `json:"nightlife_spots"`
}

type PollutionDetailsResponse struct {
	PM25       *float64 `json:"pm25,omitempty"`
	DataSource string   `json:"data_source"`
}

// ScoresResponse - полный результат расчета оценок локации.
type ScoresResponse struct {
	AmenityScore     int                  `json:"amenity_score"`
	EnvironmentScore int                  `json:"environment_score"`
	SafetyScore      int                  `json:"safety_score"`
	PollutionScore   int                  `json:"pollution_score"`
	OverallScore     int                  `json:"overall_score"`
	Details          ScoreDetailsResponse `json:"details"`
	CalculatedAt     time.Time            `json:"calculated_at"`
}

// ListingResponse - карточка объявления в ответах рекомендаций.
type ListingResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	PropertyType string    `json:"property_type"`
	ListingType  string    `json:"listing_type"`
	PriceAmount  float64   `json:"price_amount"`
	Currency     string    `json:"currency"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	OverallScore *int      `json:"overall_score,omitempty"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecommendationResponse - элемент смешанной ленты рекомендаций.
type RecommendationResponse struct {
	Listing                    ListingResponse `json:"listing"`
	Type                       string          `json:"type"`
	Score                      int             `json:"score"`
	Reason                     string          `json:"reason"`
	DistanceFromFavoriteMeters *float64        `json:"distance_from_favorite_meters,omitempty"`
}

// --- Мапперы: Domain -> DTO ответа ---

func toScoresResponse(s domain.LocationScores) ScoresResponse {
	amenity := make(map[string]AmenityDetailResponse, len(s.Details.Amenity))
	for key, d := range s.Details.Amenity {
		amenity[key] = AmenityDetailResponse{
			Found:          d.Found,
			DistanceMeters: d.DistanceMeters,
		}
	}

	return ScoresResponse{
		AmenityScore:     s.AmenityScore,
		EnvironmentScore: s.EnvironmentScore,
		SafetyScore:      s.SafetyScore,
		PollutionScore:   s.PollutionScore,
		OverallScore:     s.OverallScore,
		Details: ScoreDetailsResponse{
			Amenity: amenity,
			Environment: EnvironmentDetailsResponse{
				GreenFeatures:          s.Details.Environment.GreenFeatures,
				IndustrialFeatures:     s.Details.Environment.IndustrialFeatures,
				NearestMajorRoadMeters: s.Details.Environment.NearestMajorRoadMeters,
			},
			Safety: SafetyDetailsResponse{
				PoliceStations:      s.Details.Safety.PoliceStations,
				NearestPoliceMeters: s.Details.Safety.NearestPoliceMeters,
				CCTVCameras:         s.Details.Safety.CCTVCameras,
				NightlifeSpots:      s.Details.Safety.NightlifeSpots,
			},
			Pollution: PollutionDetailsResponse{
				PM25:       s.Details.Pollution.PM25,
				DataSource: s.Details.Pollution.DataSource,
			},
		},
		CalculatedAt: s.CalculatedAt,
	}
}

func toListingResponse(l domain.Listing) ListingResponse {
	resp := ListingResponse{
		ID:           l.ID,
		Title:        l.Title,
		PropertyType: l.PropertyType,
		ListingType:  l.ListingType,
		PriceAmount:  l.PriceAmount,
		Currency:     l.Currency,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		City:         l.City,
		State:        l.State,
		Featured:     l.Featured,
		CreatedAt:    l.CreatedAt,
	}
	if l.Scores != nil {
		score := l.Scores.OverallScore
		resp.OverallScore = &score
	}
	return resp
}

func toListingResponses(listings []domain.Listing) []ListingResponse {
	out := make([]ListingResponse, len(listings))
	for i, l := range listings {
		out[i] = toListingResponse(l)
	}
	return out
}

func toRecommendationResponses(recs []domain.RecommendationCandidate) []RecommendationResponse {
	out := make([]RecommendationResponse, len(recs))
	for i, rec := range recs {
		out[i] = RecommendationResponse{
			Listing:                    toListingResponse(rec.Listing),
			Type:                       string(rec.Type),
			Score:                      rec.Score,
			Reason:                     domain.ReasonForType(rec.Type),
			DistanceFromFavoriteMeters: rec.DistanceFromFavoriteMeters,
		}
	}
	return out
}
