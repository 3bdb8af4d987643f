package domain

import "time"

// Источник данных для оценки загрязнения воздуха.
const (
	PollutionSourceMeasured  = "measured"  // реальное измерение PM2.5
	PollutionSourceEstimated = "estimated" // оценка от обратного environment score
	PollutionSourceDefault   = "default"   // полный отказ внешних источников
)

// Ключи категорий удобств в детализации. Порядок фиксирован:
// знаменатель amenity score всегда делится на полное число категорий,
// даже если по части категорий ничего не найдено.
var AmenityCategoryKeys = []string{
	"hospital", "school", "college", "mall", "pharmacy", "police", "bus_stop",
}

// AmenityDetail - ближайший найденный объект одной категории.
type AmenityDetail struct {
	Found          bool
	DistanceMeters *float64 // nil, если категория не найдена
}

type EnvironmentDetails struct {
	GreenFeatures          int
	IndustrialFeatures     int
	NearestMajorRoadMeters *float64 // nil - крупных дорог в радиусе нет
}

type SafetyDetails struct {
	PoliceStations      int
	NearestPoliceMeters *float64
	CCTVCameras         int
	NightlifeSpots      int
}

type PollutionDetails struct {
	PM25       *float64 // nil, если измерение не использовалось
	DataSource string
}

// ScoreDetails - структурированная разбивка, из которой были получены оценки.
type ScoreDetails struct {
	Amenity     map[string]AmenityDetail `json:"amenity"`
	Environment EnvironmentDetails       `json:"environment"`
	Safety      SafetyDetails            `json:"safety"`
	Pollution   PollutionDetails         `json:"pollution"`
}

// LocationScores - результат полного расчета оценок локации.
// Пересчитывается всегда целиком; частичных обновлений не бывает.
type LocationScores struct {
	AmenityScore     int
	EnvironmentScore int
	SafetyScore      int
	PollutionScore   int
	OverallScore     int
	Details          ScoreDetails
	CalculatedAt     time.Time
}

// Веса итоговой оценки.
const (
	OverallWeightAmenity     = 0.30
	OverallWeightEnvironment = 0.25
	OverallWeightSafety      = 0.25
	OverallWeightPollution   = 0.20
)
