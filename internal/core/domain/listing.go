package domain

import (
	"time"

	"github.com/google/uuid"
)

// Статусы объявления.
const (
	ListingStatusActive     = "active"
	ListingStatusUnderOffer = "under_offer"
	ListingStatusSold       = "sold"
	ListingStatusRented     = "rented"
	ListingStatusInactive   = "inactive"
)

// Listing - карточка объекта недвижимости в том виде, в котором ее читает
// это ядро: достаточно полей для генераторов рекомендаций и записи оценок.
type Listing struct {
	ID           uuid.UUID
	Title        string
	PropertyType string // apartment, house, villa, commercial, land, office, shop
	ListingType  string // sale / rent
	PriceAmount  float64
	Currency     string
	Bedrooms     int
	Bathrooms    int
	City         string
	State        string

	// Coordinate == nil, если владелец не указал точку на карте.
	Coordinate *Coordinate

	// Scores == nil до первого успешного расчета.
	Scores *LocationScores

	Status         string
	Featured       bool
	OwnerID        uuid.UUID
	Views          int64
	InquiriesCount int
	CreatedAt      time.Time
}
