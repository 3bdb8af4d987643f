package domain

import "github.com/google/uuid"

// UserPreferenceProfile - накопленные предпочтения покупателя.
// Все поля заданы явно, с нулевыми значениями по умолчанию:
// никаких опциональных вложенных объектов и проверок на существование.
type UserPreferenceProfile struct {
	UserID             uuid.UUID
	PreferredTypes     []string
	PreferredLocations []string
	BudgetMin          float64
	BudgetMax          float64
	BedroomsMin        int
	BedroomsMax        int
	BathroomsMin       int
	BathroomsMax       int
}

// NewUserPreferenceProfile - пустой профиль с дефолтами.
func NewUserPreferenceProfile(userID uuid.UUID) *UserPreferenceProfile {
	return &UserPreferenceProfile{
		UserID:             userID,
		PreferredTypes:     []string{},
		PreferredLocations: []string{},
	}
}

// IsEmpty - профиль без единого накопленного сигнала.
func (p *UserPreferenceProfile) IsEmpty() bool {
	return len(p.PreferredTypes) == 0 &&
		len(p.PreferredLocations) == 0 &&
		p.BudgetMin == 0 && p.BudgetMax == 0 &&
		p.BedroomsMin == 0 && p.BedroomsMax == 0 &&
		p.BathroomsMin == 0 && p.BathroomsMax == 0
}

// TopPreferredLocation - первый предпочитаемый город или пустая строка.
func (p *UserPreferenceProfile) TopPreferredLocation() string {
	if len(p.PreferredLocations) > 0 {
		return p.PreferredLocations[0]
	}
	return ""
}

// ApplyListing расширяет профиль по добавленному в избранное объявлению.
// Тип и город добавляются в множества; числовые границы заполняются только
// пока стоят на нулевом дефолте (first-write-wins, без усреднений).
// Возвращает true, если профиль изменился и его нужно сохранить.
func (p *UserPreferenceProfile) ApplyListing(l Listing) bool {
	changed := false

	if l.PropertyType != "" && !containsString(p.PreferredTypes, l.PropertyType) {
		p.PreferredTypes = append(p.PreferredTypes, l.PropertyType)
		changed = true
	}
	if l.City != "" && !containsString(p.PreferredLocations, l.City) {
		p.PreferredLocations = append(p.PreferredLocations, l.City)
		changed = true
	}

	if l.PriceAmount > 0 {
		if p.BudgetMax == 0 {
			p.BudgetMax = l.PriceAmount
			changed = true
		}
		if p.BudgetMin == 0 {
			p.BudgetMin = l.PriceAmount
			changed = true
		}
	}

	if l.Bedrooms > 0 && p.BedroomsMax == 0 {
		p.BedroomsMin = l.Bedrooms
		p.BedroomsMax = l.Bedrooms
		changed = true
	}
	if l.Bathrooms > 0 && p.BathroomsMax == 0 {
		p.BathroomsMin = l.Bathrooms
		p.BathroomsMax = l.Bathrooms
		changed = true
	}

	return changed
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
