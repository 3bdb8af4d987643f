package usecase

import (
	"context"
	"sync/atomic"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"

	"github.com/google/uuid"
)

// Фейки портов для тестов use case. Поведение задается функциональными
// полями; незаданные методы возвращают нулевые значения.

type fakeGeoPort struct {
	calls atomic.Int32
}

func (f *fakeGeoPort) FeaturesAround(_ context.Context, _ domain.Coordinate, _ float64, _ []port.TagFilter) ([]port.GeoFeature, error) {
	f.calls.Add(1)
	return nil, nil
}

type fakeAirPort struct {
	calls atomic.Int32
}

func (f *fakeAirPort) NearestPM25(_ context.Context, _ domain.Coordinate, _ float64) (*float64, error) {
	f.calls.Add(1)
	return nil, nil
}

type fakeStorage struct {
	getByIDFn      func(id uuid.UUID) (*domain.Listing, error)
	findFn         func(filter port.ListingFilter, order port.ListingOrder, limit int) ([]domain.Listing, error)
	findSimilarFn  func(filter port.SimilarityFilter, limit int) ([]domain.Listing, error)
	findNearFn     func(center domain.Coordinate, radiusMeters float64, excludeIDs []uuid.UUID, limit int) ([]domain.Listing, error)
	updateScoresFn func(listingID uuid.UUID, scores domain.LocationScores) error
}

func (f *fakeStorage) GetByID(_ context.Context, id uuid.UUID) (*domain.Listing, error) {
	if f.getByIDFn == nil {
		return nil, domain.ErrListingNotFound
	}
	return f.getByIDFn(id)
}

func (f *fakeStorage) FindListings(_ context.Context, filter port.ListingFilter, order port.ListingOrder, limit int) ([]domain.Listing, error) {
	if f.findFn == nil {
		return nil, nil
	}
	return f.findFn(filter, order, limit)
}

func (f *fakeStorage) FindSimilarListings(_ context.Context, filter port.SimilarityFilter, limit int) ([]domain.Listing, error) {
	if f.findSimilarFn == nil {
		return nil, nil
	}
	return f.findSimilarFn(filter, limit)
}

func (f *fakeStorage) FindActiveNear(_ context.Context, center domain.Coordinate, radiusMeters float64, excludeIDs []uuid.UUID, limit int) ([]domain.Listing, error) {
	if f.findNearFn == nil {
		return nil, nil
	}
	return f.findNearFn(center, radiusMeters, excludeIDs, limit)
}

func (f *fakeStorage) UpdateScores(_ context.Context, listingID uuid.UUID, scores domain.LocationScores) error {
	if f.updateScoresFn == nil {
		return nil
	}
	return f.updateScoresFn(listingID, scores)
}

type fakeFavorites struct {
	recentFn func(userID uuid.UUID, limit int) ([]domain.Listing, error)
	idsFn    func(userID uuid.UUID) ([]uuid.UUID, error)
}

func (f *fakeFavorites) RecentFavoriteListings(_ context.Context, userID uuid.UUID, limit int) ([]domain.Listing, error) {
	if f.recentFn == nil {
		return nil, nil
	}
	return f.recentFn(userID, limit)
}

func (f *fakeFavorites) FavoriteListingIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if f.idsFn == nil {
		return nil, nil
	}
	return f.idsFn(userID)
}

type fakePrefs struct {
	profile *domain.UserPreferenceProfile
	getErr  error
	saved   *domain.UserPreferenceProfile
	saveErr error
}

func (f *fakePrefs) GetProfile(_ context.Context, userID uuid.UUID) (*domain.UserPreferenceProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.profile == nil {
		return domain.NewUserPreferenceProfile(userID), nil
	}
	return f.profile, nil
}

func (f *fakePrefs) SaveProfile(_ context.Context, profile *domain.UserPreferenceProfile) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = profile
	return nil
}

type fakeCache struct {
	cached   []domain.RecommendationCandidate
	getErr   error
	stored   []domain.RecommendationCandidate
	storeErr error
}

func (f *fakeCache) GetBlended(_ context.Context, _ uuid.UUID, _ int) ([]domain.RecommendationCandidate, error) {
	return f.cached, f.getErr
}

func (f *fakeCache) StoreBlended(_ context.Context, _ uuid.UUID, _ int, recs []domain.RecommendationCandidate) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.stored = recs
	return nil
}

// Фейки генераторов для смешанной ленты.

type fakeListingsByUserGenerator struct {
	fn func(userID uuid.UUID, limit int) ([]domain.Listing, error)
}

func (f *fakeListingsByUserGenerator) Execute(_ context.Context, userID uuid.UUID, limit int) ([]domain.Listing, error) {
	return f.fn(userID, limit)
}

type fakeListingsByCityGenerator struct {
	lastCity string
	fn       func(city string, limit int) ([]domain.Listing, error)
}

func (f *fakeListingsByCityGenerator) Execute(_ context.Context, city string, limit int) ([]domain.Listing, error) {
	f.lastCity = city
	return f.fn(city, limit)
}

type fakePopularGenerator struct {
	fn func(limit int, excludeIDs []uuid.UUID) ([]domain.Listing, error)
}

func (f *fakePopularGenerator) Execute(_ context.Context, limit int, excludeIDs []uuid.UUID) ([]domain.Listing, error) {
	return f.fn(limit, excludeIDs)
}

type fakeLimitGenerator struct {
	fn func(limit int) ([]domain.Listing, error)
}

func (f *fakeLimitGenerator) Execute(_ context.Context, limit int) ([]domain.Listing, error) {
	return f.fn(limit)
}

func activeListing(city, propertyType string, price float64) domain.Listing {
	return domain.Listing{
		ID:           uuid.New(),
		PropertyType: propertyType,
		City:         city,
		PriceAmount:  price,
		Status:       domain.ListingStatusActive,
	}
}
