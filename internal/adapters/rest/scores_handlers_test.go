package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recommendation-service/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type fakeCalculateUC struct {
	fn func(lat, lon float64) (*domain.LocationScores, error)
}

func (f *fakeCalculateUC) Execute(_ context.Context, lat, lon float64) (*domain.LocationScores, error) {
	return f.fn(lat, lon)
}

type fakeRefreshUC struct {
	fn func(listingID uuid.UUID) (*domain.LocationScores, error)
}

func (f *fakeRefreshUC) Execute(_ context.Context, listingID uuid.UUID) (*domain.LocationScores, error) {
	return f.fn(listingID)
}

func sampleScores() *domain.LocationScores {
	return &domain.LocationScores{
		AmenityScore:     70,
		EnvironmentScore: 60,
		SafetyScore:      55,
		PollutionScore:   80,
		OverallScore:     66,
		Details: domain.ScoreDetails{
			Amenity:   map[string]domain.AmenityDetail{},
			Pollution: domain.PollutionDetails{DataSource: domain.PollutionSourceMeasured},
		},
		CalculatedAt: time.Now().UTC(),
	}
}

func TestCalculateScoresHandler(t *testing.T) {
	t.Run("валидный запрос возвращает оценки", func(t *testing.T) {
		handler := NewScoresHandler(&fakeCalculateUC{fn: func(lat, lon float64) (*domain.LocationScores, error) {
			if lat != 18.52 || lon != 73.85 {
				t.Errorf("coordinates not passed through: %v, %v", lat, lon)
			}
			return sampleScores(), nil
		}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scores/calculate", strings.NewReader(`{"latitude": 18.52, "longitude": 73.85}`))
		rec := httptest.NewRecorder()
		handler.CalculateScores(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"overall_score":66`) {
			t.Errorf("response should carry overall score: %s", rec.Body.String())
		}
	})

	t.Run("битое тело запроса дает 400", func(t *testing.T) {
		handler := NewScoresHandler(&fakeCalculateUC{fn: func(_, _ float64) (*domain.LocationScores, error) {
			t.Error("use case must not run on a bad body")
			return nil, nil
		}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scores/calculate", strings.NewReader(`{broken`))
		rec := httptest.NewRecorder()
		handler.CalculateScores(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("невалидные координаты дают 400", func(t *testing.T) {
		handler := NewScoresHandler(&fakeCalculateUC{fn: func(_, _ float64) (*domain.LocationScores, error) {
			return nil, domain.ErrInvalidCoordinate
		}}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/scores/calculate", strings.NewReader(`{"latitude": 91, "longitude": 0}`))
		rec := httptest.NewRecorder()
		handler.CalculateScores(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

// withListingID подставляет URL-параметр chi для вызова обработчика напрямую.
func withListingID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("listingID", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRecalculateListingScoresHandler(t *testing.T) {
	t.Run("невалидный listingID дает 400", func(t *testing.T) {
		handler := NewScoresHandler(nil, &fakeRefreshUC{fn: func(_ uuid.UUID) (*domain.LocationScores, error) {
			t.Error("use case must not run with a bad id")
			return nil, nil
		}})

		req := withListingID(httptest.NewRequest(http.MethodPost, "/api/v1/listings/not-a-uuid/scores/recalculate", nil), "not-a-uuid")
		rec := httptest.NewRecorder()
		handler.RecalculateListingScores(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("несуществующее объявление дает 404", func(t *testing.T) {
		handler := NewScoresHandler(nil, &fakeRefreshUC{fn: func(_ uuid.UUID) (*domain.LocationScores, error) {
			return nil, domain.ErrListingNotFound
		}})

		id := uuid.New().String()
		req := withListingID(httptest.NewRequest(http.MethodPost, "/api/v1/listings/"+id+"/scores/recalculate", nil), id)
		rec := httptest.NewRecorder()
		handler.RecalculateListingScores(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("объявление без координат дает 422", func(t *testing.T) {
		handler := NewScoresHandler(nil, &fakeRefreshUC{fn: func(_ uuid.UUID) (*domain.LocationScores, error) {
			return nil, domain.ErrListingHasNoCoordinates
		}})

		id := uuid.New().String()
		req := withListingID(httptest.NewRequest(http.MethodPost, "/api/v1/listings/"+id+"/scores/recalculate", nil), id)
		rec := httptest.NewRecorder()
		handler.RecalculateListingScores(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("успешный пересчет возвращает 200 и оценки", func(t *testing.T) {
		handler := NewScoresHandler(nil, &fakeRefreshUC{fn: func(_ uuid.UUID) (*domain.LocationScores, error) {
			return sampleScores(), nil
		}})

		id := uuid.New().String()
		req := withListingID(httptest.NewRequest(http.MethodPost, "/api/v1/listings/"+id+"/scores/recalculate", nil), id)
		rec := httptest.NewRecorder()
		handler.RecalculateListingScores(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"overall_score":66`) {
			t.Errorf("response should carry overall score: %s", rec.Body.String())
		}
	})

	t.Run("внутренняя ошибка дает 500", func(t *testing.T) {
		handler := NewScoresHandler(nil, &fakeRefreshUC{fn: func(_ uuid.UUID) (*domain.LocationScores, error) {
			return nil, errors.New("storage down")
		}})

		id := uuid.New().String()
		req := withListingID(httptest.NewRequest(http.MethodPost, "/api/v1/listings/"+id+"/scores/recalculate", nil), id)
		rec := httptest.NewRecorder()
		handler.RecalculateListingScores(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}
