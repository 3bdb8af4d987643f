package openaq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recommendation-service/internal/core/domain"
)

func TestNearestPM25(t *testing.T) {
	center := domain.Coordinate{Latitude: 18.52, Longitude: 73.85}

	t.Run("измерение от ближайшей станции возвращается", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("parameter") != "pm25" {
				t.Errorf("expected parameter=pm25, got %q", q.Get("parameter"))
			}
			if q.Get("order_by") != "distance" {
				t.Errorf("expected order_by=distance, got %q", q.Get("order_by"))
			}
			if r.Header.Get("X-API-Key") != "test-key" {
				t.Errorf("expected api key header, got %q", r.Header.Get("X-API-Key"))
			}
			w.Write([]byte(`{"results": [{"measurements": [
				{"parameter": "no2", "value": 12.0},
				{"parameter": "pm25", "value": 42.5}
			]}]}`))
		}))
		defer server.Close()

		client := NewOpenAQAPIClient(server.URL, "test-key", time.Second)
		pm25, err := client.NearestPM25(context.Background(), center, 20000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pm25 == nil || *pm25 != 42.5 {
			t.Errorf("expected 42.5, got %v", pm25)
		}
	})

	t.Run("без измерений возвращается nil без ошибки", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"results": []}`))
		}))
		defer server.Close()

		client := NewOpenAQAPIClient(server.URL, "", time.Second)
		pm25, err := client.NearestPM25(context.Background(), center, 20000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pm25 != nil {
			t.Errorf("expected nil measurement, got %v", *pm25)
		}
	})

	t.Run("не-200 ответ превращается в ошибку", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewOpenAQAPIClient(server.URL, "", time.Second)
		if _, err := client.NearestPM25(context.Background(), center, 20000); err == nil {
			t.Fatal("expected an error for a non-200 response")
		}
	})
}
