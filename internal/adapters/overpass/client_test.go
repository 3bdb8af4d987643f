package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

func TestBuildQuery(t *testing.T) {
	center := domain.Coordinate{Latitude: 18.52, Longitude: 73.85}

	t.Run("точное совпадение тега", func(t *testing.T) {
		query := buildQuery(center, 2000, []port.TagFilter{{Key: "amenity", Value: "hospital"}})

		if !strings.HasPrefix(query, "[out:json][timeout:25];(") {
			t.Errorf("unexpected query prefix: %q", query)
		}
		if !strings.HasSuffix(query, ");out center;") {
			t.Errorf("unexpected query suffix: %q", query)
		}
		for _, kind := range []string{"node", "way", "relation"} {
			want := kind + `["amenity"="hospital"](around:2000,18.520000,73.850000);`
			if !strings.Contains(query, want) {
				t.Errorf("query must contain %q, got %q", want, query)
			}
		}
	})

	t.Run("regex-фильтр использует оператор ~", func(t *testing.T) {
		query := buildQuery(center, 2000, []port.TagFilter{
			{Key: "highway", Value: "primary|secondary|tertiary|trunk", Regex: true},
		})
		if !strings.Contains(query, `["highway"~"primary|secondary|tertiary|trunk"]`) {
			t.Errorf("expected regex clause in query: %q", query)
		}
	})
}

func TestFeaturesAround(t *testing.T) {
	center := domain.Coordinate{Latitude: 18.52, Longitude: 73.85}

	t.Run("узлы и центроиды линий превращаются в фичи", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if data := r.FormValue("data"); !strings.Contains(data, `["amenity"="hospital"]`) {
				t.Errorf("query not passed in form: %q", data)
			}
			w.Write([]byte(`{"elements": [
				{"type": "node", "lat": 18.521, "lon": 73.851, "tags": {"amenity": "hospital"}},
				{"type": "way", "center": {"lat": 18.525, "lon": 73.855}, "tags": {"amenity": "hospital"}},
				{"type": "node", "lat": 200, "lon": 0, "tags": {"amenity": "hospital"}}
			]}`))
		}))
		defer server.Close()

		client := NewOverpassAPIClient(server.URL, time.Second)
		features, err := client.FeaturesAround(context.Background(), center, 2000, []port.TagFilter{{Key: "amenity", Value: "hospital"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Элемент с невалидной широтой отброшен.
		if len(features) != 2 {
			t.Fatalf("expected 2 features, got %d", len(features))
		}
		if features[1].Coordinate.Latitude != 18.525 {
			t.Errorf("way must use its center coordinate, got %v", features[1].Coordinate)
		}
	})

	t.Run("не-200 ответ превращается в ошибку", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewOverpassAPIClient(server.URL, time.Second)
		_, err := client.FeaturesAround(context.Background(), center, 2000, []port.TagFilter{{Key: "amenity", Value: "hospital"}})
		if err == nil {
			t.Fatal("expected an error for a non-200 response")
		}
		if !strings.Contains(err.Error(), "429") {
			t.Errorf("error should carry the status code: %v", err)
		}
	})
}
