package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// OverpassAPIClient - клиент Overpass API (геоданные OpenStreetMap).
// Реализует порт GeoFeaturesPort. Один вызов - один запрос, без ретраев:
// скореры выше сами деградируют до дефолтов при отказе.
type OverpassAPIClient struct {
	baseURL    string // Например, "https://overpass-api.de/api/interpreter"
	httpClient *http.Client
}

// NewOverpassAPIClient - конструктор.
func NewOverpassAPIClient(baseURL string, timeout time.Duration) *OverpassAPIClient {
	return &OverpassAPIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// overpassResponse - ответ Overpass в формате [out:json].
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// overpassElement - узел, линия или отношение. У линий и отношений
// координата приходит в поле center (запрос делается с "out center").
type overpassElement struct {
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FeaturesAround реализует порт GeoFeaturesPort.
func (c *OverpassAPIClient) FeaturesAround(ctx context.Context, center domain.Coordinate, radiusMeters float64, filters []port.TagFilter) ([]port.GeoFeature, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component":    "OverpassAPIClient",
		"radius_m":     radiusMeters,
		"filter_count": len(filters),
	})

	query := buildQuery(center, radiusMeters, filters)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Failed to perform request to Overpass", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("overpass returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
		clientLogger.Error("Received non-OK response from Overpass", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var apiResponse overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		clientLogger.Error("Failed to decode Overpass response", err, nil)
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}

	features := make([]port.GeoFeature, 0, len(apiResponse.Elements))
	for _, el := range apiResponse.Elements {
		lat, lon := el.Lat, el.Lon
		if el.Center != nil {
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		coord, err := domain.NewCoordinate(lat, lon)
		if err != nil {
			// Элемент без валидной координаты бесполезен для скореров.
			continue
		}
		features = append(features, port.GeoFeature{Coordinate: coord, Tags: el.Tags})
	}

	clientLogger.Debug("Overpass query finished", port.Fields{"features_found": len(features)})
	return features, nil
}

// buildQuery собирает запрос Overpass QL: по каждому фильтру берутся
// node/way/relation вокруг точки, для полигонов запрашивается центроид.
func buildQuery(center domain.Coordinate, radiusMeters float64, filters []port.TagFilter) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];(")
	for _, f := range filters {
		var clause string
		if f.Regex {
			clause = fmt.Sprintf(`["%s"~"%s"]`, f.Key, f.Value)
		} else {
			clause = fmt.Sprintf(`["%s"="%s"]`, f.Key, f.Value)
		}
		around := fmt.Sprintf("(around:%.0f,%.6f,%.6f);", radiusMeters, center.Latitude, center.Longitude)
		b.WriteString("node" + clause + around)
		b.WriteString("way" + clause + around)
		b.WriteString("relation" + clause + around)
	}
	b.WriteString(");out center;")
	return b.String()
}
