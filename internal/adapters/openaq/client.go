package openaq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"recommendation-service/internal/contextkeys"
	"recommendation-service/internal/core/domain"
	"recommendation-service/internal/core/port"
)

// OpenAQAPIClient - клиент OpenAQ (измерения качества воздуха).
// Реализует порт AirQualityPort.
type OpenAQAPIClient struct {
	baseURL    string // Например, "https://api.openaq.org"
	apiKey     string
	httpClient *http.Client
}

// NewOpenAQAPIClient - конструктор.
func NewOpenAQAPIClient(baseURL, apiKey string, timeout time.Duration) *OpenAQAPIClient {
	return &OpenAQAPIClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type latestResponse struct {
	Results []latestResult `json:"results"`
}

type latestResult struct {
	Measurements []latestMeasurement `json:"measurements"`
}

type latestMeasurement struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
}

// NearestPM25 реализует порт AirQualityPort: возвращает первое измерение
// PM2.5 от ближайшей станции в радиусе или nil, если измерений нет.
func (c *OpenAQAPIClient) NearestPM25(ctx context.Context, center domain.Coordinate, radiusMeters float64) (*float64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	clientLogger := logger.WithFields(port.Fields{
		"component": "OpenAQAPIClient",
		"radius_m":  radiusMeters,
	})

	params := url.Values{}
	params.Set("coordinates", fmt.Sprintf("%.6f,%.6f", center.Latitude, center.Longitude))
	params.Set("radius", strconv.Itoa(int(radiusMeters)))
	params.Set("parameter", "pm25")
	params.Set("order_by", "distance")
	params.Set("limit", "1")

	reqURL := c.baseURL + "/v2/latest?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		clientLogger.Error("Failed to perform request to OpenAQ", err, nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("openaq returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
		clientLogger.Error("Received non-OK response from OpenAQ", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var apiResponse latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		clientLogger.Error("Failed to decode OpenAQ response", err, nil)
		return nil, fmt.Errorf("failed to decode openaq response: %w", err)
	}

	for _, result := range apiResponse.Results {
		for _, m := range result.Measurements {
			if m.Parameter == "pm25" {
				v := m.Value
				clientLogger.Debug("PM2.5 measurement found", port.Fields{"pm25": v})
				return &v, nil
			}
		}
	}

	clientLogger.Debug("No PM2.5 measurements in radius", nil)
	return nil, nil
}
