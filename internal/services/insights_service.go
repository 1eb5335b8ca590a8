package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Custom errors for the insights integration
var (
	ErrInsightsAPIError    = errors.New("insights API error")
	ErrInsightsUnavailable = errors.New("insights API unavailable")
)

// InsightsClient defines the interface for the generative insights API.
// #INTEGRATION_POINT: External API that enriches recommendation texts
// per domain score. The platform never depends on it being up; callers
// fall back to the deterministic recommendation table.
type InsightsClient interface {
	// EnrichRecommendation returns an enriched narrative for a domain score
	EnrichRecommendation(ctx context.Context, req InsightRequest) (*InsightResponse, error)
}

// InsightRequest describes one domain score to enrich
type InsightRequest struct {
	Domain      string  `json:"domain"`
	Score       float64 `json:"score"`
	Level       string  `json:"level"`
	BaseMessage string  `json:"base_message"`
	Language    string  `json:"language"`
}

// InsightResponse is the enriched narrative returned by the API
type InsightResponse struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// HTTPInsightsClient implements InsightsClient via HTTP
type HTTPInsightsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPInsightsClient creates a new HTTP-based insights client
func NewHTTPInsightsClient(baseURL, apiKey string) *HTTPInsightsClient {
	return &HTTPInsightsClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			// Check-in responses wait on this call, keep the budget short
			Timeout: 5 * time.Second,
		},
	}
}

var _ InsightsClient = (*HTTPInsightsClient)(nil)

// EnrichRecommendation calls the insights API for one domain score
func (c *HTTPInsightsClient) EnrichRecommendation(ctx context.Context, req InsightRequest) (*InsightResponse, error) {
	url := fmt.Sprintf("%s/api/v1/insights", c.baseURL)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, ErrInsightsUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrInsightsAPIError, string(respBody))
	}

	var data InsightResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode insights response: %w", err)
	}

	return &data, nil
}

// MockInsightsClient is a mock implementation for development/testing
type MockInsightsClient struct {
	MockMessage string
	Fail        bool
}

// NewMockInsightsClient creates a mock insights client
func NewMockInsightsClient() *MockInsightsClient {
	return &MockInsightsClient{
		MockMessage: "Continúa con tus hábitos actuales.",
	}
}

var _ InsightsClient = (*MockInsightsClient)(nil)

// EnrichRecommendation returns canned data, or fails when configured to
func (c *MockInsightsClient) EnrichRecommendation(ctx context.Context, req InsightRequest) (*InsightResponse, error) {
	if c.Fail {
		return nil, ErrInsightsUnavailable
	}
	return &InsightResponse{
		Message:     c.MockMessage,
		Suggestions: []string{"Sugerencia de prueba"},
	}, nil
}
