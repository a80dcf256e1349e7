package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dealer_backoffice_backend/platform/config"
	"dealer_backoffice_backend/platform/logger"
)

// HTTPProvider is a JSON REST client for one distributor's catalog API.
// All configured distributors expose the same search endpoint shape; the
// base URL and API key come from configuration.
type HTTPProvider struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewHTTPProvider creates a catalog client for a configured distributor.
// The HTTP client timeout is a transport safety net; the aggregator applies
// the effective per-call deadline through context.
func NewHTTPProvider(d config.Distributor, log *logger.Logger) *HTTPProvider {
	return &HTTPProvider{
		name:       d.Name,
		baseURL:    d.BaseURL,
		apiKey:     d.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Name returns the distributor identifier.
func (p *HTTPProvider) Name() string {
	return p.name
}

// Search queries the distributor's product search endpoint.
func (p *HTTPProvider) Search(ctx context.Context, query string, category string) ([]RawOffer, error) {
	params := url.Values{}
	params.Set("search", query)
	if category != "" {
		params.Set("category", category)
	}

	reqURL := fmt.Sprintf("%s/v1/products?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue to decode
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("unauthorized: invalid API key for %s", p.name)
	case http.StatusNotFound:
		// Endpoint exists but no match - not an error
		return nil, nil
	default:
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var payload struct {
		Items []RawOffer `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		p.log.Error("catalog provider decode failed", "distributor", p.name, "error", err)
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return payload.Items, nil
}

// Compile-time check that HTTPProvider implements CatalogProvider
var _ CatalogProvider = (*HTTPProvider)(nil)
