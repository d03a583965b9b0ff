package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/shared"
)

// DefaultProxyURL is where "qaren serve" listens by default.
const DefaultProxyURL = "http://127.0.0.1:3000"

// ProxyClient searches through a running qaren server instead of calling the provider directly.
type ProxyClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewProxyClient creates a [ProxyClient] for the server at baseURL.
func NewProxyClient(baseURL string, client *http.Client) *ProxyClient {
	if baseURL == "" {
		baseURL = DefaultProxyURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &ProxyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// Search calls GET /search-flights and unwraps the API_ERROR envelope into an error.
func (p *ProxyClient) Search(ctx context.Context, q models.SearchQuery) (models.SearchResult, error) {
	base, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/search-flights"
	base.RawPath = ""
	fullURL, err := withQuery(base.String(), proxyValues(q))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope models.ErrorBody
		if json.Unmarshal(body, &envelope) == nil && envelope.Error == models.APIErrorCode {
			return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, envelope.Detail)
		}
		return nil, fmt.Errorf("%w: %d %s", shared.ErrUpstreamStatus, resp.StatusCode, shared.Truncate(string(body), errorBodyLimit))
	}
	if !json.Valid(body) {
		return nil, shared.ErrInvalidPayload
	}

	return models.SearchResult(body), nil
}

// proxyValues maps q back onto the inbound parameter names of /search-flights.
func proxyValues(q models.SearchQuery) url.Values {
	v := url.Values{
		"from":   {q.Origin},
		"to":     {q.Destination},
		"date":   {q.Date},
		"adults": {q.WithDefaults().Adults},
	}
	if q.ReturnDate != "" {
		v["returnDate"] = []string{q.ReturnDate}
	}
	if q.NonStop != "" {
		v["nonStop"] = []string{q.NonStop}
	}
	if q.Currency != "" {
		v["currency"] = []string{q.Currency}
	}
	return v
}
