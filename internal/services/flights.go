package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/shared"
	"github.com/desertthunder/qaren/internal/telemetry"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxResults caps the number of offers requested from upstream.
	DefaultMaxResults = 10

	// errorBodyLimit bounds how much of a failed upstream body ends up in an error.
	errorBodyLimit = 512
)

// FlightServiceOpts configures a [FlightService].
type FlightServiceOpts struct {
	SearchURL  string
	MaxResults int           // defaults to [DefaultMaxResults]
	RateLimit  float64       // requests per second; zero means unlimited
	Timeout    time.Duration // per search; zero means none
	HTTPClient *http.Client  // defaults to [http.DefaultClient]
}

// FlightService forwards flight-offer searches upstream with a cached bearer token.
type FlightService struct {
	searchURL  string
	maxResults int
	timeout    time.Duration
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewFlightService creates a [FlightService] that authenticates through tokens.
func NewFlightService(tokens TokenSource, opts FlightServiceOpts) *FlightService {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	s := &FlightService{
		searchURL:  opts.SearchURL,
		maxResults: opts.MaxResults,
		timeout:    opts.Timeout,
		tokens:     tokens,
		httpClient: opts.HTTPClient,
	}
	if opts.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return s
}

// Search obtains a token, forwards q upstream and returns the response body unmodified.
func (s *FlightService) Search(ctx context.Context, q models.SearchQuery) (models.SearchResult, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
		}
	}

	start := time.Now()
	body, err := s.get(ctx, token, q)
	telemetry.ObserveUpstreamSearch(time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return models.SearchResult(body), nil
}

func (s *FlightService) get(ctx context.Context, token string, q models.SearchQuery) ([]byte, error) {
	fullURL, err := withQuery(s.searchURL, q.UpstreamValues(s.maxResults))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d %s", shared.ErrUpstreamStatus, resp.StatusCode, shared.Truncate(string(body), errorBodyLimit))
	}
	if !json.Valid(body) {
		return nil, shared.ErrInvalidPayload
	}
	return body, nil
}

// withQuery merges params into any query string rawURL already carries.
func withQuery(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	merged := u.Query()
	for k, vs := range params {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}
