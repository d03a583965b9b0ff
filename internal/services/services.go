// package services implements the upstream clients: the token cache and the flight-offer search
package services

import (
	"context"

	"github.com/desertthunder/qaren/internal/models"
)

// TokenSource hands out bearer tokens for upstream calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// FlightSearcher runs a single flight-offer search.
//
// Implemented by [FlightService] and by test doubles in internal/testing.
type FlightSearcher interface {
	Search(ctx context.Context, q models.SearchQuery) (models.SearchResult, error)
}

var (
	_ TokenSource    = (*TokenCache)(nil)
	_ FlightSearcher = (*FlightService)(nil)
	_ FlightSearcher = (*ProxyClient)(nil)
)
