// Package services talks to the flight-offers provider.
//
// # Token Cache
//
// [TokenCache] performs the OAuth2 client-credentials grant with
// [clientcredentials.Config], sending the client id and secret as form parameters.
// The token is stored with an expiry of issue time plus expires_in minus a 60 second margin,
// and is reused while the clock is before that instant.
// Concurrent callers that find the token stale share one exchange through [singleflight.Group].
//
// # Flight Search
//
// [FlightService] maps a [models.SearchQuery] onto the provider's query parameters,
// attaches the bearer token and returns the response body verbatim.
// An optional [rate.Limiter] throttles upstream calls.
//
// # Proxy Client
//
// [ProxyClient] searches through a running qaren server instead of the provider.
// The CLI uses it when --server is set so that searches share the server's token.
// An API_ERROR body is turned back into [shared.ErrAPIRequest] carrying its detail.
//
// # Error Handling
//
// Services wrap sentinel errors from the shared package:
//   - [shared.ErrTokenExchange] : identity endpoint unreachable, non-2xx or missing access_token
//   - [shared.ErrAPIRequest] : search request could not be sent
//   - [shared.ErrUpstreamStatus] : search endpoint answered with a non-2xx status
//   - [shared.ErrInvalidPayload] : search endpoint answered with invalid JSON
package services
