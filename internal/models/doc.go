// Package models defines the data types shared by the proxy, the history store, and the CLI.
//
// The package contains two categories of types:
//
// 1. Request-scoped values that never outlive one search:
//   - [SearchQuery] : the inbound parameters mapped onto the upstream query string
//   - [SearchResult] : the opaque upstream JSON payload, relayed byte for byte
//
// 2. Longer-lived state:
//   - [CachedToken] : the bearer token and its reuse deadline, one per process
//   - [SearchRecord] : a persisted history row describing one proxied search
//
// [SearchRecord] implements [Model]; [HistoryStore] is the persistence contract implemented by repositories.SearchRepository.
package models
