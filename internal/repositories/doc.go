// Package repositories implements SQLite persistence for search history.
//
// Key Implementations:
//   - [SearchRepository] : one row per proxied search with its outcome and upstream latency
//
// The schema is created by the embedded migrations in internal/shared.
// Timestamps are stored in UTC so range filters compare correctly.
package repositories
