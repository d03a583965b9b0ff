package models

import "time"

// CachedToken is a bearer token together with the instant it stops being reusable.
//
// ExpiresAt already has the safety margin subtracted.
type CachedToken struct {
	Value     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the token may be reused at now.
func (t CachedToken) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// Remaining returns how long the token stays reusable after now, or zero if it is stale.
func (t CachedToken) Remaining(now time.Time) time.Duration {
	if !t.Valid(now) {
		return 0
	}
	return t.ExpiresAt.Sub(now)
}

// Masked returns the first and last four characters of the token for display.
func (t CachedToken) Masked() string {
	if len(t.Value) <= 8 {
		return "********"
	}
	return t.Value[:4] + "…" + t.Value[len(t.Value)-4:]
}
