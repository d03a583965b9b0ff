package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SearchStatus is the outcome of a proxied search.
type SearchStatus string

const (
	StatusOK    SearchStatus = "ok"
	StatusError SearchStatus = "error"
)

// SearchRecord is one row of search history.
type SearchRecord struct {
	id        string
	requestID string
	query     SearchQuery
	status    SearchStatus
	detail    string
	latency   time.Duration
	createdAt time.Time
}

// NewSearchRecord creates an unsaved record for query. A nil err means the search succeeded.
func NewSearchRecord(requestID string, query SearchQuery, err error, latency time.Duration) *SearchRecord {
	r := &SearchRecord{
		requestID: requestID,
		query:     query,
		status:    StatusOK,
		latency:   latency,
		createdAt: time.Now().UTC(),
	}
	if err != nil {
		r.status = StatusError
		r.detail = err.Error()
	}
	return r
}

// RestoreSearchRecord rebuilds a record read back from storage.
func RestoreSearchRecord(id, requestID string, query SearchQuery, status SearchStatus, detail string, latency time.Duration, createdAt time.Time) *SearchRecord {
	return &SearchRecord{
		id:        id,
		requestID: requestID,
		query:     query,
		status:    status,
		detail:    detail,
		latency:   latency,
		createdAt: createdAt,
	}
}

func (r *SearchRecord) ID() string             { return r.id }
func (r *SearchRecord) SetID(id string)        { r.id = id }
func (r *SearchRecord) RequestID() string      { return r.requestID }
func (r *SearchRecord) Query() SearchQuery     { return r.query }
func (r *SearchRecord) Status() SearchStatus   { return r.status }
func (r *SearchRecord) Detail() string         { return r.detail }
func (r *SearchRecord) Latency() time.Duration { return r.latency }
func (r *SearchRecord) CreatedAt() time.Time   { return r.createdAt }

// Validate checks the record can be stored.
func (r *SearchRecord) Validate() error {
	if r.id == "" {
		return fmt.Errorf("search record id is required")
	}
	switch r.status {
	case StatusOK, StatusError:
	default:
		return fmt.Errorf("invalid search status %q", r.status)
	}
	if r.latency < 0 {
		return fmt.Errorf("latency cannot be negative")
	}
	return nil
}

type searchRecordJSON struct {
	ID        string       `json:"id"`
	RequestID string       `json:"request_id,omitempty"`
	Query     SearchQuery  `json:"query"`
	Status    SearchStatus `json:"status"`
	Detail    string       `json:"detail,omitempty"`
	LatencyMS int64        `json:"latency_ms"`
	CreatedAt time.Time    `json:"created_at"`
}

// MarshalJSON implements [json.Marshaler].
func (r *SearchRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(searchRecordJSON{
		ID:        r.id,
		RequestID: r.requestID,
		Query:     r.query,
		Status:    r.status,
		Detail:    r.detail,
		LatencyMS: r.latency.Milliseconds(),
		CreatedAt: r.createdAt,
	})
}
