package models

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// DefaultAdults is used when a query omits the adult passenger count.
const DefaultAdults = "1"

// SearchQuery holds the inbound search parameters, forwarded without validation.
type SearchQuery struct {
	Origin      string `json:"from"`
	Destination string `json:"to"`
	Date        string `json:"date"`
	Adults      string `json:"adults"`
	ReturnDate  string `json:"returnDate,omitempty"`
	NonStop     string `json:"nonStop,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// NewSearchQuery builds a SearchQuery from request query parameters.
func NewSearchQuery(v url.Values) SearchQuery {
	q := SearchQuery{
		Origin:      v.Get("from"),
		Destination: v.Get("to"),
		Date:        v.Get("date"),
		Adults:      v.Get("adults"),
		ReturnDate:  v.Get("returnDate"),
		NonStop:     v.Get("nonStop"),
		Currency:    v.Get("currency"),
	}
	return q.WithDefaults()
}

// WithDefaults returns a copy of q with Adults defaulted.
func (q SearchQuery) WithDefaults() SearchQuery {
	if q.Adults == "" {
		q.Adults = DefaultAdults
	}
	return q
}

// UpstreamValues maps the query onto the flight-offers API parameters.
//
// Optional parameters are only included when set.
func (q SearchQuery) UpstreamValues(max int) url.Values {
	q = q.WithDefaults()
	v := url.Values{}
	v.Set("originLocationCode", q.Origin)
	v.Set("destinationLocationCode", q.Destination)
	v.Set("departureDate", q.Date)
	v.Set("adults", q.Adults)
	v.Set("max", strconv.Itoa(max))
	if q.ReturnDate != "" {
		v.Set("returnDate", q.ReturnDate)
	}
	if q.NonStop != "" {
		v.Set("nonStop", q.NonStop)
	}
	if q.Currency != "" {
		v.Set("currencyCode", q.Currency)
	}
	return v
}

// Route returns "ORIGIN→DESTINATION" for logs and CLI output.
func (q SearchQuery) Route() string {
	return q.Origin + "→" + q.Destination
}

// SearchResult is the upstream payload, relayed verbatim.
type SearchResult json.RawMessage

// Bytes returns the raw payload.
func (r SearchResult) Bytes() []byte {
	return []byte(r)
}

// MarshalJSON embeds the payload as-is.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// ErrorBody is the single error envelope returned by the search endpoint.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// APIErrorCode is the only error code the search endpoint reports.
const APIErrorCode = "API_ERROR"
