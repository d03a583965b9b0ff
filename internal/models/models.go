// package models defines the data model for the flight search proxy
package models

import (
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// ListCriteria narrows a history listing. Zero values mean "no filter".
type ListCriteria struct {
	Origin      string
	Destination string
	Status      SearchStatus
	Since       time.Time
	Limit       int
}

// HistoryStore defines data access for search history.
type HistoryStore interface {
	Create(record *SearchRecord) error                   // Create inserts a record, assigning its ID
	Get(id string) (*SearchRecord, error)                // Get retrieves a record by ID
	List(criteria ListCriteria) ([]*SearchRecord, error) // List returns records newest first
	Count() (int64, error)                               // Count returns the number of stored records
	Clear(before time.Time) (int64, error)               // Clear deletes records created before the given time (all if zero)
}
