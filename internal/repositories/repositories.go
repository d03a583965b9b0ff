// package repositories provides persistence layer implementations for the model types.
package repositories

import (
	"time"

	"github.com/desertthunder/qaren/internal/models"
)

var _ models.HistoryStore = (*SearchRepository)(nil)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanSearch(s scanner) (*models.SearchRecord, error) {
	var (
		id, requestID, status, detail string
		q                             models.SearchQuery
		latencyMS                     int64
		createdAt                     time.Time
	)

	err := s.Scan(&id, &requestID,
		&q.Origin, &q.Destination, &q.Date, &q.ReturnDate, &q.Adults, &q.NonStop, &q.Currency,
		&status, &detail, &latencyMS, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	return models.RestoreSearchRecord(id, requestID, q, models.SearchStatus(status), detail,
		time.Duration(latencyMS)*time.Millisecond, createdAt), nil
}
