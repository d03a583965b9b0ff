package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/shared"
)

const searchColumns = `id, request_id, origin, destination, departure_date, return_date, adults, non_stop, currency,
	status, detail, latency_ms, created_at`

// SearchRepository implements [models.HistoryStore] on the searches table.
type SearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new [SearchRepository] with the given database connection
func NewSearchRepository(db *sql.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Create inserts a search record with a generated ID
func (r *SearchRepository) Create(record *models.SearchRecord) error {
	record.SetID(shared.GenerateID())

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	q := record.Query()
	query := `
		INSERT INTO searches (` + searchColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.ID(), record.RequestID(),
		q.Origin, q.Destination, q.Date, q.ReturnDate, q.Adults, q.NonStop, q.Currency,
		string(record.Status()), record.Detail(), record.Latency().Milliseconds(), record.CreatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert search: %w", err)
	}

	return nil
}

// Get retrieves a search record by ID
func (r *SearchRepository) Get(id string) (*models.SearchRecord, error) {
	query := `SELECT ` + searchColumns + ` FROM searches WHERE id = ?`

	record, err := scanSearch(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSearchNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query search: %w", err)
	}

	return record, nil
}

// List returns records matching criteria, newest first
func (r *SearchRepository) List(criteria models.ListCriteria) ([]*models.SearchRecord, error) {
	var (
		where []string
		args  []any
	)
	if criteria.Origin != "" {
		where = append(where, "origin = ?")
		args = append(args, criteria.Origin)
	}
	if criteria.Destination != "" {
		where = append(where, "destination = ?")
		args = append(args, criteria.Destination)
	}
	if criteria.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(criteria.Status))
	}
	if !criteria.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, criteria.Since.UTC())
	}

	query := `SELECT ` + searchColumns + ` FROM searches`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if criteria.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, criteria.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var records []*models.SearchRecord
	for rows.Next() {
		record, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating searches: %w", err)
	}

	return records, nil
}

// Count returns the number of stored records
func (r *SearchRepository) Count() (int64, error) {
	var n int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM searches").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count searches: %w", err)
	}
	return n, nil
}

// Clear deletes records created before the given time, or every record when before is zero.
// Returns the number of deleted rows.
func (r *SearchRepository) Clear(before time.Time) (int64, error) {
	var (
		result sql.Result
		err    error
	)
	if before.IsZero() {
		result, err = r.db.Exec("DELETE FROM searches")
	} else {
		result, err = r.db.Exec("DELETE FROM searches WHERE created_at < ?", before.UTC())
	}
	if err != nil {
		return 0, fmt.Errorf("failed to clear searches: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
