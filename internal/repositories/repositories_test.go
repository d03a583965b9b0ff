package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func record(origin, destination string, status models.SearchStatus, createdAt time.Time) *models.SearchRecord {
	q := models.SearchQuery{Origin: origin, Destination: destination, Date: "2024-05-01", Adults: "1"}
	detail := ""
	if status == models.StatusError {
		detail = "upstream returned error status: 400"
	}
	return models.RestoreSearchRecord("", "req-"+origin+destination, q, status, detail, 420*time.Millisecond, createdAt)
}

func TestSearchRepository(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)
		r := models.NewSearchRecord("req-1", models.SearchQuery{Origin: "RUH", Destination: "JED"}, nil, time.Second)

		if err := repo.Create(r); err != nil {
			t.Fatalf("failed to create search: %v", err)
		}
		if r.ID() == "" {
			t.Error("search ID should be set after creation")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)
		r := record("RUH", "JED", models.StatusError, base)
		if err := repo.Create(r); err != nil {
			t.Fatalf("failed to create search: %v", err)
		}

		got, err := repo.Get(r.ID())
		if err != nil {
			t.Fatalf("failed to get search: %v", err)
		}
		if got.Query().Origin != "RUH" || got.Query().Destination != "JED" || got.Query().Date != "2024-05-01" {
			t.Errorf("unexpected query %+v", got.Query())
		}
		if got.Status() != models.StatusError || got.Detail() == "" {
			t.Errorf("expected error status with detail, got %s %q", got.Status(), got.Detail())
		}
		if got.Latency() != 420*time.Millisecond {
			t.Errorf("expected latency 420ms, got %v", got.Latency())
		}
		if !got.CreatedAt().Equal(base) {
			t.Errorf("expected created_at %v, got %v", base, got.CreatedAt())
		}
		if got.RequestID() != "req-RUHJED" {
			t.Errorf("expected request id req-RUHJED, got %s", got.RequestID())
		}
	})

	t.Run("Get NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewSearchRepository(db).Get("nonexistent-id")
		if !errors.Is(err, shared.ErrSearchNotFound) {
			t.Fatalf("expected ErrSearchNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)
		fixtures := []*models.SearchRecord{
			record("RUH", "JED", models.StatusOK, base),
			record("RUH", "DXB", models.StatusError, base.Add(time.Minute)),
			record("JED", "CAI", models.StatusOK, base.Add(2*time.Minute)),
		}
		for _, f := range fixtures {
			if err := repo.Create(f); err != nil {
				t.Fatalf("failed to create search: %v", err)
			}
		}

		t.Run("Newest First", func(t *testing.T) {
			got, err := repo.List(models.ListCriteria{})
			if err != nil {
				t.Fatalf("failed to list searches: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("expected 3 searches, got %d", len(got))
			}
			if got[0].Query().Destination != "CAI" || got[2].Query().Destination != "JED" {
				t.Errorf("unexpected order: %s, %s, %s", got[0].Query().Route(), got[1].Query().Route(), got[2].Query().Route())
			}
		})

		t.Run("Filters", func(t *testing.T) {
			tc := []struct {
				name     string
				criteria models.ListCriteria
				want     int
			}{
				{"origin", models.ListCriteria{Origin: "RUH"}, 2},
				{"route", models.ListCriteria{Origin: "RUH", Destination: "DXB"}, 1},
				{"status", models.ListCriteria{Status: models.StatusError}, 1},
				{"since", models.ListCriteria{Since: base.Add(time.Minute)}, 2},
				{"limit", models.ListCriteria{Limit: 1}, 1},
				{"no match", models.ListCriteria{Origin: "LHR"}, 0},
			}

			for _, tt := range tc {
				t.Run(tt.name, func(t *testing.T) {
					got, err := repo.List(tt.criteria)
					if err != nil {
						t.Fatalf("failed to list searches: %v", err)
					}
					if len(got) != tt.want {
						t.Errorf("expected %d searches, got %d", tt.want, len(got))
					}
				})
			}
		})
	})

	t.Run("Count And Clear", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSearchRepository(db)
		for i := range 3 {
			if err := repo.Create(record("RUH", "JED", models.StatusOK, base.Add(time.Duration(i)*time.Hour))); err != nil {
				t.Fatalf("failed to create search: %v", err)
			}
		}

		if n, err := repo.Count(); err != nil || n != 3 {
			t.Fatalf("expected count 3, got %d (%v)", n, err)
		}

		deleted, err := repo.Clear(base.Add(time.Hour))
		if err != nil {
			t.Fatalf("failed to clear searches: %v", err)
		}
		if deleted != 1 {
			t.Errorf("expected 1 deleted row, got %d", deleted)
		}

		deleted, err = repo.Clear(time.Time{})
		if err != nil {
			t.Fatalf("failed to clear searches: %v", err)
		}
		if deleted != 2 {
			t.Errorf("expected 2 deleted rows, got %d", deleted)
		}
		if n, _ := repo.Count(); n != 0 {
			t.Errorf("expected empty table, got %d", n)
		}
	})
}
