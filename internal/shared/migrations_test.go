package shared

import (
	"path/filepath"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("parseMigrationName", func(t *testing.T) {
		tc := []struct {
			file      string
			version   int
			name      string
			direction string
			ok        bool
		}{
			{"0000_create_searches_up.sql", 0, "create_searches", "up", true},
			{"0012_add_index_down.sql", 12, "add_index", "down", true},
			{"0001_missing_direction.sql", 0, "", "", false},
			{"abc_create_up.sql", 0, "", "", false},
			{"README.md", 0, "", "", false},
		}

		for _, tt := range tc {
			t.Run(tt.file, func(t *testing.T) {
				version, name, direction, ok := parseMigrationName(tt.file)
				if ok != tt.ok {
					t.Fatalf("ok = %v, want %v", ok, tt.ok)
				}
				if !ok {
					return
				}
				if version != tt.version || name != tt.name || direction != tt.direction {
					t.Errorf("got (%d, %q, %q), want (%d, %q, %q)", version, name, direction, tt.version, tt.name, tt.direction)
				}
			})
		}
	})

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration version %d missing up or down SQL", m.Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM searches LIMIT 1"); err != nil {
			t.Errorf("searches table should exist after migrations: %v", err)
		}

		t.Run("is idempotent", func(t *testing.T) {
			if err := RunMigrations(db); err != nil {
				t.Fatalf("second run failed: %v", err)
			}
		})

		statuses, err := MigrationsStatus(db)
		if err != nil {
			t.Fatalf("failed to read status: %v", err)
		}
		for _, s := range statuses {
			if !s.Applied {
				t.Errorf("expected migration %d to be applied", s.Version)
			}
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM searches LIMIT 1"); err == nil {
			t.Error("searches table should be gone after rollback")
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing is left to roll back")
		}
	})

	t.Run("OpenHistoryDatabase", func(t *testing.T) {
		db, err := OpenHistoryDatabase(DatabaseConfig{Path: filepath.Join(t.TempDir(), "history.db"), MaxOpenConns: 2})
		if err != nil {
			t.Fatalf("failed to open history database: %v", err)
		}
		defer db.Close()

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM searches").Scan(&count); err != nil {
			t.Fatalf("failed to query searches: %v", err)
		}
		if count != 0 {
			t.Errorf("expected empty table, got %d rows", count)
		}
	})

	t.Run("OpenHistoryDatabase Empty Path", func(t *testing.T) {
		if _, err := OpenHistoryDatabase(DatabaseConfig{}); err == nil {
			t.Error("expected error for empty path")
		}
	})
}

func TestStripComments(t *testing.T) {
	got := stripComments("-- header\nCREATE TABLE t (id INTEGER); -- trailing\n\n  DROP TABLE x;")
	want := "CREATE TABLE t (id INTEGER);\nDROP TABLE x;"
	if got != want {
		t.Errorf("stripComments() = %q, want %q", got, want)
	}
}
