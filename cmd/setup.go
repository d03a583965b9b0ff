package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/qaren/internal/shared"
	"github.com/desertthunder/qaren/internal/ui"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes an example config file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("%s\n", ui.Styles.Success("Wrote "+configPath))
	r.writePlainln("Next steps:")
	r.writePlain("1. Set %s and %s, or fill in [credentials.amadeus]\n", shared.EnvClientID, shared.EnvClientSecret)
	r.writePlain("2. Run 'qaren token' to check the credentials\n")
	r.writePlain("3. Run 'qaren serve' to start the proxy\n")
	return nil
}

// SetupDatabase initializes the history database and runs migrations.
// With --status it only reports which migrations are applied.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path

	if cmd.Bool("status") {
		db, err := shared.NewDatabase(path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		return r.printMigrations(db)
	}

	r.logger.Info("initializing database", "path", path)

	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", path)
	return r.printMigrations(db)
}

// SetupRollback reverts the most recently applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	r.logger.Info("rolled back migration", "path", r.config.Database.Path)
	return r.printMigrations(db)
}

func (r *Runner) printMigrations(db *sql.DB) error {
	statuses, err := shared.MigrationsStatus(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		name := fmt.Sprintf("%04d %s", s.Version, s.Name)
		if s.Applied {
			r.writePlain("%s\n", ui.Styles.Success(name))
		} else {
			r.writePlain("%s\n", ui.Styles.Warning("  "+name+" (pending)"))
		}
	}
	return nil
}
