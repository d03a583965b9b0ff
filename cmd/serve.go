package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/repositories"
	"github.com/desertthunder/qaren/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the proxy until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	searcher, err := r.flightSearcher("")
	if err != nil {
		return err
	}

	addr := r.config.Server.Addr()
	if listen := cmd.String("listen"); listen != "" {
		addr = listen
	}

	var (
		db      *sql.DB
		history models.HistoryStore
	)
	if r.config.Database.History && !cmd.Bool("no-history") {
		if db, err = r.openHistory(); err != nil {
			return err
		}
		defer db.Close()
		history = repositories.NewSearchRepository(db)
		r.logger.Info("recording search history", "path", r.config.Database.Path)
	}

	srv := server.New(server.ServerOpts{
		Addr:     addr,
		Searcher: searcher,
		History:  history,
		DB:       db,
		Logger:   r.logger,
		Metrics:  r.config.Server.Metrics,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
