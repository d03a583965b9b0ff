package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/qaren/internal/formatter"
	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/repositories"
	"github.com/desertthunder/qaren/internal/shared"
	"github.com/desertthunder/qaren/internal/ui"
	"github.com/urfave/cli/v3"
)

func historyCriteria(cmd *cli.Command) models.ListCriteria {
	criteria := models.ListCriteria{
		Origin:      cmd.String("from"),
		Destination: cmd.String("to"),
		Status:      models.SearchStatus(cmd.String("status")),
		Limit:       int(cmd.Int("limit")),
	}
	if since := cmd.Duration("since"); since > 0 {
		criteria.Since = time.Now().Add(-since)
	}
	return criteria
}

// HistoryList prints recorded searches, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSearchRepository(db)
	records, err := repo.List(historyCriteria(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if records == nil {
			records = []*models.SearchRecord{}
		}
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		return r.writePlain("%s\n", ui.Styles.Hint("No searches recorded"))
	}

	total, err := repo.Count()
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Showing %d of %d searches", len(records), total))
	for _, rec := range records {
		q := rec.Query()
		line := fmt.Sprintf("%s  %-12s %s  %6dms",
			rec.CreatedAt().Local().Format("2006-01-02 15:04:05"), q.Route(), q.Date, rec.Latency().Milliseconds())
		if rec.Status() == models.StatusError {
			r.writePlain("%s\n", ui.Styles.Failure(line+"  "+shared.Truncate(rec.Detail(), 60)))
		} else {
			r.writePlain("%s\n", ui.Styles.Success(line))
		}
	}
	return nil
}

// HistoryExport renders recorded searches in the chosen format.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := repositories.NewSearchRepository(db).List(historyCriteria(cmd))
	if err != nil {
		return err
	}

	if output == "" {
		data, err := formatter.Render(records, format)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	if err := formatter.WriteHistoryExport(records, format, output); err != nil {
		return err
	}
	r.logger.Info("history exported", "records", len(records), "format", format, "path", output)
	return r.writePlain("%s\n", ui.Styles.Success(fmt.Sprintf("Exported %d searches to %s", len(records), output)))
}

// HistoryClear deletes recorded searches. Either --all or --older-than is required.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	olderThan := cmd.Duration("older-than")
	all := cmd.Bool("all")

	if !all && olderThan <= 0 {
		return fmt.Errorf("%w: pass --all or --older-than", shared.ErrMissingArgument)
	}
	if all && olderThan > 0 {
		return fmt.Errorf("%w: --all and --older-than are mutually exclusive", shared.ErrInvalidFlag)
	}

	var before time.Time
	if !all {
		before = time.Now().Add(-olderThan)
	}

	db, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := repositories.NewSearchRepository(db).Clear(before)
	if err != nil {
		return err
	}
	r.logger.Info("history cleared", "deleted", n)
	return r.writePlain("%s\n", ui.Styles.Success(fmt.Sprintf("Deleted %d searches", n)))
}
