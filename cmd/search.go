package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/shared"
	"github.com/desertthunder/qaren/internal/tasks"
	"github.com/desertthunder/qaren/internal/ui"
	"github.com/urfave/cli/v3"
)

// offerLine is the subset of a flight offer shown in CLI summaries.
type offerLine struct {
	ID    string `json:"id"`
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	Itineraries []struct {
		Duration string `json:"duration"`
		Segments []struct {
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
		} `json:"segments"`
	} `json:"itineraries"`
}

// Search runs a single flight search.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	q := models.SearchQuery{
		Origin:      cmd.String("from"),
		Destination: cmd.String("to"),
		Date:        cmd.String("date"),
		Adults:      cmd.String("adults"),
		ReturnDate:  cmd.String("return-date"),
		Currency:    cmd.String("currency"),
	}.WithDefaults()
	if cmd.Bool("non-stop") {
		q.NonStop = "true"
	}

	if q.Origin == "" || q.Destination == "" || q.Date == "" {
		return fmt.Errorf("%w: --from, --to and --date are required", shared.ErrMissingArgument)
	}

	searcher, err := r.flightSearcher(cmd.String("server"))
	if err != nil {
		return err
	}

	r.logger.Debug("searching", "route", q.Route(), "date", q.Date, "adults", q.Adults)

	start := time.Now()
	result, err := searcher.Search(ctx, q)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	res := tasks.BatchResult{Query: q, Result: result, Latency: elapsed}
	r.writePlain("%s\n", ui.Styles.Title(fmt.Sprintf("%s on %s", q.Route(), q.Date)))
	r.writePlain("%s\n", ui.Styles.KeyValue("Adults", q.Adults))
	r.writePlain("%s\n", ui.Styles.KeyValue("Latency", elapsed.Round(time.Millisecond)))

	switch n := res.Offers(); {
	case n < 0:
		r.writePlain("%s\n", ui.Styles.Warning("Response has no offer list; use --json to see it"))
	case n == 0:
		r.writePlain("%s\n", ui.Styles.Warning("No offers found"))
	default:
		r.writePlain("%s\n\n", ui.Styles.KeyValue("Offers", n))
		for _, line := range describeOffers(result) {
			r.writePlain("  %s\n", line)
		}
	}
	return nil
}

// describeOffers renders one line per offer: id, price, duration and flight numbers.
func describeOffers(result models.SearchResult) []string {
	var body struct {
		Data []offerLine `json:"data"`
	}
	if err := json.Unmarshal(result.Bytes(), &body); err != nil {
		return nil
	}

	lines := make([]string, 0, len(body.Data))
	for _, o := range body.Data {
		var durations, flights []string
		for _, it := range o.Itineraries {
			durations = append(durations, strings.TrimPrefix(it.Duration, "PT"))
			for _, s := range it.Segments {
				flights = append(flights, s.CarrierCode+s.Number)
			}
		}
		lines = append(lines, fmt.Sprintf("#%-3s %10s %-3s  %-12s %s",
			o.ID, o.Price.Total, o.Price.Currency,
			strings.Join(durations, "/"), strings.Join(flights, " ")))
	}
	return lines
}

// SearchBatch runs every search in a CSV file ("-" reads stdin).
func (r *Runner) SearchBatch(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	queries, err := tasks.ParseQueries(in)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("%w: %s contains no searches", shared.ErrInvalidInput, path)
	}

	searcher, err := r.flightSearcher(cmd.String("server"))
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	progressCh := make(chan tasks.ProgressUpdate, len(queries)*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if asJSON {
				r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
				continue
			}
			switch update.Phase {
			case tasks.SearchCompleted:
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, ui.Styles.Success(strings.TrimPrefix(update.Message, "✓ ")))
			case tasks.SearchFailed:
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, ui.Styles.Failure(strings.TrimPrefix(update.Message, "✗ ")))
			}
		}
	}()

	summary, err := tasks.BatchSearch(ctx, searcher, queries, tasks.BatchOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}, progressCh)
	close(progressCh)
	<-done

	if summary == nil {
		return err
	}
	if err != nil {
		r.logger.Warn("batch interrupted", "error", err)
	}

	if asJSON {
		return r.writeJSON(batchJSON(summary), cmd.Bool("pretty"))
	}

	r.writePlainln("%s", ui.Styles.Title("Batch summary"))
	r.writePlain("%s\n", ui.Styles.KeyValue("Searches", len(summary.Results)))
	r.writePlain("%s\n", ui.Styles.KeyValue("Succeeded", summary.Succeeded))
	r.writePlain("%s\n", ui.Styles.KeyValue("Failed", summary.Failed))
	return err
}

type batchEntry struct {
	Query     models.SearchQuery  `json:"query"`
	Result    models.SearchResult `json:"result,omitempty"`
	Error     string              `json:"error,omitempty"`
	LatencyMS int64               `json:"latency_ms"`
}

func batchJSON(summary *tasks.BatchSummary) []batchEntry {
	entries := make([]batchEntry, 0, len(summary.Results))
	for _, res := range summary.Results {
		e := batchEntry{Query: res.Query, Result: res.Result, LatencyMS: res.Latency.Milliseconds()}
		if res.Err != nil {
			e.Error = res.Err.Error()
		}
		entries = append(entries, e)
	}
	return entries
}
