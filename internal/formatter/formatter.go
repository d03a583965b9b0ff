// package formatter renders search history to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/shared"
)

// Format names accepted by [Render].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Formats lists the accepted format names.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

const timeLayout = "2006-01-02 15:04:05"

// HistoryToCSV converts search records to CSV with columns: ID, Created, From, To, Date, Return, Adults, Status, Latency (ms), Detail
func HistoryToCSV(records []*models.SearchRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Created", "From", "To", "Date", "Return", "Adults", "Status", "Latency (ms)", "Detail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		q := r.Query()
		record := []string{
			r.ID(),
			r.CreatedAt().UTC().Format(time.RFC3339),
			q.Origin,
			q.Destination,
			q.Date,
			q.ReturnDate,
			q.Adults,
			string(r.Status()),
			strconv.FormatInt(r.Latency().Milliseconds(), 10),
			r.Detail(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToMarkdown converts search records to a Markdown report with a summary and a table
func HistoryToMarkdown(records []*models.SearchRecord) ([]byte, error) {
	var buf bytes.Buffer
	ok, failed := tally(records)

	buf.WriteString("# Search History\n\n")
	buf.WriteString(fmt.Sprintf("**Searches**: %d\n", len(records)))
	buf.WriteString(fmt.Sprintf("**Succeeded**: %d\n", ok))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n\n", failed))

	if len(records) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| Created | Route | Date | Adults | Status | Latency | Detail |\n")
	buf.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range records {
		q := r.Query()
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %dms | %s |\n",
			r.CreatedAt().UTC().Format(timeLayout),
			q.Route(),
			q.Date,
			q.Adults,
			r.Status(),
			r.Latency().Milliseconds(),
			escapeCell(shared.Truncate(r.Detail(), 80)),
		))
	}

	return buf.Bytes(), nil
}

// HistoryToText converts search records to plain text, one line per search
func HistoryToText(records []*models.SearchRecord) ([]byte, error) {
	var buf bytes.Buffer
	ok, failed := tally(records)

	buf.WriteString(fmt.Sprintf("Searches: %d (%d ok, %d failed)\n\n", len(records), ok, failed))

	for i, r := range records {
		q := r.Query()
		line := fmt.Sprintf("%d. [%s] %s %s x%s %s %dms",
			i+1, r.CreatedAt().UTC().Format(timeLayout), q.Route(), q.Date, q.Adults, r.Status(), r.Latency().Milliseconds())
		if r.Detail() != "" {
			line += " - " + shared.Truncate(r.Detail(), 120)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// HistoryToJSON converts search records to an indented JSON array
func HistoryToJSON(records []*models.SearchRecord) ([]byte, error) {
	if records == nil {
		records = []*models.SearchRecord{}
	}
	return shared.MarshalJSON(records, true)
}

// Render dispatches to the exporter named by format.
func Render(records []*models.SearchRecord, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return HistoryToCSV(records)
	case FormatMarkdown, "md":
		return HistoryToMarkdown(records)
	case FormatText, "text":
		return HistoryToText(records)
	case FormatJSON, "":
		return HistoryToJSON(records)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (want one of %s)", shared.ErrInvalidFlag, format, strings.Join(Formats, ", "))
	}
}

// WriteHistoryExport renders records and writes them to path.
func WriteHistoryExport(records []*models.SearchRecord, format, path string) error {
	data, err := Render(records, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func tally(records []*models.SearchRecord) (ok, failed int) {
	for _, r := range records {
		if r.Status() == models.StatusOK {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
