package tasks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/qaren/internal/models"
	"github.com/desertthunder/qaren/internal/shared"
)

// ParseQueries reads one search per CSV line: from,to,date[,adults[,returnDate]].
//
// Blank lines and lines starting with '#' are skipped, as is a leading header row whose first column is "from".
func ParseQueries(r io.Reader) ([]models.SearchQuery, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var queries []models.SearchQuery
	for first := true; ; first = false {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		if first && strings.EqualFold(strings.TrimSpace(record[0]), "from") {
			continue
		}
		if len(record) < 3 {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: expected from,to,date", shared.ErrInvalidInput, line)
		}

		q := models.SearchQuery{
			Origin:      strings.TrimSpace(record[0]),
			Destination: strings.TrimSpace(record[1]),
			Date:        strings.TrimSpace(record[2]),
		}
		if len(record) > 3 {
			q.Adults = strings.TrimSpace(record[3])
		}
		if len(record) > 4 {
			q.ReturnDate = strings.TrimSpace(record[4])
		}
		queries = append(queries, q.WithDefaults())
	}

	return queries, nil
}
