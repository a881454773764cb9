package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pmlens/insights/internal/models"
)

// Row is one parsed seed row before embedding.
type Row struct {
	Source    string
	Country   *string
	Platform  *string
	Rating    *int
	UserType  *string
	CreatedAt *time.Time
	Text      string
}

const defaultSource = "app_reviews"

// expected header columns, by name. Column order in the file does not matter.
var knownColumns = map[string]struct{}{
	"source": {}, "country": {}, "platform": {}, "rating": {},
	"user_type": {}, "created_at": {}, "text": {},
}

// ParseCSV reads the seed CSV and returns the embeddable rows plus the count
// of rows skipped for blank text. Rows with blank text are never persisted,
// so they are dropped here. Optional cells map to nil; an unparseable rating
// maps to nil rather than failing the whole file.
func ParseCSV(r io.Reader) ([]Row, int, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))

	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := knownColumns[name]; ok {
			index[name] = i
		}
	}

	if _, ok := index["text"]; !ok {
		return nil, 0, fmt.Errorf("CSV header missing required column %q", "text")
	}

	var (
		rows    []Row
		skipped int
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, 0, fmt.Errorf("read CSV record: %w", err)
		}

		row, ok := parseRecord(record, index)
		if !ok {
			skipped++

			continue
		}

		rows = append(rows, row)
	}

	return rows, skipped, nil
}

func parseRecord(record []string, index map[string]int) (Row, bool) {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[i])
	}

	text := cell("text")
	if text == "" {
		return Row{}, false
	}

	source := cell("source")
	if source == "" {
		source = defaultSource
	}

	row := Row{
		Source:   source,
		Country:  optional(cell("country")),
		Platform: optional(cell("platform")),
		UserType: optional(cell("user_type")),
		Text:     text,
	}

	if raw := cell("rating"); raw != "" {
		if rating, err := strconv.Atoi(raw); err == nil {
			row.Rating = &rating
		}
	}

	if raw := cell("created_at"); raw != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if ts, err := time.Parse(layout, raw); err == nil {
				row.CreatedAt = &ts

				break
			}
		}
	}

	return row, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Record converts the parsed row plus its embedding into the persisted shape.
func (r Row) Record(embedding []float32) *models.FeedbackRecord {
	return &models.FeedbackRecord{
		Source:    r.Source,
		Country:   r.Country,
		Platform:  r.Platform,
		Rating:    r.Rating,
		UserType:  r.UserType,
		CreatedAt: r.CreatedAt,
		Text:      r.Text,
		Embedding: embedding,
	}
}
