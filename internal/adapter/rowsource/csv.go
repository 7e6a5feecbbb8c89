// Package rowsource turns raw import payloads into normalized rows.
package rowsource

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerimport/internal/domain"
)

// DefaultDateFormat is used when no date format is configured.
const DefaultDateFormat = "2006-01-02"

// TagSeparator splits a row's tags column into labels.
const TagSeparator = "|"

// Columns maps header names in the payload onto row fields. Date and Amount
// are required; the rest may be empty to mark the column as absent.
type Columns struct {
	Date     string
	Amount   string
	Currency string
	Name     string
	Category string
	Tags     string
	Account  string
	Notes    string
}

// DefaultColumns matches the headers of the published CSV template.
func DefaultColumns() Columns {
	return Columns{
		Date:     "date",
		Amount:   "amount",
		Currency: "currency",
		Name:     "name",
		Category: "category",
		Tags:     "tags",
		Account:  "account",
		Notes:    "notes",
	}
}

// CSV implements usecase.RowSource over an in-memory CSV payload with a
// header line. Rows can be read repeatedly.
type CSV struct {
	data       []byte
	columns    Columns
	dateFormat string
}

// NewCSV creates a CSV row source. dateFormat defaults to DefaultDateFormat.
func NewCSV(data []byte, columns Columns, dateFormat string) *CSV {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}

	return &CSV{
		data:       data,
		columns:    columns,
		dateFormat: dateFormat,
	}
}

// Rows parses the payload into normalized rows. A row without a parseable
// date or amount fails the whole read.
func (s *CSV) Rows(_ context.Context) ([]*domain.Row, error) {
	reader := csv.NewReader(bytes.NewReader(s.data))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	index := headerIndex(records[0])

	rows := make([]*domain.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := s.parseRow(index, record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (s *CSV) parseRow(index map[string]int, record []string) (*domain.Row, error) {
	field := func(name string) string {
		if name == "" {
			return ""
		}
		i, ok := index[strings.ToLower(name)]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rawDate := field(s.columns.Date)
	rawAmount := field(s.columns.Amount)
	if rawDate == "" || rawAmount == "" {
		return nil, domain.ErrRowMissingRequired
	}

	date, err := time.Parse(s.dateFormat, rawDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", domain.ErrRowMissingRequired, rawDate)
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return nil, fmt.Errorf("%w: bad amount %q", domain.ErrRowMissingRequired, rawAmount)
	}

	return &domain.Row{
		Date:     date,
		Amount:   amount,
		Currency: strings.ToUpper(field(s.columns.Currency)),
		Name:     field(s.columns.Name),
		Notes:    field(s.columns.Notes),
		Category: field(s.columns.Category),
		Tags:     splitTags(field(s.columns.Tags)),
		Account:  field(s.columns.Account),
	}, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return index
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(raw, TagSeparator) {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}
