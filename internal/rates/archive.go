package rates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"wallit/internal/models"
	"wallit/internal/money"

	"github.com/google/uuid"
)

// ErrArchive marks a rate archive file that cannot be read back. Loads are
// all-or-nothing.
var ErrArchive = errors.New("malformed rate archive")

// SaveArchive writes rates as CSV: a date column followed by one column per
// supported currency in configured order, one row per day, rows sorted by
// date so files diff cleanly. Unknown rates stay empty.
func SaveArchive(w io.Writer, records []models.ExchangeRate, currencies []string) error {
	byDay := make(map[string]RateMap)
	for _, record := range records {
		day := dayKey(record.Date)
		if byDay[day] == nil {
			byDay[day] = make(RateMap)
		}
		byDay[day][record.Source] = record.Rate
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{"date"}, currencies...)); err != nil {
		return err
	}
	for _, day := range days {
		row := make([]string, 0, len(currencies)+1)
		row = append(row, day)
		for _, currency := range currencies {
			if rate, ok := byDay[day][currency]; ok {
				row = append(row, rate.String())
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// LoadArchive is the inverse of SaveArchive. Empty cells become absent
// rates; any malformed row aborts the load.
func LoadArchive(r io.Reader, target string) ([]models.ExchangeRate, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil || len(header) < 2 || header[0] != "date" {
		return nil, fmt.Errorf("%w: missing header row", ErrArchive)
	}

	var records []models.ExchangeRate
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchive, err)
		}
		day, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrArchive, row[0])
		}
		for column := 1; column < len(row); column++ {
			if row[column] == "" {
				continue
			}
			rate, err := money.ParseRate(row[column])
			if err != nil {
				return nil, fmt.Errorf("%w: bad rate %q for %s", ErrArchive, row[column], header[column])
			}
			records = append(records, models.ExchangeRate{
				ID:     uuid.NewString(),
				Date:   day,
				Target: target,
				Source: header[column],
				Rate:   rate,
			})
		}
	}
	return records, nil
}
