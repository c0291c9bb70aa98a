package rates

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"wallit/internal/models"

	"github.com/shopspring/decimal"
)

func archiveRecord(day, source, rate string) models.ExchangeRate {
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return models.ExchangeRate{
		ID:     source + day,
		Date:   date,
		Target: "CZK",
		Source: source,
		Rate:   decimal.RequireFromString(rate),
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	records := []models.ExchangeRate{
		archiveRecord("2021-03-13", "EUR", "0.0384"),
		archiveRecord("2021-03-12", "EUR", "0.0382"),
		archiveRecord("2021-03-12", "USD", "0.0456"),
	}

	var buffer bytes.Buffer
	if err := SaveArchive(&buffer, records, []string{"EUR", "USD"}); err != nil {
		t.Fatalf("SaveArchive returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if lines[0] != "date,EUR,USD" {
		t.Errorf("header = %q, want date,EUR,USD", lines[0])
	}
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "2021-03-12,") {
		t.Errorf("rows should be sorted by date, got %q", lines[1:])
	}

	loaded, err := LoadArchive(&buffer, "CZK")
	if err != nil {
		t.Fatalf("LoadArchive returned error: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("got %d records, want %d", len(loaded), len(records))
	}

	got := make(map[string]string, len(loaded))
	for _, record := range loaded {
		if record.Target != "CZK" {
			t.Errorf("target = %q, want CZK", record.Target)
		}
		got[record.Date.Format("2006-01-02")+"/"+record.Source] = record.Rate.String()
	}
	want := map[string]string{
		"2021-03-12/EUR": "0.0382",
		"2021-03-12/USD": "0.0456",
		"2021-03-13/EUR": "0.0384",
	}
	for key, rate := range want {
		if got[key] != rate {
			t.Errorf("%s = %q, want %q", key, got[key], rate)
		}
	}
}

func TestLoadArchiveRejectsMalformedFiles(t *testing.T) {
	cases := map[string]string{
		"missing header": "2021-03-12,0.0382\n",
		"bad date":       "date,EUR\nnot-a-date,0.0382\n",
		"bad rate":       "date,EUR\n2021-03-12,zero\n",
		"negative rate":  "date,EUR\n2021-03-12,-0.5\n",
		"empty":          "",
	}
	for name, input := range cases {
		if _, err := LoadArchive(strings.NewReader(input), "CZK"); !errors.Is(err, ErrArchive) {
			t.Errorf("%s: got %v, want ErrArchive", name, err)
		}
	}
}

func TestLoadArchiveSkipsEmptyCells(t *testing.T) {
	input := "date,EUR,USD\n2021-03-12,0.0382,\n"
	records, err := LoadArchive(strings.NewReader(input), "CZK")
	if err != nil {
		t.Fatalf("LoadArchive returned error: %v", err)
	}
	if len(records) != 1 || records[0].Source != "EUR" {
		t.Fatalf("got %+v, want a single EUR record", records)
	}
}
