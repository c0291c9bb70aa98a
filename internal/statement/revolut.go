package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"wallit/internal/money"
)

// Revolut parses the comma-delimited CSV statement Revolut issues monthly.
// Rows typed EXCHANGE are internal currency swaps, not real movements, and
// are skipped.
type Revolut struct{}

const revolutDateLayout = "2006-01-02 15:04:05"

var revolutColumns = []string{"Type", "Description", "Amount", "Currency", "Completed Date"}

func (Revolut) Parse(r io.Reader) ([]ParsedTransaction, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrParse)
	}

	columns := make(map[string]int, len(header))
	for index, name := range header {
		columns[name] = index
	}
	for _, name := range revolutColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrParse, name)
		}
	}

	var transactions []ParsedTransaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if record[columns["Type"]] == "EXCHANGE" {
			continue
		}

		amount, err := money.Parse(record[columns["Amount"]])
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q", ErrParse, record[columns["Amount"]])
		}
		date, err := time.Parse(revolutDateLayout, record[columns["Completed Date"]])
		if err != nil {
			return nil, fmt.Errorf("%w: bad completed date %q", ErrParse, record[columns["Completed Date"]])
		}

		transactions = append(transactions, ParsedTransaction{
			Info:            optional(record[columns["Type"]]),
			Title:           optional(record[columns["Description"]]),
			BaseAmount:      amount,
			BaseCurrency:    record[columns["Currency"]],
			TransactionDate: date,
		})
	}
	return transactions, nil
}
