package statement

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrParse covers every defect inside a statement file: malformed
	// rows, missing required fields, unreadable dates or amounts.
	ErrParse = errors.New("parse failure")
	// ErrValidation marks a statement whose declared control sum does not
	// match the parsed records.
	ErrValidation = errors.New("validation failed")
	// ErrExtension marks a file whose suffix does not match the one
	// registered for its declared origin.
	ErrExtension = errors.New("unsupported file type")
	// ErrUnknownOrigin is a configuration defect, not a user one: the
	// upload named an origin no parser is registered for.
	ErrUnknownOrigin = errors.New("unknown statement origin")
)

// ParsedTransaction is a parser's raw output: one statement line with no
// owner, bank or converted amount attached yet.
type ParsedTransaction struct {
	Info            *string
	Title           *string
	Place           *string
	BaseAmount      decimal.Decimal
	BaseCurrency    string
	TransactionDate time.Time
}

// Parser decodes one bank's monthly statement format. Implementations are
// all-or-nothing: any defective record fails the whole file.
type Parser interface {
	Parse(r io.Reader) ([]ParsedTransaction, error)
}

// IsFileError reports whether err is a per-file defect the caller should
// record and move past, as opposed to a configuration error.
func IsFileError(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrValidation) || errors.Is(err, ErrExtension)
}

// optional normalises a field to nil when it is empty after trimming, so
// absent elements and empty strings are indistinguishable downstream.
func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
