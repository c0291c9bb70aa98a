package statement

import (
	"fmt"
	"path"
	"strings"
)

// Entry associates an origin tag with the parser for that bank's
// statements, the single accepted file extension, and the bank identity
// stamped onto imported transactions.
type Entry struct {
	Parser    Parser
	Extension string
	BankID    string
}

// Registry maps origin tags to registered banks. Registration happens once
// at startup; lookups are read-only afterwards.
type Registry struct {
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

func (r *Registry) Register(origin string, entry Entry) {
	r.entries[strings.ToLower(origin)] = entry
}

func (r *Registry) Lookup(origin string) (Entry, error) {
	entry, ok := r.entries[strings.ToLower(origin)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownOrigin, origin)
	}
	return entry, nil
}

// Validate checks that origin is registered and that filename carries the
// extension registered for it. No content sniffing happens here.
func (r *Registry) Validate(origin, filename string) error {
	entry, err := r.Lookup(origin)
	if err != nil {
		return err
	}
	extension := strings.ToLower(path.Ext(SanitizeFilename(filename)))
	if extension != strings.ToLower(entry.Extension) {
		return fmt.Errorf("%w: %q, want %q", ErrExtension, extension, entry.Extension)
	}
	return nil
}

// ParserFor returns the parser implemented for a bank's canonical name.
func ParserFor(bankName string) (Parser, bool) {
	switch strings.ToLower(bankName) {
	case "revolut":
		return Revolut{}, true
	case "equabank":
		return Equabank{}, true
	}
	return nil, false
}

// SanitizeFilename strips any path components a client may have smuggled
// into an uploaded filename.
func SanitizeFilename(filename string) string {
	cleaned := strings.ReplaceAll(filename, "\\", "/")
	cleaned = path.Base(cleaned)
	if cleaned == "." || cleaned == "/" {
		return ""
	}
	return cleaned
}
