// Package hint looks up the help text shown for a game mode.
package hint

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/shadil-rayyan/Math-Mantra-sub000/table"
)

// Source provides raw table records
type Source interface {
	Records(ctx context.Context, table, language string) ([][]string, error)
}

// Book serves hints from the hints table of a Source
type Book struct {
	source Source

	mu    sync.Mutex
	hints map[string][][]string
}

// NewBook creates a hint book over source
func NewBook(source Source) *Book {
	return &Book{source: source, hints: make(map[string][][]string)}
}

// Lookup returns the hint of a mode in a language.
// Read failures are logged and reported as a missing hint.
func (b *Book) Lookup(ctx context.Context, language, mode string) (string, bool) {
	records, err := b.records(ctx, language)
	if err != nil {
		log.Printf("Error reading hints for %s: %v", language, err)
		return "", false
	}

	mode = strings.TrimSpace(mode)
	for _, row := range records {
		if len(row) < 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row[0]), mode) {
			text := strings.TrimSpace(row[1])
			return text, text != ""
		}
	}
	return "", false
}

func (b *Book) records(ctx context.Context, language string) ([][]string, error) {
	language = strings.ToLower(strings.TrimSpace(language))

	b.mu.Lock()
	records, ok := b.hints[language]
	b.mu.Unlock()
	if ok {
		return records, nil
	}

	records, err := b.source.Records(ctx, table.Hints, language)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.hints[language] = records
	b.mu.Unlock()
	return records, nil
}
