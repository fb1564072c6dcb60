package store

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/raffle/pkg/raffle/category"
	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/pool"
)

// Store persists imported taglist sources and the categorized tag resource.
type Store interface {
	Close() error

	// Taglists. Importing a source replaces its previous contents.
	ImportTaglists(ctx context.Context, source string, lines []string) (int, error)
	ScanTaglists(ctx context.Context, source string, fn func(line string) error) error
	Sources(ctx context.Context) ([]string, error)

	// Categorized tags, kept in resource order. Importing replaces everything.
	ImportCategories(ctx context.Context, entries []CategoryEntry) (int, error)
	ScanCategories(ctx context.Context, fn func(e CategoryEntry) error) error
}

// CategoryEntry is one "[category] tag" line.
type CategoryEntry struct {
	Category string
	Tag      string
}

// ImportTaglistsFrom reads one taglist per line from r and imports the
// non-empty lines as source.
func ImportTaglistsFrom(ctx context.Context, s Store, source string, r io.Reader) (int, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read taglists for %s: %w", source, err)
	}
	return s.ImportTaglists(ctx, source, lines)
}

// ImportCategoriesFrom parses a categorized tags resource and imports it.
func ImportCategoriesFrom(ctx context.Context, s Store, r io.Reader) (int, error) {
	var entries []CategoryEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		cat, tag, ok := category.ParseEntry(scanner.Text())
		if !ok {
			continue
		}
		entries = append(entries, CategoryEntry{Category: cat, Tag: tag})
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read categorized tags: %w", err)
	}
	return s.ImportCategories(ctx, entries)
}

// LoadTable builds a category table from the stored resource.
func LoadTable(ctx context.Context, s Store) (*category.Table, error) {
	table := category.NewTable()
	err := s.ScanCategories(ctx, func(e CategoryEntry) error {
		table.Add(e.Category, e.Tag)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("%w: no categorized tags imported", internalerr.ErrMissingResource)
	}
	return table, nil
}

// PoolSource exposes a stored source to the pool builder.
func PoolSource(s Store, name string) pool.Source {
	return &storeSource{store: s, name: name}
}

type storeSource struct {
	store Store
	name  string
}

func (p *storeSource) Name() string { return p.name }

func (p *storeSource) Scan(ctx context.Context, fn func(line string) error) error {
	return p.store.ScanTaglists(ctx, p.name, fn)
}

// MissingSource is returned by stores asked for a source never imported.
func MissingSource(name string) error {
	return fmt.Errorf("%w: taglist source %q has not been imported", internalerr.ErrMissingResource, name)
}
