package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/raffle/pkg/raffle/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu         sync.RWMutex
	taglists   map[string][]string
	categories []store.CategoryEntry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{taglists: make(map[string][]string)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ImportTaglists replaces the lines of source.
func (s *Store) ImportTaglists(ctx context.Context, source string, lines []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]string, len(lines))
	copy(cp, lines)
	s.taglists[source] = cp
	return len(cp), nil
}

// ScanTaglists calls fn for every line of source in import order.
func (s *Store) ScanTaglists(ctx context.Context, source string, fn func(line string) error) error {
	s.mu.RLock()
	lines, ok := s.taglists[source]
	s.mu.RUnlock()
	if !ok {
		return store.MissingSource(source)
	}

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return nil
}

// Sources lists imported sources by name.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.taglists))
	for name := range s.taglists {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// ImportCategories replaces the categorized tags.
func (s *Store) ImportCategories(ctx context.Context, entries []store.CategoryEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = make([]store.CategoryEntry, len(entries))
	copy(s.categories, entries)
	return len(entries), nil
}

// ScanCategories calls fn for every entry in import order.
func (s *Store) ScanCategories(ctx context.Context, fn func(e store.CategoryEntry) error) error {
	s.mu.RLock()
	entries := s.categories
	s.mu.RUnlock()

	for _, e := range entries {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}
