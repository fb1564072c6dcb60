package pool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/tags"
)

// Entry is one taglist that survived filtering.
type Entry struct {
	Source  string // originating source, diagnostics only
	Taglist string // raw line, trimmed
}

// Filter decides which taglists enter a pool.
type Filter struct {
	MustInclude tags.Set // every tag required when non-empty
	Exclude     tags.Set // any shared tag rejects the taglist
}

// Admit reports whether a parsed taglist passes the filter.
func (f Filter) Admit(set tags.Set) bool {
	if len(f.Exclude) > 0 && set.Intersects(f.Exclude) {
		return false
	}
	if len(f.MustInclude) > 0 {
		return set.ContainsAll(f.MustInclude)
	}
	return true
}

// BuildSource streams src and returns the admitted taglists in source order.
func BuildSource(ctx context.Context, src Source, filter Filter) ([]Entry, error) {
	var entries []Entry
	name := src.Name()

	err := src.Scan(ctx, func(line string) error {
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		if filter.Admit(tags.ParseLine(line)) {
			entries = append(entries, Entry{Source: name, Taglist: line})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load taglists from %s: %w", name, err)
	}

	slog.Debug("Taglist source filtered", "source", name, "admitted", len(entries))
	return entries, nil
}

// Build concatenates the pools of every source in order.
// An empty combined pool is reported as internalerr.ErrEmptyPool.
func Build(ctx context.Context, sources []Source, filter Filter) ([]Entry, error) {
	var combined []Entry
	for _, src := range sources {
		entries, err := BuildSource(ctx, src, filter)
		if err != nil {
			return nil, err
		}
		combined = append(combined, entries...)
	}

	if len(combined) == 0 {
		return nil, internalerr.ErrEmptyPool
	}
	return combined, nil
}
