package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cognicore/raffle/internal/fileutil"
	"github.com/cognicore/raffle/pkg/raffle"
	"github.com/cognicore/raffle/pkg/raffle/category"
	"github.com/cognicore/raffle/pkg/raffle/history"
	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/pool"
	"github.com/cognicore/raffle/pkg/raffle/selector"
	"github.com/cognicore/raffle/pkg/raffle/store"
	"github.com/cognicore/raffle/pkg/raffle/store/sqlite"
)

// Loader loads the configured resources and constructs components
type Loader struct {
	Config *Config
	Logger *slog.Logger
}

// Components holds all loaded components
type Components struct {
	Table    *category.Table
	Sources  map[raffle.Rating]pool.Source
	Selector *selector.Selector
	History  *history.Manager
	Store    store.Store // nil unless a database is configured
}

// Raffle builds the facade over the loaded components.
func (c *Components) Raffle(logger *slog.Logger) *raffle.Raffle {
	return raffle.New(raffle.Options{
		Table:    c.Table,
		Sources:  c.Sources,
		Selector: c.Selector,
		Logger:   logger,
	})
}

// Close releases the store, if any.
func (c *Components) Close() error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Close()
}

// Load reads the category table and opens the taglist sources. With a
// database configured the store replaces the lists directory.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = Default()
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mode, err := selector.ParseMode(cfg.Selection.Mode)
	if err != nil {
		return nil, err
	}

	comp := &Components{
		Sources:  make(map[raffle.Rating]pool.Source),
		Selector: selector.New(mode),
		History:  history.New(cfg.History.Dir, history.WithLogger(logger)),
	}

	if cfg.Database != "" {
		if err := l.loadStore(ctx, cfg, comp); err != nil {
			return nil, err
		}
		logger.Debug("Loaded raffle components from database",
			"database", cfg.Database,
			"tags", comp.Table.Len(),
			"sources", len(comp.Sources))
		return comp, nil
	}

	if !fileutil.IsDir(cfg.ListsDir) {
		return nil, fmt.Errorf("%w: lists directory not found: %s", internalerr.ErrMissingResource, cfg.ListsDir)
	}

	// Load categorized tags
	table, err := category.Load(cfg.ListPath(cfg.CategorizedTags))
	if err != nil {
		return nil, fmt.Errorf("load categorized tags: %w", err)
	}
	comp.Table = table

	for _, rating := range raffle.Ratings {
		name := cfg.Sources.File(rating)
		if name == "" {
			continue
		}
		comp.Sources[rating] = pool.Open(string(rating), cfg.ListPath(name))
	}

	logger.Debug("Loaded raffle components",
		"lists_dir", cfg.ListsDir,
		"tags", table.Len(),
		"sources", len(comp.Sources))
	return comp, nil
}

func (l *Loader) loadStore(ctx context.Context, cfg *Config, comp *Components) error {
	if !fileutil.Exists(cfg.Database) {
		return fmt.Errorf("%w: database not found: %s", internalerr.ErrMissingResource, cfg.Database)
	}
	st, err := sqlite.OpenSQLite(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	table, err := store.LoadTable(ctx, st)
	if err != nil {
		st.Close()
		return err
	}

	names, err := st.Sources(ctx)
	if err != nil {
		st.Close()
		return fmt.Errorf("list sources: %w", err)
	}
	imported := make(map[string]bool, len(names))
	for _, n := range names {
		imported[n] = true
	}
	for _, rating := range raffle.Ratings {
		if imported[string(rating)] {
			comp.Sources[rating] = store.PoolSource(st, string(rating))
		}
	}

	comp.Table = table
	comp.Store = st
	return nil
}
