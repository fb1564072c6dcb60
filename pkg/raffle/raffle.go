package raffle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cognicore/raffle/pkg/raffle/category"
	"github.com/cognicore/raffle/pkg/raffle/filter"
	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/pool"
	"github.com/cognicore/raffle/pkg/raffle/selector"
	"github.com/cognicore/raffle/pkg/raffle/tags"
)

// Rating identifies one of the content-rating buckets of taglists.
type Rating string

const (
	General      Rating = "general"
	Questionable Rating = "questionable"
	Sensitive    Rating = "sensitive"
	Explicit     Rating = "explicit"
)

// Ratings lists every rating in pool concatenation order.
var Ratings = []Rating{General, Questionable, Sensitive, Explicit}

// Raffle draws and filters taglists
type Raffle struct {
	table    *category.Table
	sources  map[Rating]pool.Source
	selector *selector.Selector
	logger   *slog.Logger
}

// Options configures a Raffle instance
type Options struct {
	Table    *category.Table
	Sources  map[Rating]pool.Source
	Selector *selector.Selector
	Logger   *slog.Logger
}

// New creates a Raffle with the given dependencies. A nil selector uses
// selector.ModeLegacy.
func New(opts Options) *Raffle {
	sel := opts.Selector
	if sel == nil {
		sel = selector.New(selector.ModeLegacy)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Raffle{
		table:    opts.Table,
		sources:  opts.Sources,
		selector: sel,
		logger:   logger,
	}
}

// Request holds the inputs of one draw. The text fields accept free-form
// tag text; see tags.Normalize.
type Request struct {
	Seed uint64

	UseGeneral      bool
	UseQuestionable bool
	UseSensitive    bool
	UseExplicit     bool

	MustInclude       string // taglists must contain all of these
	NegativePrompt    string // removed from the output only
	FilterOut         string // removed from the output only
	ExcludeTaglists   string // taglists containing any of these are skipped
	ExcludeCategories string // categories removed from the output
}

// Enabled returns the requested ratings in concatenation order.
func (r Request) Enabled() []Rating {
	var out []Rating
	for _, rating := range Ratings {
		if r.uses(rating) {
			out = append(out, rating)
		}
	}
	return out
}

func (r Request) uses(rating Rating) bool {
	switch rating {
	case General:
		return r.UseGeneral
	case Questionable:
		return r.UseQuestionable
	case Sensitive:
		return r.UseSensitive
	case Explicit:
		return r.UseExplicit
	}
	return false
}

// Result is the outcome of one draw.
type Result struct {
	Filtered   string     // final tags
	Unfiltered string     // selected taglist, normalized but not filtered
	Debug      string     // pool size and category list
	PoolSize   int        // taglists left after must-include/exclude filtering
	Selected   pool.Entry // the chosen taglist and its source
}

// Process draws one taglist for req and filters it.
// Errors match internalerr.ErrMissingResource, ErrInvalidCategory or
// ErrEmptyPool.
func (r *Raffle) Process(ctx context.Context, req Request) (Result, error) {
	if r.table == nil {
		return Result{}, fmt.Errorf("%w: no category table loaded", internalerr.ErrMissingResource)
	}

	excludedCats, err := category.ParseExcluded(req.ExcludeCategories)
	if err != nil {
		return Result{}, err
	}
	allow := r.table.AllowList(excludedCats)

	excludeTaglists, _ := tags.ParseSet(req.ExcludeTaglists, nil)
	mustInclude, _ := tags.ParseSet(req.MustInclude, nil)

	sources, err := r.enabledSources(req)
	if err != nil {
		return Result{}, err
	}

	entries, err := pool.Build(ctx, sources, pool.Filter{
		MustInclude: mustInclude,
		Exclude:     excludeTaglists,
	})
	if err != nil {
		return Result{}, err
	}

	selected, err := r.selector.Select(entries, req.Seed)
	if err != nil {
		return Result{}, err
	}

	unfiltered := tags.Join(tags.Normalize(selected.Taglist))

	negative, _ := tags.ParseSet(req.NegativePrompt, nil)
	filterOut, _ := tags.ParseSet(req.FilterOut, nil)
	pipeline := &filter.Pipeline{
		Allow:          allow,
		ExcludeTaglist: excludeTaglists,
		Negative:       negative,
		FilterOut:      filterOut,
	}
	filtered, stats := pipeline.ApplyWithStats(tags.Normalize(unfiltered))

	r.logger.Debug("Taglist drawn",
		"seed", req.Seed,
		"pool_size", len(entries),
		"source", selected.Source,
		"mode", r.selector.Mode().String(),
		"not_allowed", stats.NotAllowed,
		"excluded", stats.ExcludeTaglist,
		"negative", stats.Negative,
		"filtered_out", stats.FilterOut,
		"output", stats.Output)

	return Result{
		Filtered:   tags.Join(filtered),
		Unfiltered: unfiltered,
		Debug:      DebugInfo(len(entries)),
		PoolSize:   len(entries),
		Selected:   selected,
	}, nil
}

func (r *Raffle) enabledSources(req Request) ([]pool.Source, error) {
	var out []pool.Source
	for _, rating := range req.Enabled() {
		src, ok := r.sources[rating]
		if !ok || src == nil {
			return nil, fmt.Errorf("%w: no taglist source configured for %s", internalerr.ErrMissingResource, rating)
		}
		out = append(out, src)
	}
	return out, nil
}

// DebugInfo renders the pool size and the list of categories.
func DebugInfo(poolSize int) string {
	return fmt.Sprintf("Taglist pool size: %d\n\nAvailable categories:\n%s",
		poolSize, strings.Join(category.All(), "\n"))
}
