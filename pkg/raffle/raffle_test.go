package raffle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/raffle/pkg/raffle/category"
	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/pool"
	"github.com/cognicore/raffle/pkg/raffle/selector"
	"github.com/cognicore/raffle/pkg/raffle/store"
	"github.com/cognicore/raffle/pkg/raffle/store/memstore"
)

func testTable() *category.Table {
	table := category.NewTable()
	table.Add("character_count", "1girl")
	table.Add("poses", "a")
	table.Add("actions", "b")
	table.Add("speech_and_text", "c")
	table.Add("poses", "d")
	return table
}

func newTestRaffle(sources map[Rating]pool.Source) *Raffle {
	return New(Options{
		Table:    testTable(),
		Sources:  sources,
		Selector: selector.New(selector.ModeLegacy),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestProcessMustIncludeSeedOne(t *testing.T) {
	r := newTestRaffle(map[Rating]pool.Source{
		General: &pool.Lines{ID: "f", Entries: []string{"a,b,c", "a,b", "c,d"}},
	})

	res, err := r.Process(context.Background(), Request{
		Seed:        1,
		UseGeneral:  true,
		MustInclude: "a",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if res.PoolSize != 2 {
		t.Errorf("PoolSize = %d, want 2", res.PoolSize)
	}
	if res.Selected.Taglist != "a,b,c" || res.Selected.Source != "f" {
		t.Errorf("Selected = %+v", res.Selected)
	}
	if res.Unfiltered != "a, b, c" {
		t.Errorf("Unfiltered = %q", res.Unfiltered)
	}
	if res.Filtered != "a, b, c" {
		t.Errorf("Filtered = %q", res.Filtered)
	}
	if !strings.HasPrefix(res.Debug, "Taglist pool size: 2\n\nAvailable categories:\nabstract_symbols\n") {
		t.Errorf("Debug = %q", res.Debug)
	}
}

func TestProcessOrdersByCategoryTable(t *testing.T) {
	r := newTestRaffle(map[Rating]pool.Source{
		Explicit: &pool.Lines{ID: "explicit", Entries: []string{"d, unknown, a, 1girl"}},
	})

	res, err := r.Process(context.Background(), Request{UseExplicit: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Filtered != "1girl, a, d" {
		t.Errorf("Filtered = %q, want table order with unknown tag dropped", res.Filtered)
	}
	if res.Unfiltered != "d, unknown, a, 1girl" {
		t.Errorf("Unfiltered = %q", res.Unfiltered)
	}
}

func TestProcessFilterStages(t *testing.T) {
	r := newTestRaffle(map[Rating]pool.Source{
		Sensitive: &pool.Lines{ID: "sensitive", Entries: []string{"1girl,a,b,c,d"}},
	})

	res, err := r.Process(context.Background(), Request{
		UseSensitive:      true,
		ExcludeCategories: "speech and text",
		NegativePrompt:    "b",
		FilterOut:         "d\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Filtered != "1girl, a" {
		t.Errorf("Filtered = %q", res.Filtered)
	}
}

func TestProcessExcludeTaglists(t *testing.T) {
	r := newTestRaffle(map[Rating]pool.Source{
		General: &pool.Lines{ID: "general", Entries: []string{"a,comic", "a,b"}},
	})

	for seed := uint64(0); seed < 20; seed++ {
		res, err := r.Process(context.Background(), Request{
			Seed:            seed,
			UseGeneral:      true,
			ExcludeTaglists: "comic",
		})
		if err != nil {
			t.Fatal(err)
		}
		if res.PoolSize != 1 || res.Selected.Taglist != "a,b" {
			t.Fatalf("seed %d selected %+v", seed, res.Selected)
		}
	}
}

func TestProcessDeterministic(t *testing.T) {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = "a,b," + strings.Repeat("x", i%7+1)
	}
	r := newTestRaffle(map[Rating]pool.Source{
		General:  &pool.Lines{ID: "general", Entries: lines[:100]},
		Explicit: &pool.Lines{ID: "explicit", Entries: lines[100:]},
	})

	req := Request{Seed: 987654321, UseGeneral: true, UseExplicit: true}
	first, err := r.Process(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Process(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("draw %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestProcessInvalidCategory(t *testing.T) {
	r := newTestRaffle(map[Rating]pool.Source{
		General: &pool.Lines{ID: "general", Entries: []string{"a"}},
	})

	_, err := r.Process(context.Background(), Request{
		UseGeneral:        true,
		ExcludeCategories: "not_a_real_category",
	})
	if !errors.Is(err, internalerr.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	var ice *category.InvalidCategoryError
	if !errors.As(err, &ice) || !reflect.DeepEqual(ice.Names, []string{"not_a_real_category"}) {
		t.Errorf("error should list exactly the bad name: %v", err)
	}
}

func TestProcessEmptyPool(t *testing.T) {
	r := newTestRaffle(map[Rating]pool.Source{
		General:  &pool.Lines{ID: "general", Entries: []string{"a,b", "c"}},
		Explicit: &pool.Lines{ID: "explicit", Entries: []string{"zzz"}},
	})

	_, err := r.Process(context.Background(), Request{UseGeneral: true, MustInclude: "zzz"})
	if !errors.Is(err, internalerr.ErrEmptyPool) {
		t.Errorf("expected ErrEmptyPool, got %v", err)
	}

	_, err = r.Process(context.Background(), Request{})
	if !errors.Is(err, internalerr.ErrEmptyPool) {
		t.Errorf("no enabled source should give ErrEmptyPool, got %v", err)
	}
}

func TestProcessMissingSource(t *testing.T) {
	r := newTestRaffle(map[Rating]pool.Source{})

	_, err := r.Process(context.Background(), Request{UseQuestionable: true})
	if !errors.Is(err, internalerr.ErrMissingResource) {
		t.Errorf("expected ErrMissingResource, got %v", err)
	}

	noTable := New(Options{})
	if _, err := noTable.Process(context.Background(), Request{}); !errors.Is(err, internalerr.ErrMissingResource) {
		t.Errorf("expected ErrMissingResource without a table, got %v", err)
	}
}

func TestProcessFromStore(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	if _, err := store.ImportTaglistsFrom(ctx, st, "general", strings.NewReader("a,b,c\na,b\nc,d\n")); err != nil {
		t.Fatal(err)
	}

	r := newTestRaffle(map[Rating]pool.Source{General: store.PoolSource(st, "general")})
	res, err := r.Process(ctx, Request{Seed: 1, UseGeneral: true, MustInclude: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Selected.Taglist != "a,b,c" {
		t.Errorf("Selected = %+v", res.Selected)
	}
}

func TestRequestEnabled(t *testing.T) {
	req := Request{UseExplicit: true, UseGeneral: true}
	if got := req.Enabled(); !reflect.DeepEqual(got, []Rating{General, Explicit}) {
		t.Errorf("Enabled = %v", got)
	}
}
