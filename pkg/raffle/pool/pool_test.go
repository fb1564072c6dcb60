package pool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/tags"
)

func taglists(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Taglist
	}
	return out
}

func TestBuildSourceMustInclude(t *testing.T) {
	src := &Lines{ID: "f", Entries: []string{"a,b,c", "a,b", "c,d"}}

	entries, err := BuildSource(context.Background(), src, Filter{MustInclude: tags.NewSet("a")})
	if err != nil {
		t.Fatal(err)
	}
	if got := taglists(entries); !reflect.DeepEqual(got, []string{"a,b,c", "a,b"}) {
		t.Errorf("pool = %q", got)
	}
	for _, e := range entries {
		if e.Source != "f" {
			t.Errorf("entry source = %q", e.Source)
		}
	}
}

func TestBuildSourceRequiresEveryTag(t *testing.T) {
	src := &Lines{ID: "f", Entries: []string{"a", "a,c", "b,a,x"}}

	entries, err := BuildSource(context.Background(), src, Filter{MustInclude: tags.NewSet("a", "b")})
	if err != nil {
		t.Fatal(err)
	}
	if got := taglists(entries); !reflect.DeepEqual(got, []string{"b,a,x"}) {
		t.Errorf("pool = %q", got)
	}
}

func TestBuildSourceExcludeWins(t *testing.T) {
	src := &Lines{ID: "f", Entries: []string{"a,b", "a, comic", "b"}}

	filter := Filter{
		MustInclude: tags.NewSet("a"),
		Exclude:     tags.NewSet("comic"),
	}
	entries, err := BuildSource(context.Background(), src, filter)
	if err != nil {
		t.Fatal(err)
	}
	if got := taglists(entries); !reflect.DeepEqual(got, []string{"a,b"}) {
		t.Errorf("pool = %q", got)
	}

	entries, err = BuildSource(context.Background(), src, Filter{Exclude: tags.NewSet("comic")})
	if err != nil {
		t.Fatal(err)
	}
	if got := taglists(entries); !reflect.DeepEqual(got, []string{"a,b", "b"}) {
		t.Errorf("pool without must-include = %q", got)
	}
}

func TestBuildSkipsBlankLines(t *testing.T) {
	src := &Lines{ID: "f", Entries: []string{"", "   ", " x,y "}}

	entries, err := BuildSource(context.Background(), src, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if got := taglists(entries); !reflect.DeepEqual(got, []string{"x,y"}) {
		t.Errorf("pool = %q", got)
	}
}

func TestBuildCombinesInOrder(t *testing.T) {
	sources := []Source{
		&Lines{ID: "general", Entries: []string{"a,b"}},
		&Lines{ID: "explicit", Entries: []string{"a,c", "d"}},
	}

	entries, err := Build(context.Background(), sources, Filter{MustInclude: tags.NewSet("a")})
	if err != nil {
		t.Fatal(err)
	}
	want := []Entry{
		{Source: "general", Taglist: "a,b"},
		{Source: "explicit", Taglist: "a,c"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("combined = %+v", entries)
	}
}

func TestBuildEmptyPool(t *testing.T) {
	src := &Lines{ID: "f", Entries: []string{"a,b", "c"}}

	_, err := Build(context.Background(), []Source{src}, Filter{MustInclude: tags.NewSet("zzz")})
	if !errors.Is(err, internalerr.ErrEmptyPool) {
		t.Errorf("expected ErrEmptyPool, got %v", err)
	}

	_, err = Build(context.Background(), nil, Filter{})
	if !errors.Is(err, internalerr.ErrEmptyPool) {
		t.Errorf("no sources should be an empty pool, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taglists-general.txt")
	if err := os.WriteFile(path, []byte("a,b,c\n\na,b\r\nc,d\n"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := Build(context.Background(), []Source{Open("general", path)}, Filter{MustInclude: tags.NewSet("a")})
	if err != nil {
		t.Fatal(err)
	}
	if got := taglists(entries); !reflect.DeepEqual(got, []string{"a,b,c", "a,b"}) {
		t.Errorf("pool = %q", got)
	}
}

func TestFileSourceMissing(t *testing.T) {
	src := NewFileSource("general", filepath.Join(t.TempDir(), "missing.txt"))

	_, err := Build(context.Background(), []Source{src}, Filter{})
	if !errors.Is(err, internalerr.ErrMissingResource) {
		t.Errorf("expected ErrMissingResource, got %v", err)
	}
}

func TestFileSourceCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < checkEvery*2; i++ {
		f.WriteString("a,b\n")
	}
	f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = BuildSource(ctx, NewFileSource("big", path), Filter{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParquetSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taglists-general.parquet")
	rows := []ParquetRow{{Taglist: "a,b,c"}, {Taglist: "a,b"}, {Taglist: "c,d"}}
	if err := parquet.WriteFile(path, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}

	src := Open("general", path)
	if _, ok := src.(*ParquetSource); !ok {
		t.Fatalf("Open picked %T for a parquet file", src)
	}

	entries, err := Build(context.Background(), []Source{src}, Filter{MustInclude: tags.NewSet("a")})
	if err != nil {
		t.Fatal(err)
	}
	if got := taglists(entries); !reflect.DeepEqual(got, []string{"a,b,c", "a,b"}) {
		t.Errorf("pool = %q", got)
	}
}
