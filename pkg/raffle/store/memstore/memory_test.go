package memstore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/store"
)

func TestTaglists(t *testing.T) {
	ctx := context.Background()
	s := New()

	lines := []string{"a,b", "c"}
	if _, err := s.ImportTaglists(ctx, "general", lines); err != nil {
		t.Fatal(err)
	}
	lines[0] = "mutated"

	var got []string
	err := s.ScanTaglists(ctx, "general", func(line string) error {
		got = append(got, line)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"a,b", "c"}) {
		t.Errorf("got %q", got)
	}
}

func TestMissingSource(t *testing.T) {
	err := New().ScanTaglists(context.Background(), "nope", func(string) error { return nil })
	if !errors.Is(err, internalerr.ErrMissingResource) {
		t.Errorf("expected ErrMissingResource, got %v", err)
	}
}

func TestCategoriesOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	entries := []store.CategoryEntry{
		{Category: "poses", Tag: "x"},
		{Category: "actions", Tag: "y"},
	}
	if _, err := s.ImportCategories(ctx, entries); err != nil {
		t.Fatal(err)
	}

	table, err := store.LoadTable(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(table.Tags(), []string{"x", "y"}) {
		t.Errorf("order = %q", table.Tags())
	}

	srcs, _ := s.Sources(ctx)
	if len(srcs) != 0 {
		t.Errorf("sources = %q", srcs)
	}
}
