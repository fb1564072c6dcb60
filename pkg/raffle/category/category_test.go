package category

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/tags"
)

func TestAllCategories(t *testing.T) {
	cats := All()
	if len(cats) != 41 {
		t.Fatalf("expected 41 categories, got %d", len(cats))
	}
	if cats[0] != "abstract_symbols" || cats[len(cats)-1] != "two_handed_character_items" {
		t.Errorf("unexpected ordering: first %q last %q", cats[0], cats[len(cats)-1])
	}

	// callers cannot mutate the enumeration
	cats[0] = "changed"
	if All()[0] != "abstract_symbols" {
		t.Error("All should return a copy")
	}

	if !IsValid("poses") {
		t.Error("poses should be valid")
	}
	if IsValid("not_a_real_category") {
		t.Error("unknown category reported valid")
	}
}

func TestParseExcluded(t *testing.T) {
	set, err := ParseExcluded("poses,\nspeech and text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Has("poses") || !set.Has("speech_and_text") {
		t.Errorf("unexpected set %v", set)
	}

	set, err = ParseExcluded("   ")
	if err != nil || set.Len() != 0 {
		t.Errorf("blank input should give empty set, got %v %v", set, err)
	}
}

func TestParseExcludedInvalid(t *testing.T) {
	_, err := ParseExcluded("not_a_real_category")
	if !errors.Is(err, internalerr.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}

	var ice *InvalidCategoryError
	if !errors.As(err, &ice) {
		t.Fatalf("expected *InvalidCategoryError, got %T", err)
	}
	if !reflect.DeepEqual(ice.Names, []string{"not_a_real_category"}) {
		t.Errorf("Names = %q", ice.Names)
	}
	if !strings.Contains(err.Error(), "not_a_real_category") {
		t.Errorf("error message should name the category: %v", err)
	}
}

func TestParse(t *testing.T) {
	content := `[poses] standing
[actions] running

malformed line
[poses]missing_space
[expressions_and_mental_state] smile
[actions] standing
`
	table, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}

	if table.Len() != 3 {
		t.Fatalf("expected 3 tags, got %d", table.Len())
	}

	// later duplicates win
	if c, _ := table.Lookup("standing"); c != "actions" {
		t.Errorf("standing category = %q, want actions", c)
	}
	if c, _ := table.Lookup("smile"); c != "expressions_and_mental_state" {
		t.Errorf("smile category = %q", c)
	}
	if _, ok := table.Lookup("missing_space"); ok {
		t.Error("line without separator should be skipped")
	}

	// insertion order is first appearance
	if got := table.Tags(); !reflect.DeepEqual(got, []string{"standing", "running", "smile"}) {
		t.Errorf("Tags() = %q", got)
	}
}

func TestParseEntryTagVerbatim(t *testing.T) {
	cat, tag, ok := ParseEntry("[artstyle_technique] a] b ")
	if !ok || cat != "artstyle_technique" || tag != "a] b" {
		t.Errorf("ParseEntry = %q %q %v", cat, tag, ok)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, internalerr.ErrMissingResource) {
		t.Errorf("expected ErrMissingResource, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categorized_tags.txt")
	if err := os.WriteFile(path, []byte("[poses] sitting\r\n[actions] waving\r\n"), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c, ok := table.Lookup("sitting"); !ok || c != "poses" {
		t.Errorf("sitting = %q %v", c, ok)
	}
}

func TestAllowList(t *testing.T) {
	table := NewTable()
	table.Add("poses", "x")
	table.Add("speech_and_text", "y")
	table.Add("actions", "z")

	allow := table.AllowList(tags.NewSet("speech_and_text"))

	if !allow.Allowed("x") || !allow.Allowed("z") {
		t.Error("x and z should be allowed")
	}
	if allow.Allowed("y") {
		t.Error("y belongs to an excluded category")
	}
	if allow.Allowed("unknown") {
		t.Error("tags missing from the table are not allowed")
	}
	if allow.Len() != 2 {
		t.Errorf("Len = %d", allow.Len())
	}

	px, _ := allow.Position("x")
	pz, _ := allow.Position("z")
	if px >= pz {
		t.Errorf("x should sort before z: %d %d", px, pz)
	}
	if _, ok := allow.Position("y"); ok {
		t.Error("excluded tag should have no position")
	}
}

func TestAllowListRepeatedTag(t *testing.T) {
	table := NewTable()
	table.Add("speech_and_text", "x")
	table.Add("poses", "y")
	table.Add("poses", "x")
	table.Add("poses", "z")
	table.Add("speech_and_text", "z")

	allow := table.AllowList(tags.NewSet("speech_and_text"))

	if !allow.Allowed("x") {
		t.Error("x takes its last category and should be allowed")
	}
	if allow.Allowed("z") {
		t.Error("z takes its last category and should be excluded")
	}

	px, _ := allow.Position("x")
	py, _ := allow.Position("y")
	if py >= px {
		t.Errorf("x should sort at its first allowed line, after y: x=%d y=%d", px, py)
	}
	if table.Len() != 3 {
		t.Errorf("Len = %d, want 3 distinct tags", table.Len())
	}
}
