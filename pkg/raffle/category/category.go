package category

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/tags"
)

var all = []string{
	"abstract_symbols",
	"actions",
	"artstyle_technique",
	"background_objects",
	"bodily_fluids",
	"camera_angle_perspective",
	"camera_focus_subject",
	"camera_framing_composition",
	"character_count",
	"clothes_and_accessories",
	"color_scheme",
	"content_censorship_methods",
	"expressions_and_mental_state",
	"female_intimate_anatomy",
	"female_physical_descriptors",
	"format_and_presentation",
	"gaze_direction_and_eye_contact",
	"general_clothing_exposure",
	"generic_clothing_interactions",
	"holding_large_items",
	"holding_small_items",
	"intentional_design_exposure",
	"lighting_and_vfx",
	"male_intimate_anatomy",
	"male_physical_descriptors",
	"metadata_and_attribution",
	"named_garment_exposure",
	"nudity_and_absence_of_clothing",
	"one_handed_character_items",
	"physical_locations",
	"poses",
	"publicly_visible_anatomy",
	"relationships",
	"sex_acts",
	"sfw_clothed_anatomy",
	"special_backgrounds",
	"specific_garment_interactions",
	"speech_and_text",
	"standard_physical_descriptors",
	"thematic_settings",
	"two_handed_character_items",
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(all))
	for _, c := range all {
		m[c] = struct{}{}
	}
	return m
}()

// All returns every known category name in display order.
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// IsValid reports whether name is a known category.
func IsValid(name string) bool {
	_, ok := known[name]
	return ok
}

// InvalidCategoryError lists category names that are not in the enumeration.
type InvalidCategoryError struct {
	Names []string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category names: %s; category names may have changed in a new version, see the list of available categories",
		strings.Join(e.Names, ", "))
}

// Is lets errors.Is match internalerr.ErrInvalidCategory.
func (e *InvalidCategoryError) Is(target error) bool {
	return target == internalerr.ErrInvalidCategory
}

// ParseExcluded normalizes free-form category text and validates every name.
func ParseExcluded(raw string) (tags.Set, error) {
	set, invalid := tags.ParseSet(raw, IsValid)
	if len(invalid) > 0 {
		return nil, &InvalidCategoryError{Names: invalid}
	}
	return set, nil
}

// Table maps tags to categories, keeping every resource line in order.
// It is read-only once loading finishes and safe for concurrent readers.
type Table struct {
	byTag   map[string]string
	order   []string
	entries []Entry
}

// Entry is one "[category] tag" line of the resource.
type Entry struct {
	Category string
	Tag      string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		byTag: make(map[string]string),
	}
}

// Add records tag under category. A repeated tag takes the new category;
// the earlier line is kept for ordering.
func (t *Table) Add(category, tag string) {
	if _, ok := t.byTag[tag]; !ok {
		t.order = append(t.order, tag)
	}
	t.byTag[tag] = category
	t.entries = append(t.entries, Entry{Category: category, Tag: tag})
}

// Load reads a categorized tags file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: categorized tags file not found at %s", internalerr.ErrMissingResource, path)
		}
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read categorized tags %s: %w", path, err)
	}
	return t, nil
}

// Parse reads "[category] tag" lines. Lines without the "] " separator are
// skipped; the tag is taken verbatim.
func Parse(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		category, tag, ok := ParseEntry(scanner.Text())
		if !ok {
			continue
		}
		t.Add(category, tag)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseEntry parses a single "[category] tag" line.
func ParseEntry(line string) (category, tag string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	parts := strings.SplitN(line, "] ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimPrefix(parts[0], "["), parts[1], true
}

// Lookup returns the category of tag.
func (t *Table) Lookup(tag string) (string, bool) {
	c, ok := t.byTag[tag]
	return c, ok
}

// Len returns the number of distinct tags.
func (t *Table) Len() int { return len(t.order) }

// Tags returns all tags in insertion order.
func (t *Table) Tags() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// AllowList derives the tags whose category is not excluded. A tag sorts
// at the first line that lists it under a category that is not excluded.
func (t *Table) AllowList(excluded tags.Set) *AllowList {
	index := make(map[string]int)
	for i, e := range t.entries {
		if excluded.Has(e.Category) {
			continue
		}
		if _, ok := index[e.Tag]; !ok {
			index[e.Tag] = i
		}
	}
	return &AllowList{table: t, excluded: excluded, index: index}
}

// AllowList answers membership and ordering questions for allowed tags.
// Tags missing from the table are never allowed.
type AllowList struct {
	table    *Table
	excluded tags.Set
	index    map[string]int
}

// Allowed reports whether tag is known and its category is not excluded.
func (a *AllowList) Allowed(tag string) bool {
	c, ok := a.table.byTag[tag]
	if !ok {
		return false
	}
	return !a.excluded.Has(c)
}

// Position returns where tag sorts in filtered output. Tags that are not
// allowed report false.
func (a *AllowList) Position(tag string) (int, bool) {
	if !a.Allowed(tag) {
		return 0, false
	}
	i, ok := a.index[tag]
	return i, ok
}

// Len counts the allowed tags.
func (a *AllowList) Len() int {
	n := 0
	for _, tag := range a.table.order {
		if a.Allowed(tag) {
			n++
		}
	}
	return n
}
