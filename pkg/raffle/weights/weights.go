package weights

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cognicore/raffle/pkg/raffle/category"
	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/tags"
)

// weighted matches "(name:weight)".
var weighted = regexp.MustCompile(`^\(([^:]+):([^)]+)\)$`)

// Adjustments maps a category to the strength applied to its tags.
type Adjustments map[string]float64

// String renders adjustments sorted by category.
func (a Adjustments) String() string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s:%s", name, FormatWeight(a[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ParseAdjustments parses "(category:strength), (category:strength)".
func ParseAdjustments(raw string) (Adjustments, error) {
	adj := make(Adjustments)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		m := weighted.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("%w: invalid format %q, expected (category:strength), e.g. (poses:1.2)",
				internalerr.ErrInvalidInput, part)
		}

		name := strings.TrimSpace(m[1])
		if !category.IsValid(name) {
			return nil, &category.InvalidCategoryError{Names: []string{name}}
		}

		strength, err := strconv.ParseFloat(strings.TrimSpace(m[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid strength value %q for category %q, must be a number",
				internalerr.ErrInvalidInput, m[2], name)
		}
		adj[name] = strength
	}
	return adj, nil
}

// Adjuster rewrites tag weights by category.
type Adjuster struct {
	Table *category.Table
}

// Adjust applies adj to every tag in input whose category has an entry.
// With preserveExisting, tags that already carry a weight keep it;
// otherwise the existing weight is multiplied by the category strength.
// It returns the rewritten tags and a per-tag report.
func (a *Adjuster) Adjust(input string, adj Adjustments, preserveExisting bool) (string, string) {
	items := tags.Split(input)
	if len(items) == 0 {
		return "", "No input tags provided"
	}

	out := make([]string, 0, len(items))
	report := make([]string, 0, len(items))

	for _, item := range items {
		name, weight, hasWeight := ExtractWeight(item)
		cat, known := a.Table.Lookup(strings.ReplaceAll(name, " ", "_"))
		strength, adjusted := adj[cat]

		switch {
		case known && adjusted && preserveExisting && hasWeight:
			out = append(out, Apply(name, weight))
			report = append(report, fmt.Sprintf("%s [%s] - kept existing weight: %s", name, cat, FormatWeight(weight)))
		case known && adjusted:
			final := strength
			if hasWeight {
				final = weight * strength
			}
			out = append(out, Apply(name, final))
			report = append(report, fmt.Sprintf("%s [%s] - adjusted to: %s", name, cat, FormatWeight(final)))
		case known:
			out = append(out, item)
			report = append(report, fmt.Sprintf("%s [%s] - no adjustment", name, cat))
		default:
			out = append(out, item)
			report = append(report, fmt.Sprintf("%s [unknown category] - no adjustment", name))
		}
	}

	debug := fmt.Sprintf("Applied adjustments: %s\n\nTag adjustments:\n%s", adj, strings.Join(report, "\n"))
	return strings.Join(out, ", "), debug
}

// ExtractWeight splits "(tag:1.2)" into its name and weight. Tags without a
// parseable weight are returned unchanged with hasWeight false.
func ExtractWeight(item string) (name string, weight float64, hasWeight bool) {
	item = strings.TrimSpace(item)
	m := weighted.FindStringSubmatch(item)
	if m == nil {
		return item, 0, false
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(m[2]), 64)
	if err != nil {
		return item, 0, false
	}
	return strings.TrimSpace(m[1]), w, true
}

// Apply renders name with weight; a weight of exactly 1 leaves it bare.
func Apply(name string, weight float64) string {
	if weight == 1.0 {
		return name
	}
	return fmt.Sprintf("(%s:%s)", name, FormatWeight(weight))
}

// FormatWeight prints the shortest decimal that round-trips, always with a
// fractional part ("1.5", "2.0", "1.7999999999999998").
func FormatWeight(w float64) string {
	if math.IsInf(w, 0) || math.IsNaN(w) {
		return strconv.FormatFloat(w, 'g', -1, 64)
	}
	abs := math.Abs(w)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(w, 'g', -1, 64)
	}
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
