package tags

import "strings"

// Normalize splits free-form tag text into tokens.
// Newlines count as separators, repeated spaces and commas collapse, and
// spaces inside a tag become underscores. Order and duplicates are kept.
//
// Examples:
//
//	"red hair, blue hair"  -> ["red_hair", "blue_hair"]
//	"red hair\nblue_hair"  -> ["red_hair", "blue_hair"]
//	"red hair,,blue_hair"  -> ["red_hair", "blue_hair"]
//	"red   hair,blue  hair" -> ["red_hair", "blue_hair"]
func Normalize(raw string) []string {
	pieces := split(raw)
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(p, " ", "_"))
	}
	return out
}

// Split works like Normalize but leaves spaces inside tags alone.
// Weighted tags such as "(red hair:1.2)" survive intact.
func Split(raw string) []string {
	pieces := split(raw)
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func split(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\n", ",")

	for strings.Contains(raw, "  ") {
		raw = strings.ReplaceAll(raw, "  ", " ")
	}
	for strings.Contains(raw, ",,") {
		raw = strings.ReplaceAll(raw, ",,", ",")
	}

	return strings.Split(strings.ReplaceAll(raw, ", ", ","), ",")
}

// Join renders tokens the way they are shown to users.
func Join(tokens []string) string {
	return strings.Join(tokens, ", ")
}

// Set is an unordered collection of unique tags.
type Set map[string]struct{}

// NewSet builds a set from tokens.
func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// ParseLine parses one line of a pre-normalized taglist file.
// Only commas separate tags; no underscore conversion happens here.
func ParseLine(line string) Set {
	parts := strings.Split(line, ",")
	s := make(Set, len(parts))
	for _, p := range parts {
		s[strings.TrimSpace(p)] = struct{}{}
	}
	return s
}

// ParseSet normalizes raw and returns the resulting set together with the
// tokens rejected by valid, in input order and without repeats.
// A nil valid accepts every token.
func ParseSet(raw string, valid func(string) bool) (Set, []string) {
	tokens := Normalize(raw)
	s := make(Set, len(tokens))
	var invalid []string
	seen := make(map[string]struct{})
	for _, t := range tokens {
		if valid != nil && !valid(t) {
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				invalid = append(invalid, t)
			}
			continue
		}
		s[t] = struct{}{}
	}
	return s, invalid
}

// Has reports whether tag is in the set.
func (s Set) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Len returns the number of tags.
func (s Set) Len() int { return len(s) }

// Intersects reports whether s and other share at least one tag.
func (s Set) Intersects(other Set) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for t := range small {
		if _, ok := large[t]; ok {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every tag of sub is in s.
func (s Set) ContainsAll(sub Set) bool {
	if len(sub) > len(s) {
		return false
	}
	for t := range sub {
		if _, ok := s[t]; !ok {
			return false
		}
	}
	return true
}
