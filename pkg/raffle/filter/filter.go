package filter

import (
	"sort"

	"github.com/cognicore/raffle/pkg/raffle/category"
	"github.com/cognicore/raffle/pkg/raffle/tags"
)

// Pipeline turns a selected taglist into the final tag sequence.
//
// Stages run in a fixed order:
//  1. keep tags allowed by the category allow-list (unknown tags are dropped)
//  2. order the survivors by allow-list position
//  3. drop exclude-taglist tags
//  4. drop negative prompt tags
//  5. drop filter-out tags
type Pipeline struct {
	Allow          *category.AllowList
	ExcludeTaglist tags.Set
	Negative       tags.Set
	FilterOut      tags.Set
}

// Stats counts how many tokens each stage removed.
type Stats struct {
	Input          int
	NotAllowed     int
	ExcludeTaglist int
	Negative       int
	FilterOut      int
	Output         int
}

// Apply runs every stage over tokens.
func (p *Pipeline) Apply(tokens []string) []string {
	out, _ := p.ApplyWithStats(tokens)
	return out
}

// ApplyWithStats runs every stage and reports per-stage removals.
func (p *Pipeline) ApplyWithStats(tokens []string) ([]string, Stats) {
	stats := Stats{Input: len(tokens)}

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if p.Allow != nil && p.Allow.Allowed(tok) {
			kept = append(kept, tok)
		}
	}
	stats.NotAllowed = len(tokens) - len(kept)

	p.sortByAllowList(kept)

	var n int
	kept, n = without(kept, p.ExcludeTaglist)
	stats.ExcludeTaglist = n
	kept, n = without(kept, p.Negative)
	stats.Negative = n
	kept, n = without(kept, p.FilterOut)
	stats.FilterOut = n

	stats.Output = len(kept)
	return kept, stats
}

// sortByAllowList orders tokens by allow-list position. Tokens without a
// position go last, keeping their relative order.
func (p *Pipeline) sortByAllowList(tokens []string) {
	pos := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		if _, done := pos[tok]; done {
			continue
		}
		if i, ok := p.Allow.Position(tok); ok {
			pos[tok] = i
		} else {
			pos[tok] = -1
		}
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		pi, pj := pos[tokens[i]], pos[tokens[j]]
		if pi < 0 {
			return false
		}
		if pj < 0 {
			return true
		}
		return pi < pj
	})
}

func without(tokens []string, drop tags.Set) ([]string, int) {
	if len(drop) == 0 {
		return tokens, 0
	}
	out := tokens[:0]
	for _, tok := range tokens {
		if !drop.Has(tok) {
			out = append(out, tok)
		}
	}
	return out, len(tokens) - len(out)
}
