package selector

import (
	"fmt"
	"strings"

	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/pool"
)

// Mode chooses how a seed turns into a pool index.
type Mode int

const (
	// ModeLegacy shuffles the pool with a generator seeded by seed and then
	// takes index seed mod len. The seed is used twice; this keeps picks
	// identical to earlier releases.
	ModeLegacy Mode = iota
	// ModeSingle draws one seeded index without shuffling.
	ModeSingle
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeSingle:
		return "single"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "legacy", "single" or an empty string (legacy).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return ModeLegacy, nil
	case "single":
		return ModeSingle, nil
	default:
		return 0, fmt.Errorf("%w: unknown selection mode %q", internalerr.ErrInvalidConfig, s)
	}
}

// Selector picks one entry from a pool deterministically.
type Selector struct {
	mode Mode
}

// New creates a selector.
func New(mode Mode) *Selector {
	return &Selector{mode: mode}
}

// Mode returns the configured mode.
func (s *Selector) Mode() Mode { return s.mode }

// Select returns the entry chosen by seed. The same pool and seed always
// give the same entry. entries is not modified.
func (s *Selector) Select(entries []pool.Entry, seed uint64) (pool.Entry, error) {
	idx, err := s.Index(len(entries), seed)
	if err != nil {
		return pool.Entry{}, err
	}
	return entries[idx], nil
}

// Index maps seed to a position in a pool of n entries.
func (s *Selector) Index(n int, seed uint64) (int, error) {
	if n <= 0 {
		return 0, internalerr.ErrEmptyPool
	}
	rng := NewMT19937(seed)

	switch s.mode {
	case ModeSingle:
		return int(rng.Below(uint64(n))), nil
	default:
		perm := make([]int, n)
		for i := range perm {
			perm[i] = i
		}
		rng.Shuffle(n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		return perm[seed%uint64(n)], nil
	}
}
