package selector

import "math/bits"

const (
	mtN         = 624
	mtM         = 397
	matrixA     = 0x9908b0df
	upperMask   = 0x80000000
	lowerMask   = 0x7fffffff
	floatDenom  = 1 << 53
	floatHiMult = 1 << 26
)

// MT19937 is the 32-bit Mersenne Twister, seeded the way CPython seeds
// random.Random with a non-negative integer. Streams match CPython's for
// the same seed.
type MT19937 struct {
	state [mtN]uint32
	index int
}

// NewMT19937 returns a generator seeded with seed.
func NewMT19937(seed uint64) *MT19937 {
	m := &MT19937{}
	m.Seed(seed)
	return m
}

// Seed resets the generator. The seed is split into little-endian 32-bit
// words; zero seeds with a single zero word.
func (m *MT19937) Seed(seed uint64) {
	key := []uint32{uint32(seed)}
	if hi := uint32(seed >> 32); hi != 0 {
		key = append(key, hi)
	}
	m.SeedArray(key)
}

// SeedArray is the reference init_by_array.
func (m *MT19937) SeedArray(key []uint32) {
	m.seedScalar(19650218)
	mt := &m.state

	i, j := 1, 0
	k := mtN
	if len(key) > k {
		k = len(key)
	}
	for ; k > 0; k-- {
		mt[i] = (mt[i] ^ ((mt[i-1] ^ (mt[i-1] >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= mtN {
			mt[0] = mt[mtN-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k = mtN - 1; k > 0; k-- {
		mt[i] = (mt[i] ^ ((mt[i-1] ^ (mt[i-1] >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= mtN {
			mt[0] = mt[mtN-1]
			i = 1
		}
	}
	mt[0] = 0x80000000
}

func (m *MT19937) seedScalar(s uint32) {
	mt := &m.state
	mt[0] = s
	for i := 1; i < mtN; i++ {
		mt[i] = 1812433253*(mt[i-1]^(mt[i-1]>>30)) + uint32(i)
	}
	m.index = mtN
}

func (m *MT19937) twist() {
	mt := &m.state
	for kk := 0; kk < mtN; kk++ {
		y := (mt[kk] & upperMask) | (mt[(kk+1)%mtN] & lowerMask)
		next := mt[(kk+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			next ^= matrixA
		}
		mt[kk] = next
	}
	m.index = 0
}

// Uint32 returns the next tempered output.
func (m *MT19937) Uint32() uint32 {
	if m.index >= mtN {
		m.twist()
	}
	y := m.state[m.index]
	m.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// Bits returns k random bits, 1 <= k <= 64, assembled like getrandbits.
func (m *MT19937) Bits(k int) uint64 {
	if k <= 32 {
		return uint64(m.Uint32() >> (32 - k))
	}
	lo := uint64(m.Uint32())
	hi := uint64(m.Uint32() >> (64 - k))
	return hi<<32 | lo
}

// Below returns a uniform value in [0, n) by rejection sampling. n must be > 0.
func (m *MT19937) Below(n uint64) uint64 {
	k := bits.Len64(n)
	r := m.Bits(k)
	for r >= n {
		r = m.Bits(k)
	}
	return r
}

// Shuffle permutes n elements in the same order random.shuffle does.
func (m *MT19937) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(m.Below(uint64(i + 1)))
		swap(i, j)
	}
}

// Float64 returns a value in [0, 1) with 53 bits of precision.
func (m *MT19937) Float64() float64 {
	a := m.Uint32() >> 5
	b := m.Uint32() >> 6
	return (float64(a)*floatHiMult + float64(b)) / floatDenom
}
