// Package wavelet implements a wavelet matrix over small integer alphabets.
//
// Each level stores one bit of every value, most significant bit first, and
// stably partitions the sequence by that bit for the next level. Rank and
// access then cost one constant-time bit rank per level.
package wavelet

import (
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

type level struct {
	bits *bitset.BitSet
	// ranks[w] is the number of set bits in words [0, w).
	ranks []uint32
}

func newLevel(n int) level {
	return level{bits: bitset.New(uint(n))}
}

func (l *level) index() {
	words := l.bits.Bytes()
	l.ranks = make([]uint32, len(words)+1)
	for w, word := range words {
		l.ranks[w+1] = l.ranks[w] + uint32(bits.OnesCount64(word))
	}
}

// rank1 counts the set bits in [0, i).
func (l *level) rank1(i int) int {
	w, off := i>>6, uint(i&63)
	r := int(l.ranks[w])
	if off > 0 {
		r += bits.OnesCount64(l.bits.Bytes()[w] & (1<<off - 1))
	}
	return r
}

func (l *level) rank0(i int) int {
	return i - l.rank1(i)
}

type Matrix struct {
	levels []level
	zeros  []int
	n      int
	sigma  int
	depth  int
}

// New builds a matrix over values, each of which must lie in [0, sigma).
func New(values []int32, sigma int) *Matrix {
	depth := 1
	for sigma > 1<<depth {
		depth++
	}

	m := &Matrix{
		levels: make([]level, depth),
		zeros:  make([]int, depth),
		n:      len(values),
		sigma:  sigma,
		depth:  depth,
	}

	cur := make([]int32, len(values))
	copy(cur, values)
	next := make([]int32, len(values))
	for d := 0; d < depth; d++ {
		shift := uint(depth - 1 - d)
		lv := newLevel(len(values))
		zeros := 0
		for i, v := range cur {
			if (v>>shift)&1 == 1 {
				lv.bits.Set(uint(i))
			} else {
				zeros++
			}
		}
		lv.index()

		z, o := 0, zeros
		for _, v := range cur {
			if (v>>shift)&1 == 1 {
				next[o] = v
				o++
			} else {
				next[z] = v
				z++
			}
		}
		m.levels[d] = lv
		m.zeros[d] = zeros
		cur, next = next, cur
	}
	return m
}

func (m *Matrix) Len() int {
	return m.n
}

// Rank returns the number of occurrences of c in positions [0, i).
// i is clamped to [0, Len()].
func (m *Matrix) Rank(c int32, i int) int {
	if c < 0 || int(c) >= m.sigma {
		return 0
	}
	i = max(0, min(i, m.n))

	p, q := 0, i
	for d := 0; d < m.depth; d++ {
		lv := &m.levels[d]
		if (c>>uint(m.depth-1-d))&1 == 1 {
			p = m.zeros[d] + lv.rank1(p)
			q = m.zeros[d] + lv.rank1(q)
		} else {
			p = lv.rank0(p)
			q = lv.rank0(q)
		}
	}
	return q - p
}

// Access returns the value stored at position i.
func (m *Matrix) Access(i int) int32 {
	var v int32
	for d := 0; d < m.depth; d++ {
		lv := &m.levels[d]
		v <<= 1
		if lv.bits.Test(uint(i)) {
			v |= 1
			i = m.zeros[d] + lv.rank1(i)
		} else {
			i = lv.rank0(i)
		}
	}
	return v
}

// SizeInBytes approximates the memory held by the bit levels and their
// rank directories.
func (m *Matrix) SizeInBytes() int {
	size := 0
	for _, lv := range m.levels {
		size += len(lv.bits.Bytes())*8 + len(lv.ranks)*4
	}
	return size
}
