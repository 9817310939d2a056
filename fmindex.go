package fmindex

import (
	"cmp"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// FMIndex answers exact pattern queries over a text through backward search
// on its Burrows-Wheeler Transform.
//
// It is immutable once built and safe for concurrent use. The suffix array
// it was built from is shared, not copied.
type FMIndex[S cmp.Ordered] struct {
	alphabet *Alphabet[S]
	n        int
	sa       []int
	// counts[c] is the number of symbols smaller than c; counts[k] == n.
	counts []int
	occ    occurrences
	step   int
}

// NewFMIndex builds the index for text from its suffix array. Occurrence
// counts are sampled every step BWT positions: a smaller step answers
// OccurrenceCount faster at the cost of more checkpoints.
func NewFMIndex[S cmp.Ordered](text *Text[S], sa []int, step int) (*FMIndex[S], error) {
	if step < 1 {
		return nil, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidInput, step)
	}
	bwt, err := BuildBWT(text.Codes, sa)
	if err != nil {
		return nil, err
	}
	return newFMIndex(text.Alphabet, bwt, sa, step, false), nil
}

// NewWaveletFMIndex is NewFMIndex with occurrence counts answered by a
// wavelet matrix instead of sampled checkpoints.
func NewWaveletFMIndex[S cmp.Ordered](text *Text[S], sa []int) (*FMIndex[S], error) {
	bwt, err := BuildBWT(text.Codes, sa)
	if err != nil {
		return nil, err
	}
	return newFMIndex(text.Alphabet, bwt, sa, 0, true), nil
}

// NewFMIndexFromBWT builds the index from an already computed BWT. Every BWT
// symbol must belong to alphabet and the sentinel must appear exactly once.
func NewFMIndexFromBWT[S cmp.Ordered](alphabet *Alphabet[S], bwt []S, sa []int, step int) (*FMIndex[S], error) {
	if step < 1 {
		return nil, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidInput, step)
	}
	if len(bwt) != len(sa) {
		return nil, fmt.Errorf("%w: bwt has %d symbols but suffix array has %d entries", ErrInvalidInput, len(bwt), len(sa))
	}
	if err := checkPermutation(sa, len(bwt)); err != nil {
		return nil, err
	}
	codes, ok := alphabet.Encode(bwt)
	if !ok {
		return nil, fmt.Errorf("%w: bwt holds symbols outside the alphabet", ErrInvalidInput)
	}
	sentinels := 0
	for _, c := range codes {
		if c == 0 {
			sentinels++
		}
	}
	if sentinels != 1 {
		return nil, fmt.Errorf("%w: bwt holds %d sentinels", ErrInvalidInput, sentinels)
	}
	return newFMIndex(alphabet, codes, sa, step, false), nil
}

func newFMIndex[S cmp.Ordered](alphabet *Alphabet[S], bwt []int32, sa []int, step int, useWavelet bool) *FMIndex[S] {
	k := alphabet.Size()
	var occ occurrences
	if useWavelet {
		occ = newWaveletOccurrences(bwt, k)
	} else {
		occ = newSampledOccurrences(bwt, k, step)
	}
	return &FMIndex[S]{
		alphabet: alphabet,
		n:        len(bwt),
		sa:       sa,
		counts:   countTable(bwt, k),
		occ:      occ,
		step:     step,
	}
}

func countTable(bwt []int32, k int) []int {
	counts := make([]int, k+1)
	for _, c := range bwt {
		counts[c+1]++
	}
	for c := 1; c <= k; c++ {
		counts[c] += counts[c-1]
	}
	return counts
}

// Range returns the half-open suffix array range [l, r) of suffixes that
// start with pattern. An empty pattern, or one holding a symbol absent from
// the text, yields an empty range.
func (f *FMIndex[S]) Range(pattern []S) (int, int) {
	if len(pattern) == 0 {
		return 0, 0
	}
	codes, ok := f.alphabet.Encode(pattern)
	if !ok {
		return 0, 0
	}
	return f.backwardSearch(codes)
}

func (f *FMIndex[S]) backwardSearch(codes []int32) (int, int) {
	l, r := 0, f.n
	for i := len(codes) - 1; i >= 0 && l < r; i-- {
		c := codes[i]
		l = f.counts[c] + f.occ.rank(c, l)
		r = f.counts[c] + f.occ.rank(c, r)
	}
	if l >= r {
		return 0, 0
	}
	return l, r
}

// Search returns the text positions at which pattern occurs.
func (f *FMIndex[S]) Search(pattern []S) *roaring.Bitmap {
	positions := roaring.New()
	l, r := f.Range(pattern)
	for i := l; i < r; i++ {
		positions.AddInt(f.sa[i])
	}
	return positions
}

// Count returns the number of occurrences of pattern without locating them.
func (f *FMIndex[S]) Count(pattern []S) int {
	l, r := f.Range(pattern)
	return r - l
}

// OccurrenceCount returns how many times c appears in BWT[0:i).
// i is clamped to [0, Len()].
func (f *FMIndex[S]) OccurrenceCount(c S, i int) int {
	code, ok := f.alphabet.Code(c)
	if !ok {
		return 0
	}
	return f.occ.rank(code, max(0, min(i, f.n)))
}

// lf maps BWT row i to the row of the suffix one position to the left.
func (f *FMIndex[S]) lf(i int) int {
	c := f.occ.symbol(i)
	return f.counts[c] + f.occ.rank(c, i)
}

// Reconstruct recovers the original text, sentinel included, by walking
// the LF mapping from the row of the sentinel suffix.
func (f *FMIndex[S]) Reconstruct() []S {
	out := make([]S, f.n)
	out[f.n-1] = f.alphabet.Sentinel()
	row := 0
	for i := f.n - 2; i >= 0; i-- {
		out[i] = f.alphabet.Symbol(f.occ.symbol(row))
		row = f.lf(row)
	}
	return out
}

func (f *FMIndex[S]) BWT() []S {
	out := make([]S, f.n)
	for i := range out {
		out[i] = f.alphabet.Symbol(f.occ.symbol(i))
	}
	return out
}

// SuffixArray returns the shared suffix array. Callers must not modify it.
func (f *FMIndex[S]) SuffixArray() []int {
	return f.sa
}

func (f *FMIndex[S]) Len() int {
	return f.n
}

// Step is the checkpoint interval, or 0 for the wavelet backend.
func (f *FMIndex[S]) Step() int {
	return f.step
}

func (f *FMIndex[S]) Alphabet() *Alphabet[S] {
	return f.alphabet
}

// OccurrenceBytes is the memory held by the occurrence structure.
func (f *FMIndex[S]) OccurrenceBytes() int {
	return f.occ.sizeInBytes()
}
