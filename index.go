package fmindex

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/viniciusth/rmq"
)

// Algorithm selects the suffix array construction used by Build.
type Algorithm int

const (
	Induced Algorithm = iota
	Doubling
)

func (a Algorithm) String() string {
	switch a {
	case Induced:
		return "induced"
	case Doubling:
		return "doubling"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm accepts "induced" (or "sais") and "doubling" (or "mm").
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "induced", "sais":
		return Induced, nil
	case "doubling", "mm":
		return Doubling, nil
	}
	return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidInput, s)
}

const (
	DefaultStep = 64
	// NUL sorts below every other rune, so any text free of it can be indexed.
	DefaultSentinel rune = 0
)

type Builder struct {
	text          string
	step          int
	sentinel      rune
	algorithm     Algorithm
	crossCheck    bool
	caseSensitive bool
	normalize     bool
	useWavelet    bool
	useLCP        bool
}

func NewBuilder(text string) *Builder {
	return &Builder{
		text:          text,
		step:          DefaultStep,
		sentinel:      DefaultSentinel,
		algorithm:     Induced,
		caseSensitive: true,
		normalize:     true,
		useLCP:        true,
	}
}

// Sets the checkpoint interval of the occurrence table.
// Smaller steps make every backward search step faster and use more memory: n/step*K counters.
func (b *Builder) WithStep(step int) *Builder {
	b.step = step
	return b
}

// Sets the terminator appended to the text. It must sort below every symbol of the text.
func (b *Builder) WithSentinel(sentinel rune) *Builder {
	b.sentinel = sentinel
	return b
}

// Builds the suffix array by prefix doubling, O(n log^2 n).
func (b *Builder) UseDoubling() *Builder {
	b.algorithm = Doubling
	return b
}

// Builds the suffix array by induced sorting, O(n). This is the default.
func (b *Builder) UseInduced() *Builder {
	b.algorithm = Induced
	return b
}

func (b *Builder) UseAlgorithm(a Algorithm) *Builder {
	b.algorithm = a
	return b
}

// Runs both suffix array builders and fails with ErrConstructionMismatch if they disagree.
// Doubles construction time, useful to validate new inputs.
func (b *Builder) CrossCheck() *Builder {
	b.crossCheck = true
	return b
}

// Lowercases the text and every pattern.
func (b *Builder) CaseInsensitive() *Builder {
	b.caseSensitive = false
	return b
}

// Skips the normalization of the text and patterns with NFC.
func (b *Builder) SkipNormalization() *Builder {
	b.normalize = false
	return b
}

// Answers occurrence counts with a wavelet matrix instead of sampled checkpoints.
// Trade-off: O(log K) per count with no scan, memory independent of step.
func (b *Builder) UseWaveletTree() *Builder {
	b.useWavelet = true
	return b
}

// Skips the LCP array construction, this makes SuffixRange O(|P| * log(n)) instead of O(|P| + log(n)).
// Saves O(n) memory. LongestRepeat and CommonPrefix fall back to direct computation.
func (b *Builder) SkipLCP() *Builder {
	b.useLCP = false
	return b
}

func (b *Builder) Build() (*Index, error) {
	if !utf8.ValidString(b.text) {
		return nil, ErrInvalidUTF8
	}

	runes := PrepareText(b.text, b.caseSensitive, b.normalize)
	if i := slices.Index(runes, b.sentinel); i >= 0 {
		return nil, fmt.Errorf("%w: text holds the sentinel %U at %d", ErrInvalidInput, b.sentinel, i)
	}
	text, err := Normalize(append(runes, b.sentinel), b.sentinel)
	if err != nil {
		return nil, err
	}

	var suffixArray []int
	switch {
	case b.crossCheck:
		suffixArray, err = CrossCheck(text)
	case b.algorithm == Doubling:
		suffixArray, err = BuildDoubling(text.Codes)
	case b.algorithm == Induced:
		suffixArray, err = BuildInduced(text.Codes, text.Alphabet.Size())
	default:
		err = fmt.Errorf("%w: unknown algorithm %d", ErrInvalidInput, int(b.algorithm))
	}
	if err != nil {
		return nil, err
	}

	var fm *FMIndex[rune]
	if b.useWavelet {
		fm, err = NewWaveletFMIndex(text, suffixArray)
	} else {
		fm, err = NewFMIndex(text, suffixArray, b.step)
	}
	if err != nil {
		return nil, err
	}

	idx := &Index{
		text:          text,
		fm:            fm,
		suffixArray:   suffixArray,
		algorithm:     b.algorithm,
		caseSensitive: b.caseSensitive,
		normalize:     b.normalize,
	}
	if b.useLCP && len(suffixArray) > 1 {
		idx.lcp = BuildLCPArray(suffixArray, text.Codes)
		idx.lcpRMQ = rmq.NewRMQHybridNaive(idx.lcp)
		idx.rank = make([]int, len(suffixArray))
		for i, p := range suffixArray {
			idx.rank[p] = i
		}
	}
	return idx, nil
}

// Index is a searchable, immutable full-text index over a string.
// Positions are rune offsets into the prepared (case folded and normalized) text.
type Index struct {
	text          *Text[rune]
	fm            *FMIndex[rune]
	suffixArray   []int
	lcp           []int
	lcpRMQ        *rmq.RMQHybridNaive[int]
	rank          []int
	algorithm     Algorithm
	caseSensitive bool
	normalize     bool
}

func (x *Index) prepare(pattern string) []rune {
	return PrepareText(pattern, x.caseSensitive, x.normalize)
}

// Search returns the set of positions at which pattern occurs.
func (x *Index) Search(pattern string) *roaring.Bitmap {
	return x.fm.Search(x.prepare(pattern))
}

// Positions returns the occurrences of pattern in ascending order.
func (x *Index) Positions(pattern string) []int {
	set := x.Search(pattern)
	positions := make([]int, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		positions = append(positions, int(it.Next()))
	}
	return positions
}

func (x *Index) Count(pattern string) int {
	return x.fm.Count(x.prepare(pattern))
}

// SuffixRange locates pattern by binary search over the suffix array rather
// than by backward search. It returns the same half-open range as the
// FM-index.
func (x *Index) SuffixRange(pattern string) (int, int) {
	codes, ok := x.text.Alphabet.Encode(x.prepare(pattern))
	if !ok {
		return 0, 0
	}
	return suffixRange(codes, x.text.Codes, x.suffixArray, x.lcp, x.lcpRMQ)
}

// LongestRepeat returns the longest substring occurring at least twice,
// or "" if every symbol is unique.
func (x *Index) LongestRepeat() string {
	lcp := x.lcp
	if lcp == nil {
		lcp = BuildLCPArray(x.suffixArray, x.text.Codes)
	}
	best, at := 0, 0
	for i, l := range lcp {
		if l > best {
			best, at = l, x.suffixArray[i]
		}
	}
	return string(x.text.Symbols[at : at+best])
}

// CommonPrefix returns the length of the longest common prefix of the
// suffixes starting at text positions i and j. Out of range positions give 0.
func (x *Index) CommonPrefix(i, j int) int {
	n := x.Len()
	if i < 0 || j < 0 || i >= n || j >= n {
		return 0
	}
	if i == j {
		return n - i
	}
	if x.lcp == nil {
		l := 0
		for i+l < n && j+l < n && x.text.Symbols[i+l] == x.text.Symbols[j+l] {
			l++
		}
		return l
	}
	ri, rj := x.rank[i], x.rank[j]
	return x.lcp[x.lcpRMQ.Query(min(ri, rj), max(ri, rj)-1)]
}

// Text returns the prepared text without the sentinel.
func (x *Index) Text() string {
	return string(x.text.Symbols[:x.Len()])
}

// Len is the number of runes in the prepared text, sentinel excluded.
func (x *Index) Len() int {
	return x.text.Len() - 1
}

func (x *Index) Algorithm() Algorithm {
	return x.algorithm
}

// FM exposes the underlying FM-index.
func (x *Index) FM() *FMIndex[rune] {
	return x.fm
}

type Stats struct {
	Symbols          int
	AlphabetSize     int
	Algorithm        string
	Step             int
	OccurrenceBytes  int
	SuffixArrayBytes int
	LCPBytes         int
}

func (x *Index) Stats() Stats {
	return Stats{
		Symbols:          x.text.Len(),
		AlphabetSize:     x.text.Alphabet.Size(),
		Algorithm:        x.algorithm.String(),
		Step:             x.fm.Step(),
		OccurrenceBytes:  x.fm.OccurrenceBytes(),
		SuffixArrayBytes: len(x.suffixArray) * 8,
		LCPBytes:         len(x.lcp) * 8,
	}
}
