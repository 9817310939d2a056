package fmindex

import (
	"fmt"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/exp/constraints"
)

// empty marks an unfilled suffix array slot during induction.
const empty = -1

// maxInducedDepth bounds the recursion of induce. Every level at least
// halves the problem, so a correct reduction never gets close.
const maxInducedDepth = 64

// BuildInduced computes the suffix array of an integer-coded text by induced
// sorting (SA-IS, Nong, Zhang and Chan). Every code must lie in
// [0, alphabetSize) and the text must end in a unique sentinel smaller than
// every other code.
func BuildInduced[T constraints.Integer](text []T, alphabetSize int) ([]int, error) {
	if err := checkSentinel(text); err != nil {
		return nil, err
	}
	for i, c := range text {
		if c < 0 {
			return nil, fmt.Errorf("%w: negative code at %d", ErrInvalidInput, i)
		}
		if alphabetSize <= 0 || uint64(c) >= uint64(alphabetSize) {
			return nil, fmt.Errorf("%w: code %d at %d does not fit an alphabet of size %d", ErrAlphabetOverflow, uint64(c), i, alphabetSize)
		}
	}
	return induce(text, alphabetSize, 0), nil
}

// induce runs one level of SA-IS over text, whose codes are already known
// to lie in [0, k) and to end in a unique minimal sentinel.
func induce[T constraints.Integer](text []T, k int, depth int) []int {
	if depth > maxInducedDepth {
		panic("fmindex: induced sorting recursion exceeded its depth bound")
	}

	n := len(text)
	sa := make([]int, n)
	if n == 1 {
		return sa
	}

	types := classify(text)
	lms, marks := findLMS(types)
	head, tail := bucketBounds(text, k)

	// Tentative pass: LMS positions in text order sort the LMS-substrings,
	// not yet the LMS-suffixes.
	resetSlots(sa)
	placeLMS(text, sa, lms, head, tail)
	induceL(text, types, sa, head, tail)
	clearS(types, sa)
	induceS(text, types, sa, head, tail)

	reduced, maxName := nameLMS(text, types, marks, sa, lms)

	sorted := make([]int, len(lms))
	if maxName == len(lms)-1 {
		// Every LMS-substring is unique, so the names already order the
		// LMS-suffixes.
		for i, p := range lms {
			sorted[reduced[i]] = p
		}
	} else {
		for i, r := range induce(reduced, maxName+1, depth+1) {
			sorted[i] = lms[r]
		}
	}

	resetSlots(sa)
	placeLMS(text, sa, sorted, head, tail)
	induceL(text, types, sa, head, tail)
	clearS(types, sa)
	induceS(text, types, sa, head, tail)
	return sa
}

func resetSlots(sa []int) {
	for i := range sa {
		sa[i] = empty
	}
}

// classify returns the suffix type of every position, true for S-type.
// The final position is S-type; position i is S-type if text[i] < text[i+1],
// or if text[i] == text[i+1] and i+1 is S-type.
func classify[T constraints.Integer](text []T) []bool {
	n := len(text)
	types := make([]bool, n)
	types[n-1] = true
	for i := n - 2; i >= 0; i-- {
		types[i] = text[i] < text[i+1] || (text[i] == text[i+1] && types[i+1])
	}
	return types
}

func isLMS(types []bool, i int) bool {
	return i > 0 && types[i] && !types[i-1]
}

// findLMS lists the LMS positions in text order and marks them in a bitset.
// The sentinel position is always the last entry: its predecessor is
// necessarily L-type.
func findLMS(types []bool) ([]int, *bitset.BitSet) {
	marks := bitset.New(uint(len(types)))
	lms := make([]int, 0, len(types)/2+1)
	for i := 1; i < len(types); i++ {
		if isLMS(types, i) {
			lms = append(lms, i)
			marks.Set(uint(i))
		}
	}
	return lms, marks
}

// bucketBounds returns, for every code c, the first slot of its bucket
// (head, inclusive) and one past its last slot (tail, exclusive).
func bucketBounds[T constraints.Integer](text []T, k int) (head, tail []int) {
	head = make([]int, k)
	tail = make([]int, k)
	for _, c := range text {
		tail[int(c)]++
	}
	total := 0
	for c := range tail {
		head[c] = total
		total += tail[c]
		tail[c] = total
	}
	return head, tail
}

// placeLMS inserts the positions of order at the tails of their buckets.
// order is walked backwards, so within a bucket the positions keep the
// relative order they have in order.
func placeLMS[T constraints.Integer](text []T, sa []int, order []int, head, tail []int) {
	cursor := slices.Clone(tail)
	for j := len(order) - 1; j >= 0; j-- {
		p := order[j]
		c := int(text[p])
		slot := cursor[c]
		for slot > head[c] && sa[slot-1] != empty {
			slot--
		}
		if slot == head[c] {
			panic("fmindex: bucket overflow while placing LMS suffixes")
		}
		slot--
		sa[slot] = p
		cursor[c] = slot
	}
}

// induceL scans sa left to right. For every filled slot holding j whose
// predecessor j-1 is L-type, it places j-1 at the head of its bucket.
// Heads never move past the bucket's exclusive upper bound.
func induceL[T constraints.Integer](text []T, types []bool, sa []int, head, tail []int) {
	cursor := slices.Clone(head)
	for i := 0; i < len(sa); i++ {
		j := sa[i]
		if j <= 0 || types[j-1] {
			continue
		}
		p := j - 1
		c := int(text[p])
		slot := cursor[c]
		for slot < tail[c] && sa[slot] != empty {
			slot++
		}
		if slot == tail[c] {
			panic("fmindex: bucket overflow while inducing L-type suffixes")
		}
		sa[slot] = p
		cursor[c] = slot + 1
	}
}

// clearS drops the S-type entries left over from LMS placement, so that
// induceS refills the S-region of every bucket in induced order.
// The sentinel keeps slot 0: nothing can induce it.
func clearS(types []bool, sa []int) {
	last := len(sa) - 1
	for i, j := range sa {
		if j != empty && j != last && types[j] {
			sa[i] = empty
		}
	}
}

// induceS scans sa right to left. For every filled slot holding j whose
// predecessor j-1 is S-type, it places j-1 at the tail of its bucket.
// Tails never move below the bucket's inclusive lower bound.
func induceS[T constraints.Integer](text []T, types []bool, sa []int, head, tail []int) {
	cursor := slices.Clone(tail)
	for i := len(sa) - 1; i >= 0; i-- {
		j := sa[i]
		if j <= 0 || !types[j-1] {
			continue
		}
		p := j - 1
		c := int(text[p])
		slot := cursor[c]
		for slot > head[c] && sa[slot-1] != empty {
			slot--
		}
		if slot == head[c] {
			panic("fmindex: bucket overflow while inducing S-type suffixes")
		}
		slot--
		sa[slot] = p
		cursor[c] = slot
	}
}

// nameLMS names the LMS-substrings in the order they appear in sa, reusing
// the previous name for a substring equal to its predecessor. It returns the
// names in text order (the reduced problem) and the largest name given.
func nameLMS[T constraints.Integer](text []T, types []bool, marks *bitset.BitSet, sa []int, lms []int) ([]int, int) {
	// LMS positions are at least two apart, so p/2 is a unique slot.
	names := make([]int, len(text)/2+1)
	name, prev := -1, -1
	for _, p := range sa {
		if p < 0 || !marks.Test(uint(p)) {
			continue
		}
		if prev < 0 || !lmsEqual(text, types, marks, prev, p) {
			name++
		}
		names[p/2] = name
		prev = p
	}

	sentinel := len(text) - 1
	if names[sentinel/2] != 0 {
		panic("fmindex: sentinel LMS-substring did not sort first")
	}

	reduced := make([]int, len(lms))
	for i, p := range lms {
		reduced[i] = names[p/2]
	}
	return reduced, name
}

// lmsEqual reports whether the LMS-substrings starting at a and b hold the
// same symbols and types up to and including their closing LMS positions.
func lmsEqual[T constraints.Integer](text []T, types []bool, marks *bitset.BitSet, a, b int) bool {
	last := len(text) - 1
	if a == last || b == last {
		return a == b
	}
	for k := 0; ; k++ {
		if text[a+k] != text[b+k] || types[a+k] != types[b+k] {
			return false
		}
		if k == 0 {
			continue
		}
		endA, endB := marks.Test(uint(a+k)), marks.Test(uint(b+k))
		if endA || endB {
			return endA && endB
		}
	}
}
