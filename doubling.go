package fmindex

import (
	"cmp"
	"fmt"
	"slices"
)

// checkSentinel reports whether text ends in a symbol that occurs once and
// is strictly smaller than every other symbol.
func checkSentinel[S cmp.Ordered](text []S) error {
	if len(text) == 0 {
		return fmt.Errorf("%w: empty text", ErrInvalidInput)
	}
	sentinel := text[len(text)-1]
	for i, s := range text[:len(text)-1] {
		if s <= sentinel {
			return fmt.Errorf("%w: text does not end in a unique minimal sentinel (symbol at %d)", ErrInvalidInput, i)
		}
	}
	return nil
}

// rankPair is the sort key of one position during a doubling round.
// right is -1 when the position plus the current width runs off the text.
type rankPair struct {
	left, right int
	pos         int
}

func compareRankPairs(a, b rankPair) int {
	if c := cmp.Compare(a.left, b.left); c != 0 {
		return c
	}
	return cmp.Compare(a.right, b.right)
}

// BuildDoubling computes the suffix array of text by prefix doubling
// (Manber-Myers). Each round sorts positions by the ranks of their first k
// and next k symbols, so after the round with width k, equal ranks mean
// equal prefixes of length 2k.
//
// text must end in a unique sentinel smaller than every other symbol.
func BuildDoubling[S cmp.Ordered](text []S) ([]int, error) {
	if err := checkSentinel(text); err != nil {
		return nil, err
	}
	n := len(text)
	sa := make([]int, n)
	if n == 1 {
		return sa, nil
	}

	// Rank by first symbol.
	for i := range sa {
		sa[i] = i
	}
	slices.SortFunc(sa, func(a, b int) int { return cmp.Compare(text[a], text[b]) })
	rank := make([]int, n)
	for i := 1; i < n; i++ {
		rank[sa[i]] = rank[sa[i-1]]
		if text[sa[i]] != text[sa[i-1]] {
			rank[sa[i]]++
		}
	}

	pairs := make([]rankPair, n)
	next := make([]int, n)
	for k := 1; k < n; k <<= 1 {
		for i := range pairs {
			right := -1
			if i+k < n {
				right = rank[i+k]
			}
			pairs[i] = rankPair{left: rank[i], right: right, pos: i}
		}
		slices.SortFunc(pairs, compareRankPairs)

		r := -1
		for j, p := range pairs {
			if j == 0 || compareRankPairs(p, pairs[j-1]) != 0 {
				r++
			}
			next[p.pos] = r
		}
		rank, next = next, rank
		if r == n-1 {
			// Every suffix has its own rank; later rounds would not reorder.
			break
		}
	}

	for i, p := range pairs {
		sa[i] = p.pos
	}
	return sa, nil
}
