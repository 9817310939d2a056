package fmindex

import (
	"cmp"
	"math/rand"
	"slices"
)

func naiveSuffixArray[S cmp.Ordered](text []S) []int {
	sa := make([]int, len(text))
	for i := range sa {
		sa[i] = i
	}
	slices.SortFunc(sa, func(a, b int) int {
		return slices.Compare(text[a:], text[b:])
	})
	return sa
}

func naiveFind[S comparable](text, pattern []S) []int {
	var res []int
	if len(pattern) == 0 {
		return res
	}
	for i := 0; i+len(pattern) <= len(text); i++ {
		if slices.Equal(text[i:i+len(pattern)], pattern) {
			res = append(res, i)
		}
	}
	return res
}

func naiveOcc[S comparable](bwt []S, c S, i int) int {
	count := 0
	for _, s := range bwt[:i] {
		if s == c {
			count++
		}
	}
	return count
}

// randomText returns n symbols drawn from the first sigma lowercase letters.
func randomText(r *rand.Rand, n, sigma int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + r.Intn(sigma))
	}
	return string(b)
}

// fibonacciText returns a Fibonacci word, which has many repeated
// LMS-substrings and forces several levels of recursion.
func fibonacciText(n int) string {
	a, b := "b", "a"
	for len(b) < n {
		a, b = b, b+a
	}
	return b[:n]
}

func toInts(set []uint32) []int {
	out := make([]int, len(set))
	for i, v := range set {
		out[i] = int(v)
	}
	return out
}
