package fmindex

import (
	"slices"
	"sort"

	"github.com/viniciusth/rmq"
)

func hasPrefix(s, prefix []int32) bool {
	return len(s) >= len(prefix) && slices.Equal(s[:len(prefix)], prefix)
}

// suffixRange binary searches the suffix array for the half-open range of
// suffixes starting with pattern. With an LCP array and its RMQ, every probe
// resumes from the longest match seen so far, making the search
// O(|P| + log n) instead of O(|P| log n).
func suffixRange(pattern, text []int32, suffixArray, lcp []int, lcpRMQ *rmq.RMQHybridNaive[int]) (int, int) {
	n := len(suffixArray)
	if len(pattern) == 0 || n == 0 {
		return 0, 0
	}

	// best is the length of the common prefix of pattern and the suffix at
	// rank bestIdx.
	bestIdx, best := -1, 0

	expandBest := func(i int) bool {
		p := suffixArray[i]
		for best < len(pattern) && p+best < len(text) && pattern[best] == text[p+best] {
			best++
		}
		bestIdx = i
		if best == len(pattern) {
			// p <= text[p:]
			return true
		} else if p+best == len(text) {
			// p > text[p:]
			return false
		}
		return pattern[best] < text[p+best]
	}

	// first rank whose suffix is not smaller than pattern
	l := sort.Search(n, func(i int) bool {
		if lcp != nil {
			if bestIdx == -1 {
				return expandBest(i)
			}
			lcpLen := lcp[lcpRMQ.Query(min(bestIdx, i), max(bestIdx, i)-1)]
			if lcpLen < best {
				// The suffix at i leaves the pattern's group before bestIdx
				// does, on the side i lies on.
				return i > bestIdx
			}
			return expandBest(i)
		}
		return slices.Compare(pattern, text[suffixArray[i]:]) <= 0
	})

	if l == n || !hasPrefix(text[suffixArray[l]:], pattern) {
		return 0, 0
	}

	// Ranks l, l+1, ... match while they share at least |P| symbols with l:
	// T T T F F F. Search for the first F.
	r := sort.Search(n-l, func(i int) bool {
		if i == 0 {
			return false
		}
		if lcp != nil {
			return lcp[lcpRMQ.Query(l, l+i-1)] < len(pattern)
		}
		return !hasPrefix(text[suffixArray[l+i]:], pattern)
	})

	return l, l + r
}
