package fmindex

// BuildLCPArray returns, for every rank i < n-1, the length of the longest
// common prefix of the suffixes at ranks i and i+1 (Kasai et al.).
// Suffixes are visited in text order: moving from p to p+1 loses at most
// one matched symbol, so the total work is O(n).
func BuildLCPArray[S comparable](suffixArray []int, text []S) []int {
	n := len(suffixArray)
	if n == 0 {
		return nil
	}
	rank := make([]int, n)
	for r, p := range suffixArray {
		rank[p] = r
	}

	lcp := make([]int, n-1)
	h := 0
	for p, r := range rank {
		if r == n-1 {
			h = 0
			continue
		}
		q := suffixArray[r+1]
		for p+h < len(text) && q+h < len(text) && text[p+h] == text[q+h] {
			h++
		}
		lcp[r] = h
		h = max(h-1, 0)
	}
	return lcp
}
