package fmindex

import "fmt"

// checkPermutation reports whether sa is a permutation of [0, n).
func checkPermutation(sa []int, n int) error {
	if len(sa) != n {
		return fmt.Errorf("%w: suffix array has %d entries for a text of length %d", ErrInvalidInput, len(sa), n)
	}
	seen := make([]bool, n)
	for i, p := range sa {
		if p < 0 || p >= n || seen[p] {
			return fmt.Errorf("%w: suffix array entry %d (%d) is out of range or repeated", ErrInvalidInput, i, p)
		}
		seen[p] = true
	}
	return nil
}

// BuildBWT derives the Burrows-Wheeler Transform of text from its suffix
// array: BWT[i] is the symbol preceding suffix SA[i], wrapping around to the
// final symbol (the sentinel) for the suffix starting at 0.
func BuildBWT[S any](text []S, sa []int) ([]S, error) {
	n := len(text)
	if err := checkPermutation(sa, n); err != nil {
		return nil, err
	}
	bwt := make([]S, n)
	for i, p := range sa {
		if p == 0 {
			bwt[i] = text[n-1]
		} else {
			bwt[i] = text[p-1]
		}
	}
	return bwt, nil
}
