package fmindex

import (
	"cmp"
	"fmt"
)

// CrossCheck builds the suffix array of text with both the doubling and the
// induced sorting builders and returns it if they agree.
func CrossCheck[S cmp.Ordered](text *Text[S]) ([]int, error) {
	doubling, err := BuildDoubling(text.Codes)
	if err != nil {
		return nil, err
	}
	induced, err := BuildInduced(text.Codes, text.Alphabet.Size())
	if err != nil {
		return nil, err
	}
	if err := CompareSuffixArrays(doubling, induced); err != nil {
		return nil, err
	}
	return induced, nil
}

// CompareSuffixArrays reports the first rank at which a and b differ.
func CompareSuffixArrays(a, b []int) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: lengths %d and %d", ErrConstructionMismatch, len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("%w: rank %d holds %d and %d", ErrConstructionMismatch, i, a[i], b[i])
		}
	}
	return nil
}
