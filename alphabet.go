package fmindex

import (
	"cmp"
	"fmt"
	"slices"
)

// Alphabet maps raw symbols to dense codes in [0, Size()).
// The sentinel always has code 0 and the remaining symbols
// are numbered in ascending order.
type Alphabet[S cmp.Ordered] struct {
	symbols []S
	codes   map[S]int32
}

// Text is a sentinel-terminated symbol sequence together with its
// integer-coded form.
type Text[S cmp.Ordered] struct {
	Symbols  []S
	Codes    []int32
	Alphabet *Alphabet[S]
}

func (t *Text[S]) Len() int {
	return len(t.Symbols)
}

// NewAlphabet builds the code table for text, which must already end in a
// unique sentinel that is smaller than every other symbol.
func NewAlphabet[S cmp.Ordered](text []S) (*Alphabet[S], error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}
	sentinel := text[len(text)-1]
	for i, s := range text[:len(text)-1] {
		if s <= sentinel {
			return nil, fmt.Errorf("%w: symbol at %d is not greater than the sentinel", ErrInvalidInput, i)
		}
	}

	symbols := slices.Clone(text)
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	codes := make(map[S]int32, len(symbols))
	for c, s := range symbols {
		codes[s] = int32(c)
	}
	return &Alphabet[S]{symbols: symbols, codes: codes}, nil
}

// Size is the number of distinct symbols, sentinel included.
func (a *Alphabet[S]) Size() int {
	return len(a.symbols)
}

func (a *Alphabet[S]) Sentinel() S {
	return a.symbols[0]
}

func (a *Alphabet[S]) Code(s S) (int32, bool) {
	c, ok := a.codes[s]
	return c, ok
}

func (a *Alphabet[S]) Symbol(c int32) S {
	return a.symbols[c]
}

// Encode maps pattern to codes. It reports false if any symbol of the
// pattern is not part of the alphabet.
func (a *Alphabet[S]) Encode(pattern []S) ([]int32, bool) {
	out := make([]int32, len(pattern))
	for i, s := range pattern {
		c, ok := a.codes[s]
		if !ok {
			return nil, false
		}
		out[i] = c
	}
	return out, true
}

// Normalize appends sentinel to raw if it is missing and encodes the result.
// The sentinel may already be present only as the final symbol.
func Normalize[S cmp.Ordered](raw []S, sentinel S) (*Text[S], error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidInput)
	}

	symbols := raw
	if raw[len(raw)-1] != sentinel {
		symbols = make([]S, len(raw)+1)
		copy(symbols, raw)
		symbols[len(raw)] = sentinel
	} else {
		symbols = slices.Clone(raw)
	}

	for i, s := range symbols[:len(symbols)-1] {
		if s == sentinel {
			return nil, fmt.Errorf("%w: sentinel repeated at %d", ErrInvalidInput, i)
		}
	}

	alphabet, err := NewAlphabet(symbols)
	if err != nil {
		return nil, err
	}
	codes := make([]int32, len(symbols))
	for i, s := range symbols {
		codes[i] = alphabet.codes[s]
	}
	return &Text[S]{Symbols: symbols, Codes: codes, Alphabet: alphabet}, nil
}
