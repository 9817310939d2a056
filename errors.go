package fmindex

import "errors"

var (
	ErrInvalidInput         = errors.New("fmindex: invalid input")
	ErrAlphabetOverflow     = errors.New("fmindex: alphabet overflow")
	ErrConstructionMismatch = errors.New("fmindex: suffix array builders disagree")
	ErrInvalidUTF8          = errors.New("fmindex: invalid UTF-8 encoding in input text")
)
