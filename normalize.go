package fmindex

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PrepareText applies the same transforms to indexed texts and to patterns,
// so that both sides of a search agree on their symbols.
func PrepareText(s string, caseSensitive bool, normalize bool) []rune {
	return []rune(applyTransforms(s, caseSensitive, normalize))
}

func applyTransforms(s string, caseSensitive bool, normalize bool) string {
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	if normalize {
		s = norm.NFC.String(s)
	}
	return s
}
