// Package textio loads indexable texts from disk.
package textio

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"
)

// Load maps the file at path read-only and returns its contents as a string.
// Invalid UTF-8 sequences are replaced with U+FFFD. With maxChars > 0 the
// text is cut to its first maxChars-1 runes, leaving room for the sentinel.
func Load(path string, maxChars int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return "", nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return "", fmt.Errorf("mmap %s: %w", path, err)
	}
	defer m.Unmap()

	// string(m) copies out of the mapping before Unmap.
	text := strings.ToValidUTF8(string(m), string(utf8.RuneError))
	return Truncate(text, maxChars), nil
}

// Truncate keeps the first maxChars-1 runes of s. maxChars <= 0 keeps s whole.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	keep := maxChars - 1
	i := 0
	for pos := range s {
		if i == keep {
			return s[:pos]
		}
		i++
	}
	return s
}
