package fmindex

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type variant struct {
	name   string
	config func(*Builder) *Builder
}

var variants = []variant{
	{"default", func(b *Builder) *Builder { return b }},
	{"doubling", func(b *Builder) *Builder { return b.UseDoubling() }},
	{"cross_check", func(b *Builder) *Builder { return b.CrossCheck() }},
	{"wavelet", func(b *Builder) *Builder { return b.UseWaveletTree() }},
	{"no_lcp", func(b *Builder) *Builder { return b.SkipLCP() }},
	{"step_1", func(b *Builder) *Builder { return b.WithStep(1) }},
	{"step_7_no_lcp", func(b *Builder) *Builder { return b.WithStep(7).SkipLCP() }},
}

func naiveIndexMatches(x *Index, pattern string) []int {
	return naiveFind([]rune(x.Text()), x.prepare(pattern))
}

func checkIndex(t *testing.T, x *Index, pattern string) {
	t.Helper()
	want := naiveIndexMatches(x, pattern)
	got := x.Positions(pattern)
	if len(want) == 0 {
		assert.Empty(t, got, "pattern %q", pattern)
	} else {
		assert.Equal(t, want, got, "pattern %q", pattern)
	}
	assert.Equal(t, len(want), x.Count(pattern), "count %q", pattern)

	l, r := x.FM().Range(x.prepare(pattern))
	sl, sr := x.SuffixRange(pattern)
	assert.Equal(t, r-l, sr-sl, "range size %q", pattern)
	if r > l {
		assert.Equal(t, l, sl, "range start %q", pattern)
	}
}

func TestIndexSearch(t *testing.T) {
	text := "she sells sea shells by the sea shore, the shells she sells are sea shells for sure"
	patterns := []string{"s", "sh", "she", "shells", "sea ", "sure", "ells", "e", " ", "x", "shore, the", "seashell", ""}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			x, err := v.config(NewBuilder(text)).Build()
			require.NoError(t, err)
			assert.Equal(t, text, x.Text())
			assert.Equal(t, utf8.RuneCountInString(text), x.Len())
			for _, p := range patterns {
				checkIndex(t, x, p)
			}
		})
	}
}

func TestIndexRandomTexts(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			for round := 0; round < 5; round++ {
				text := randomText(r, 50+r.Intn(400), 1+r.Intn(5))
				x, err := v.config(NewBuilder(text)).Build()
				require.NoError(t, err)
				for q := 0; q < 30; q++ {
					start := r.Intn(len(text))
					checkIndex(t, x, text[start:min(len(text), start+1+r.Intn(10))])
				}
				checkIndex(t, x, randomText(r, 3, 6))
			}
		})
	}
}

func TestIndexRepeatedSymbol(t *testing.T) {
	text := strings.Repeat("a", 200)
	tests := []struct {
		pattern string
		count   int
	}{
		{"a", 200},
		{"aa", 199},
		{text, 1},
		{text + "a", 0},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			x, err := v.config(NewBuilder(text)).Build()
			require.NoError(t, err)
			for _, tc := range tests {
				checkIndex(t, x, tc.pattern)
				assert.Equal(t, tc.count, x.Count(tc.pattern), "pattern of length %d", len(tc.pattern))
			}
			assert.Equal(t, text[1:], x.LongestRepeat())
		})
	}
}

func TestIndexOptions(t *testing.T) {
	composed, decomposed := "caf\u00e9", "cafe\u0301"
	text := "Apple apple APPLE " + composed + " " + decomposed

	x, err := NewBuilder(text).Build()
	require.NoError(t, err)
	assert.Equal(t, 1, x.Count("apple"))
	assert.Equal(t, 2, x.Count(composed))
	assert.Equal(t, 2, x.Count(decomposed))

	x, err = NewBuilder(text).CaseInsensitive().Build()
	require.NoError(t, err)
	assert.Equal(t, 3, x.Count("apple"))
	assert.Equal(t, 3, x.Count("APPLE"))

	x, err = NewBuilder(text).SkipNormalization().Build()
	require.NoError(t, err)
	assert.Equal(t, 1, x.Count(composed))
	assert.Equal(t, 1, x.Count(decomposed))
}

func TestIndexErrors(t *testing.T) {
	_, err := NewBuilder("abc\xff").Build()
	require.ErrorIs(t, err, ErrInvalidUTF8)

	_, err = NewBuilder("ab\x00c").Build()
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewBuilder("a$b").WithSentinel('$').Build()
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewBuilder("a b").WithSentinel('$').Build()
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewBuilder("abc").WithStep(0).Build()
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewBuilder("abc").UseAlgorithm(Algorithm(9)).Build()
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestIndexEmptyText(t *testing.T) {
	x, err := NewBuilder("").Build()
	require.NoError(t, err)
	assert.Equal(t, 0, x.Len())
	assert.Equal(t, "", x.Text())
	assert.Empty(t, x.Positions("a"))
	assert.Equal(t, "", x.LongestRepeat())
	assert.Equal(t, 0, x.CommonPrefix(0, 0))
}

func TestIndexWithCustomSentinel(t *testing.T) {
	x, err := NewBuilder("mississippi").WithSentinel('$').WithStep(4).Build()
	require.NoError(t, err)
	assert.Equal(t, "ipssm$pissii", string(x.FM().BWT()))
	assert.Equal(t, []int{2, 5}, x.Positions("ssi"))
	assert.Equal(t, []int{9}, x.Positions("pi"))
	assert.Empty(t, x.Positions("z"))
}

func TestLongestRepeat(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"banana", "ana"},
		{"mississippi", "issi"},
		{"abc", ""},
		{"aaaa", "aaa"},
	}
	for _, tc := range tests {
		for _, v := range variants {
			x, err := v.config(NewBuilder(tc.text)).Build()
			require.NoError(t, err)
			assert.Equal(t, tc.want, x.LongestRepeat(), "%s on %q", v.name, tc.text)
		}
	}
}

func TestCommonPrefix(t *testing.T) {
	for _, v := range variants {
		x, err := v.config(NewBuilder("banana")).Build()
		require.NoError(t, err)
		assert.Equal(t, 3, x.CommonPrefix(1, 3), v.name)
		assert.Equal(t, 3, x.CommonPrefix(3, 1), v.name)
		assert.Equal(t, 0, x.CommonPrefix(0, 1), v.name)
		assert.Equal(t, 2, x.CommonPrefix(2, 4), v.name)
		assert.Equal(t, 1, x.CommonPrefix(5, 1), v.name)
		assert.Equal(t, 4, x.CommonPrefix(2, 2), v.name)
		assert.Equal(t, 0, x.CommonPrefix(-1, 2), v.name)
		assert.Equal(t, 0, x.CommonPrefix(2, 6), v.name)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]Algorithm{
		"induced":  Induced,
		"sais":     Induced,
		"SAIS":     Induced,
		"doubling": Doubling,
		" mm ":     Doubling,
	} {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAlgorithm("bogus")
	require.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, "induced", Induced.String())
	assert.Equal(t, "doubling", Doubling.String())
	assert.Equal(t, "Algorithm(7)", Algorithm(7).String())
}

func TestIndexStats(t *testing.T) {
	x, err := NewBuilder("mississippi").WithStep(4).Build()
	require.NoError(t, err)
	s := x.Stats()
	assert.Equal(t, 12, s.Symbols)
	assert.Equal(t, 5, s.AlphabetSize)
	assert.Equal(t, "induced", s.Algorithm)
	assert.Equal(t, 4, s.Step)
	// 12/4+1 checkpoint rows of 5 counters
	assert.Equal(t, 4*5*4, s.OccurrenceBytes)
	assert.Equal(t, 12*8, s.SuffixArrayBytes)
	assert.Equal(t, 11*8, s.LCPBytes)

	x, err = NewBuilder("mississippi").SkipLCP().UseDoubling().Build()
	require.NoError(t, err)
	assert.Zero(t, x.Stats().LCPBytes)
	assert.Equal(t, Doubling, x.Algorithm())
}

func TestBuildBatch(t *testing.T) {
	texts := []string{"mississippi", "banana", "abracadabra", strings.Repeat("ab", 100)}
	indexes, err := BuildBatch(context.Background(), texts, 2, func(b *Builder) *Builder { return b.WithStep(8) })
	require.NoError(t, err)
	require.Len(t, indexes, len(texts))
	for i, x := range indexes {
		assert.Equal(t, texts[i], x.Text())
		assert.Equal(t, 8, x.FM().Step())
	}
	assert.Equal(t, []int{1, 3}, indexes[1].Positions("ana"))

	_, err = BuildBatch(context.Background(), []string{"ok", "bad\xff"}, 0, nil)
	require.ErrorIs(t, err, ErrInvalidUTF8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = BuildBatch(ctx, texts, 1, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func FuzzIndexSearch(f *testing.F) {
	f.Add("mississippi", "ssi")
	f.Add("she sells sea shells", "sh")
	f.Add("😂🙈🙉🙊😂", "😂")
	f.Add("Ünïcödé ünicode", "ü")

	f.Fuzz(func(t *testing.T, text, pattern string) {
		if !utf8.ValidString(text) || !utf8.ValidString(pattern) || len(text) > 1000 || len(pattern) > 50 {
			return
		}
		x, err := NewBuilder(text).CaseInsensitive().Build()
		if err != nil {
			// Texts holding the NUL sentinel are rejected.
			return
		}
		want := naiveIndexMatches(x, pattern)
		got := x.Positions(pattern)
		if len(want) != len(got) {
			t.Fatalf("pattern %q: got %v, want %v", pattern, got, want)
		}
		for i := range want {
			if want[i] != got[i] {
				t.Fatalf("pattern %q: got %v, want %v", pattern, got, want)
			}
		}
		l, r := x.FM().Range(x.prepare(pattern))
		sl, sr := x.SuffixRange(pattern)
		if r-l != sr-sl || (r > l && l != sl) {
			t.Fatalf("pattern %q: backward search [%d, %d) and suffix array search [%d, %d) differ", pattern, l, r, sl, sr)
		}
	})
}
