package server

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotCacheEvictsLeastRecentlyUsed(t *testing.T) {
	hc := NewHotCache(2)
	hc.Put("ana", roaring.BitmapOf(1, 3))
	hc.Put("an", roaring.BitmapOf(1, 3))

	_, ok := hc.Get("ana")
	require.True(t, ok)

	hc.Put("nan", roaring.BitmapOf(2))
	assert.Equal(t, 2, hc.Len())

	_, ok = hc.Get("an")
	assert.False(t, ok, "an was the least recently used pattern")

	got, ok := hc.Get("ana")
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 3}, got.ToArray())

	stats := hc.Stats()
	assert.Equal(t, 2, stats["hotCachePatterns"])
	assert.Equal(t, 2, stats["hotCacheHits"])
}

func TestHotCacheReplaceDoesNotEvict(t *testing.T) {
	hc := NewHotCache(2)
	hc.Put("a", roaring.BitmapOf(0))
	hc.Put("b", roaring.BitmapOf(1))
	hc.Put("a", roaring.BitmapOf(0, 2))
	assert.Equal(t, 2, hc.Len())
	got, ok := hc.Get("a")
	require.True(t, ok)
	assert.Equal(t, uint64(2), got.GetCardinality())
	_, ok = hc.Get("b")
	assert.True(t, ok)
}

func TestHotCacheExtensions(t *testing.T) {
	hc := NewHotCache(10)
	for _, p := range []string{"s", "ss", "ssi", "si", "p"} {
		hc.Put(p, roaring.New())
	}
	assert.ElementsMatch(t, []string{"ss", "ssi", "si"}, hc.Extensions("s", 10))
	assert.Len(t, hc.Extensions("s", 1), 1)
	assert.Empty(t, hc.Extensions("x", 10))
}

func TestHotCacheDisabled(t *testing.T) {
	hc := NewHotCache(0)
	hc.Put("a", roaring.New())
	_, ok := hc.Get("a")
	assert.False(t, ok)
	_, ok = hc.Get("")
	assert.False(t, ok)
}
