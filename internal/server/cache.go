package server

import (
	"math"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// HotCache keeps the result sets of recent patterns in a patricia trie and
// evicts the least recently used pattern once full.
type HotCache struct {
	trie        *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	maxPatterns int
	mu          sync.Mutex
}

func NewHotCache(maxPatterns int) *HotCache {
	return &HotCache{
		trie:        patricia.NewTrie(),
		accessTime:  make(map[string]int64, maxPatterns),
		maxPatterns: maxPatterns,
	}
}

// Get returns the cached result set of pattern. The set must not be modified.
func (hc *HotCache) Get(pattern string) (*roaring.Bitmap, bool) {
	if pattern == "" {
		return nil, false
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	item := hc.trie.Get(patricia.Prefix(pattern))
	if item == nil {
		return nil, false
	}
	hc.hits++
	hc.markAccessed(pattern)
	return item.(*roaring.Bitmap), true
}

func (hc *HotCache) Put(pattern string, positions *roaring.Bitmap) {
	if hc.maxPatterns <= 0 || pattern == "" {
		return
	}
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if _, ok := hc.accessTime[pattern]; !ok && len(hc.accessTime) >= hc.maxPatterns {
		hc.evictLRU()
	}
	hc.trie.Set(patricia.Prefix(pattern), positions)
	hc.markAccessed(pattern)
}

// Extensions lists up to limit cached patterns that extend prefix.
func (hc *HotCache) Extensions(prefix string, limit int) []string {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	var out []string
	err := hc.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, _ patricia.Item) error {
		if len(out) >= limit {
			return patricia.SkipSubtree
		}
		if string(p) != prefix {
			out = append(out, string(p))
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting hot cache: %v", err)
	}
	return out
}

func (hc *HotCache) Len() int {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return len(hc.accessTime)
}

func (hc *HotCache) Stats() map[string]int {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	return map[string]int{
		"hotCachePatterns": len(hc.accessTime),
		"maxHotPatterns":   hc.maxPatterns,
		"hotCacheHits":     int(hc.hits),
	}
}

func (hc *HotCache) markAccessed(pattern string) {
	hc.accessCount++
	hc.accessTime[pattern] = hc.accessCount
}

func (hc *HotCache) evictLRU() {
	var oldest string
	var oldestTime int64 = math.MaxInt64

	for pattern, t := range hc.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldest = pattern
		}
	}

	if oldestTime != math.MaxInt64 {
		hc.trie.Delete(patricia.Prefix(oldest))
		delete(hc.accessTime, oldest)
		log.Debugf("Evicted pattern %q from hot cache", oldest)
	}
}
