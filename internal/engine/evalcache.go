package engine

import (
	"github.com/hailam/shogiplay/internal/board"
)

type evalCacheEntry struct {
	key   uint64
	score int32
	used  bool
}

// CachedEvaluator memoizes another evaluator by position hash in a
// direct-mapped table. The hash covers the side to move, so cached scores
// keep the side-to-move convention.
type CachedEvaluator struct {
	inner   Evaluator
	entries []evalCacheEntry
	mask    uint64
	hits    uint64
	misses  uint64
}

// NewCachedEvaluator wraps inner with a cache of at least size entries,
// rounded up to a power of two.
func NewCachedEvaluator(inner Evaluator, size int) *CachedEvaluator {
	n := 1
	for n < size {
		n *= 2
	}
	return &CachedEvaluator{
		inner:   inner,
		entries: make([]evalCacheEntry, n),
		mask:    uint64(n - 1),
	}
}

// Evaluate returns the cached score or computes and stores it.
func (ce *CachedEvaluator) Evaluate(pos *board.Position) int {
	e := &ce.entries[pos.Hash&ce.mask]
	if e.used && e.key == pos.Hash {
		ce.hits++
		return int(e.score)
	}
	ce.misses++
	score := ce.inner.Evaluate(pos)
	*e = evalCacheEntry{key: pos.Hash, score: int32(score), used: true}
	return score
}

// HitRate returns the cache hit rate as a percentage.
func (ce *CachedEvaluator) HitRate() float64 {
	total := ce.hits + ce.misses
	if total == 0 {
		return 0
	}
	return float64(ce.hits) / float64(total) * 100
}

// Clear empties the cache, and the wrapped evaluator's caches if it has any.
func (ce *CachedEvaluator) Clear() {
	clear(ce.entries)
	ce.hits = 0
	ce.misses = 0
	if c, ok := ce.inner.(interface{ Clear() }); ok {
		c.Clear()
	}
}
