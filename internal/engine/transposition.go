package engine

import (
	"github.com/hailam/shogiplay/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// TTEntry represents an entry in the transposition table.
type TTEntry struct {
	Key        uint64     // Full 64-bit Zobrist hash for verification
	BestMove   board.Move // Best move found
	Score      int32      // Score (bounded by flag), mate scores relative to the node
	Depth      int8       // Search depth, 0 marks an empty slot
	Flag       TTFlag     // Type of bound
	Age        uint8      // Search counter for replacement
	Generation uint8      // Game counter, other games' entries never hit
}

const ttEntrySize = 24

// TranspositionTable is a hash table for storing search results.
// It belongs to one Engine and is not safe for concurrent use.
type TranspositionTable struct {
	entries    []TTEntry
	size       uint64
	mask       uint64
	age        uint8
	generation uint8

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table with the given size
// in MB. A size of zero gives a disabled table that never hits.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB <= 0 {
		return &TranspositionTable{}
	}
	numEntries := (uint64(sizeMB) * 1024 * 1024) / ttEntrySize

	// Round down to power of 2 for fast modulo
	numEntries = roundDownToPowerOf2(numEntries)

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Enabled reports whether the table has any slots.
func (tt *TranspositionTable) Enabled() bool {
	return tt.size > 0
}

// Probe looks up a position in the transposition table.
// Returns the entry and true if found, otherwise returns empty entry and false.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	if tt.size == 0 {
		return TTEntry{}, false
	}
	tt.probes++

	entry := tt.entries[hash&tt.mask]
	if entry.Key == hash && entry.Depth > 0 && entry.Generation == tt.generation {
		tt.hits++
		return entry, true
	}
	return TTEntry{}, false
}

// Store saves a position in the transposition table.
//
// Replacement is depth-preferred: a slot filled during the current search
// and game is only overwritten by a result of at least the same depth.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move) {
	if tt.size == 0 || depth <= 0 {
		return
	}
	entry := &tt.entries[hash&tt.mask]

	stale := entry.Depth == 0 || entry.Age != tt.age || entry.Generation != tt.generation
	if !stale && depth < int(entry.Depth) {
		return
	}
	if entry.Key == hash && bestMove == board.NoMove && !stale {
		bestMove = entry.BestMove
	}

	entry.Key = hash
	entry.BestMove = bestMove
	entry.Score = int32(score)
	entry.Depth = int8(min(depth, 127))
	entry.Flag = flag
	entry.Age = tt.age
	entry.Generation = tt.generation
}

// NewSearch increments the age counter for a new search.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// NewGame bumps the game generation, invalidating every stored entry.
func (tt *TranspositionTable) NewGame() {
	tt.generation++
	if tt.generation == 0 {
		// wrapped: entries from 256 games ago would look current again
		tt.Clear()
	}
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age = 0
	tt.generation = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	if tt.size == 0 {
		return 0
	}
	// Sample first 1000 entries
	used := 0
	sampleSize := 1000
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}

	for i := 0; i < sampleSize; i++ {
		e := &tt.entries[i]
		if e.Depth > 0 && e.Age == tt.age && e.Generation == tt.generation {
			used++
		}
	}

	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// AdjustScoreFromTT converts a stored mate score back to the distance from
// the root at the probing ply.
func AdjustScoreFromTT(score int, ply int) int {
	if score >= MateBound {
		return score - ply
	}
	if score <= -MateBound {
		return score + ply
	}
	return score
}

// AdjustScoreToTT stores mate scores relative to the node rather than the root.
func AdjustScoreToTT(score int, ply int) int {
	if score >= MateBound {
		return score + ply
	}
	if score <= -MateBound {
		return score - ply
	}
	return score
}
