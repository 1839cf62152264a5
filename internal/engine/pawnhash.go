package engine

// PawnEntry stores cached pawn structure evaluation.
type PawnEntry struct {
	Key   uint64
	Score [2]int16 // pawn structure score per player
}

// PawnTable is a hash table for caching pawn structure evaluations.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable creates a new pawn hash table with the given size in MB.
func NewPawnTable(sizeMB int) *PawnTable {
	// Each entry is 16 bytes (8 + 2*2, padded), round to power of 2
	entrySize := 16
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	// Round down to power of 2
	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a pawn structure evaluation in the hash table.
// A key of zero never hits.
func (pt *PawnTable) Probe(key uint64) (p1, p2 int, found bool) {
	entry := &pt.entries[key&pt.mask]
	if key != 0 && entry.Key == key {
		return int(entry.Score[0]), int(entry.Score[1]), true
	}
	return 0, 0, false
}

// Store saves a pawn structure evaluation in the hash table.
func (pt *PawnTable) Store(key uint64, p1, p2 int) {
	entry := &pt.entries[key&pt.mask]
	entry.Key = key
	entry.Score[0] = int16(p1)
	entry.Score[1] = int16(p2)
}

// Clear clears the pawn hash table.
func (pt *PawnTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
}
